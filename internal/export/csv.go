// Package export writes query results to CSV files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrNoData means there were no rows to export.
var ErrNoData = errors.New("export: no data")

// utf8BOM keeps Excel from mangling accented characters.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Headers returns the column order used for export: the union of keys
// across all rows, sorted for a stable layout. Heterogeneous result sets
// keep every column; rows missing a key get empty cells.
func Headers(rows []map[string]any) []string {
	if len(rows) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(rows[0]))
	headers := make([]string, 0, len(rows[0]))
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	sort.Strings(headers)
	return headers
}

// WriteFile exports rows as CSV to path. Cell values render with fmt; nil
// becomes an empty cell.
func WriteFile(path string, rows []map[string]any) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}

	headers := Headers(rows)
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = cell(row[h])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; keep integers unpadded.
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	}
	return fmt.Sprint(v)
}
