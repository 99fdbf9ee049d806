// Package answer strips embedded structured-data fragments from the
// pipeline's free-text answers and classifies the resulting shape. The
// backend sometimes echoes the query results inside the prose, either as a
// fenced code block or as a raw JSON array literal; the table rendering
// already shows that data, so the text copy is noise.
package answer

import (
	"strings"

	"github.com/tidwall/gjson"

	"pubgpt-tui/internal/protocol"
)

// Shape classifies what a finished turn should render.
type Shape int

const (
	ShapeText Shape = iota
	ShapeTable
	ShapeChart
)

// Result is the outcome of extraction.
type Result struct {
	Text  string
	Shape Shape
}

// Extract classifies the turn and cleans the answer text. With no rows the
// text passes through unmodified; with rows the embedded fragments are
// removed. Extraction never fails: anything it cannot parse is left in
// place.
func Extract(text string, rows []map[string]any, chart *protocol.ChartData) Result {
	shape := ShapeText
	if len(rows) > 0 {
		shape = ShapeTable
		text = Clean(text)
	}
	if chart != nil && chart.Visualization.Type != protocol.ChartNone {
		shape = ShapeChart
	}
	return Result{Text: text, Shape: shape}
}

// Clean removes embedded structured-data fragments from text. Two forms are
// handled: fenced code blocks tagged as data (```json ... ``` or an untagged
// fence whose body is a JSON value), and raw bracketed array literals inline
// in the prose. Clean is idempotent.
func Clean(text string) string {
	if text == "" {
		return text
	}
	cleaned := stripFences(text)
	cleaned = stripArrayLiteral(cleaned)
	return strings.TrimSpace(cleaned)
}

// stripFences removes fenced blocks carrying structured data, delimiters
// included. Fences with a non-data language tag (sql, text, ...) are kept.
func stripFences(text string) string {
	var out strings.Builder
	rest := text

	for {
		start := strings.Index(rest, "```")
		if start == -1 {
			out.WriteString(rest)
			break
		}

		tagEnd := strings.IndexByte(rest[start+3:], '\n')
		if tagEnd == -1 {
			// Unterminated fence: leave the remainder untouched.
			out.WriteString(rest)
			break
		}
		tag := strings.TrimSpace(rest[start+3 : start+3+tagEnd])
		bodyStart := start + 3 + tagEnd + 1

		end := strings.Index(rest[bodyStart:], "```")
		if end == -1 {
			out.WriteString(rest)
			break
		}
		body := rest[bodyStart : bodyStart+end]
		blockEnd := bodyStart + end + 3

		if isDataFence(tag, body) {
			out.WriteString(rest[:start])
		} else {
			out.WriteString(rest[:blockEnd])
		}
		rest = rest[blockEnd:]
	}

	return out.String()
}

func isDataFence(tag, body string) bool {
	switch strings.ToLower(tag) {
	case "json":
		return true
	case "":
		return gjson.Valid(strings.TrimSpace(body))
	}
	return false
}

// stripArrayLiteral removes the first raw JSON array embedded in the prose.
// Only fragments that actually parse as JSON are removed; a bare "[sic]"
// stays. An unbalanced bracket leaves the remainder untouched.
func stripArrayLiteral(text string) string {
	start := strings.IndexByte(text, '[')
	if start == -1 {
		return text
	}

	end := matchBracket(text, start)
	if end == -1 {
		return text
	}

	fragment := text[start:end]
	if !gjson.Valid(fragment) || !strings.HasPrefix(strings.TrimSpace(fragment), "[") {
		return text
	}
	// Plain prose brackets ("[1]", "[sic]") parse as JSON arrays only when
	// their content is a JSON value; gjson.Valid handles that distinction
	// except for single numbers, which we keep.
	if gjson.Parse(fragment).IsArray() && looksLikeData(fragment) {
		return text[:start] + text[end:]
	}
	return text
}

// looksLikeData filters out trivial prose brackets like "[1]": a data
// fragment contains at least one object or more than one element.
func looksLikeData(fragment string) bool {
	parsed := gjson.Parse(fragment)
	arr := parsed.Array()
	if len(arr) == 0 {
		return false
	}
	if len(arr) > 1 {
		return true
	}
	return arr[0].IsObject() || arr[0].IsArray()
}
