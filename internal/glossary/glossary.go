// Package glossary finds business-vocabulary terms in free text, so the UI
// can emphasize what the pipeline actually understands. Matching is case-
// and accent-insensitive, word-bounded, and tolerant of French plurals.
package glossary

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Terms is the default business vocabulary.
var Terms = []string{
	"campagne",
	"annonceur",
	"budget",
	"diffusion",
	"impression",
	"audience",
	"spot",
	"chaîne",
	"écran publicitaire",
	"tranche horaire",
	"grp",
	"part de voix",
}

// Range is a highlighted span of the original text, byte-indexed.
type Range struct {
	Start int
	End   int
}

// Matcher finds glossary terms in text.
type Matcher struct {
	terms []string // normalized, longest first for greedy matching
}

// NewMatcher builds a matcher over the given terms; nil means the default
// vocabulary.
func NewMatcher(terms []string) *Matcher {
	if terms == nil {
		terms = Terms
	}
	normalized := make([]string, len(terms))
	for i, t := range terms {
		normalized[i] = normalize(t)
	}
	sort.Slice(normalized, func(i, j int) bool {
		return len(normalized[i]) > len(normalized[j])
	})
	return &Matcher{terms: normalized}
}

// Find returns the non-overlapping matched ranges in text, sorted by
// position.
func (m *Matcher) Find(text string) []Range {
	if text == "" {
		return nil
	}

	// normalize() preserves byte offsets only when the text is ASCII, so
	// matching runs over a rune-indexed normalized copy mapped back to byte
	// positions.
	runesText := []rune(text)
	normRunes := make([]rune, len(runesText))
	byteAt := make([]int, len(runesText)+1)
	offset := 0
	for i, r := range runesText {
		byteAt[i] = offset
		offset += len(string(r))
		normRunes[i] = normalizeRune(r)
	}
	byteAt[len(runesText)] = offset
	haystack := string(normRunes)

	matched := make([]bool, len(runesText))
	var out []Range

	for _, term := range m.terms {
		termRunes := []rune(term)
		for from := 0; from+len(termRunes) <= len(runesText); {
			idx := indexRunes(haystack, termRunes, from)
			if idx == -1 {
				break
			}
			end := idx + len(termRunes)

			beforeOK := idx == 0 || !isWordRune(normRunes[idx-1])
			afterOK := end >= len(runesText) || !isWordRune(normRunes[end])
			// Accept a trailing plural marker written by the user.
			pluralOK := end < len(runesText) &&
				(normRunes[end] == 's' || normRunes[end] == 'x') &&
				(end+1 >= len(runesText) || !isWordRune(normRunes[end+1]))

			if beforeOK && (afterOK || pluralOK) {
				actualEnd := end
				if pluralOK && !afterOK {
					actualEnd = end + 1
				}
				if !overlaps(matched, idx, actualEnd) {
					for i := idx; i < actualEnd; i++ {
						matched[i] = true
					}
					out = append(out, Range{Start: byteAt[idx], End: byteAt[actualEnd]})
				}
			}
			from = idx + 1
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Emphasize wraps every matched range using wrap, e.g. a lipgloss bold
// renderer.
func (m *Matcher) Emphasize(text string, wrap func(string) string) string {
	ranges := m.Find(text)
	if len(ranges) == 0 {
		return text
	}

	var b strings.Builder
	cursor := 0
	for _, r := range ranges {
		b.WriteString(text[cursor:r.Start])
		b.WriteString(wrap(text[r.Start:r.End]))
		cursor = r.End
	}
	b.WriteString(text[cursor:])
	return b.String()
}

func overlaps(matched []bool, from, to int) bool {
	for i := from; i < to; i++ {
		if matched[i] {
			return true
		}
	}
	return false
}

func indexRunes(haystack string, needle []rune, fromRune int) int {
	hs := []rune(haystack)
	for i := fromRune; i+len(needle) <= len(hs); i++ {
		match := true
		for j, r := range needle {
			if hs[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalize(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// normalizeRune lowercases and strips the accent of a single rune without
// changing rune count, keeping offsets aligned with the original text.
func normalizeRune(r rune) rune {
	r = unicode.ToLower(r)
	s := normalize(string(r))
	rs := []rune(s)
	if len(rs) != 1 {
		return r
	}
	return rs[0]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r)
}
