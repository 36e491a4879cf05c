package richtext

// markup.go: inline emphasis parser.
//
// Bold (**x**) is stripped first, then italic (*x*) is stripped from the
// bold-free text. Each pass is a leftmost, shortest, non-empty match scan;
// delimiters without a partner on the same line stay in the text, and a
// star that is part of a run the bold pass left behind ("**open *x") is
// never an italic delimiter. Offsets of spans found in the first pass are
// re-based after the second pass removes its delimiters, so every span is
// expressed against the final plain text.
//
// Interleaved markers such as "**a*b**c*" are resolved by this two-pass
// rule, which is not guaranteed to match the author's intent.

import (
	"sort"
	"unicode/utf16"
)

// SpanKind is the emphasis a Span applies.
type SpanKind int

const (
	Bold SpanKind = iota + 1
	Italic
)

func (k SpanKind) String() string {
	switch k {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	}
	return "plain"
}

// Span is an emphasised region of a single line's plain text, in UTF-16
// code units. Spans of the same kind never overlap; a bold and an italic
// span may cover the same text.
type Span struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Kind  SpanKind `json:"kind"`
}

var (
	boldDelim   = []rune("**")
	italicDelim = []rune("*")
)

// ParseInline strips emphasis delimiters from one line and returns the plain
// text together with the spans they marked.
func ParseInline(line string) (string, []Span) {
	text := []rune(line)

	text, bold, _ := stripPairs(text, boldDelim, Bold)
	text, italic, removed := stripPairs(text, italicDelim, Italic)

	spans := make([]Span, 0, len(bold)+len(italic))
	for _, s := range bold {
		spans = append(spans, Span{
			Start: s.Start - countBefore(removed, s.Start),
			End:   s.End - countBefore(removed, s.End),
			Kind:  Bold,
		})
	}
	spans = append(spans, italic...)

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].Kind < spans[j].Kind
	})

	// Rune offsets → UTF-16 offsets.
	idx := utf16Prefix(text)
	out := spans[:0]
	for _, s := range spans {
		if s.End <= s.Start {
			continue
		}
		out = append(out, Span{Start: idx[s.Start], End: idx[s.End], Kind: s.Kind})
	}
	return string(text), out
}

// stripPairs removes every matched delimiter pair from text in one
// left-to-right scan. Span offsets are rune offsets into the returned text;
// removed holds the input positions of the deleted delimiter runes in
// ascending order.
func stripPairs(text, delim []rune, kind SpanKind) (out []rune, spans []Span, removed []int) {
	n := len(delim)
	out = make([]rune, 0, len(text))
	for i := 0; i < len(text); {
		if isDelim(text, i, delim) {
			if j := findDelim(text, i+n+1, delim); j >= 0 {
				start := len(out)
				out = append(out, text[i+n:j]...)
				spans = append(spans, Span{Start: start, End: len(out), Kind: kind})
				for k := 0; k < n; k++ {
					removed = append(removed, i+k)
				}
				for k := 0; k < n; k++ {
					removed = append(removed, j+k)
				}
				i = j + n
				continue
			}
		}
		out = append(out, text[i])
		i++
	}
	return out, spans, removed
}

func hasDelim(text []rune, at int, delim []rune) bool {
	if at < 0 || at+len(delim) > len(text) {
		return false
	}
	for k, r := range delim {
		if text[at+k] != r {
			return false
		}
	}
	return true
}

// isDelim reports whether delim starts at text[at]. A single-rune
// delimiter adjacent to another copy of itself is literal.
func isDelim(text []rune, at int, delim []rune) bool {
	if !hasDelim(text, at, delim) {
		return false
	}
	if len(delim) != 1 {
		return true
	}
	r := delim[0]
	return (at == 0 || text[at-1] != r) && (at+1 == len(text) || text[at+1] != r)
}

func findDelim(text []rune, from int, delim []rune) int {
	for j := from; j+len(delim) <= len(text); j++ {
		if isDelim(text, j, delim) {
			return j
		}
	}
	return -1
}

// countBefore returns how many entries of the ascending slice xs are < pos.
func countBefore(xs []int, pos int) int {
	return sort.SearchInts(xs, pos)
}

// utf16Prefix maps each rune offset (0..len) to its UTF-16 offset.
func utf16Prefix(text []rune) []int {
	idx := make([]int, len(text)+1)
	for i, r := range text {
		idx[i+1] = idx[i] + utf16.RuneLen(r)
	}
	return idx
}

// utf16Len counts s in UTF-16 code units, the index unit of the
// batch-update protocol.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
