package richtext

import (
	"strings"
	"unicode"
)

// MarkerKind is the list marker a line was written with.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerDash
	MarkerOrdinal
)

// ContentLine is one authored line split into indentation, list marker and
// remaining content.
type ContentLine struct {
	Raw    string
	Indent int // leading whitespace width in columns
	Marker MarkerKind
	Text   string
}

// ListItem reports whether the line carried a list marker.
func (l ContentLine) ListItem() bool { return l.Marker != MarkerNone }

// Paragraph is one output paragraph. Spans are relative to Text; Range is
// the paragraph's position in the compiled text.
type Paragraph struct {
	Text     string     `json:"text"`
	ListItem bool       `json:"listItem"`
	Marker   MarkerKind `json:"-"`
	Level    int        `json:"level"`
	Spans    []Span     `json:"spans,omitempty"`
	Range    Range      `json:"range"`
}

// Block is a maximal run of consecutive list-item paragraphs, by index.
type Block struct {
	First, Last int
}

// splitLine measures indentation and strips a leading list marker.
func splitLine(raw string, tabWidth int) ContentLine {
	line := ContentLine{Raw: raw}
	i := 0
indent:
	for ; i < len(raw); i++ {
		switch raw[i] {
		case ' ':
			line.Indent++
		case '\t':
			line.Indent += tabWidth
		default:
			break indent
		}
	}
	line.Marker, line.Text = stripMarker(raw[i:])
	return line
}

// stripMarker recognises "-", "*", "+", "N." and "N)" followed by
// whitespace or end of line.
func stripMarker(s string) (MarkerKind, string) {
	if s == "" {
		return MarkerNone, s
	}
	switch s[0] {
	case '-', '*', '+':
		if rest, ok := afterMarker(s, 1); ok {
			return MarkerDash, rest
		}
		return MarkerNone, s
	}
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 || n >= len(s) || (s[n] != '.' && s[n] != ')') {
		return MarkerNone, s
	}
	if rest, ok := afterMarker(s, n+1); ok {
		return MarkerOrdinal, rest
	}
	return MarkerNone, s
}

func afterMarker(s string, n int) (string, bool) {
	if len(s) == n {
		return "", true
	}
	if s[n] != ' ' && s[n] != '\t' {
		return "", false
	}
	return strings.TrimLeftFunc(s[n:], unicode.IsSpace), true
}

// ListBlocks partitions paragraphs into maximal contiguous list-item runs.
func ListBlocks(paras []Paragraph) []Block {
	var blocks []Block
	for i := 0; i < len(paras); i++ {
		if !paras[i].ListItem {
			continue
		}
		j := i
		for j+1 < len(paras) && paras[j+1].ListItem {
			j++
		}
		blocks = append(blocks, Block{First: i, Last: j})
		i = j
	}
	return blocks
}

// layout assigns each paragraph its range in the joined text and returns
// the joined text. Paragraphs are separated by exactly one newline.
func layout(paras []Paragraph) string {
	var sb strings.Builder
	offset := 0
	for i := range paras {
		if i > 0 {
			sb.WriteByte('\n')
			offset++
		}
		n := utf16Len(paras[i].Text)
		paras[i].Range = Range{Start: offset, End: offset + n}
		sb.WriteString(paras[i].Text)
		offset += n
	}
	return sb.String()
}

func presetFor(m MarkerKind) string {
	if m == MarkerOrdinal {
		return PresetNumbered
	}
	return PresetDisc
}
