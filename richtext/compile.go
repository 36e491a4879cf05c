// Package richtext compiles lightly marked-up body text into one flat string
// plus the ordered edit operations that reproduce its emphasis, bullets and
// indentation in a slide text box.
//
// All offsets in the output refer to the final, delimiter-free text. The
// compiler holds no state between calls and is safe for concurrent use.
package richtext

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidOptions is returned by NewCompiler for unusable options.
var ErrInvalidOptions = errors.New("richtext: invalid options")

// Defaults.
const (
	DefaultSpacesPerLevel = 2
	DefaultTabWidth       = 2
	DefaultIndentUnitPt   = 18
)

// citationRE matches generated citation tags such as [cite_start] and
// [cite: 12].
var citationRE = regexp.MustCompile(`\[cite[^\]]*\]`)

// Options controls how indentation and cleanup are interpreted.
type Options struct {
	// SpacesPerLevel is the indentation width of one nesting level.
	SpacesPerLevel int
	// TabWidth is the column width a leading tab counts for.
	TabWidth int
	// IndentUnitPt is the start indent, in points, added per nesting level.
	IndentUnitPt float64
	// StripCitations removes [cite…] tags before parsing.
	StripCitations bool
	// Normalize applies Unicode NFC to every line.
	Normalize bool
}

// DefaultOptions returns two-space levels, two-column tabs, 18pt indents,
// citation stripping and NFC normalisation.
func DefaultOptions() Options {
	return Options{
		SpacesPerLevel: DefaultSpacesPerLevel,
		TabWidth:       DefaultTabWidth,
		IndentUnitPt:   DefaultIndentUnitPt,
		StripCitations: true,
		Normalize:      true,
	}
}

// Compiler turns lines of marked-up text into Compiled output.
type Compiler struct {
	opts Options
}

// NewCompiler validates opts and returns a Compiler.
func NewCompiler(opts Options) (*Compiler, error) {
	if opts.SpacesPerLevel <= 0 {
		return nil, fmt.Errorf("%w: spaces per level must be positive, got %d", ErrInvalidOptions, opts.SpacesPerLevel)
	}
	if opts.TabWidth <= 0 {
		return nil, fmt.Errorf("%w: tab width must be positive, got %d", ErrInvalidOptions, opts.TabWidth)
	}
	if opts.IndentUnitPt < 0 {
		return nil, fmt.Errorf("%w: indent unit must not be negative, got %g", ErrInvalidOptions, opts.IndentUnitPt)
	}
	return &Compiler{opts: opts}, nil
}

// Options returns the compiler's options.
func (c *Compiler) Options() Options { return c.opts }

// Compiled is the result of compiling one text object.
type Compiled struct {
	Text       string      `json:"text"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Ops        []Operation `json:"-"`
}

// Empty reports whether there is nothing to insert.
func (c *Compiled) Empty() bool { return c == nil || c.Text == "" }

// Len returns the length of Text in UTF-16 code units.
func (c *Compiled) Len() int {
	if c == nil {
		return 0
	}
	return utf16Len(c.Text)
}

// Slice returns the text covered by r.
func (c *Compiled) Slice(r Range) string {
	units := utf16.Encode([]rune(c.Text))
	if r.Start < 0 || r.End > len(units) || r.Start > r.End {
		return ""
	}
	return string(utf16.Decode(units[r.Start:r.End]))
}

// ParseLine splits one authored line the way Compile does.
func (c *Compiler) ParseLine(raw string) ContentLine {
	if c.opts.Normalize {
		raw = norm.NFC.String(raw)
	}
	return splitLine(raw, c.opts.TabWidth)
}

// Level returns the nesting level of a line.
func (c *Compiler) Level(l ContentLine) int {
	return l.Indent / c.opts.SpacesPerLevel
}

// Compile compiles body lines for the text object target. The operations
// are one InsertText, then every ApplyStyle, then per list block one
// ApplyBullet followed by that block's ApplyIndent operations.
func (c *Compiler) Compile(target string, lines []string) *Compiled {
	paras := make([]Paragraph, 0, len(lines))
	for _, raw := range lines {
		line := c.ParseLine(raw)
		text := c.clean(line.Text)
		if line.ListItem() && strings.TrimSpace(text) == "" {
			continue
		}
		plain, spans := ParseInline(text)
		paras = append(paras, Paragraph{
			Text:     plain,
			ListItem: line.ListItem(),
			Marker:   line.Marker,
			Level:    c.Level(line),
			Spans:    spans,
		})
	}
	return c.emit(target, paras)
}

// CompileText splits s on newlines and compiles the result.
func (c *Compiler) CompileText(target, s string) *Compiled {
	if s == "" {
		return &Compiled{}
	}
	return c.Compile(target, strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n"))
}

// CompileCell compiles a table cell: emphasis is honoured, list markers and
// indentation are kept as literal text.
func (c *Compiler) CompileCell(target, s string) *Compiled {
	if s == "" {
		return &Compiled{}
	}
	var paras []Paragraph
	for _, raw := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if c.opts.Normalize {
			raw = norm.NFC.String(raw)
		}
		plain, spans := ParseInline(c.clean(strings.TrimSpace(raw)))
		paras = append(paras, Paragraph{Text: plain, Spans: spans})
	}
	return c.emit(target, paras)
}

// Clean applies citation stripping to s.
func (c *Compiler) Clean(s string) string { return c.clean(s) }

func (c *Compiler) clean(s string) string {
	if c.opts.StripCitations {
		s = citationRE.ReplaceAllString(s, "")
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func (c *Compiler) emit(target string, paras []Paragraph) *Compiled {
	text := layout(paras)
	out := &Compiled{Text: text, Paragraphs: paras}
	if text == "" {
		return out
	}

	out.Ops = append(out.Ops, InsertText{ObjectID: target, Text: text})
	for _, p := range paras {
		for _, s := range p.Spans {
			out.Ops = append(out.Ops, ApplyStyle{
				ObjectID: target,
				Range:    Range{Start: p.Range.Start + s.Start, End: p.Range.Start + s.End},
				Bold:     s.Kind == Bold,
				Italic:   s.Kind == Italic,
			})
		}
	}
	for _, b := range ListBlocks(paras) {
		first, last := paras[b.First], paras[b.Last]
		out.Ops = append(out.Ops, ApplyBullet{
			ObjectID:     target,
			Range:        Range{Start: first.Range.Start, End: last.Range.End},
			NestingLevel: first.Level,
			Preset:       presetFor(first.Marker),
		})
		for _, p := range paras[b.First : b.Last+1] {
			if p.Level > 0 {
				out.Ops = append(out.Ops, ApplyIndent{
					ObjectID:    target,
					Range:       p.Range,
					MagnitudePt: float64(p.Level) * c.opts.IndentUnitPt,
				})
			}
		}
	}
	return out
}
