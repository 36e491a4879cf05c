package converter

// markdown.go: Markdown deck → deck.Deck.
//
// Slides are separated by a line holding only "---"; a source without
// separators is split before every level-1 heading. Deck globals, the
// layout class and speaker notes travel in _COMMENT_START_ … _COMMENT_END_
// blocks. Tables and images are located with goldmark (GFM tables); every
// other line after the title is kept raw for the rich-text compiler.

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

const slideSeparator = "\n---\n"

var (
	commentRe   = regexp.MustCompile(`(?s)_COMMENT_START_(.*?)_COMMENT_END_`)
	headerRe    = regexp.MustCompile(`header:\s*'(.*?)'`)
	footerRe    = regexp.MustCompile(`footer:\s*'(.*?)'`)
	notesRe     = regexp.MustCompile(`(?is)_COMMENT_START_\s*Speaker notes:(.*?)_COMMENT_END_`)
	classRe     = regexp.MustCompile(`(?i)_COMMENT_START_\s*_class:\s*([\w\s-]+)_COMMENT_END_`)
	delimiterRe = regexp.MustCompile(`^\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?$`)
	imageLineRe = regexp.MustCompile(`^!\[[^\]]*\]\([^)]*\)$`)
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParseMarkdown parses a Markdown deck. Local image paths are kept as
// written.
func ParseMarkdown(src string) *deck.Deck {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	d := &deck.Deck{}

	if m := commentRe.FindStringSubmatchIndex(src); m != nil {
		block := src[m[2]:m[3]]
		h, f := headerRe.FindStringSubmatch(block), footerRe.FindStringSubmatch(block)
		if h != nil || f != nil {
			if h != nil {
				d.Globals.Header = strings.TrimSpace(h[1])
			}
			if f != nil {
				d.Globals.Footer = strings.TrimSpace(f[1])
			}
			src = src[:m[0]] + src[m[1]:]
		}
	}

	for _, chunk := range splitSlides(src) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		d.Slides = append(d.Slides, parseSlide(chunk))
	}
	return d
}

// splitSlides splits on separator lines, or before level-1 headings when
// the source has no separators.
func splitSlides(src string) []string {
	if strings.HasPrefix(src, "---\n") {
		src = "\n" + src
	}
	if strings.Contains(src, slideSeparator) {
		return strings.Split(src, slideSeparator)
	}

	var (
		out   []string
		cur   []string
		fence bool
	)
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fence = !fence
		}
		if !fence && strings.HasPrefix(line, "# ") && len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, "\n"))
	}
	return out
}

func parseSlide(chunk string) deck.Slide {
	var s deck.Slide

	if m := notesRe.FindStringSubmatch(chunk); m != nil {
		s.SpeakerNotes = strings.TrimSpace(m[1])
		chunk = strings.Replace(chunk, m[0], "", 1)
	}
	if m := classRe.FindStringSubmatch(chunk); m != nil {
		if fields := strings.Fields(m[1]); len(fields) > 0 {
			s.LayoutClass = fields[0]
		}
		chunk = strings.Replace(chunk, m[0], "", 1)
	}
	chunk = strings.TrimSpace(commentRe.ReplaceAllString(chunk, ""))

	lines := strings.Split(chunk, "\n")
	for i, line := range lines {
		if t := strings.TrimSpace(line); strings.HasPrefix(t, "#") {
			s.Title = strings.TrimSpace(strings.TrimLeft(t, "# "))
			lines = lines[i+1:]
			break
		}
	}

	body := strings.Join(lines, "\n")
	table, image := extractBlocks([]byte(body))
	if table != nil {
		s.Table = table
		lines = dropTableLines(lines)
	}
	if image != "" {
		s.Image = imageRef(image)
		lines = dropImageLines(lines)
	}
	s.Body = trimBlank(lines)

	if s.LayoutClass == "" {
		s.LayoutClass = inferClass(s)
	}
	return s
}

// inferClass picks a layout class for a slide without an explicit one.
func inferClass(s deck.Slide) string {
	switch {
	case s.Table != nil:
		return deck.ClassTableFullscreen
	case s.Image != nil && len(s.Body) > 0:
		return deck.ClassImageRight
	case s.Image != nil:
		return deck.ClassImageFullscreen
	}
	return ""
}

// extractBlocks returns the first GFM table and the first image
// destination in src.
func extractBlocks(src []byte) (*geometry.TableContent, string) {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var (
		table *geometry.TableContent
		img   string
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *extast.Table:
			if table == nil {
				table = tableContent(v, src)
			}
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			if img == "" {
				img = string(v.Destination)
			}
		}
		return ast.WalkContinue, nil
	})
	return table, img
}

func tableContent(t *extast.Table, src []byte) *geometry.TableContent {
	tc := &geometry.TableContent{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(inlineMarkup(cell, src)))
		}
		if _, ok := row.(*extast.TableHeader); ok {
			tc.Headers = cells
			continue
		}
		tc.Rows = append(tc.Rows, cells)
	}
	return tc
}

// inlineMarkup renders n's inline children back to Markdown, keeping only
// emphasis markers.
func inlineMarkup(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeInline(&sb, n, src)
	return sb.String()
}

func writeInline(sb *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.Emphasis:
			mark := strings.Repeat("*", v.Level)
			sb.WriteString(mark)
			writeInline(sb, v, src)
			sb.WriteString(mark)
		default:
			writeInline(sb, c, src)
		}
	}
}

// dropTableLines removes the first table block: the header line before the
// delimiter row through the next blank line.
func dropTableLines(lines []string) []string {
	for i := 1; i < len(lines); i++ {
		if !delimiterRe.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		end := i + 1
		for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
			end++
		}
		return append(append([]string{}, lines[:i-1]...), lines[end:]...)
	}
	return lines
}

func dropImageLines(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if imageLineRe.MatchString(strings.TrimSpace(l)) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

// imageRef maps an image destination to a reference. Remote destinations
// become the fetch URL; local paths may carry a "#page=N" fragment for PDF
// sources.
func imageRef(dest string) *deck.ImageRef {
	u, err := url.Parse(dest)
	if err != nil {
		return &deck.ImageRef{SourceFile: dest}
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return &deck.ImageRef{URL: dest}
	}
	ref := &deck.ImageRef{SourceFile: u.Path}
	if p, ok := strings.CutPrefix(u.Fragment, "page="); ok {
		ref.PageNumber, _ = strconv.Atoi(p)
	}
	return ref
}
