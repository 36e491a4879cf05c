package converter

// docx.go: word/document.xml is stream-parsed straight into slides.
//
// Title and Heading1 paragraphs start a slide. A Heading2 directly under
// the title becomes the subtitle; deeper headings become bold body lines.
// List paragraphs keep their level as two-space indents, bold and italic
// runs keep their markers, and each table lands on the current slide or,
// when that slide already has one, on a new untitled slide.

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
)

func convertDOCX(filePath string) (*deck.Deck, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		defer func() { _ = rc.Close() }()
		return parseDocument(rc)
	}
	return nil, fmt.Errorf("word/document.xml not found in %s", filePath)
}

type docxParser struct {
	stack []string

	slides []deck.Slide
	cur    *deck.Slide

	inPara    bool
	paraStyle string
	isList    bool
	listLevel int
	paraText  strings.Builder

	inRun   bool
	runBold bool
	runItal bool
	runText strings.Builder

	inTable  bool
	rows     [][]string
	currRow  []string
	inCell   bool
	cellText strings.Builder
}

func (p *docxParser) push(name string) { p.stack = append(p.stack, name) }
func (p *docxParser) pop() {
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}
func (p *docxParser) inCtx(name string) bool {
	for _, s := range p.stack {
		if s == name {
			return true
		}
	}
	return false
}

func parseDocument(r io.Reader) (*deck.Deck, error) {
	dec := xml.NewDecoder(r)
	p := &docxParser{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.push(t.Name.Local)
			p.handleStart(t)
		case xml.EndElement:
			p.handleEnd(t.Name.Local)
			p.pop()
		case xml.CharData:
			p.handleText(string(t))
		}
	}

	d := &deck.Deck{}
	for _, s := range p.slides {
		if s.Title == "" && s.Subtitle == "" && len(s.Body) == 0 && s.Table == nil {
			continue
		}
		s.Body = trimBlank(s.Body)
		if s.LayoutClass == "" {
			s.LayoutClass = inferClass(s)
		}
		d.Slides = append(d.Slides, s)
	}
	return d, nil
}

// slide returns the slide content is currently added to, opening an
// untitled one before the first heading.
func (p *docxParser) slide() *deck.Slide {
	if p.cur == nil {
		p.newSlide("")
	}
	return p.cur
}

func (p *docxParser) newSlide(title string) {
	p.slides = append(p.slides, deck.Slide{Title: title})
	p.cur = &p.slides[len(p.slides)-1]
}

func (p *docxParser) handleStart(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.inTable = true
		p.rows = nil
	case "tr":
		p.currRow = nil
	case "tc":
		p.inCell = true
		p.cellText.Reset()

	case "p":
		p.inPara = true
		p.paraStyle = ""
		p.isList = false
		p.listLevel = 0
		p.paraText.Reset()
	case "pStyle":
		if p.inPara && p.inCtx("pPr") {
			p.paraStyle = attrVal(t, "val")
		}
	case "numPr":
		if p.inPara {
			p.isList = true
		}
	case "ilvl":
		if p.inPara && p.inCtx("numPr") {
			p.listLevel, _ = strconv.Atoi(attrVal(t, "val"))
		}

	case "r":
		if p.inPara {
			p.inRun = true
			p.runBold = false
			p.runItal = false
			p.runText.Reset()
		}
	case "b":
		if p.inRun && p.inCtx("rPr") && attrVal(t, "val") != "0" {
			p.runBold = true
		}
	case "i":
		if p.inRun && p.inCtx("rPr") && attrVal(t, "val") != "0" {
			p.runItal = true
		}
	case "br":
		if p.inRun && !p.inCell {
			p.runText.WriteByte(' ')
		}
	}
}

func (p *docxParser) handleEnd(local string) {
	switch local {
	case "r":
		if p.inRun {
			if !p.inCell {
				p.paraText.WriteString(applyInlineFormat(p.runText.String(), p.runBold, p.runItal))
			}
			p.inRun = false
		}
	case "p":
		if p.inPara {
			if text := strings.TrimSpace(p.paraText.String()); text != "" && !p.inCell {
				p.addParagraph(text)
			}
			p.inPara = false
		}
	case "tc":
		if p.inTable {
			p.currRow = append(p.currRow, strings.TrimSpace(p.cellText.String()))
			p.inCell = false
			p.cellText.Reset()
		}
	case "tr":
		if p.inTable {
			p.rows = append(p.rows, p.currRow)
			p.currRow = nil
		}
	case "tbl":
		if p.inTable {
			p.addTable()
			p.inTable = false
			p.rows = nil
		}
	}
}

func (p *docxParser) handleText(text string) {
	switch {
	case p.inCell:
		p.cellText.WriteString(text)
	case p.inRun:
		p.runText.WriteString(text)
	}
}

func (p *docxParser) addParagraph(text string) {
	level := headingLevel(p.paraStyle)
	switch {
	case level == 1:
		p.newSlide(text)
	case level == 2 && p.cur != nil && p.cur.Subtitle == "" && len(p.cur.Body) == 0 && p.cur.Table == nil:
		p.cur.Subtitle = text
	case level > 1:
		s := p.slide()
		s.Body = append(s.Body, "**"+text+"**")
	case p.isList:
		s := p.slide()
		s.Body = append(s.Body, strings.Repeat("  ", p.listLevel)+"- "+text)
	default:
		s := p.slide()
		s.Body = append(s.Body, text)
	}
}

func (p *docxParser) addTable() {
	t, ok := rowsTable(p.rows)
	if !ok {
		return
	}
	if s := p.slide(); s.Table != nil {
		p.newSlide("")
	}
	p.cur.Table = t
}

// headingLevel maps a paragraph style to a heading level: Title is 1,
// HeadingN is N, anything else 0.
func headingLevel(style string) int {
	if style == "Title" {
		return 1
	}
	n, ok := strings.CutPrefix(style, "Heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(n)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

func applyInlineFormat(text string, bold, italic bool) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	switch {
	case bold && italic:
		return "***" + text + "***"
	case bold:
		return "**" + text + "**"
	case italic:
		return "*" + text + "*"
	}
	return text
}

func attrVal(t xml.StartElement, localName string) string {
	for _, a := range t.Attr {
		if a.Name.Local == localName {
			return a.Value
		}
	}
	return ""
}
