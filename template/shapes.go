package template

// Streaming shape parser for layout and master parts.
//
// Key elements inside p:sp:
//   p:nvSpPr/p:cNvPr       shape id and name
//   p:nvSpPr/p:nvPr/p:ph   placeholder type and idx
//   p:spPr/a:xfrm          flipH/flipV, a:off (x,y), a:ext (cx,cy)
//
// Element names are compared on Name.Local, so the p: and a: namespaces
// need no registration.

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type xfrm struct {
	x, y, cx, cy int64
	flipH, flipV bool
}

type shape struct {
	name    string
	isPh    bool
	phType  string
	phIdx   int
	hasXfrm bool
	xfrm    xfrm
}

type shapeParser struct {
	stack  []string
	inSp   bool
	inXfrm bool
	cur    shape
	shapes []shape
}

func (p *shapeParser) push(name string) { p.stack = append(p.stack, name) }
func (p *shapeParser) pop() {
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// parent returns the element enclosing the current one.
func (p *shapeParser) parent() string {
	if len(p.stack) < 2 {
		return ""
	}
	return p.stack[len(p.stack)-2]
}

// parseShapes returns every placeholder shape in a slide, layout or master
// part, in document order.
func parseShapes(r io.Reader) ([]shape, error) {
	dec := xml.NewDecoder(r)
	p := &shapeParser{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse shapes: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.push(t.Name.Local)
			p.handleStart(t)
		case xml.EndElement:
			p.handleEnd(t.Name.Local)
			p.pop()
		}
	}
	return p.shapes, nil
}

func (p *shapeParser) handleStart(t xml.StartElement) {
	switch t.Name.Local {
	case "sp":
		p.inSp = true
		p.cur = shape{}
	case "cNvPr":
		if p.inSp {
			p.cur.name = attrVal(t, "name")
		}
	case "ph":
		if p.inSp && p.parent() == "nvPr" {
			p.cur.isPh = true
			p.cur.phType = attrVal(t, "type")
			p.cur.phIdx, _ = strconv.Atoi(attrVal(t, "idx"))
		}
	case "xfrm":
		if p.inSp && p.parent() == "spPr" {
			p.inXfrm = true
			p.cur.hasXfrm = true
			p.cur.xfrm.flipH = attrBool(t, "flipH")
			p.cur.xfrm.flipV = attrBool(t, "flipV")
		}
	case "off":
		if p.inXfrm {
			p.cur.xfrm.x = attrInt(attrVal(t, "x"))
			p.cur.xfrm.y = attrInt(attrVal(t, "y"))
		}
	case "ext":
		if p.inXfrm {
			p.cur.xfrm.cx = attrInt(attrVal(t, "cx"))
			p.cur.xfrm.cy = attrInt(attrVal(t, "cy"))
		}
	}
}

func (p *shapeParser) handleEnd(local string) {
	switch local {
	case "xfrm":
		p.inXfrm = false
	case "sp":
		if p.inSp && p.cur.isPh {
			p.shapes = append(p.shapes, p.cur)
		}
		p.inSp = false
	}
}

func attrVal(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrBool(t xml.StartElement, local string) bool {
	v := attrVal(t, local)
	return v == "1" || v == "true"
}
