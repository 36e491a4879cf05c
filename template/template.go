// Package template reads slide layouts from a .pptx template: the page
// size, each layout's name and the geometry of its placeholders.
//
// PPTX files are ZIP archives. Layouts live at
// ppt/slideLayouts/slideLayoutN.xml and are returned in numeric order.
// Placeholders that carry no transform of their own inherit the matching
// placeholder of the slide master the layout points at.
package template

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

// ErrNoLayouts is returned when a template contains no slide layouts.
var ErrNoLayouts = errors.New("template: no slide layouts")

// maxPartBytes bounds a single XML part read into memory.
const maxPartBytes = 16 << 20

var (
	layoutRE = regexp.MustCompile(`^ppt/slideLayouts/slideLayout(\d+)\.xml$`)

	sldSzExpr = xpath.MustCompile(`//*[local-name()='sldSz']`)
	cSldExpr  = xpath.MustCompile(`//*[local-name()='cSld']`)
)

// Placeholder is one layout placeholder. Type uses the presentation
// service's names (TITLE, CENTERED_TITLE, SUBTITLE, BODY, PICTURE, FOOTER).
type Placeholder struct {
	Type   string          `json:"type"`
	Index  int             `json:"index"`
	Name   string          `json:"name,omitempty"`
	Region geometry.Region `json:"region"`
}

// Layout is a named slide layout. ID is the presentation-side object ID,
// known only once the template is bound to a live presentation.
type Layout struct {
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name"`
	Placeholders []Placeholder `json:"placeholders"`
}

// Regions returns the layout's placeholder regions.
func (l Layout) Regions() []geometry.Region {
	out := make([]geometry.Region, 0, len(l.Placeholders))
	for _, p := range l.Placeholders {
		out = append(out, p.Region)
	}
	return out
}

// Template is a parsed presentation template.
type Template struct {
	Page    geometry.Page `json:"page"`
	Layouts []Layout      `json:"layouts"`
}

// Layout finds a layout by name, falling back to a case-insensitive match.
func (t *Template) Layout(name string) (Layout, bool) {
	for _, l := range t.Layouts {
		if l.Name == name {
			return l, true
		}
	}
	for _, l := range t.Layouts {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Layout{}, false
}

// Names lists layout names in template order.
func (t *Template) Names() []string {
	names := make([]string, len(t.Layouts))
	for i, l := range t.Layouts {
		names[i] = l.Name
	}
	return names
}

// BindIDs sets layout object IDs from a name → ID map, as fetched from the
// presentation the template was uploaded to. Unmatched layouts keep their
// current ID.
func (t *Template) BindIDs(ids map[string]string) {
	for i := range t.Layouts {
		if id, ok := ids[t.Layouts[i].Name]; ok {
			t.Layouts[i].ID = id
		}
	}
}

// Read parses the .pptx template at filePath.
func Read(filePath string) (*Template, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", filePath, err)
	}
	defer func() { _ = zr.Close() }()
	return read(&zr.Reader)
}

// ReadFrom parses a .pptx template held in r.
func ReadFrom(r io.ReaderAt, size int64) (*Template, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	return read(zr)
}

func read(zr *zip.Reader) (*Template, error) {
	parts := make(map[string]*zip.File, len(zr.File))
	type layoutEntry struct {
		num  int
		name string
	}
	var entries []layoutEntry
	for _, f := range zr.File {
		parts[f.Name] = f
		if m := layoutRE.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			entries = append(entries, layoutEntry{n, f.Name})
		}
	}
	if len(entries) == 0 {
		return nil, ErrNoLayouts
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].num < entries[j].num })

	tmpl := &Template{Page: geometry.DefaultPage}
	if f, ok := parts["ppt/presentation.xml"]; ok {
		page, err := readPage(f)
		if err != nil {
			return nil, err
		}
		tmpl.Page = page
	}

	masters := make(map[string][]shape)
	for _, e := range entries {
		data, err := readPart(parts[e.name])
		if err != nil {
			return nil, err
		}
		layout, err := parseLayout(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.name, err)
		}

		masterPath, err := masterOf(parts, e.name)
		if err != nil {
			return nil, err
		}
		master, seen := masters[masterPath]
		if !seen && masterPath != "" {
			if f, ok := parts[masterPath]; ok {
				mdata, err := readPart(f)
				if err != nil {
					return nil, err
				}
				if master, err = parseShapes(bytes.NewReader(mdata)); err != nil {
					return nil, fmt.Errorf("parse %s: %w", masterPath, err)
				}
			}
			masters[masterPath] = master
		}

		layout.Placeholders = placeholders(layout.shapes, master)
		if layout.Name == "" {
			layout.Name = fmt.Sprintf("slideLayout%d", e.num)
		}
		tmpl.Layouts = append(tmpl.Layouts, layout.Layout)
	}
	return tmpl, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxPartBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func readPage(f *zip.File) (geometry.Page, error) {
	data, err := readPart(f)
	if err != nil {
		return geometry.Page{}, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return geometry.Page{}, fmt.Errorf("parse presentation.xml: %w", err)
	}
	node := xmlquery.QuerySelector(doc, sldSzExpr)
	if node == nil {
		return geometry.DefaultPage, nil
	}
	page := geometry.Page{
		Width:  geometry.EMU(attrInt(node.SelectAttr("cx"))),
		Height: geometry.EMU(attrInt(node.SelectAttr("cy"))),
	}
	if !page.Valid() {
		return geometry.DefaultPage, nil
	}
	return page, nil
}

type parsedLayout struct {
	Layout
	shapes []shape
}

func parseLayout(data []byte) (parsedLayout, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return parsedLayout{}, err
	}
	var out parsedLayout
	if node := xmlquery.QuerySelector(doc, cSldExpr); node != nil {
		out.Name = strings.TrimSpace(node.SelectAttr("name"))
	}
	out.shapes, err = parseShapes(bytes.NewReader(data))
	return out, err
}

// placeholders resolves layout shapes into placeholders, borrowing geometry
// from the master where the layout leaves it out.
func placeholders(layout, master []shape) []Placeholder {
	var out []Placeholder
	for _, s := range layout {
		typ, ok := serviceType(s.phType)
		if !ok {
			continue
		}
		if !s.hasXfrm {
			m, found := inherit(s, master)
			if !found {
				continue
			}
			s.xfrm, s.hasXfrm = m.xfrm, true
		}
		role, _ := geometry.ParseRole(typ)
		out = append(out, Placeholder{
			Type:  typ,
			Index: s.phIdx,
			Name:  s.name,
			Region: geometry.Region{
				Role:   role,
				X:      geometry.EMU(s.xfrm.x),
				Y:      geometry.EMU(s.xfrm.y),
				Width:  geometry.EMU(s.xfrm.cx),
				Height: geometry.EMU(s.xfrm.cy),
				ScaleX: flipScale(s.xfrm.flipH),
				ScaleY: flipScale(s.xfrm.flipV),
			},
		})
	}
	return out
}

// inherit finds the master placeholder a layout placeholder derives from:
// same type and index, then same type, then the master body for
// body-like placeholders.
func inherit(s shape, master []shape) (shape, bool) {
	want := masterType(s.phType)
	var byType *shape
	for i := range master {
		m := &master[i]
		if !m.hasXfrm || masterType(m.phType) != want {
			continue
		}
		if m.phIdx == s.phIdx {
			return *m, true
		}
		if byType == nil {
			byType = m
		}
	}
	if byType != nil {
		return *byType, true
	}
	return shape{}, false
}

// serviceType maps an OOXML placeholder type to the presentation service's
// name. Types with no content role are skipped.
func serviceType(ph string) (string, bool) {
	switch ph {
	case "title":
		return "TITLE", true
	case "ctrTitle":
		return "CENTERED_TITLE", true
	case "subTitle":
		return "SUBTITLE", true
	case "", "body", "obj":
		return "BODY", true
	case "pic":
		return "PICTURE", true
	case "ftr":
		return "FOOTER", true
	}
	return "", false
}

// masterType folds layout placeholder types onto the few a master defines.
func masterType(ph string) string {
	switch ph {
	case "title", "ctrTitle":
		return "title"
	case "", "body", "obj", "subTitle", "pic":
		return "body"
	}
	return ph
}

func flipScale(flip bool) float64 {
	if flip {
		return -1
	}
	return 1
}

func attrInt(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
