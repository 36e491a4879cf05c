package slidesapi

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

// ErrTableNotFound is returned by MeasuredTable when the page has no table
// with the requested ID.
var ErrTableNotFound = errors.New("slidesapi: table not found")

// emu converts a dimension to EMU. A nil dimension is zero.
func emu(d *slides.Dimension) geometry.EMU {
	if d == nil {
		return 0
	}
	if d.Unit == unitPT {
		return geometry.Pt(d.Magnitude)
	}
	return geometry.EMU(d.Magnitude)
}

// PageSize reads the presentation's page size, falling back to the default
// widescreen page.
func PageSize(p *slides.Presentation) geometry.Page {
	if p == nil || p.PageSize == nil {
		return geometry.DefaultPage
	}
	page := geometry.Page{Width: emu(p.PageSize.Width), Height: emu(p.PageSize.Height)}
	if !page.Valid() {
		return geometry.DefaultPage
	}
	return page
}

// RegionsFromPage converts the placeholder shapes of a fetched page into
// regions. Elements that are not placeholders of a known role are skipped.
func RegionsFromPage(page *slides.Page) []geometry.Region {
	if page == nil {
		return nil
	}
	var out []geometry.Region
	for _, el := range page.PageElements {
		if r, ok := placeholderRegion(el); ok {
			out = append(out, r)
		}
	}
	return out
}

func placeholderRegion(el *slides.PageElement) (geometry.Region, bool) {
	if el == nil || el.Shape == nil || el.Shape.Placeholder == nil {
		return geometry.Region{}, false
	}
	role, ok := geometry.ParseRole(el.Shape.Placeholder.Type)
	if !ok {
		return geometry.Region{}, false
	}
	r := geometry.Region{ObjectID: el.ObjectId, Role: role}
	if el.Size != nil {
		r.Width, r.Height = emu(el.Size.Width), emu(el.Size.Height)
	}
	if t := el.Transform; t != nil {
		scale := geometry.EMU(1)
		if t.Unit == unitPT {
			scale = geometry.EMUPerPoint
		}
		r.X, r.Y = geometry.EMU(t.TranslateX)*scale, geometry.EMU(t.TranslateY)*scale
		r.ScaleX, r.ScaleY = t.ScaleX, t.ScaleY
	}
	return r, true
}

// SpeakerNotesID returns the object ID of a slide's speaker notes shape, or
// "" when the page carries none.
func SpeakerNotesID(page *slides.Page) string {
	if page == nil || page.SlideProperties == nil || page.SlideProperties.NotesPage == nil {
		return ""
	}
	np := page.SlideProperties.NotesPage.NotesProperties
	if np == nil {
		return ""
	}
	return np.SpeakerNotesObjectId
}

// Measured is a rendered table as fetched back from the service.
type Measured struct {
	Content    geometry.TableContent `json:"content"`
	RowHeights []geometry.EMU         `json:"rowHeights"`
}

// Total returns the sum of the row heights.
func (m Measured) Total() geometry.EMU {
	var t geometry.EMU
	for _, h := range m.RowHeights {
		t += h
	}
	return t
}

// MeasuredTable extracts cell text and true row heights of tableID. The
// first row becomes the header row.
func MeasuredTable(page *slides.Page, tableID string) (Measured, error) {
	if page != nil {
		for _, el := range page.PageElements {
			if el == nil || el.ObjectId != tableID || el.Table == nil {
				continue
			}
			return measure(el.Table), nil
		}
	}
	return Measured{}, fmt.Errorf("%w: %q", ErrTableNotFound, tableID)
}

func measure(t *slides.Table) Measured {
	var m Measured
	for i, row := range t.TableRows {
		if row == nil {
			continue
		}
		m.RowHeights = append(m.RowHeights, emu(row.RowHeight))
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			cells = append(cells, cellText(cell))
		}
		if i == 0 {
			m.Content.Headers = cells
		} else {
			m.Content.Rows = append(m.Content.Rows, cells)
		}
	}
	return m
}

func cellText(c *slides.TableCell) string {
	if c == nil || c.Text == nil {
		return ""
	}
	var sb strings.Builder
	for _, te := range c.Text.TextElements {
		if te != nil && te.TextRun != nil {
			sb.WriteString(te.TextRun.Content)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
