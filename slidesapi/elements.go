package slidesapi

import (
	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

// elementProperties places an element at box on page, truncating to whole
// EMU.
func elementProperties(pageID string, box geometry.Box) *slides.PageElementProperties {
	return &slides.PageElementProperties{
		PageObjectId: pageID,
		Size: &slides.Size{
			Width:  &slides.Dimension{Magnitude: float64(box.Width.Int()), Unit: unitEMU},
			Height: &slides.Dimension{Magnitude: float64(box.Height.Int()), Unit: unitEMU},
		},
		Transform: &slides.AffineTransform{
			ScaleX:     1,
			ScaleY:     1,
			TranslateX: float64(box.X.Int()),
			TranslateY: float64(box.Y.Int()),
			Unit:       unitEMU,
		},
	}
}

// CreateImage places the image at url inside box.
func CreateImage(objectID, pageID, url string, box geometry.Box) *slides.Request {
	return &slides.Request{CreateImage: &slides.CreateImageRequest{
		ObjectId:          objectID,
		Url:               url,
		ElementProperties: elementProperties(pageID, box),
	}}
}

// CreateTable creates an empty rows x cols table filling box.
func CreateTable(objectID, pageID string, rows, cols int, box geometry.Box) *slides.Request {
	return &slides.Request{CreateTable: &slides.CreateTableRequest{
		ObjectId:          objectID,
		Rows:              int64(rows),
		Columns:           int64(cols),
		ElementProperties: elementProperties(pageID, box),
	}}
}

// MiddleAlignCells vertically centres every cell of a rows x cols table.
func MiddleAlignCells(tableID string, rows, cols int) *slides.Request {
	return &slides.Request{UpdateTableCellProperties: &slides.UpdateTableCellPropertiesRequest{
		ObjectId: tableID,
		TableRange: &slides.TableRange{
			Location:   &slides.TableCellLocation{RowIndex: 0, ColumnIndex: 0},
			RowSpan:    int64(rows),
			ColumnSpan: int64(cols),
		},
		TableCellProperties: &slides.TableCellProperties{ContentAlignment: "MIDDLE"},
		Fields:              "contentAlignment",
	}}
}

// ColumnWidths sets each column's width. Columns narrower than the
// protocol's 32pt minimum are widened to it.
func ColumnWidths(tableID string, widths []geometry.EMU) []*slides.Request {
	const minColumn = 32 * geometry.EMUPerPoint
	reqs := make([]*slides.Request, 0, len(widths))
	for i, w := range widths {
		w = max(w, minColumn)
		reqs = append(reqs, &slides.Request{UpdateTableColumnProperties: &slides.UpdateTableColumnPropertiesRequest{
			ObjectId:      tableID,
			ColumnIndices: []int64{int64(i)},
			TableColumnProperties: &slides.TableColumnProperties{
				ColumnWidth: &slides.Dimension{Magnitude: float64(w.Int()), Unit: unitEMU},
			},
			Fields: "columnWidth",
		}})
	}
	return reqs
}

// FontSize sets fontPt on every non-empty cell of grid. Styling an empty
// cell is rejected by the protocol.
func FontSize(tableID string, grid [][]string, fontPt int) []*slides.Request {
	var reqs []*slides.Request
	for r, row := range grid {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			reqs = append(reqs, &slides.Request{UpdateTextStyle: &slides.UpdateTextStyleRequest{
				ObjectId:     tableID,
				CellLocation: &slides.TableCellLocation{RowIndex: int64(r), ColumnIndex: int64(c)},
				TextRange:    &slides.Range{Type: "ALL"},
				Style: &slides.TextStyle{
					FontSize: &slides.Dimension{Magnitude: float64(fontPt), Unit: unitPT},
				},
				Fields: "fontSize",
			}})
		}
	}
	return reqs
}

// PlaceholderMapping assigns objectID to the layout placeholder of the
// given type and index when a slide is created.
type PlaceholderMapping struct {
	Type     string
	Index    int
	ObjectID string
}

// CreateSlide inserts a slide based on layoutID at index. A negative index
// appends.
func CreateSlide(objectID, layoutID string, index int, mappings []PlaceholderMapping) *slides.Request {
	req := &slides.CreateSlideRequest{
		ObjectId:             objectID,
		SlideLayoutReference: &slides.LayoutReference{LayoutId: layoutID},
	}
	if index >= 0 {
		req.InsertionIndex = int64(index)
		req.ForceSendFields = []string{"InsertionIndex"}
	}
	for _, m := range mappings {
		req.PlaceholderIdMappings = append(req.PlaceholderIdMappings, &slides.LayoutPlaceholderIdMapping{
			ObjectId:          m.ObjectID,
			LayoutPlaceholder: &slides.Placeholder{Type: m.Type, Index: int64(m.Index)},
		})
	}
	return &slides.Request{CreateSlide: req}
}

// ReplaceAllText replaces every case-insensitive occurrence of find on the
// given pages, or on every page when none are named.
func ReplaceAllText(find, replace string, pageIDs ...string) *slides.Request {
	return &slides.Request{ReplaceAllText: &slides.ReplaceAllTextRequest{
		ContainsText:  &slides.SubstringMatchCriteria{Text: find},
		ReplaceText:   replace,
		PageObjectIds: pageIDs,
	}}
}
