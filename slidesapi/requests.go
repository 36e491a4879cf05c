// Package slidesapi serialises compiled text operations and fitted geometry
// into Google Slides batch-update requests, and reads fetched pages back into
// placeholder regions and measured table metrics.
package slidesapi

import (
	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/richtext"
)

const (
	unitEMU    = "EMU"
	unitPT     = "PT"
	fixedRange = "FIXED_RANGE"
)

// Requests maps each operation to one request, preserving order.
func Requests(ops []richtext.Operation) []*slides.Request {
	reqs := make([]*slides.Request, 0, len(ops))
	for _, op := range ops {
		if r := Request(op, nil); r != nil {
			reqs = append(reqs, r)
		}
	}
	return reqs
}

// CellRequests maps the operations compiled for one table cell. Requests
// address the cell by location; text ranges are relative to the cell text.
func CellRequests(ops []richtext.Operation, row, col int) []*slides.Request {
	loc := &slides.TableCellLocation{RowIndex: int64(row), ColumnIndex: int64(col)}
	reqs := make([]*slides.Request, 0, len(ops))
	for _, op := range ops {
		if r := Request(op, loc); r != nil {
			reqs = append(reqs, r)
		}
	}
	return reqs
}

// Request converts a single operation. cell is nil for shapes.
func Request(op richtext.Operation, cell *slides.TableCellLocation) *slides.Request {
	// The service rejects ranged requests over no text.
	if r, ok := richtext.OpRange(op); ok && r.Len() == 0 {
		return nil
	}
	switch o := op.(type) {
	case richtext.InsertText:
		return &slides.Request{InsertText: &slides.InsertTextRequest{
			ObjectId:       o.ObjectID,
			CellLocation:   cell,
			InsertionIndex: 0,
			Text:           o.Text,
		}}
	case richtext.ApplyStyle:
		style, fields := &slides.TextStyle{}, ""
		switch {
		case o.Bold && o.Italic:
			style.Bold, style.Italic, fields = true, true, "bold,italic"
		case o.Bold:
			style.Bold, fields = true, "bold"
		case o.Italic:
			style.Italic, fields = true, "italic"
		default:
			return nil
		}
		return &slides.Request{UpdateTextStyle: &slides.UpdateTextStyleRequest{
			ObjectId:     o.ObjectID,
			CellLocation: cell,
			TextRange:    textRange(o.Range),
			Style:        style,
			Fields:       fields,
		}}
	case richtext.ApplyBullet:
		return &slides.Request{CreateParagraphBullets: &slides.CreateParagraphBulletsRequest{
			ObjectId:     o.ObjectID,
			CellLocation: cell,
			TextRange:    textRange(o.Range),
			BulletPreset: o.Preset,
		}}
	case richtext.ApplyIndent:
		return &slides.Request{UpdateParagraphStyle: &slides.UpdateParagraphStyleRequest{
			ObjectId:     o.ObjectID,
			CellLocation: cell,
			TextRange:    textRange(o.Range),
			Style: &slides.ParagraphStyle{
				IndentStart: &slides.Dimension{Magnitude: o.MagnitudePt, Unit: unitPT},
			},
			Fields: "indentStart",
		}}
	}
	return nil
}

func textRange(r richtext.Range) *slides.Range {
	start, end := int64(r.Start), int64(r.End)
	return &slides.Range{Type: fixedRange, StartIndex: &start, EndIndex: &end}
}
