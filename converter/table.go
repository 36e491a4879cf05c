package converter

// table.go: row grids from spreadsheets, CSV and DOCX into table content.

import (
	"strings"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

// rowsTable turns a grid into table content with the first kept row as the
// header. Blank rows are dropped and cells are trimmed; ok is false when
// nothing is left.
func rowsTable(rows [][]string) (*geometry.TableContent, bool) {
	var kept [][]string
	for _, row := range rows {
		cells := make([]string, len(row))
		blank := true
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
			if cells[i] != "" {
				blank = false
			}
		}
		if !blank {
			kept = append(kept, cells)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	return &geometry.TableContent{Headers: kept[0], Rows: kept[1:]}, true
}

// tableSlide builds a full-screen table slide from rows, header first.
func tableSlide(title string, rows [][]string) (deck.Slide, bool) {
	t, ok := rowsTable(rows)
	if !ok {
		return deck.Slide{}, false
	}
	return deck.Slide{LayoutClass: deck.ClassTableFullscreen, Title: title, Table: t}, true
}
