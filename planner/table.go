package planner

import (
	"fmt"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/richtext"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/slidesapi"
)

// TableCheck is what the verification pass needs once a planned table has
// been rendered.
type TableCheck struct {
	SlideID string                `json:"slideId"`
	TableID string                `json:"tableId"`
	Content geometry.TableContent `json:"content"`
	Widths  []geometry.EMU        `json:"widths"`
	Target  geometry.Box          `json:"target"`
	FontPt  int                   `json:"fontPt"`
	// Grid is the plain cell text as inserted, header row first.
	Grid [][]string `json:"grid"`
}

// planTable places a full-screen table below the title with column widths
// in proportion to content and an estimated font size. The header row is
// bold and every cell is vertically centred.
func (p *Planner) planTable(st *slideState, s deck.Slide) error {
	if s.Table == nil {
		return nil
	}
	content := *s.Table
	cols := content.Cols()
	if cols == 0 || len(content.Rows) == 0 {
		st.skipped("table", "table needs a header and at least one row")
		return nil
	}

	page := p.tmpl.Page
	if !st.rb.Title.OK {
		st.fallback(geometry.RoleTitle, "table placed from the top of the page")
	}
	area := geometry.TableArea(st.rb, page, p.opts.TableSideMargin, p.opts.TableSafety)
	area.X = (page.Width - area.Width) / 2

	widths := geometry.ColumnWidths(content, area.Width)
	fit, err := geometry.EstimateTableFit(content, widths, area.Height, p.opts.Table)
	if err != nil {
		return fmt.Errorf("fit table: %w", err)
	}
	if !fit.Fits {
		st.plan.Warnings = append(st.plan.Warnings, fmt.Sprintf(
			"slide %d: table overflows its area at the minimum %dpt font", st.plan.Index+1, fit.FontSizePt))
	}

	tableID := st.ids.id("table")
	grid := content.Grid()
	rows := len(grid)
	st.add(slidesapi.CreateTable(tableID, st.plan.SlideID, rows, cols, area))

	plain := make([][]string, rows)
	for r, row := range grid {
		plain[r] = make([]string, cols)
		for c, text := range row {
			st.add(p.cellRequests(tableID, r, c, text, r == 0 && len(content.Headers) > 0, plain)...)
		}
	}
	st.add(slidesapi.MiddleAlignCells(tableID, rows, cols))
	st.add(slidesapi.ColumnWidths(tableID, widths)...)
	st.add(slidesapi.FontSize(tableID, plain, fit.FontSizePt)...)

	st.plan.Table = &TableCheck{
		SlideID: st.plan.SlideID,
		TableID: tableID,
		Content: content,
		Widths:  widths,
		Target:  area,
		FontPt:  fit.FontSizePt,
		Grid:    plain,
	}
	return nil
}

// cellRequests compiles one cell and records its plain text in plain.
// Empty cells produce nothing.
func (p *Planner) cellRequests(tableID string, r, c int, text string, header bool, plain [][]string) []*slides.Request {
	compiled := p.compiler.CompileCell(tableID, text)
	if compiled.Empty() {
		return nil
	}
	plain[r][c] = compiled.Text
	reqs := slidesapi.CellRequests(compiled.Ops, r, c)
	if header {
		bold := richtext.ApplyStyle{ObjectID: tableID, Range: richtext.Range{End: compiled.Len()}, Bold: true}
		reqs = append(reqs, slidesapi.CellRequests([]richtext.Operation{bold}, r, c)...)
	}
	return reqs
}

// VerifyTable is the second fit pass: given the rendered table, it returns
// font-size requests when the table still overflows, or none when the
// planned font holds.
func VerifyTable(tc *TableCheck, measured slidesapi.Measured, opts geometry.TableFitOptions) ([]*slides.Request, geometry.TableFitResult, error) {
	content := tc.Content
	if measured.Content.Cols() == len(tc.Widths) && measured.Content.RowCount() == len(measured.RowHeights) {
		content = measured.Content
	}
	res, err := geometry.VerifyTable(content, tc.Widths, measured.RowHeights, tc.Target.Height, tc.FontPt, opts)
	if err != nil {
		return nil, res, fmt.Errorf("verify table %s: %w", tc.TableID, err)
	}
	if res.FontSizePt >= tc.FontPt {
		return nil, res, nil
	}
	grid := tc.Grid
	if len(grid) == 0 {
		grid = content.Grid()
	}
	return slidesapi.FontSize(tc.TableID, grid, res.FontSizePt), res, nil
}
