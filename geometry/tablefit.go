package geometry

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Table fit defaults.
const (
	DefaultStartFont      = 12
	DefaultMinFont        = 8
	DefaultRowHeightPerPt = EMU(25500)
	DefaultCharWidthEm    = 0.5
	DefaultSideMargin     = EMU(360000)
	DefaultSafetyMargin   = 0.05
)

// TableContent is a header row plus body rows of plain cell text.
type TableContent struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Cols returns the widest row's column count.
func (t TableContent) Cols() int {
	n := len(t.Headers)
	for _, r := range t.Rows {
		n = max(n, len(r))
	}
	return n
}

// RowCount counts the header row when there are headers.
func (t TableContent) RowCount() int {
	if len(t.Headers) > 0 {
		return len(t.Rows) + 1
	}
	return len(t.Rows)
}

// Grid returns every row, header first, padded to Cols.
func (t TableContent) Grid() [][]string {
	cols := t.Cols()
	grid := make([][]string, 0, t.RowCount())
	pad := func(r []string) []string {
		out := make([]string, cols)
		copy(out, r)
		return out
	}
	if len(t.Headers) > 0 {
		grid = append(grid, pad(t.Headers))
	}
	for _, r := range t.Rows {
		grid = append(grid, pad(r))
	}
	return grid
}

// TableFitOptions parameterises the row-height estimator.
type TableFitOptions struct {
	StartFont int `json:"startFont"`
	MinFont   int `json:"minFont"`
	// RowHeightPerPt is the height of one text line per point of font size.
	RowHeightPerPt EMU `json:"rowHeightPerPt"`
	// CharWidthEm is the average glyph width as a fraction of the font size.
	CharWidthEm float64 `json:"charWidthEm"`
	// CellPadding is subtracted from each side of a column before wrapping.
	CellPadding EMU `json:"cellPadding"`
}

// DefaultTableFitOptions returns 12pt down to 8pt, 25500 EMU per point of
// row height and half-em characters.
func DefaultTableFitOptions() TableFitOptions {
	return TableFitOptions{
		StartFont:      DefaultStartFont,
		MinFont:        DefaultMinFont,
		RowHeightPerPt: DefaultRowHeightPerPt,
		CharWidthEm:    DefaultCharWidthEm,
	}
}

func (o TableFitOptions) validate() error {
	switch {
	case o.MinFont <= 0:
		return fmt.Errorf("%w: minimum font must be positive, got %d", ErrInvalidGeometry, o.MinFont)
	case o.StartFont < o.MinFont:
		return fmt.Errorf("%w: start font %d below minimum %d", ErrInvalidGeometry, o.StartFont, o.MinFont)
	case o.RowHeightPerPt <= 0:
		return fmt.Errorf("%w: row height per point must be positive", ErrInvalidGeometry)
	case o.CharWidthEm <= 0:
		return fmt.Errorf("%w: character width must be positive", ErrInvalidGeometry)
	case o.CellPadding < 0:
		return fmt.Errorf("%w: cell padding must not be negative", ErrInvalidGeometry)
	}
	return nil
}

// TableFitResult is the chosen font size and the height it is expected to
// produce.
type TableFitResult struct {
	FontSizePt      int `json:"fontSizePt"`
	EstimatedHeight EMU `json:"estimatedHeight"`
	RowCount        int `json:"rowCount"`
	ColCount        int `json:"colCount"`
	// Fits is false when even the minimum font overflows the target.
	Fits bool `json:"fits"`
}

// CharsPerLine estimates how many characters fit on one line of a column
// at the given font size. It is at least 1.
func (o TableFitOptions) CharsPerLine(fontPt int, colWidth EMU) int {
	usable := colWidth - 2*o.CellPadding
	glyph := EMU(fontPt) * EMUPerPoint * EMU(o.CharWidthEm)
	if usable <= 0 || glyph <= 0 {
		return 1
	}
	return max(1, int(math.Floor(float64(usable/glyph))))
}

// RowLines returns the wrapped line count of the tallest cell in row.
func (o TableFitOptions) RowLines(row []string, widths []EMU, fontPt int) int {
	lines := 1
	for c, cell := range row {
		n := utf8.RuneCountInString(cell)
		if n == 0 || c >= len(widths) {
			continue
		}
		cpl := o.CharsPerLine(fontPt, widths[c])
		lines = max(lines, (n+cpl-1)/cpl)
	}
	return lines
}

// EstimateHeight sums row heights for grid at fontPt.
func (o TableFitOptions) EstimateHeight(grid [][]string, widths []EMU, fontPt int) EMU {
	rowH := EMU(fontPt) * o.RowHeightPerPt
	var total EMU
	for _, row := range grid {
		total += rowH * EMU(o.RowLines(row, widths, fontPt))
	}
	return total
}

// EstimateTableFit is the first sizing pass. It walks font sizes from
// StartFont down to MinFont and returns the first whose estimated height is
// within target. When none fits it returns MinFont with Fits false.
func EstimateTableFit(content TableContent, widths []EMU, target EMU, opts TableFitOptions) (TableFitResult, error) {
	return searchFont(content, widths, target, opts.StartFont, 1, opts)
}

// VerifyTable is the authoritative second pass, run once the table exists
// and its true row heights are known. If the measured total is within target
// the current font stays. Otherwise the estimator is scaled by how far it
// under-predicted at the current font and the search repeats from current
// downward.
func VerifyTable(content TableContent, widths []EMU, measuredRows []EMU, target EMU, current int, opts TableFitOptions) (TableFitResult, error) {
	if err := opts.validate(); err != nil {
		return TableFitResult{}, err
	}
	current = min(max(current, opts.MinFont), opts.StartFont)

	var measured EMU
	for _, h := range measuredRows {
		measured += h
	}
	if measured <= target {
		return TableFitResult{
			FontSizePt:      current,
			EstimatedHeight: measured,
			RowCount:        content.RowCount(),
			ColCount:        content.Cols(),
			Fits:            true,
		}, nil
	}

	ratio := 1.0
	if est := opts.EstimateHeight(content.Grid(), widths, current); est > 0 {
		ratio = max(1, float64(measured/est))
	}
	return searchFont(content, widths, target, current, ratio, opts)
}

func searchFont(content TableContent, widths []EMU, target EMU, from int, ratio float64, opts TableFitOptions) (TableFitResult, error) {
	if err := opts.validate(); err != nil {
		return TableFitResult{}, err
	}
	cols := content.Cols()
	if len(widths) != cols {
		return TableFitResult{}, fmt.Errorf("%w: %d column widths for %d columns", ErrInvalidGeometry, len(widths), cols)
	}

	grid := content.Grid()
	res := TableFitResult{RowCount: len(grid), ColCount: cols}
	for f := from; f >= opts.MinFont; f-- {
		h := opts.EstimateHeight(grid, widths, f) * EMU(ratio)
		if h <= target {
			res.FontSizePt, res.EstimatedHeight, res.Fits = f, h, true
			return res, nil
		}
	}
	res.FontSizePt = opts.MinFont
	res.EstimatedHeight = opts.EstimateHeight(grid, widths, opts.MinFont) * EMU(ratio)
	return res, nil
}

// ColumnWidths splits total across the columns in proportion to each
// column's longest cell, counting at least one character per column.
func ColumnWidths(content TableContent, total EMU) []EMU {
	cols := content.Cols()
	if cols == 0 {
		return nil
	}
	longest := make([]int, cols)
	for i := range longest {
		longest[i] = 1
	}
	for _, row := range content.Grid() {
		for c, cell := range row {
			longest[c] = max(longest[c], utf8.RuneCountInString(cell))
		}
	}
	sum := 0
	for _, n := range longest {
		sum += n
	}
	widths := make([]EMU, cols)
	for c, n := range longest {
		widths[c] = total * EMU(n) / EMU(sum)
	}
	return widths
}

// TableArea is the box a full-screen table is created in: the page width
// less a margin on each side, from the title's bottom edge to the footer's
// top edge (or the page bottom), shrunk by the safety fraction. Degenerate
// results fall back to the page below the top margin.
func TableArea(rb RoleBounds, page Page, sideMargin EMU, safety float64) Box {
	top := rb.TitleBottom()
	bottom := rb.FooterTop(page)
	if bottom <= top {
		bottom = page.Height
	}
	area := Box{
		X:      sideMargin,
		Y:      top,
		Width:  page.Width - 2*sideMargin,
		Height: (bottom - top) * EMU(1-safety),
	}
	if area.Valid() {
		return area
	}
	return Box{Width: page.Width, Height: page.Height * EMU(1-safety)}
}
