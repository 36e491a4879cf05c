package converter

// pdf.go: page aspect ratio of a PDF page for image placement.
//
// Uses github.com/ledongthuc/pdf for parsing. The MediaBox is inheritable,
// so a page without its own box takes the nearest ancestor's.

import (
	"fmt"
	"math"

	"github.com/ledongthuc/pdf"
)

// pdfPageAspect returns width/height of page (1-based) in filePath. Page
// numbers below 1 select the first page.
func pdfPageAspect(filePath string, page int) (float64, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	if page < 1 {
		page = 1
	}
	if n := r.NumPage(); page > n {
		return 0, fmt.Errorf("pdf %s: page %d out of range (%d pages)", filePath, page, n)
	}

	p := r.Page(page)
	if p.V.IsNull() {
		return 0, fmt.Errorf("pdf %s: page %d not found", filePath, page)
	}

	box := mediaBox(p.V)
	if box.Len() != 4 {
		return 0, fmt.Errorf("pdf %s: page %d has no MediaBox", filePath, page)
	}
	w := math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
	h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("pdf %s: page %d has an empty MediaBox", filePath, page)
	}
	if rot := p.V.Key("Rotate").Int64(); rot%180 != 0 {
		w, h = h, w
	}
	return w / h, nil
}

func mediaBox(v pdf.Value) pdf.Value {
	for depth := 0; !v.IsNull() && depth < 32; depth++ {
		if box := v.Key("MediaBox"); !box.IsNull() {
			return box
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}
