package converter

import (
	"math"
	"testing"
)

func TestPDFPageAspect(t *testing.T) {
	path := makePDF(t, [4]int{0, 0, 612, 792}, &[4]int{0, 0, 800, 400}, nil)

	got, err := pdfPageAspect(path, 1)
	assertNoErr(t, err)
	if got != 2 {
		t.Errorf("page 1 aspect = %v, want 2", got)
	}

	got, err = pdfPageAspect(path, 2)
	assertNoErr(t, err)
	if math.Abs(got-612.0/792.0) > 1e-9 {
		t.Errorf("page 2 aspect = %v, want inherited 612/792", got)
	}

	got, err = pdfPageAspect(path, 0)
	assertNoErr(t, err)
	if got != 2 {
		t.Errorf("page 0 should select the first page, got %v", got)
	}
}

func TestPDFPageAspect_OutOfRange(t *testing.T) {
	path := makePDF(t, [4]int{0, 0, 612, 792}, nil)
	_, err := pdfPageAspect(path, 3)
	assertErr(t, err)
}

func TestPDFPageAspect_FileNotFound(t *testing.T) {
	_, err := pdfPageAspect("/no/such/file.pdf", 1)
	assertErr(t, err)
}

func TestPDFPageAspect_NotAPDF(t *testing.T) {
	path := writeTempFile(t, "fake.pdf", "this is not a PDF")
	_, err := pdfPageAspect(path, 1)
	assertErr(t, err)
}
