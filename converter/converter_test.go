package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
)

func newTestConverter() *Converter {
	return NewConverter(&config.Config{MaxFileSizeBytes: config.DefaultMaxFileBytes})
}

// ---- ConvertFile -----------------------------------------------------------

func TestConverter_ConvertFile_Markdown(t *testing.T) {
	path := writeTempFile(t, "deck.md", "# One\n- a\n---\n# Two\n- b\n")
	d, err := newTestConverter().ConvertFile(context.Background(), path)
	assertNoErr(t, err)
	if len(d.Slides) != 2 || d.Slides[1].Title != "Two" {
		t.Errorf("slides = %+v", d.Slides)
	}
}

func TestConverter_ConvertFile_HTML(t *testing.T) {
	path := writeTempFile(t, "page.html",
		`<html><body><h1>Hello</h1><p>World</p><hr><h1>Again</h1><p>More</p></body></html>`)
	d, err := newTestConverter().ConvertFile(context.Background(), path)
	assertNoErr(t, err)
	if len(d.Slides) != 2 {
		t.Fatalf("slides = %+v", d.Slides)
	}
	if d.Slides[0].Title != "Hello" || len(d.Slides[0].Body) == 0 || d.Slides[0].Body[0] != "World" {
		t.Errorf("slide 1 = %+v", d.Slides[0])
	}
}

func TestConverter_ConvertFile_CSV(t *testing.T) {
	path := writeTempFile(t, "sales.csv", "A,B\n1,2\n")
	d, err := newTestConverter().ConvertFile(context.Background(), path)
	assertNoErr(t, err)
	if len(d.Slides) != 1 {
		t.Fatalf("slides = %+v", d.Slides)
	}
	s := d.Slides[0]
	if s.Title != "sales" || s.Class() != deck.ClassTableFullscreen || s.Table.Headers[1] != "B" {
		t.Errorf("slide = %+v", s)
	}
}

func TestConverter_ConvertFile_JSON(t *testing.T) {
	dir := t.TempDir()
	makePNGAt(t, filepath.Join(dir, "chart.png"), 300, 100)
	path := filepath.Join(dir, "deck.json")
	assertNoErr(t, os.WriteFile(path, []byte(`{"workshopTitle":"W","slides":[
		{"title":"Chart","layoutClass":"image_fullscreen","imageReference":{"sourceFile":"chart.png","url":"https://x/c.png"}}]}`), 0o600))

	d, err := newTestConverter().ConvertFile(context.Background(), path)
	assertNoErr(t, err)
	if d.Globals.Header != "W" {
		t.Errorf("header = %q", d.Globals.Header)
	}
	if got := d.Slides[0].Image.AspectRatio; got != 3 {
		t.Errorf("aspect = %v, want 3", got)
	}
}

func TestConverter_ConvertFile_DOCX(t *testing.T) {
	path := makeDocx(t,
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr>`+
			`<w:r><w:t>Document Title</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Body text.</w:t></w:r></w:p>`+
			`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr>`+
			`<w:r><w:t>Second</w:t></w:r></w:p>`)
	d, err := newTestConverter().ConvertFile(context.Background(), path)
	assertNoErr(t, err)
	if len(d.Slides) != 2 || d.Slides[0].Title != "Document Title" || d.Slides[1].Title != "Second" {
		t.Fatalf("slides = %+v", d.Slides)
	}
	if len(d.Slides[0].Body) != 1 || d.Slides[0].Body[0] != "Body text." {
		t.Errorf("body = %q", d.Slides[0].Body)
	}
}

func TestConverter_ConvertFile_XLSX(t *testing.T) {
	path := makeXLSX(t, "Prices", [][]string{
		{"Product", "Price"},
		{"Widget", "9.99"},
	})
	d, err := newTestConverter().ConvertFile(context.Background(), path)
	assertNoErr(t, err)
	if len(d.Slides) != 1 || d.Slides[0].Title != "Prices" || d.Slides[0].Table.Rows[0][0] != "Widget" {
		t.Errorf("slides = %+v", d.Slides)
	}
}

func TestConverter_ConvertFile_NotFound(t *testing.T) {
	_, err := newTestConverter().ConvertFile(context.Background(), "/no/such/file.md")
	assertErr(t, err)
}

func TestConverter_ConvertFile_UnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "deck.pptx", "not a real pptx")
	_, err := newTestConverter().ConvertFile(context.Background(), path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConverter_ConvertFile_TooLarge(t *testing.T) {
	path := writeTempFile(t, "big.md", "x")

	// Override the limit to 0 so any non-empty file triggers the check.
	conv := newTestConverter()
	conv.cfg.MaxFileSizeBytes = 0

	_, err := conv.ConvertFile(context.Background(), path)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

// ---- ConvertURI ------------------------------------------------------------

func TestConverter_ConvertURI_FileScheme(t *testing.T) {
	path := writeTempFile(t, "deck.md", "# via file URI\n")
	uri := fmt.Sprintf("file://%s", path)
	d, err := newTestConverter().ConvertURI(context.Background(), uri)
	assertNoErr(t, err)
	if d.Slides[0].Title != "via file URI" {
		t.Errorf("slides = %+v", d.Slides)
	}
}

func TestConverter_ConvertURI_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/deck.json":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			fmt.Fprint(w, `{"slides":[{"title":"From JSON"}]}`)
		case "/deck.md":
			w.Header().Set("Content-Type", "text/markdown")
			fmt.Fprint(w, "# From Markdown\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	conv := newTestConverter()
	d, err := conv.ConvertURI(context.Background(), srv.URL+"/deck.json")
	assertNoErr(t, err)
	if d.Slides[0].Title != "From JSON" {
		t.Errorf("json slides = %+v", d.Slides)
	}

	d, err = conv.ConvertURI(context.Background(), srv.URL+"/deck.md")
	assertNoErr(t, err)
	if d.Slides[0].Title != "From Markdown" {
		t.Errorf("markdown slides = %+v", d.Slides)
	}

	_, err = conv.ConvertURI(context.Background(), srv.URL+"/missing")
	assertErr(t, err)
}

func TestConverter_ConvertURI_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "# a long enough body\n")
	}))
	defer srv.Close()

	conv := NewConverter(&config.Config{MaxFileSizeBytes: 4})
	_, err := conv.ConvertURI(context.Background(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestConverter_ConvertURI_UnsupportedScheme(t *testing.T) {
	_, err := newTestConverter().ConvertURI(context.Background(), "ftp://example.com/file.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestConverter_ConvertURI_InvalidURI(t *testing.T) {
	_, err := newTestConverter().ConvertURI(context.Background(), "://bad")
	assertErr(t, err)
}

// ---- ConvertSource ---------------------------------------------------------

func TestConverter_ConvertSource(t *testing.T) {
	conv := newTestConverter()

	d, err := conv.ConvertSource(context.Background(), "markdown", "# Inline\n")
	assertNoErr(t, err)
	if d.Slides[0].Title != "Inline" {
		t.Errorf("markdown = %+v", d.Slides)
	}

	d, err = conv.ConvertSource(context.Background(), "JSON", `{"slides":[{"title":"J","body":"a\nb"}]}`)
	assertNoErr(t, err)
	if len(d.Slides[0].Body) != 2 {
		t.Errorf("json body = %q", d.Slides[0].Body)
	}

	d, err = conv.ConvertSource(context.Background(), "html", "<h1>H</h1><p>p</p>")
	assertNoErr(t, err)
	if d.Slides[0].Title != "H" {
		t.Errorf("html = %+v", d.Slides)
	}

	_, err = conv.ConvertSource(context.Background(), "yaml", "a: b")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

// ---- GetConversionInfo -----------------------------------------------------

func TestConverter_GetConversionInfo_ContainsFormats(t *testing.T) {
	out := newTestConverter().GetConversionInfo(context.Background())
	for _, f := range []string{"md", "html", "csv", "json", "docx", "xlsx", "table_fullscreen"} {
		assertContains(t, out, f)
	}
}

func TestConverter_GetConversionInfo_NotEmpty(t *testing.T) {
	out := newTestConverter().GetConversionInfo(context.Background())
	assertNotEmpty(t, out)
}

// ---- helpers ---------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	path := writeTempFile(t, "hello.txt", "hello")
	data, err := os.ReadFile(path)
	assertNoErr(t, err)
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", string(data), "hello")
	}
}

func TestMakeDocx_CreatesValidZip(t *testing.T) {
	path := makeDocx(t, `<w:p><w:r><w:t>test</w:t></w:r></w:p>`)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
	if filepath.Ext(path) != ".docx" {
		t.Errorf("expected .docx extension, got %s", filepath.Ext(path))
	}
}
