package converter

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

func TestProbeAspect_PNG(t *testing.T) {
	got, err := ProbeAspect(makePNG(t, "wide.png", 400, 100), 0)
	assertNoErr(t, err)
	if got != 4 {
		t.Errorf("aspect = %v, want 4", got)
	}
}

func TestProbeAspect_BMP(t *testing.T) {
	var buf bytes.Buffer
	assertNoErr(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 50, 100))))
	path := writeTempFile(t, "tall.bmp", buf.String())

	got, err := ProbeAspect(path, 0)
	assertNoErr(t, err)
	if got != 0.5 {
		t.Errorf("aspect = %v, want 0.5", got)
	}
}

func TestProbeAspect_PDF(t *testing.T) {
	path := makePDF(t, [4]int{0, 0, 300, 100}, nil)
	got, err := ProbeAspect(path, 1)
	assertNoErr(t, err)
	if got != 3 {
		t.Errorf("aspect = %v, want 3", got)
	}
}

func TestProbeAspect_Errors(t *testing.T) {
	_, err := ProbeAspect("/no/such/image.png", 0)
	assertErr(t, err)

	_, err = ProbeAspect(writeTempFile(t, "junk.png", "not an image"), 0)
	assertErr(t, err)
}

func TestResolveImages(t *testing.T) {
	dir := t.TempDir()
	makePNGAt(t, filepath.Join(dir, "a.png"), 200, 100)

	d := &deck.Deck{Slides: []deck.Slide{
		{Image: &deck.ImageRef{SourceFile: "a.png"}},
		{Image: &deck.ImageRef{SourceFile: "missing.png"}},
		{Image: &deck.ImageRef{SourceFile: "a.png", AspectRatio: 1.5}},
		{Image: &deck.ImageRef{URL: "https://example.com/x.png"}},
		{},
	}}
	resolveImages(context.Background(), d, dir)

	if got := d.Slides[0].Image.AspectRatio; got != 2 {
		t.Errorf("probed aspect = %v, want 2", got)
	}
	if got := d.Slides[1].Image.Aspect(); got != geometry.DefaultAspect {
		t.Errorf("missing source aspect = %v, want default", got)
	}
	if got := d.Slides[2].Image.AspectRatio; got != 1.5 {
		t.Errorf("recorded aspect overwritten: %v", got)
	}
}
