package converter

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/logging"
)

// ProbeAspect returns the width/height ratio of an image file, or of one
// page of a PDF. page is ignored for raster images.
func ProbeAspect(path string, page int) (float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfPageAspect(path, page)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("decode image %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("%s image %s has no size", format, path)
	}
	return float64(cfg.Width) / float64(cfg.Height), nil
}

// resolveImages fills missing aspect ratios from local source files.
// Unreadable sources keep the default aspect and are logged.
func resolveImages(ctx context.Context, d *deck.Deck, baseDir string) {
	for i := range d.Slides {
		ref := d.Slides[i].Image
		if ref == nil || ref.AspectRatio > 0 || ref.SourceFile == "" {
			continue
		}
		path := ref.SourceFile
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		aspect, err := ProbeAspect(path, ref.PageNumber)
		if err != nil {
			reason := err.Error()
			if errors.Is(err, os.ErrNotExist) {
				reason = "source file not found"
			}
			logging.ContentSkipped(ctx, i+1, "image aspect", reason)
			continue
		}
		ref.AspectRatio = aspect
	}
}
