package converter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
)

var (
	// ErrUnsupportedFormat is returned for extensions, schemes and source
	// kinds no parser handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrTooLarge is returned when a source exceeds the configured size
	// limit.
	ErrTooLarge = errors.New("source too large")
)

// FileConverter turns source documents into decks.
type FileConverter interface {
	ConvertFile(ctx context.Context, filePath string) (*deck.Deck, error)
	ConvertURI(ctx context.Context, uri string) (*deck.Deck, error)
	ConvertSource(ctx context.Context, kind, content string) (*deck.Deck, error)
	GetConversionInfo(ctx context.Context) string
}

// Converter routes every source through the native Go parsers.
// HTTP/HTTPS URIs are fetched and parsed by content type.
// file:// URIs are resolved to local paths.
type Converter struct {
	native *formatConverter
	cfg    *config.Config
}

var _ FileConverter = (*Converter)(nil)

// NewConverter creates a Converter. A nil cfg loads the environment.
func NewConverter(cfg *config.Config) *Converter {
	if cfg == nil {
		cfg = config.Load()
	}
	return &Converter{
		native: newFormatConverter(cfg.MaxFileSizeBytes),
		cfg:    cfg,
	}
}

// ConvertFile parses a local file into a deck. Relative image paths are
// resolved against the file's directory.
func (c *Converter) ConvertFile(ctx context.Context, filePath string) (*deck.Deck, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}
	if info.Size() > c.cfg.MaxFileSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), c.cfg.MaxFileSizeBytes)
	}
	if !c.native.CanConvert(filePath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
	d, err := c.native.ConvertFile(filePath)
	if err != nil {
		return nil, err
	}
	resolveImages(ctx, d, filepath.Dir(filePath))
	return d, nil
}

// ConvertURI parses a URI into a deck.
// Supported schemes: file://, http://, https://
func (c *Converter) ConvertURI(ctx context.Context, uri string) (*deck.Deck, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid URI: %s", uri)
	}

	switch u.Scheme {
	case "file":
		return c.ConvertFile(ctx, u.Path)
	case "http", "https":
		d, err := c.native.ConvertURL(ctx, uri)
		if err != nil {
			return nil, err
		}
		resolveImages(ctx, d, "")
		return d, nil
	default:
		return nil, fmt.Errorf("%w: URI scheme %q (expected file, http, or https)", ErrUnsupportedFormat, u.Scheme)
	}
}

// ConvertSource parses inline content of the given kind: "markdown",
// "json" or "html". Image paths stay relative to the working directory.
func (c *Converter) ConvertSource(ctx context.Context, kind, content string) (*deck.Deck, error) {
	if int64(len(content)) > c.cfg.MaxFileSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(content), c.cfg.MaxFileSizeBytes)
	}
	var (
		d   *deck.Deck
		err error
	)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "markdown", "md":
		d = ParseMarkdown(content)
	case "json":
		d, err = deck.Decode(strings.NewReader(content))
	case "html", "htm":
		d, err = c.native.convertHTML(content)
	default:
		return nil, fmt.Errorf("%w: source kind %q", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, err
	}
	resolveImages(ctx, d, "")
	return d, nil
}

// GetConversionInfo returns a Markdown summary of supported formats and config.
func (c *Converter) GetConversionInfo(_ context.Context) string {
	fmts := c.native.SupportedFormats()
	sort.Strings(fmts)

	return fmt.Sprintf(`# Slidesmith Source Info

## Supported Sources (native Go)
%s

## Markdown decks
- Slides split on a line holding only `+"`---`"+`, else before each level-1 heading
- Deck header/footer: `+"`_COMMENT_START_ header: '…' footer: '…' _COMMENT_END_`"+`
- Per slide: `+"`_class: <layout class>`"+` and `+"`Speaker notes: …`"+` comment blocks
- Layout classes: %s

## Documents
- DOCX: Title/Heading 1 starts a slide, a Heading 2 under it is the subtitle, tables become table slides
- XLSX: one table slide per sheet; CSV: one table slide
- HTML: converted to Markdown, `+"`<hr>`"+` splits slides

## Configuration
- Max file size: %d MB
- Layouts file: %s`,
		"- "+strings.Join(fmts, "\n- "),
		strings.Join(deck.Classes, ", "),
		c.cfg.MaxFileSizeMB(),
		orDefault(c.cfg.LayoutsFile, "built-in defaults"),
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
