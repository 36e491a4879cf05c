package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
)

// nativeExts are all source formats handled in Go.
var nativeExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".json":     true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".xlsx":     true,
	".csv":      true,
}

// formatConverter parses files and URLs into decks.
type formatConverter struct {
	htmlConverter *md.Converter
	client        *http.Client
	maxBytes      int64
}

func newFormatConverter(maxBytes int64) *formatConverter {
	conv := md.NewConverter("", true, &md.Options{
		HorizontalRule:  "---",
		StrongDelimiter: "**",
		EmDelimiter:     "*",
	})
	conv.Use(plugin.Table())
	return &formatConverter{
		htmlConverter: conv,
		client:        http.DefaultClient,
		maxBytes:      maxBytes,
	}
}

// CanConvert returns true when the file extension is handled natively.
func (c *formatConverter) CanConvert(filePath string) bool {
	return nativeExts[strings.ToLower(filepath.Ext(filePath))]
}

// SupportedFormats returns supported extensions without the leading dot.
func (c *formatConverter) SupportedFormats() []string {
	out := make([]string, 0, len(nativeExts))
	for ext := range nativeExts {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	return out
}

// ConvertFile reads filePath and returns its deck.
func (c *formatConverter) ConvertFile(filePath string) (*deck.Deck, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !nativeExts[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	switch ext {
	case ".docx":
		return convertDOCX(filePath)
	case ".xlsx":
		return convertXLSX(filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	switch ext {
	case ".md", ".markdown", ".txt":
		return ParseMarkdown(string(data)), nil
	case ".json":
		return deck.Decode(bytes.NewReader(data))
	case ".html", ".htm":
		return c.convertHTML(string(data))
	case ".csv":
		return convertCSV(filePath, data)
	default:
		return nil, fmt.Errorf("%w: unhandled extension %s", ErrUnsupportedFormat, ext)
	}
}

// ConvertURL fetches an HTTP/HTTPS URL and parses the body by content type:
// JSON as a deck, HTML through Markdown, anything else as Markdown.
func (c *formatConverter) ConvertURL(ctx context.Context, url string) (*deck.Deck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, c.maxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return deck.Decode(bytes.NewReader(body))
	case mediaType == "text/html" || mediaType == "":
		return c.convertHTML(string(body))
	default:
		return ParseMarkdown(string(body)), nil
	}
}

func (c *formatConverter) convertHTML(html string) (*deck.Deck, error) {
	text, err := c.htmlConverter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}
	return ParseMarkdown(text), nil
}
