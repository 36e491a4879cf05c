// Package deck is the parsed form of a presentation source: an ordered list
// of slides with title, body lines, an optional table or image and speaker
// notes, plus deck-wide header and footer text.
package deck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
)

// Layout classes a slide can request.
const (
	ClassTitle           = "title"
	ClassClosing         = "closing"
	ClassDefault         = "default"
	ClassColumns         = "columns"
	ClassImageFullscreen = "image_fullscreen"
	ClassImageRight      = "image_right"
	ClassTableFullscreen = "table_fullscreen"
)

// Classes lists every known layout class.
var Classes = []string{
	ClassTitle, ClassClosing, ClassDefault, ClassColumns,
	ClassImageFullscreen, ClassImageRight, ClassTableFullscreen,
}

// Deck is a whole presentation source.
type Deck struct {
	WorkshopTitle string  `json:"workshopTitle,omitempty"`
	Globals       Globals `json:"globals"`
	Slides        []Slide `json:"slides"`
}

// Globals is text repeated on every content slide.
type Globals struct {
	Header string `json:"header,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// Slide is one slide's content.
type Slide struct {
	LayoutClass  string                 `json:"layoutClass,omitempty"`
	Title        string                 `json:"title,omitempty"`
	Subtitle     string                 `json:"subtitle,omitempty"`
	Body         []string               `json:"body,omitempty"`
	Table        *geometry.TableContent `json:"table,omitempty"`
	Image        *ImageRef              `json:"imageReference,omitempty"`
	SpeakerNotes string                 `json:"speakerNotes,omitempty"`
}

// Class returns the slide's layout class, "default" when unset.
func (s Slide) Class() string {
	if c := strings.TrimSpace(s.LayoutClass); c != "" {
		return c
	}
	return ClassDefault
}

// ImageRef points at an image for a slide. URL is what the presentation
// service fetches; SourceFile and PageNumber locate the original for aspect
// probing.
type ImageRef struct {
	SourceFile  string  `json:"sourceFile,omitempty"`
	PageNumber  int     `json:"pageNumber,omitempty"`
	URL         string  `json:"url,omitempty"`
	AspectRatio float64 `json:"aspectRatio,omitempty"`
}

// Aspect returns the recorded aspect ratio, or the 4:3 default.
func (r *ImageRef) Aspect() float64 {
	if r == nil || r.AspectRatio <= 0 {
		return geometry.DefaultAspect
	}
	return r.AspectRatio
}

// Decode reads a JSON deck. Body may be a list of lines or a single
// newline-separated string.
func Decode(r io.Reader) (*Deck, error) {
	var raw struct {
		Deck
		Slides []struct {
			Slide
			Body json.RawMessage `json:"body,omitempty"`
		} `json:"slides"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}

	d := raw.Deck
	d.Slides = make([]Slide, 0, len(raw.Slides))
	for i, rs := range raw.Slides {
		s := rs.Slide
		body, err := decodeBody(rs.Body)
		if err != nil {
			return nil, fmt.Errorf("decode deck: slide %d body: %w", i+1, err)
		}
		s.Body = body
		d.Slides = append(d.Slides, s)
	}
	if d.Globals.Header == "" {
		d.Globals.Header = d.WorkshopTitle
	}
	return &d, nil
}

func decodeBody(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return lines, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return strings.Split(s, "\n"), nil
}
