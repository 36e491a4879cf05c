package geometry

import (
	"fmt"
	"math"
	"strings"
)

// FitMode selects which axis an image is pinned on.
type FitMode int

const (
	// Fullscreen pins the image to the top of the area, centered
	// horizontally.
	Fullscreen FitMode = iota
	// LeftHalf pins the image to the left edge, centered vertically.
	LeftHalf
)

func (m FitMode) String() string {
	if m == LeftHalf {
		return "left_half"
	}
	return "fullscreen"
}

// ParseFitMode accepts "fullscreen" and "left_half".
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fullscreen":
		return Fullscreen, nil
	case "left_half", "left-half", "left":
		return LeftHalf, nil
	}
	return Fullscreen, fmt.Errorf("%w: unknown fit mode %q", ErrInvalidGeometry, s)
}

// DefaultAspect is used when an image's aspect ratio cannot be read.
const DefaultAspect = 4.0 / 3.0

// FitImage returns the largest box with the given aspect ratio that fits
// inside area. The height is tried first and the width caps it.
func FitImage(aspect float64, area Box, mode FitMode) (Box, error) {
	if math.IsNaN(aspect) || math.IsInf(aspect, 0) || aspect <= 0 {
		return Box{}, fmt.Errorf("%w: aspect ratio must be positive, got %g", ErrInvalidGeometry, aspect)
	}
	if !area.Valid() {
		return Box{}, fmt.Errorf("%w: fit area %s has no room", ErrInvalidGeometry, area)
	}

	h := area.Height
	w := h * EMU(aspect)
	if w > area.Width {
		w = area.Width
		h = w / EMU(aspect)
	}

	out := Box{Width: w, Height: h}
	switch mode {
	case LeftHalf:
		out.X = area.X
		out.Y = area.Y + (area.Height-h)/2
	default:
		out.X = area.X + (area.Width-w)/2
		out.Y = area.Y
	}
	return out, nil
}

// FullscreenArea is the full page width between the title's bottom edge and
// the footer's top edge. It falls back to the whole page when the title and
// footer leave no room.
func FullscreenArea(rb RoleBounds, page Page) Box {
	top := rb.TitleBottom()
	area := Box{X: 0, Y: top, Width: page.Width, Height: rb.FooterTop(page) - top}
	if !area.Valid() {
		return page.Box()
	}
	return area
}

// SideArea is the strip left of the main content: from the title's left edge
// to the main content's left edge, spanning the main content's height.
//
// The main content is the first main-content subtitle below the title, else
// the first body region, else the page below the title. When that leaves no
// width the left half of the page below the title is used.
func SideArea(rb RoleBounds, page Page) Box {
	titleLeft := EMU(0)
	if rb.Title.OK {
		titleLeft = rb.Title.X
	}
	top := rb.TitleBottom()

	main := Box{X: 0, Y: top, Width: page.Width, Height: page.Height - top}
	found := false
	for _, m := range rb.MainContent {
		if m.Y > top {
			main, found = m.Box, true
			break
		}
	}
	if !found && rb.Body.OK {
		main = rb.Body.Box
	}

	area := Box{X: titleLeft, Y: main.Y, Width: main.X - titleLeft, Height: main.Height}
	if area.Valid() {
		return area
	}
	area = Box{X: titleLeft, Y: top, Width: page.Width/2 - titleLeft, Height: page.Height - top}
	if area.Valid() {
		return area
	}
	return Box{Width: page.Width / 2, Height: page.Height}
}
