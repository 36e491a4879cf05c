// Package geometry resolves template placeholder regions into role bounds
// and fits images and tables into the space they leave free.
//
// Every length is an EMU (English Metric Unit, 914400 per inch). The
// functions here are pure: they never mutate their inputs and give the same
// output for the same input.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry reports a caller contract violation such as a
// non-positive box passed to an aspect fit.
var ErrInvalidGeometry = errors.New("geometry: invalid geometry")

// EMU is a length in English Metric Units.
type EMU float64

const (
	EMUPerPoint EMU = 12700
)

// Pt converts points to EMU.
func Pt(p float64) EMU { return EMU(p) * EMUPerPoint }

// Int truncates e to whole EMU, the precision the wire protocol accepts.
func (e EMU) Int() int64 { return int64(e) }

// Box is an axis-aligned rectangle. X and Y are the top-left corner.
type Box struct {
	X      EMU `json:"x"`
	Y      EMU `json:"y"`
	Width  EMU `json:"width"`
	Height EMU `json:"height"`
}

// Bottom returns Y+Height.
func (b Box) Bottom() EMU { return b.Y + b.Height }

// Valid reports whether b has finite coordinates and positive size.
func (b Box) Valid() bool {
	for _, v := range []EMU{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return b.Width > 0 && b.Height > 0
}

// Aspect returns Width/Height, or 0 for an invalid box.
func (b Box) Aspect() float64 {
	if !b.Valid() {
		return 0
	}
	return float64(b.Width / b.Height)
}

func (b Box) String() string {
	return fmt.Sprintf("{x=%d y=%d w=%d h=%d}", b.X.Int(), b.Y.Int(), b.Width.Int(), b.Height.Int())
}

// Page is the size of one slide.
type Page struct {
	Width  EMU `json:"width"`
	Height EMU `json:"height"`
}

// DefaultPage is the 16:9 widescreen page (10in x 5.625in).
var DefaultPage = Page{Width: 9144000, Height: 5143500}

// Box returns the whole page as a box at the origin.
func (p Page) Box() Box { return Box{Width: p.Width, Height: p.Height} }

// Valid reports whether both dimensions are positive.
func (p Page) Valid() bool { return p.Box().Valid() }
