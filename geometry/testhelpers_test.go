package geometry

import (
	"errors"
	"math"
	"testing"
)

func assertNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("error = %v, want ErrInvalidGeometry", err)
	}
}

func assertNear(t *testing.T, name string, got, want EMU) {
	t.Helper()
	if math.Abs(float64(got-want)) > 1e-6*math.Max(1, math.Abs(float64(want))) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertBox(t *testing.T, name string, got, want Box) {
	t.Helper()
	assertNear(t, name+".X", got.X, want.X)
	assertNear(t, name+".Y", got.Y, want.Y)
	assertNear(t, name+".Width", got.Width, want.Width)
	assertNear(t, name+".Height", got.Height, want.Height)
}

func region(role Role, id string, x, y, w, h EMU) Region {
	return Region{ObjectID: id, Role: role, X: x, Y: y, Width: w, Height: h, ScaleX: 1, ScaleY: 1}
}
