package geometry

import (
	"fmt"
	"strings"
)

// Role is the declared purpose of a placeholder region.
type Role int

const (
	RoleUnknown Role = iota
	RoleTitle
	RoleSubtitle
	RoleBody
	RolePicture
	RoleFooter
)

var roleNames = map[Role]string{
	RoleUnknown:  "UNKNOWN",
	RoleTitle:    "TITLE",
	RoleSubtitle: "SUBTITLE",
	RoleBody:     "BODY",
	RolePicture:  "PICTURE",
	RoleFooter:   "FOOTER",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole maps a placeholder type name to a Role. CENTERED_TITLE is a
// title; matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TITLE", "CENTERED_TITLE":
		return RoleTitle, true
	case "SUBTITLE":
		return RoleSubtitle, true
	case "BODY":
		return RoleBody, true
	case "PICTURE":
		return RolePicture, true
	case "FOOTER":
		return RoleFooter, true
	}
	return RoleUnknown, false
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	role, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("%w: unknown placeholder role %q", ErrInvalidGeometry, b)
	}
	*r = role
	return nil
}

// Region is one placeholder as found on a page: its raw size and a
// transform that may scale it. A negative scale mirrors the region; only
// the magnitude affects its size.
type Region struct {
	ObjectID string  `json:"objectId,omitempty"`
	Role     Role    `json:"role"`
	X        EMU     `json:"x"`
	Y        EMU     `json:"y"`
	Width    EMU     `json:"width"`
	Height   EMU     `json:"height"`
	ScaleX   float64 `json:"scaleX,omitempty"`
	ScaleY   float64 `json:"scaleY,omitempty"`
}

// Box returns the region's effective bounds. A zero scale means the
// transform carried none and counts as 1.
func (r Region) Box() Box {
	return Box{
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width * EMU(effectiveScale(r.ScaleX)),
		Height: r.Height * EMU(effectiveScale(r.ScaleY)),
	}
}

func effectiveScale(s float64) float64 {
	if s == 0 {
		return 1
	}
	if s < 0 {
		return -s
	}
	return s
}
