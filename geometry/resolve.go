package geometry

import (
	"cmp"
	"slices"
)

// Bound is a resolved role box. OK is false when the role is absent, in
// which case Box is zero and callers fall back to page bounds.
type Bound struct {
	Box
	ObjectID string `json:"objectId,omitempty"`
	OK       bool   `json:"ok"`
}

// RoleBounds is the result of Resolve.
type RoleBounds struct {
	Title   Bound `json:"title"`
	Body    Bound `json:"body"` // top-most body region
	Picture Bound `json:"picture"`
	Header  Bound `json:"header"`
	Footer  Bound `json:"footer"`

	// Bodies holds every body region, left to right.
	Bodies []Bound `json:"bodies,omitempty"`
	// MainContent holds subtitle regions that are neither header nor
	// footer, top to bottom.
	MainContent []Bound `json:"mainContent,omitempty"`
}

// TitleBottom returns the bottom edge of the title, or 0 without one.
func (rb RoleBounds) TitleBottom() EMU {
	if !rb.Title.OK {
		return 0
	}
	return rb.Title.Bottom()
}

// FooterTop returns the top edge of the footer, or the page bottom without
// one.
func (rb RoleBounds) FooterTop(page Page) EMU {
	if !rb.Footer.OK {
		return page.Height
	}
	return rb.Footer.Y
}

// Resolve classifies regions by role.
//
// Subtitle regions are ordered by y. With two or more, the first is the
// header, the last the footer and any in between are main-content
// candidates. A lone subtitle strictly above the title is the header;
// otherwise, or when there is no title, it is main content. A declared
// footer region wins over a subtitle-derived one.
//
// Ties on y are broken by x, then object ID, so the result never depends
// on input order beyond those keys.
func Resolve(regions []Region) RoleBounds {
	sorted := slices.Clone(regions)
	slices.SortStableFunc(sorted, func(a, b Region) int {
		return cmp.Or(
			cmp.Compare(a.Y, b.Y),
			cmp.Compare(a.X, b.X),
			cmp.Compare(a.ObjectID, b.ObjectID),
		)
	})

	var rb RoleBounds
	var subtitles []Bound
	var footer Bound
	for _, r := range sorted {
		b := bound(r)
		switch r.Role {
		case RoleTitle:
			if !rb.Title.OK {
				rb.Title = b
			}
		case RoleBody:
			if !rb.Body.OK {
				rb.Body = b
			}
			rb.Bodies = append(rb.Bodies, b)
		case RolePicture:
			if !rb.Picture.OK {
				rb.Picture = b
			}
		case RoleFooter:
			if !footer.OK {
				footer = b
			}
		case RoleSubtitle:
			subtitles = append(subtitles, b)
		}
	}
	slices.SortStableFunc(rb.Bodies, func(a, b Bound) int {
		return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.Y, b.Y))
	})

	switch {
	case len(subtitles) >= 2:
		rb.Header = subtitles[0]
		rb.Footer = subtitles[len(subtitles)-1]
		rb.MainContent = subtitles[1 : len(subtitles)-1]
	case len(subtitles) == 1:
		if rb.Title.OK && subtitles[0].Y < rb.Title.Y {
			rb.Header = subtitles[0]
		} else {
			rb.MainContent = subtitles
		}
	}
	if len(rb.MainContent) == 0 {
		rb.MainContent = nil
	}
	if footer.OK {
		rb.Footer = footer
	}
	return rb
}

func bound(r Region) Bound {
	return Bound{Box: r.Box(), ObjectID: r.ObjectID, OK: true}
}
