package richtext

import "fmt"

// Range is a half-open [Start, End) offset range into an object's own text,
// counted in UTF-16 code units.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns End-Start.
func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// OpKind tags the concrete type of an Operation.
type OpKind int

const (
	OpInsertText OpKind = iota + 1
	OpApplyStyle
	OpApplyBullet
	OpApplyIndent
)

func (k OpKind) String() string {
	switch k {
	case OpInsertText:
		return "insertText"
	case OpApplyStyle:
		return "applyStyle"
	case OpApplyBullet:
		return "applyBullet"
	case OpApplyIndent:
		return "applyIndent"
	}
	return "unknown"
}

// Operation is one edit against a text-bearing object. The concrete types
// are InsertText, ApplyStyle, ApplyBullet and ApplyIndent.
type Operation interface {
	Kind() OpKind
	Target() string
}

// Bullet presets understood by the target protocol.
const (
	PresetDisc     = "BULLET_DISC_CIRCLE_SQUARE"
	PresetNumbered = "NUMBERED_DIGIT_ALPHA_ROMAN"
)

// InsertText inserts the whole compiled text at index 0 of ObjectID.
type InsertText struct {
	ObjectID string
	Text     string
}

// ApplyStyle sets bold and/or italic over Range.
type ApplyStyle struct {
	ObjectID string
	Range    Range
	Bold     bool
	Italic   bool
}

// ApplyBullet turns every paragraph overlapping Range into a list item.
// One ApplyBullet covers a whole list block.
type ApplyBullet struct {
	ObjectID     string
	Range        Range
	// NestingLevel is informational; nesting reaches the wire only
	// through ApplyIndent.
	NestingLevel int
	Preset       string
}

// ApplyIndent sets the start indent of the paragraph covering Range.
type ApplyIndent struct {
	ObjectID    string
	Range       Range
	MagnitudePt float64
}

func (InsertText) Kind() OpKind  { return OpInsertText }
func (ApplyStyle) Kind() OpKind  { return OpApplyStyle }
func (ApplyBullet) Kind() OpKind { return OpApplyBullet }
func (ApplyIndent) Kind() OpKind { return OpApplyIndent }

func (o InsertText) Target() string  { return o.ObjectID }
func (o ApplyStyle) Target() string  { return o.ObjectID }
func (o ApplyBullet) Target() string { return o.ObjectID }
func (o ApplyIndent) Target() string { return o.ObjectID }

// OpRange returns the text range an operation addresses. InsertText has no
// range and reports ok=false.
func OpRange(op Operation) (r Range, ok bool) {
	switch o := op.(type) {
	case ApplyStyle:
		return o.Range, true
	case ApplyBullet:
		return o.Range, true
	case ApplyIndent:
		return o.Range, true
	}
	return Range{}, false
}
