package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/template"
)

// ErrMissingLayouts is returned by Validate when mapped layouts are absent
// from the template.
var ErrMissingLayouts = errors.New("planner: layouts missing from template")

// Layouts maps layout classes onto template layouts. It is read from a JSON
// file shaped like
//
//	{
//	  "layout_mapping": {"default": "Title and Content", ...},
//	  "placeholder_mapping": {"image_right": {"body_placeholder": "SUBTITLE"}},
//	  "globals": {"footer": "ACME", "year": {"find": "{{year}}", "replace": "2025"}}
//	}
type Layouts struct {
	LayoutMapping      map[string]string          `json:"layout_mapping"`
	PlaceholderMapping map[string]PlaceholderRule `json:"placeholder_mapping,omitempty"`
	Globals            Globals                    `json:"globals"`
}

// PlaceholderRule overrides which placeholder type receives a class's body.
type PlaceholderRule struct {
	BodyPlaceholder string `json:"body_placeholder"`
}

// Replacement is a find/replace applied to the slide master.
type Replacement struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// Globals holds deck-wide header and footer text and master replacements.
type Globals struct {
	Header       string        `json:"header,omitempty"`
	Footer       string        `json:"footer,omitempty"`
	Replacements []Replacement `json:"replacements,omitempty"`
}

// UnmarshalJSON reads header and footer strings and turns every other
// {find, replace} entry into a Replacement, ordered by key. Entries of any
// other shape are ignored.
func (g *Globals) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*g = Globals{}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := raw[k]
		switch k {
		case "header":
			_ = json.Unmarshal(v, &g.Header)
		case "footer":
			_ = json.Unmarshal(v, &g.Footer)
		case "replacements":
			_ = json.Unmarshal(v, &g.Replacements)
		default:
			var r Replacement
			if json.Unmarshal(v, &r) == nil && r.Find != "" {
				g.Replacements = append(g.Replacements, r)
			}
		}
	}
	return nil
}

// Merge overlays the deck's own header and footer onto g.
func (g Globals) Merge(d deck.Globals) Globals {
	if d.Header != "" {
		g.Header = d.Header
	}
	if d.Footer != "" {
		g.Footer = d.Footer
	}
	return g
}

// DefaultLayouts maps every class onto the stock PowerPoint layout names.
func DefaultLayouts() Layouts {
	return Layouts{
		LayoutMapping: map[string]string{
			deck.ClassTitle:           "Title Slide",
			deck.ClassClosing:         "Title Slide",
			deck.ClassDefault:         "Title and Content",
			deck.ClassColumns:         "Two Content",
			deck.ClassImageFullscreen: "Title Only",
			deck.ClassImageRight:      "Two Content",
			deck.ClassTableFullscreen: "Title Only",
		},
	}
}

// LoadLayouts reads a layouts file; an empty path yields DefaultLayouts.
func LoadLayouts(path string) (Layouts, error) {
	if path == "" {
		return DefaultLayouts(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Layouts{}, fmt.Errorf("open layouts %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	l, err := DecodeLayouts(f)
	if err != nil {
		return Layouts{}, fmt.Errorf("layouts %s: %w", path, err)
	}
	return l, nil
}

// DecodeLayouts reads layouts JSON. Classes left unmapped fall back to the
// defaults.
func DecodeLayouts(r io.Reader) (Layouts, error) {
	var l Layouts
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layouts{}, fmt.Errorf("decode layouts: %w", err)
	}
	defaults := DefaultLayouts()
	if l.LayoutMapping == nil {
		l.LayoutMapping = map[string]string{}
	}
	for class, name := range defaults.LayoutMapping {
		if _, ok := l.LayoutMapping[class]; !ok {
			l.LayoutMapping[class] = name
		}
	}
	return l, nil
}

// LayoutFor returns the layout name for class, falling back to the default
// class's layout.
func (l Layouts) LayoutFor(class string) (string, bool) {
	if name, ok := l.LayoutMapping[class]; ok && name != "" {
		return name, true
	}
	name, ok := l.LayoutMapping[deck.ClassDefault]
	return name, ok && name != ""
}

// BodyRole returns the placeholder role that receives class's body text.
func (l Layouts) BodyRole(class string) geometry.Role {
	if rule, ok := l.PlaceholderMapping[class]; ok {
		if role, ok := geometry.ParseRole(rule.BodyPlaceholder); ok {
			return role
		}
	}
	return geometry.RoleBody
}

// Missing returns the mapped layout names tmpl lacks, sorted.
func (l Layouts) Missing(tmpl *template.Template) []string {
	var missing []string
	for _, name := range l.LayoutMapping {
		if _, ok := tmpl.Layout(name); !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// Validate checks that every mapped layout exists in tmpl.
func (l Layouts) Validate(tmpl *template.Template) error {
	missing := l.Missing(tmpl)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingLayouts, strings.Join(missing, ", "))
}
