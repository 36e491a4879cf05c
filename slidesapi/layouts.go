package slidesapi

import (
	"cmp"
	"strings"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/template"
)

// layoutName prefers the display name shown in the editor, as layout
// mapping files do.
func layoutName(l *slides.Page) string {
	if l.LayoutProperties == nil {
		return ""
	}
	return strings.TrimSpace(cmp.Or(l.LayoutProperties.DisplayName, l.LayoutProperties.Name))
}

// LayoutIDs maps each layout's name to its object ID.
func LayoutIDs(p *slides.Presentation) map[string]string {
	ids := make(map[string]string)
	if p == nil {
		return ids
	}
	for _, l := range p.Layouts {
		if l == nil {
			continue
		}
		if name := layoutName(l); name != "" {
			ids[name] = l.ObjectId
		}
	}
	return ids
}

// Template builds a template from a fetched presentation's layouts. Layout
// IDs are set; placeholder regions keep the layout's own object IDs.
func Template(p *slides.Presentation) *template.Template {
	tmpl := &template.Template{Page: PageSize(p)}
	if p == nil {
		return tmpl
	}
	for _, l := range p.Layouts {
		if l == nil {
			continue
		}
		layout := template.Layout{ID: l.ObjectId, Name: layoutName(l)}
		for _, el := range l.PageElements {
			r, ok := placeholderRegion(el)
			if !ok {
				continue
			}
			ph := el.Shape.Placeholder
			layout.Placeholders = append(layout.Placeholders, template.Placeholder{
				Type:   strings.ToUpper(ph.Type),
				Index:  int(ph.Index),
				Region: r,
			})
		}
		tmpl.Layouts = append(tmpl.Layouts, layout)
	}
	return tmpl
}
