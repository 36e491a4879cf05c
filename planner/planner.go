// Package planner turns a parsed deck into batches of presentation update
// requests, one batch per slide, against the layouts of a template.
//
// Each slide is created from its class's layout with every placeholder
// given a deterministic object ID, so the whole deck can be planned before
// anything is sent. Two steps need the live presentation afterwards:
// speaker notes (the notes shape ID is assigned by the service) and the
// table fit verification pass (true row heights are only known once the
// table is rendered).
package planner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/logging"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/richtext"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/slidesapi"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/template"
)

// ErrNoTemplate is returned by New without a template.
var ErrNoTemplate = errors.New("planner: no template")

// Options configures a Planner.
type Options struct {
	RichText        richtext.Options
	Table           geometry.TableFitOptions
	TableSideMargin geometry.EMU
	TableSafety     float64

	// MasterID limits master replacements to one page; empty applies them
	// to every page.
	MasterID string
	// Salt is mixed into every generated object ID. Planning the same deck
	// twice into one presentation needs distinct salts.
	Salt string
}

// DefaultOptions returns the built-in planner options.
func DefaultOptions() Options {
	return Options{
		RichText:        richtext.DefaultOptions(),
		Table:           geometry.DefaultTableFitOptions(),
		TableSideMargin: geometry.DefaultSideMargin,
		TableSafety:     geometry.DefaultSafetyMargin,
	}
}

// OptionsFromConfig builds options from the environment configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	o := DefaultOptions()
	o.RichText = cfg.RichTextOptions()
	o.Table = cfg.TableFitOptions()
	o.TableSideMargin = cfg.TableSideMarginEMU
	o.TableSafety = cfg.TableSafetyMargin
	return o
}

// Planner plans decks against one template.
type Planner struct {
	opts     Options
	compiler *richtext.Compiler
	tmpl     *template.Template
	layouts  Layouts
}

// New returns a Planner for tmpl.
func New(tmpl *template.Template, layouts Layouts, opts Options) (*Planner, error) {
	if tmpl == nil {
		return nil, ErrNoTemplate
	}
	c, err := richtext.NewCompiler(opts.RichText)
	if err != nil {
		return nil, err
	}
	if layouts.LayoutMapping == nil {
		layouts = DefaultLayouts()
	}
	return &Planner{opts: opts, compiler: c, tmpl: tmpl, layouts: layouts}, nil
}

// Template returns the planner's template.
func (p *Planner) Template() *template.Template { return p.tmpl }

// SlidePlan is the request batch for one slide.
type SlidePlan struct {
	Index    int               `json:"index"`
	SlideID  string            `json:"slideId"`
	Class    string            `json:"class"`
	Layout   string            `json:"layout,omitempty"`
	Requests []*slides.Request `json:"requests"`
	Table    *TableCheck       `json:"table,omitempty"`
	// SpeakerNotes is inserted with NotesRequests once the slide exists.
	SpeakerNotes string   `json:"speakerNotes,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Skipped      bool     `json:"skipped,omitempty"`
}

// NotesRequests inserts the slide's speaker notes into notesID, the notes
// shape read back with slidesapi.SpeakerNotesID.
func (sp *SlidePlan) NotesRequests(notesID string) []*slides.Request {
	if sp.SpeakerNotes == "" || notesID == "" {
		return nil
	}
	return []*slides.Request{slidesapi.Request(richtext.InsertText{ObjectID: notesID, Text: sp.SpeakerNotes}, nil)}
}

// DeckPlan is a whole deck's requests.
type DeckPlan struct {
	Fingerprint string            `json:"fingerprint"`
	Master      []*slides.Request `json:"master,omitempty"`
	Slides      []*SlidePlan      `json:"slides"`
}

// Requests flattens the plan: master replacements, then every slide.
func (d *DeckPlan) Requests() []*slides.Request {
	out := slices.Clone(d.Master)
	for _, s := range d.Slides {
		out = append(out, s.Requests...)
	}
	return out
}

// Warnings collects every slide's warnings.
func (d *DeckPlan) Warnings() []string {
	var out []string
	for _, s := range d.Slides {
		out = append(out, s.Warnings...)
	}
	return out
}

// PlanDeck plans every slide of d. Deck globals override the layouts
// file's header and footer.
func (p *Planner) PlanDeck(ctx context.Context, d *deck.Deck) (*DeckPlan, error) {
	globals := p.layouts.Globals.Merge(d.Globals)
	plan := &DeckPlan{Fingerprint: fingerprint(struct {
		Deck    *deck.Deck
		Globals Globals
		Salt    string
	}{d, globals, p.opts.Salt})}

	for _, r := range globals.Replacements {
		var pages []string
		if p.opts.MasterID != "" {
			pages = []string{p.opts.MasterID}
		}
		plan.Master = append(plan.Master, slidesapi.ReplaceAllText(r.Find, r.Replace, pages...))
	}

	for i, s := range d.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sp, err := p.PlanSlide(ctx, i, s, globals)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		plan.Slides = append(plan.Slides, sp)
	}
	return plan, nil
}

// slideState carries one slide through planning.
type slideState struct {
	ctx     context.Context
	plan    *SlidePlan
	ids     idGen
	regions []geometry.Region
	rb      geometry.RoleBounds
}

func (st *slideState) add(reqs ...*slides.Request) {
	st.plan.Requests = append(st.plan.Requests, reqs...)
}

func (st *slideState) skipped(what, reason string) {
	st.plan.Warnings = append(st.plan.Warnings, fmt.Sprintf("slide %d: %s skipped: %s", st.plan.Index+1, what, reason))
	logging.ContentSkipped(st.ctx, st.plan.Index+1, what, reason)
}

func (st *slideState) fallback(role geometry.Role, reason string) {
	st.plan.Warnings = append(st.plan.Warnings, fmt.Sprintf("slide %d: no %s region: %s", st.plan.Index+1, role, reason))
	logging.GeometryFallback(st.ctx, st.plan.Index+1, role.String(), reason)
}

// PlanSlide plans one slide. Missing layouts, placeholders and image URLs
// produce warnings, never errors; errors report contract violations such
// as invalid table options.
func (p *Planner) PlanSlide(ctx context.Context, index int, s deck.Slide, g Globals) (*SlidePlan, error) {
	class := s.Class()
	ids := newIDGen(p.opts.Salt, index, fingerprint(s))
	st := &slideState{
		ctx:  ctx,
		plan: &SlidePlan{Index: index, SlideID: ids.id("slide"), Class: class},
		ids:  ids,
	}

	name, ok := p.layouts.LayoutFor(class)
	if !ok {
		st.plan.Skipped = true
		st.skipped("slide", fmt.Sprintf("no layout mapped for class %q", class))
		return st.plan, nil
	}
	layout, ok := p.tmpl.Layout(name)
	if !ok {
		st.plan.Skipped = true
		st.skipped("slide", fmt.Sprintf("layout %q not in template", name))
		return st.plan, nil
	}
	st.plan.Layout = layout.Name
	p.createSlide(st, layout)

	p.planTitle(st, s)
	p.planSubtitleAndGlobals(st, s, g, class)

	var err error
	switch class {
	case deck.ClassColumns:
		p.planColumns(st, s)
	case deck.ClassImageFullscreen:
		err = p.planImage(st, s, geometry.Fullscreen)
	case deck.ClassImageRight:
		target, ok := rightmost(st.regions, p.layouts.BodyRole(class))
		p.planBody(st, s, target, ok)
		err = p.planImage(st, s, geometry.LeftHalf)
	case deck.ClassTableFullscreen:
		err = p.planTable(st, s)
	default:
		target, ok := first(st.regions, p.layouts.BodyRole(class))
		p.planBody(st, s, target, ok)
	}
	if err != nil {
		return nil, err
	}

	if s.SpeakerNotes != "" {
		st.plan.SpeakerNotes = p.compiler.Clean(s.SpeakerNotes)
	}
	return st.plan, nil
}

// createSlide emits the CreateSlide request, naming every layout
// placeholder so later requests can address it.
func (p *Planner) createSlide(st *slideState, layout template.Layout) {
	layoutID := layout.ID
	if layoutID == "" {
		layoutID = layout.Name
		st.plan.Warnings = append(st.plan.Warnings,
			fmt.Sprintf("slide %d: layout %q has no object ID; using its name", st.plan.Index+1, layout.Name))
	}

	type key struct {
		typ string
		idx int
	}
	seen := make(map[key]bool)
	var mappings []slidesapi.PlaceholderMapping
	for i, ph := range layout.Placeholders {
		k := key{ph.Type, ph.Index}
		if seen[k] {
			continue
		}
		seen[k] = true
		id := st.ids.id("ph", ph.Type, fmt.Sprint(ph.Index), fmt.Sprint(i))
		mappings = append(mappings, slidesapi.PlaceholderMapping{Type: ph.Type, Index: ph.Index, ObjectID: id})
		r := ph.Region
		r.ObjectID = id
		st.regions = append(st.regions, r)
	}
	st.rb = geometry.Resolve(st.regions)
	st.add(slidesapi.CreateSlide(st.plan.SlideID, layoutID, -1, mappings))
}

// insertPlain compiles a single-paragraph text (title, subtitle, header,
// footer) with emphasis but no list handling.
func (p *Planner) insertPlain(st *slideState, objectID, text string) {
	compiled := p.compiler.CompileCell(objectID, text)
	if compiled.Empty() {
		return
	}
	st.add(slidesapi.Requests(compiled.Ops)...)
}

func (p *Planner) planTitle(st *slideState, s deck.Slide) {
	if s.Title == "" {
		return
	}
	if !st.rb.Title.OK {
		st.skipped("title", "layout has no title placeholder")
		return
	}
	p.insertPlain(st, st.rb.Title.ObjectID, s.Title)
}

// planSubtitleAndGlobals places the slide subtitle in the first
// main-content subtitle and, except on title and closing slides, the
// global header and footer. The header and footer placeholders never take
// the slide subtitle.
func (p *Planner) planSubtitleAndGlobals(st *slideState, s deck.Slide, g Globals, class string) {
	if s.Subtitle != "" {
		if len(st.rb.MainContent) == 0 {
			st.skipped("subtitle", "layout has no main-content subtitle placeholder")
		} else {
			p.insertPlain(st, st.rb.MainContent[0].ObjectID, s.Subtitle)
		}
	}

	if class == deck.ClassTitle || class == deck.ClassClosing {
		return
	}
	if g.Header != "" {
		if st.rb.Header.OK {
			p.insertPlain(st, st.rb.Header.ObjectID, g.Header)
		} else {
			st.skipped("header", "layout has no header placeholder")
		}
	}
	if g.Footer != "" {
		if st.rb.Footer.OK {
			p.insertPlain(st, st.rb.Footer.ObjectID, g.Footer)
		} else {
			st.skipped("footer", "layout has no footer placeholder")
		}
	}
}

func (p *Planner) planBody(st *slideState, s deck.Slide, target geometry.Region, ok bool) {
	if len(s.Body) == 0 {
		return
	}
	if !ok {
		st.skipped("body", "layout has no body placeholder")
		return
	}
	compiled := p.compiler.Compile(target.ObjectID, s.Body)
	if compiled.Empty() {
		return
	}
	st.add(slidesapi.Requests(compiled.Ops)...)
}

// planColumns splits the body at the second line that opens with bold
// markup and fills the two left-most body placeholders.
func (p *Planner) planColumns(st *slideState, s deck.Slide) {
	left, right := splitColumns(s.Body)
	bodies := st.rb.Bodies
	for i, part := range [][]string{left, right} {
		if len(part) == 0 {
			continue
		}
		if i >= len(bodies) {
			st.skipped(fmt.Sprintf("column %d", i+1), "layout has too few body placeholders")
			continue
		}
		compiled := p.compiler.Compile(bodies[i].ObjectID, part)
		if !compiled.Empty() {
			st.add(slidesapi.Requests(compiled.Ops)...)
		}
	}
}

func splitColumns(body []string) (left, right []string) {
	n := 0
	for i, line := range body {
		if strings.HasPrefix(strings.TrimSpace(line), "**") {
			n++
			if n == 2 {
				return body[:i], body[i:]
			}
		}
	}
	return body, nil
}

func (p *Planner) planImage(st *slideState, s deck.Slide, mode geometry.FitMode) error {
	if s.Image == nil {
		return nil
	}
	if s.Image.URL == "" {
		st.skipped("image", "image reference has no URL")
		return nil
	}
	page := p.tmpl.Page
	if !st.rb.Title.OK {
		st.fallback(geometry.RoleTitle, "image placed against page bounds")
	}

	var area geometry.Box
	if mode == geometry.Fullscreen {
		area = geometry.FullscreenArea(st.rb, page)
	} else {
		if len(st.rb.MainContent) == 0 && !st.rb.Body.OK {
			st.fallback(geometry.RoleBody, "image placed in the left half of the page")
		}
		area = geometry.SideArea(st.rb, page)
	}
	box, err := geometry.FitImage(s.Image.Aspect(), area, mode)
	if err != nil {
		return fmt.Errorf("fit image: %w", err)
	}
	st.add(slidesapi.CreateImage(st.ids.id("image"), st.plan.SlideID, s.Image.URL, box))
	return nil
}

// first returns the top-most region of role, then left-most.
func first(regions []geometry.Region, role geometry.Role) (geometry.Region, bool) {
	rs := sortedOf(regions, role)
	if len(rs) == 0 {
		return geometry.Region{}, false
	}
	return rs[0], true
}

// rightmost returns the region of role with the greatest x.
func rightmost(regions []geometry.Region, role geometry.Role) (geometry.Region, bool) {
	rs := sortedOf(regions, role)
	if len(rs) == 0 {
		return geometry.Region{}, false
	}
	return slices.MaxFunc(rs, func(a, b geometry.Region) int {
		return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(b.Y, a.Y))
	}), true
}

func sortedOf(regions []geometry.Region, role geometry.Role) []geometry.Region {
	var out []geometry.Region
	for _, r := range regions {
		if r.Role == role {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b geometry.Region) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X), cmp.Compare(a.ObjectID, b.ObjectID))
	})
	return out
}
