// Package engine exposes the slide engine's operations to the MCP server
// and the CLI: rich-text compilation, placeholder resolution, image and
// table fitting, template reading and whole-deck planning with a content
// addressed plan cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/cache"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/converter"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/planner"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/richtext"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/slidesapi"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/template"
)

// ErrInvalidInput is returned when a required argument is missing or
// malformed.
var ErrInvalidInput = errors.New("invalid input")

// Engine serves the engine operations for one configuration.
type Engine struct {
	cfg      *config.Config
	conv     converter.FileConverter
	compiler *richtext.Compiler
	plans    *cache.LRU[string, *planner.DeckPlan]
}

// New returns an Engine. A nil conv uses the native converter.
func New(cfg *config.Config, conv converter.FileConverter) (*Engine, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	if conv == nil {
		conv = converter.NewConverter(cfg)
	}
	c, err := richtext.NewCompiler(cfg.RichTextOptions())
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	cc := cache.DefaultConfig()
	cc.TTL = cfg.CacheTTL
	return &Engine{
		cfg:      cfg,
		conv:     conv,
		compiler: c,
		plans:    cache.New[string, *planner.DeckPlan](cc),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// CompileResult is a compiled text block and its requests.
type CompileResult struct {
	PlainText string            `json:"plainText"`
	Requests  []*slides.Request `json:"requests"`
}

// CompileRichText compiles text for the shape target. cell compiles a
// single table cell: markup is applied but list markers are kept as text.
func (e *Engine) CompileRichText(target, text string, cell bool) *CompileResult {
	if target == "" {
		target = "BODY"
	}
	var c *richtext.Compiled
	if cell {
		c = e.compiler.CompileCell(target, text)
	} else {
		c = e.compiler.CompileText(target, text)
	}
	return &CompileResult{PlainText: c.Text, Requests: slidesapi.Requests(c.Ops)}
}

// RegionsInput selects placeholder regions from a template layout, from a
// slide page fetched from the service, or directly.
type RegionsInput struct {
	Template string `json:"template,omitempty"`
	Layout   string `json:"layout,omitempty"`
	// SlidePage is a page as returned by presentations.pages.get.
	SlidePage string            `json:"slidePage,omitempty"`
	Regions   []geometry.Region `json:"regions,omitempty"`
	Page      geometry.Page     `json:"page"`
}

// RegionsResult is the resolved role bounds plus the derived content areas.
type RegionsResult struct {
	Page       geometry.Page       `json:"page"`
	Bounds     geometry.RoleBounds `json:"bounds"`
	Fullscreen geometry.Box        `json:"fullscreenArea"`
	Side       geometry.Box        `json:"sideArea"`
	Table      geometry.Box        `json:"tableArea"`
}

// ResolvePlaceholders resolves regions into role bounds and content areas.
// A template layout overrides in.Regions and in.Page; a fetched slide page
// overrides in.Regions.
func (e *Engine) ResolvePlaceholders(in RegionsInput) (*RegionsResult, error) {
	regions, page := in.Regions, in.Page
	switch {
	case in.Template != "":
		tmpl, err := template.Read(in.Template)
		if err != nil {
			return nil, err
		}
		layout, ok := tmpl.Layout(in.Layout)
		if !ok {
			return nil, fmt.Errorf("%w: layout %q not in template (have %s)",
				ErrInvalidInput, in.Layout, strings.Join(tmpl.Names(), ", "))
		}
		regions, page = layout.Regions(), tmpl.Page
	case in.SlidePage != "":
		sp, err := decodePage(in.SlidePage)
		if err != nil {
			return nil, err
		}
		regions = slidesapi.RegionsFromPage(sp)
	}
	if !page.Valid() {
		page = geometry.DefaultPage
	}

	rb := geometry.Resolve(regions)
	return &RegionsResult{
		Page:       page,
		Bounds:     rb,
		Fullscreen: geometry.FullscreenArea(rb, page),
		Side:       geometry.SideArea(rb, page),
		Table:      geometry.TableArea(rb, page, e.cfg.TableSideMarginEMU, e.cfg.TableSafetyMargin),
	}, nil
}

// ImageInput describes one image placement. A Source file is probed for
// its aspect ratio when Aspect is not positive.
type ImageInput struct {
	Aspect float64      `json:"aspect,omitempty"`
	Source string       `json:"source,omitempty"`
	Page   int          `json:"page,omitempty"`
	Area   geometry.Box `json:"area"`
	Mode   string       `json:"mode,omitempty"`
}

// ImageResult is the placed image box.
type ImageResult struct {
	Aspect float64      `json:"aspect"`
	Mode   string       `json:"mode"`
	Box    geometry.Box `json:"box"`
}

// FitImage places an image inside an area.
func (e *Engine) FitImage(in ImageInput) (*ImageResult, error) {
	mode, err := geometry.ParseFitMode(in.Mode)
	if err != nil {
		return nil, err
	}
	aspect := in.Aspect
	if aspect <= 0 && in.Source != "" {
		if aspect, err = converter.ProbeAspect(in.Source, in.Page); err != nil {
			return nil, err
		}
	}
	if aspect <= 0 {
		aspect = geometry.DefaultAspect
	}
	box, err := geometry.FitImage(aspect, in.Area, mode)
	if err != nil {
		return nil, err
	}
	return &ImageResult{Aspect: aspect, Mode: mode.String(), Box: box}, nil
}

// TableInput is a table and its target area. MeasuredRows and CurrentFont
// select the verification pass against a rendered table.
type TableInput struct {
	Table        geometry.TableContent `json:"table"`
	Width        geometry.EMU          `json:"width"`
	Height       geometry.EMU          `json:"height"`
	MeasuredRows []geometry.EMU        `json:"measuredRows,omitempty"`
	CurrentFont  int                   `json:"currentFont,omitempty"`
}

// TableResult is the chosen column widths and font size.
type TableResult struct {
	Widths []geometry.EMU `json:"widths"`
	geometry.TableFitResult
}

// FitTable estimates, or verifies against measured rows, the font size
// that fits a table into its area.
func (e *Engine) FitTable(in TableInput) (*TableResult, error) {
	if in.Table.Cols() == 0 || in.Table.RowCount() == 0 {
		return nil, fmt.Errorf("%w: table has no cells", ErrInvalidInput)
	}
	opts := e.cfg.TableFitOptions()
	widths := geometry.ColumnWidths(in.Table, in.Width)

	var (
		res geometry.TableFitResult
		err error
	)
	if len(in.MeasuredRows) > 0 {
		current := in.CurrentFont
		if current <= 0 {
			current = opts.StartFont
		}
		res, err = geometry.VerifyTable(in.Table, widths, in.MeasuredRows, in.Height, current, opts)
	} else {
		res, err = geometry.EstimateTableFit(in.Table, widths, in.Height, opts)
	}
	if err != nil {
		return nil, err
	}
	return &TableResult{Widths: widths, TableFitResult: res}, nil
}

// Info returns a Markdown summary of the engine, its configuration and
// the supported sources.
func (e *Engine) Info(ctx context.Context) string {
	st := e.CacheStats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Slidesmith %s\n\n", config.Version)
	sb.WriteString("## Engine\n")
	fmt.Fprintf(&sb, "- Rich text: %d spaces per level, tab width %d, indent unit %gpt\n",
		e.cfg.SpacesPerLevel, e.cfg.TabWidth, e.cfg.IndentUnitPt)
	fmt.Fprintf(&sb, "- Table fit: start %dpt, min %dpt, safety margin %g, side margin %d EMU\n",
		e.cfg.TableStartFont, e.cfg.TableMinFont, e.cfg.TableSafetyMargin, e.cfg.TableSideMarginEMU.Int())
	fmt.Fprintf(&sb, "- Plan cache: %d/%d entries, %d hits, %d misses, TTL %s\n\n",
		st.Size, st.MaxSize, st.Hits, st.Misses, e.cfg.CacheTTL)
	sb.WriteString(e.conv.GetConversionInfo(ctx))
	return sb.String()
}

// CacheStats reports plan cache statistics.
func (e *Engine) CacheStats() cache.Stats { return e.plans.Stats() }
