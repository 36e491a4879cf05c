package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/cache"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/logging"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/planner"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/slidesapi"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/template"
)

// SourceInput names a deck source: inline Content of the given Format, or
// a Source path or URL.
type SourceInput struct {
	Source  string `json:"source,omitempty"`
	Content string `json:"content,omitempty"`
	Format  string `json:"format,omitempty"`
}

// ConvertDeck parses a deck source.
func (e *Engine) ConvertDeck(ctx context.Context, in SourceInput) (*deck.Deck, error) {
	switch {
	case in.Content != "":
		return e.conv.ConvertSource(ctx, in.Format, in.Content)
	case isURI(in.Source):
		return e.conv.ConvertURI(ctx, in.Source)
	case in.Source != "":
		return e.conv.ConvertFile(ctx, in.Source)
	}
	return nil, fmt.Errorf("%w: a source path, URL or inline content is required", ErrInvalidInput)
}

func isURI(s string) bool {
	for _, p := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// TemplateResult is a parsed template plus the layouts file's view of it.
type TemplateResult struct {
	Template *template.Template `json:"template"`
	// MissingLayouts lists mapped layout names the template lacks.
	MissingLayouts []string `json:"missingLayouts,omitempty"`
}

// ReadTemplate parses a .pptx template and checks the layouts file
// against it. An empty layoutsPath uses the configured file.
func (e *Engine) ReadTemplate(path, layoutsPath string) (*TemplateResult, error) {
	tmpl, _, err := e.loadTemplate(path)
	if err != nil {
		return nil, err
	}
	layouts, err := e.loadLayouts(layoutsPath)
	if err != nil {
		return nil, err
	}
	return &TemplateResult{Template: tmpl, MissingLayouts: layouts.Missing(tmpl)}, nil
}

func (e *Engine) loadTemplate(path string) (*template.Template, []byte, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("%w: a template path is required", ErrInvalidInput)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("template not found: %s", path)
	}
	if info.Size() > e.cfg.MaxFileSizeBytes {
		return nil, nil, fmt.Errorf("template too large: %d bytes (max %d)", info.Size(), e.cfg.MaxFileSizeBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read template: %w", err)
	}
	tmpl, err := template.ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tmpl, data, nil
}

func (e *Engine) loadLayouts(path string) (planner.Layouts, error) {
	if path == "" {
		path = e.cfg.LayoutsFile
	}
	return planner.LoadLayouts(path)
}

// PlanInput is everything a deck plan depends on.
type PlanInput struct {
	SourceInput
	Template string `json:"template,omitempty"`
	// Presentation is the target presentation as returned by
	// presentations.get. Its layout IDs are bound to the template, and it
	// stands in for the template when no path is given.
	Presentation string `json:"presentation,omitempty"`
	Layouts      string `json:"layouts,omitempty"`
	// LayoutIDs maps layout names to the presentation's layout object IDs.
	LayoutIDs map[string]string `json:"layoutIds,omitempty"`
	MasterID  string            `json:"masterId,omitempty"`
	Salt      string            `json:"salt,omitempty"`
	// BatchSize, when positive, also splits the requests into batches of
	// at most that many.
	BatchSize int `json:"batchSize,omitempty"`
}

// PlanResult is a deck plan and whether it came from the cache.
type PlanResult struct {
	Cached   bool              `json:"cached"`
	Warnings []string          `json:"warnings,omitempty"`
	Plan     *planner.DeckPlan `json:"plan"`
	// Batch is every request of the plan as one batch update body.
	Batch   *slides.BatchUpdatePresentationRequest   `json:"batch"`
	Batches []*slides.BatchUpdatePresentationRequest `json:"batches,omitempty"`
}

// PlanDeck converts the source and plans it against the template. Plans
// are cached by the content hash of the deck, the template bytes, the
// layouts and the planning options.
func (e *Engine) PlanDeck(ctx context.Context, in PlanInput) (*PlanResult, error) {
	d, err := e.ConvertDeck(ctx, in.SourceInput)
	if err != nil {
		return nil, err
	}
	tmpl, tmplData, err := e.planTemplate(in)
	if err != nil {
		return nil, err
	}
	layouts, err := e.loadLayouts(in.Layouts)
	if err != nil {
		return nil, err
	}
	if err := layouts.Validate(tmpl); err != nil {
		logging.WarnContext(ctx, "layouts_missing", "template", in.Template, "error", err)
	}

	deckJSON, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode deck: %w", err)
	}
	layoutsJSON, err := json.Marshal(struct {
		Layouts planner.Layouts
		IDs     map[string]string
	}{layouts, in.LayoutIDs})
	if err != nil {
		return nil, fmt.Errorf("encode layouts: %w", err)
	}
	opts := planner.OptionsFromConfig(e.cfg)
	opts.MasterID, opts.Salt = in.MasterID, in.Salt
	key := cache.Key(deckJSON, tmplData, []byte(in.Presentation), layoutsJSON, []byte(opts.MasterID), []byte(opts.Salt))

	plan, hit, err := e.plans.GetOrCompute(key, func() (*planner.DeckPlan, error) {
		p, err := planner.New(tmpl, layouts, opts)
		if err != nil {
			return nil, err
		}
		return p.PlanDeck(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		logging.Debug("plan_cache_hit", "key", key[:16], "slides", len(plan.Slides))
	}

	reqs := plan.Requests()
	res := &PlanResult{
		Cached:   hit,
		Warnings: plan.Warnings(),
		Plan:     plan,
		Batch:    slidesapi.NewBatch(reqs),
	}
	if in.BatchSize > 0 {
		for _, chunk := range slidesapi.SplitBatches(reqs, in.BatchSize) {
			res.Batches = append(res.Batches, slidesapi.NewBatch(chunk))
		}
	}
	return res, nil
}

// planTemplate reads the .pptx template, or builds one from the fetched
// presentation's layouts when no path is given. Layout IDs from the
// presentation are bound before in.LayoutIDs, so explicit IDs win.
func (e *Engine) planTemplate(in PlanInput) (*template.Template, []byte, error) {
	if in.Template == "" && in.Presentation == "" {
		return nil, nil, fmt.Errorf("%w: a template path or fetched presentation is required", ErrInvalidInput)
	}
	var pres *slides.Presentation
	if in.Presentation != "" {
		var err error
		if pres, err = decodePresentation(in.Presentation); err != nil {
			return nil, nil, err
		}
	}

	var (
		tmpl *template.Template
		data []byte
	)
	if in.Template != "" {
		var err error
		if tmpl, data, err = e.loadTemplate(in.Template); err != nil {
			return nil, nil, err
		}
	} else {
		tmpl = slidesapi.Template(pres)
	}
	if pres != nil {
		tmpl.BindIDs(slidesapi.LayoutIDs(pres))
	}
	tmpl.BindIDs(in.LayoutIDs)
	return tmpl, data, nil
}
