package engine

// readback.go: operations that run after a plan has been applied, against
// pages and presentations fetched back from the Slides service.

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/logging"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/planner"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/slidesapi"
)

// decodePage reads a page as returned by presentations.pages.get.
func decodePage(raw string) (*slides.Page, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: a fetched page is required", ErrInvalidInput)
	}
	var page slides.Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, fmt.Errorf("%w: decode page: %v", ErrInvalidInput, err)
	}
	return &page, nil
}

// decodePresentation reads a presentation as returned by
// presentations.get.
func decodePresentation(raw string) (*slides.Presentation, error) {
	var p slides.Presentation
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: decode presentation: %v", ErrInvalidInput, err)
	}
	return &p, nil
}

// VerifyTableInput is a planned table and the slide page fetched after the
// plan was applied.
type VerifyTableInput struct {
	Page  string             `json:"page"`
	Check planner.TableCheck `json:"check"`
}

// VerifyTableResult is the measured table and the authoritative fit. Batch
// is set only when the font has to shrink.
type VerifyTableResult struct {
	Measured slidesapi.Measured `json:"measured"`
	geometry.TableFitResult
	Batch *slides.BatchUpdatePresentationRequest `json:"batch,omitempty"`
}

// VerifyTable runs the second fit pass: it measures the rendered table on
// the fetched page and returns font-size requests when it overflows.
func (e *Engine) VerifyTable(in VerifyTableInput) (*VerifyTableResult, error) {
	check := in.Check
	if check.TableID == "" || check.Target.Height <= 0 {
		return nil, fmt.Errorf("%w: check needs a table ID and a target box", ErrInvalidInput)
	}
	page, err := decodePage(in.Page)
	if err != nil {
		return nil, err
	}
	measured, err := slidesapi.MeasuredTable(page, check.TableID)
	if errors.Is(err, slidesapi.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return nil, err
	}

	opts := e.cfg.TableFitOptions()
	if check.FontPt <= 0 {
		check.FontPt = opts.StartFont
	}
	if len(check.Widths) == 0 {
		content := check.Content
		if content.Cols() == 0 {
			content = measured.Content
		}
		check.Widths = geometry.ColumnWidths(content, check.Target.Width)
	}
	reqs, res, err := planner.VerifyTable(&check, measured, opts)
	if err != nil {
		return nil, err
	}
	out := &VerifyTableResult{Measured: measured, TableFitResult: res}
	if len(reqs) > 0 {
		out.Batch = slidesapi.NewBatch(reqs)
		logging.Info("table_refit", "table", check.TableID,
			"measured_height", measured.Total().Int(), "from_pt", check.FontPt, "to_pt", res.FontSizePt)
	}
	return out, nil
}

// NotesInput is speaker notes text and the slide page fetched after the
// slide was created.
type NotesInput struct {
	Page  string `json:"page"`
	Notes string `json:"notes"`
}

// NotesResult addresses the slide's speaker notes shape.
type NotesResult struct {
	NotesID string                                 `json:"notesId"`
	Batch   *slides.BatchUpdatePresentationRequest `json:"batch,omitempty"`
}

// SpeakerNotes builds the request that fills the notes shape of a fetched
// slide. Notes are cleaned the same way planned slide text is.
func (e *Engine) SpeakerNotes(in NotesInput) (*NotesResult, error) {
	page, err := decodePage(in.Page)
	if err != nil {
		return nil, err
	}
	id := slidesapi.SpeakerNotesID(page)
	if id == "" {
		return nil, fmt.Errorf("%w: page %q has no speaker notes shape", ErrInvalidInput, page.ObjectId)
	}
	sp := &planner.SlidePlan{SlideID: page.ObjectId, SpeakerNotes: e.compiler.Clean(in.Notes)}
	out := &NotesResult{NotesID: id}
	if reqs := sp.NotesRequests(id); len(reqs) > 0 {
		out.Batch = slidesapi.NewBatch(reqs)
	}
	return out, nil
}
