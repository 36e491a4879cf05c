// Command slidesmith runs the slide engine from the command line: it
// compiles rich text, resolves template placeholders, fits images and
// tables, parses deck sources and plans whole decks, printing JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/engine"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/logging"
)

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn"`

	Compile  CompileCmd  `cmd:"" help:"Compile rich text into batch-update requests"`
	Regions  RegionsCmd  `cmd:"" help:"Resolve placeholder regions of a template layout or fetched slide page"`
	FitImage FitImageCmd `cmd:"" name:"fit-image" help:"Place an image inside an area"`
	FitTable FitTableCmd `cmd:"" name:"fit-table" help:"Choose column widths and font size for a table"`
	Template TemplateCmd `cmd:"" help:"Read the layouts of a .pptx template"`
	Convert  ConvertCmd  `cmd:"" help:"Parse a deck source into slides"`
	Plan     PlanCmd     `cmd:"" help:"Plan a deck against a .pptx template or a fetched presentation"`
	Verify   VerifyCmd   `cmd:"" name:"verify-table" help:"Re-fit a planned table against its rendered slide page"`
	Notes    NotesCmd    `cmd:"" help:"Fill the speaker notes of a fetched slide page"`
	Info     InfoCmd     `cmd:"" help:"Print engine configuration and supported sources"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readFile returns the contents of path, or of stdin when path is "-".
func readFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// readArg returns s, or the contents of stdin when s is "-".
func readArg(s string, stdin io.Reader) (string, error) {
	if s != "-" {
		return s, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// CompileCmd compiles rich text.
type CompileCmd struct {
	Text   string `short:"t" help:"Text to compile, or - to read stdin" required:""`
	Target string `help:"Object ID of the target shape" default:"BODY"`
	Cell   bool   `help:"Compile as a table cell"`
}

func (c *CompileCmd) Run(eng *engine.Engine, w io.Writer) error {
	text, err := readArg(c.Text, os.Stdin)
	if err != nil {
		return err
	}
	return writeJSON(w, eng.CompileRichText(c.Target, text, c.Cell))
}

// RegionsCmd resolves the placeholders of a template layout or of a
// fetched slide page.
type RegionsCmd struct {
	Template  string `arg:"" optional:"" help:"Path to a .pptx template" type:"existingfile"`
	Layout    string `arg:"" optional:"" help:"Layout name"`
	SlidePage string `name:"slide-page" help:"Slide page JSON from presentations.pages.get, or - for stdin"`
}

func (c *RegionsCmd) Run(eng *engine.Engine, w io.Writer) error {
	in := engine.RegionsInput{Template: c.Template, Layout: c.Layout}
	switch {
	case c.SlidePage != "":
		data, err := readFile(c.SlidePage, os.Stdin)
		if err != nil {
			return fmt.Errorf("read slide page: %w", err)
		}
		in.SlidePage = string(data)
	case c.Template == "":
		return errors.New("a template and layout, or --slide-page, is required")
	}
	res, err := eng.ResolvePlaceholders(in)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// FitImageCmd fits an image into an area.
type FitImageCmd struct {
	Area   []float64 `help:"Area as x,y,width,height in EMU" required:""`
	Aspect float64   `help:"Width divided by height"`
	Source string    `help:"Local image or PDF probed when --aspect is omitted" type:"existingfile"`
	Page   int       `help:"PDF page (1-based)" default:"1"`
	Mode   string    `help:"Fit mode" enum:"fullscreen,left_half" default:"fullscreen"`
}

func (c *FitImageCmd) Run(eng *engine.Engine, w io.Writer) error {
	if len(c.Area) != 4 {
		return fmt.Errorf("--area needs 4 values, got %d", len(c.Area))
	}
	res, err := eng.FitImage(engine.ImageInput{
		Aspect: c.Aspect,
		Source: c.Source,
		Page:   c.Page,
		Mode:   c.Mode,
		Area: geometry.Box{
			X: geometry.EMU(c.Area[0]), Y: geometry.EMU(c.Area[1]),
			Width: geometry.EMU(c.Area[2]), Height: geometry.EMU(c.Area[3]),
		},
	})
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// FitTableCmd fits a table read from a JSON file.
type FitTableCmd struct {
	Table    string    `arg:"" help:"JSON table file ({\"headers\":[],\"rows\":[[]]}), or - for stdin"`
	Width    float64   `help:"Area width in EMU" required:""`
	Height   float64   `help:"Area height in EMU" required:""`
	Measured []float64 `help:"Measured row heights in EMU from a rendered table"`
	Font     int       `help:"Font size the table was rendered at"`
}

func (c *FitTableCmd) Run(eng *engine.Engine, w io.Writer) error {
	data, err := readFile(c.Table, os.Stdin)
	if err != nil {
		return fmt.Errorf("read table: %w", err)
	}
	in := engine.TableInput{
		Width:       geometry.EMU(c.Width),
		Height:      geometry.EMU(c.Height),
		CurrentFont: c.Font,
	}
	if err := json.Unmarshal(data, &in.Table); err != nil {
		return fmt.Errorf("decode table: %w", err)
	}
	for _, h := range c.Measured {
		in.MeasuredRows = append(in.MeasuredRows, geometry.EMU(h))
	}
	res, err := eng.FitTable(in)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// TemplateCmd reads a template.
type TemplateCmd struct {
	Path    string `arg:"" help:"Path to a .pptx template" type:"existingfile"`
	Layouts string `help:"Layouts JSON file" type:"existingfile"`
}

func (c *TemplateCmd) Run(eng *engine.Engine, w io.Writer) error {
	res, err := eng.ReadTemplate(c.Path, c.Layouts)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// source turns a positional argument into a deck source; "-" reads the
// deck from stdin.
func source(arg, format string) (engine.SourceInput, error) {
	if arg != "-" {
		return engine.SourceInput{Source: arg}, nil
	}
	content, err := readArg(arg, os.Stdin)
	if err != nil {
		return engine.SourceInput{}, err
	}
	return engine.SourceInput{Content: content, Format: format}, nil
}

// ConvertCmd parses a deck source.
type ConvertCmd struct {
	Source string `arg:"" help:"Deck file, URL, or - for stdin"`
	Format string `help:"Format of stdin content" enum:"markdown,json,html" default:"markdown"`
}

func (c *ConvertCmd) Run(ctx context.Context, eng *engine.Engine, w io.Writer) error {
	in, err := source(c.Source, c.Format)
	if err != nil {
		return err
	}
	d, err := eng.ConvertDeck(ctx, in)
	if err != nil {
		return err
	}
	return writeJSON(w, d)
}

// PlanCmd plans a deck.
type PlanCmd struct {
	Source       string            `arg:"" help:"Deck file, URL, or - for stdin"`
	Template     string            `help:"Path to a .pptx template" type:"existingfile"`
	Presentation string            `help:"Presentation JSON from presentations.get; binds layout IDs and stands in for --template" type:"existingfile"`
	Format       string            `help:"Format of stdin content" enum:"markdown,json,html" default:"markdown"`
	Layouts      string            `help:"Layouts JSON file" type:"existingfile"`
	LayoutIDs    map[string]string `name:"layout-id" help:"Layout name to presentation layout ID (name=id;...)"`
	MasterID     string            `name:"master-id" help:"Master page that receives global replacements"`
	Salt         string            `help:"Mixed into generated object IDs"`
	Batch        bool              `help:"Print only the batch-update request body"`
	BatchSize    int               `name:"batch-size" help:"Split the requests into batches of at most this many"`
}

func (c *PlanCmd) Run(ctx context.Context, eng *engine.Engine, w io.Writer) error {
	in, err := source(c.Source, c.Format)
	if err != nil {
		return err
	}
	if c.Template == "" && c.Presentation == "" {
		return errors.New("--template or --presentation is required")
	}
	pin := engine.PlanInput{
		SourceInput: in,
		Template:    c.Template,
		Layouts:     c.Layouts,
		LayoutIDs:   c.LayoutIDs,
		MasterID:    c.MasterID,
		Salt:        c.Salt,
		BatchSize:   c.BatchSize,
	}
	if c.Presentation != "" {
		data, err := os.ReadFile(c.Presentation)
		if err != nil {
			return fmt.Errorf("read presentation: %w", err)
		}
		pin.Presentation = string(data)
	}
	res, err := eng.PlanDeck(ctx, pin)
	if err != nil {
		return err
	}
	for _, warn := range res.Warnings {
		logging.Warn("plan_warning", "detail", warn)
	}
	switch {
	case c.Batch && res.Batches != nil:
		return writeJSON(w, res.Batches)
	case c.Batch:
		return writeJSON(w, res.Batch)
	}
	return writeJSON(w, res)
}

// VerifyCmd runs the second table fit pass.
type VerifyCmd struct {
	Page  string `arg:"" help:"Slide page JSON from presentations.pages.get, or - for stdin"`
	Check string `arg:"" help:"Table check JSON (a plan's slides[].table)" type:"existingfile"`
}

func (c *VerifyCmd) Run(eng *engine.Engine, w io.Writer) error {
	page, err := readFile(c.Page, os.Stdin)
	if err != nil {
		return fmt.Errorf("read slide page: %w", err)
	}
	data, err := os.ReadFile(c.Check)
	if err != nil {
		return fmt.Errorf("read check: %w", err)
	}
	in := engine.VerifyTableInput{Page: string(page)}
	if err := json.Unmarshal(data, &in.Check); err != nil {
		return fmt.Errorf("decode check: %w", err)
	}
	res, err := eng.VerifyTable(in)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// NotesCmd builds a speaker notes request.
type NotesCmd struct {
	Page  string `arg:"" help:"Slide page JSON from presentations.pages.get, or - for stdin"`
	Notes string `help:"Speaker notes text" required:""`
}

func (c *NotesCmd) Run(eng *engine.Engine, w io.Writer) error {
	page, err := readFile(c.Page, os.Stdin)
	if err != nil {
		return fmt.Errorf("read slide page: %w", err)
	}
	res, err := eng.SpeakerNotes(engine.NotesInput{Page: string(page), Notes: c.Notes})
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

// InfoCmd prints engine information.
type InfoCmd struct{}

func (c *InfoCmd) Run(ctx context.Context, eng *engine.Engine, w io.Writer) error {
	_, err := io.WriteString(w, eng.Info(ctx))
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(w io.Writer) error {
	_, err := fmt.Fprintf(w, "slidesmith version %s\n", config.Version)
	return err
}

// newParser builds the kong parser with the engine and output bound for
// command Run methods.
func newParser(cli *CLI, eng *engine.Engine, w io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("slidesmith"),
		kong.Description("Slide engine: rich text, placeholder geometry, image and table fitting, deck planning"),
		kong.UsageOnError(),
		kong.WithHyphenPrefixedParameters(true),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Bind(eng),
		kong.BindTo(w, (*io.Writer)(nil)),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
}

func main() {
	cfg := config.Load()
	eng, err := engine.New(cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli CLI
	parser, err := newParser(&cli, eng, os.Stdout)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logging.InitLogger(logging.ParseLevel(strings.ToLower(cli.LogLevel)), logging.ParseFormat(cfg.LogFormat), os.Stderr)
	ctx.FatalIfErrorf(ctx.Run())
}
