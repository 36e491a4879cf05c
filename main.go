package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/engine"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/logging"
)

// Server identity constants.
const (
	serverName    = "slidesmith"
	serverVersion = config.Version
)

// MCP tool parameter keys, shared between schema definitions and argument
// extraction.
const (
	argText      = "text"
	argTarget    = "target"
	argCell      = "cell"
	argTemplate  = "template"
	argLayout    = "layout"
	argRegions   = "regions"
	argPage      = "page"
	argAspect    = "aspect"
	argSource    = "source"
	argPageNum   = "page_number"
	argArea      = "area"
	argMode      = "mode"
	argTable     = "table"
	argWidth     = "width"
	argHeight    = "height"
	argMeasured  = "measured_rows"
	argFont      = "current_font"
	argContent   = "content"
	argFormat    = "format"
	argLayouts   = "layouts"
	argLayoutIDs = "layout_ids"
	argMasterID  = "master_id"
	argSalt      = "salt"
	argSlidePage = "slide_page"
	argPres      = "presentation"
	argBatchSize = "batch_size"
	argCheck     = "check"
	argNotes     = "notes"
)

func main() {
	cfg := config.Load()
	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat), os.Stderr)

	eng, err := engine.New(cfg, nil)
	if err != nil {
		logging.Error("engine_init", "error", err.Error())
		os.Exit(1)
	}

	s := server.NewMCPServer(serverName, serverVersion)
	registerTools(s, eng)

	logging.ServerStartup(serverName, serverVersion, "stdio", "max_file_mb", cfg.MaxFileSizeMB())
	if err := server.ServeStdio(s); err != nil {
		logging.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

// toolHandler is a tool body returning a value to be sent back as JSON.
type toolHandler func(ctx context.Context, args map[string]any) (any, error)

// errArg reports a missing or malformed argument.
var errArg = errors.New("argument")

// wrap adapts a toolHandler to the server: it tags the context with the
// tool name, times and logs the call, and encodes the result. Handler
// errors are returned to the client as tool errors, never as protocol
// errors.
func wrap(name string, h toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logging.WithTool(ctx, name)
		start := time.Now()
		out, err := h(ctx, req.Params.Arguments)
		logging.ToolCall(ctx, time.Since(start), err)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if s, ok := out.(string); ok {
			return mcp.NewToolResultText(s), nil
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError("encode result: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// registerTools binds MCP tool definitions to their handlers.
func registerTools(s *server.MCPServer, eng *engine.Engine) {
	s.AddTools(tools(eng)...)
}

// tools returns every tool definition bound to eng.
func tools(eng *engine.Engine) []server.ServerTool {
	sourceOpts := []mcp.ToolOption{
		mcp.WithString(argSource, mcp.Description("Deck file path or http/https/file URL (md, json, html, docx, xlsx, csv)")),
		mcp.WithString(argContent, mcp.Description("Inline deck content, used instead of source")),
		mcp.WithString(argFormat, mcp.Description("Format of inline content: markdown (default), json or html")),
	}

	return []server.ServerTool{{
		Tool: mcp.NewTool("compile_rich_text",
			mcp.WithDescription("Compile Markdown-like text (bullets, numbered items, **bold**, *italic*, "+
				"space indentation) into plain text plus ordered Google Slides batch-update requests."),
			mcp.WithString(argText, mcp.Required(), mcp.Description("Text to compile; lines separated by newlines")),
			mcp.WithString(argTarget, mcp.Description("Object ID of the target shape (default BODY)")),
			mcp.WithBoolean(argCell, mcp.Description("Compile as a table cell: list markers stay literal")),
		),
		Handler: wrap("compile_rich_text", func(_ context.Context, args map[string]any) (any, error) {
			text, ok := args[argText].(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s is required", errArg, argText)
			}
			return eng.CompileRichText(stringArg(args, argTarget), text, boolArg(args, argCell)), nil
		}),
	}, {
		Tool: mcp.NewTool("resolve_placeholders",
			mcp.WithDescription("Resolve placeholder regions into title, body, picture, header and footer bounds "+
				"and derive the full-screen, side and table areas. Regions come from a .pptx template "+
				"layout, from a slide page fetched with presentations.pages.get, or are passed directly as JSON."),
			mcp.WithString(argTemplate, mcp.Description("Absolute path of a .pptx template")),
			mcp.WithString(argLayout, mcp.Description("Layout name within the template")),
			mcp.WithString(argSlidePage, mcp.Description("JSON page as returned by presentations.pages.get")),
			mcp.WithString(argRegions, mcp.Description(`JSON array of regions: [{"objectId","role","x","y","width","height","scaleX","scaleY"}]`)),
			mcp.WithString(argPage, mcp.Description(`JSON page size in EMU: {"width","height"}`)),
		),
		Handler: wrap("resolve_placeholders", func(_ context.Context, args map[string]any) (any, error) {
			in := engine.RegionsInput{Template: stringArg(args, argTemplate), Layout: stringArg(args, argLayout)}
			page, err := jsonText(args, argSlidePage)
			if err != nil {
				return nil, err
			}
			in.SlidePage = page
			if err := jsonArg(args, argRegions, &in.Regions); err != nil {
				return nil, err
			}
			if err := jsonArg(args, argPage, &in.Page); err != nil {
				return nil, err
			}
			if in.Template == "" && in.SlidePage == "" && len(in.Regions) == 0 {
				return nil, fmt.Errorf("%w: %s, %s or %s is required", errArg, argTemplate, argSlidePage, argRegions)
			}
			return eng.ResolvePlaceholders(in)
		}),
	}, {
		Tool: mcp.NewTool("fit_image",
			mcp.WithDescription("Place an image of a given aspect ratio inside an area. Fullscreen pins it to the "+
				"top and centers it horizontally; left_half pins it left and centers it vertically. "+
				"A local image or PDF source is probed for its aspect ratio."),
			mcp.WithString(argArea, mcp.Required(), mcp.Description(`JSON box in EMU: {"x","y","width","height"}`)),
			mcp.WithNumber(argAspect, mcp.Description("Width divided by height")),
			mcp.WithString(argSource, mcp.Description("Local image or PDF path probed when aspect is omitted")),
			mcp.WithNumber(argPageNum, mcp.Description("PDF page (1-based)")),
			mcp.WithString(argMode, mcp.Description("fullscreen (default) or left_half")),
		),
		Handler: wrap("fit_image", func(_ context.Context, args map[string]any) (any, error) {
			in := engine.ImageInput{
				Aspect: numberArg(args, argAspect),
				Source: stringArg(args, argSource),
				Page:   int(numberArg(args, argPageNum)),
				Mode:   stringArg(args, argMode),
			}
			if err := requiredJSON(args, argArea, &in.Area); err != nil {
				return nil, err
			}
			return eng.FitImage(in)
		}),
	}, {
		Tool: mcp.NewTool("fit_table",
			mcp.WithDescription("Choose column widths and the largest font size at which a table fits its area. "+
				"With measured row heights from a rendered table the estimate is calibrated and re-run."),
			mcp.WithString(argTable, mcp.Required(), mcp.Description(`JSON table: {"headers":[...],"rows":[[...]]}`)),
			mcp.WithNumber(argWidth, mcp.Required(), mcp.Description("Area width in EMU")),
			mcp.WithNumber(argHeight, mcp.Required(), mcp.Description("Area height in EMU")),
			mcp.WithString(argMeasured, mcp.Description("JSON array of measured row heights in EMU")),
			mcp.WithNumber(argFont, mcp.Description("Font size the table was rendered at")),
		),
		Handler: wrap("fit_table", func(_ context.Context, args map[string]any) (any, error) {
			in := engine.TableInput{
				Width:       geometry.EMU(numberArg(args, argWidth)),
				Height:      geometry.EMU(numberArg(args, argHeight)),
				CurrentFont: int(numberArg(args, argFont)),
			}
			if err := requiredJSON(args, argTable, &in.Table); err != nil {
				return nil, err
			}
			if err := jsonArg(args, argMeasured, &in.MeasuredRows); err != nil {
				return nil, err
			}
			return eng.FitTable(in)
		}),
	}, {
		Tool: mcp.NewTool("read_template",
			mcp.WithDescription("Read a .pptx template: page size, layouts and placeholder geometry, plus the "+
				"mapped layout names the template lacks."),
			mcp.WithString(argTemplate, mcp.Required(), mcp.Description("Absolute path of a .pptx template")),
			mcp.WithString(argLayouts, mcp.Description("Layouts JSON file (default: configured or built-in)")),
		),
		Handler: wrap("read_template", func(_ context.Context, args map[string]any) (any, error) {
			path := stringArg(args, argTemplate)
			if path == "" {
				return nil, fmt.Errorf("%w: %s is required", errArg, argTemplate)
			}
			return eng.ReadTemplate(path, stringArg(args, argLayouts))
		}),
	}, {
		Tool: mcp.NewTool("convert_deck", append([]mcp.ToolOption{
			mcp.WithDescription("Parse a deck source into slides: title, body lines, class, table, image, " +
				"speaker notes and deck-wide header and footer."),
		}, sourceOpts...)...),
		Handler: wrap("convert_deck", func(ctx context.Context, args map[string]any) (any, error) {
			return eng.ConvertDeck(ctx, sourceArg(args))
		}),
	}, {
		Tool: mcp.NewTool("plan_deck", append([]mcp.ToolOption{
			mcp.WithDescription("Plan a whole deck against a .pptx template or a fetched presentation: per-slide "+
				"batch-update requests, table verification checks, speaker notes and warnings. Plans are cached by content hash."),
			mcp.WithString(argTemplate, mcp.Description("Absolute path of a .pptx template")),
			mcp.WithString(argPres, mcp.Description("JSON presentation as returned by presentations.get; binds layout IDs "+
				"and stands in for the template when none is given")),
			mcp.WithNumber(argBatchSize, mcp.Description("Also split the requests into batches of at most this many")),
			mcp.WithString(argLayouts, mcp.Description("Layouts JSON file (default: configured or built-in)")),
			mcp.WithString(argLayoutIDs, mcp.Description("JSON object mapping layout names to presentation layout IDs")),
			mcp.WithString(argMasterID, mcp.Description("Master page that receives global replacements")),
			mcp.WithString(argSalt, mcp.Description("Mixed into generated object IDs")),
		}, sourceOpts...)...),
		Handler: wrap("plan_deck", func(ctx context.Context, args map[string]any) (any, error) {
			in := engine.PlanInput{
				SourceInput: sourceArg(args),
				Template:    stringArg(args, argTemplate),
				Layouts:     stringArg(args, argLayouts),
				MasterID:    stringArg(args, argMasterID),
				Salt:        stringArg(args, argSalt),
				BatchSize:   int(numberArg(args, argBatchSize)),
			}
			if err := jsonArg(args, argLayoutIDs, &in.LayoutIDs); err != nil {
				return nil, err
			}
			pres, err := jsonText(args, argPres)
			if err != nil {
				return nil, err
			}
			in.Presentation = pres
			return eng.PlanDeck(ctx, in)
		}),
	}, {
		Tool: mcp.NewTool("verify_table",
			mcp.WithDescription("Second table fit pass: measure a rendered table on a fetched slide page and "+
				"return font-size requests when it overflows its planned area."),
			mcp.WithString(argSlidePage, mcp.Required(), mcp.Description("JSON page as returned by presentations.pages.get")),
			mcp.WithString(argCheck, mcp.Required(), mcp.Description("JSON table check from a plan_deck slide (slides[].table)")),
		),
		Handler: wrap("verify_table", func(_ context.Context, args map[string]any) (any, error) {
			var in engine.VerifyTableInput
			if err := requiredJSON(args, argCheck, &in.Check); err != nil {
				return nil, err
			}
			page, err := requiredJSONText(args, argSlidePage)
			if err != nil {
				return nil, err
			}
			in.Page = page
			return eng.VerifyTable(in)
		}),
	}, {
		Tool: mcp.NewTool("speaker_notes",
			mcp.WithDescription("Build the request that fills the speaker notes of a slide fetched after creation."),
			mcp.WithString(argSlidePage, mcp.Required(), mcp.Description("JSON page as returned by presentations.pages.get")),
			mcp.WithString(argNotes, mcp.Required(), mcp.Description("Speaker notes text (plan_deck slides[].speakerNotes)")),
		),
		Handler: wrap("speaker_notes", func(_ context.Context, args map[string]any) (any, error) {
			notes := stringArg(args, argNotes)
			if notes == "" {
				return nil, fmt.Errorf("%w: %s is required", errArg, argNotes)
			}
			page, err := requiredJSONText(args, argSlidePage)
			if err != nil {
				return nil, err
			}
			return eng.SpeakerNotes(engine.NotesInput{Page: page, Notes: notes})
		}),
	}, {
		Tool: mcp.NewTool("get_engine_info",
			mcp.WithDescription("Return the engine version, active configuration, plan cache statistics and supported sources."),
		),
		Handler: wrap("get_engine_info", func(ctx context.Context, _ map[string]any) (any, error) {
			return eng.Info(ctx), nil
		}),
	}}
}

func sourceArg(args map[string]any) engine.SourceInput {
	return engine.SourceInput{
		Source:  stringArg(args, argSource),
		Content: stringArg(args, argContent),
		Format:  stringArg(args, argFormat),
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func numberArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// jsonArg decodes an optional structured argument into dst. Clients send
// either a JSON string or an already-decoded value.
func jsonArg(args map[string]any, key string, dst any) error {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	var data []byte
	if s, isString := v.(string); isString {
		if s == "" {
			return nil
		}
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(v); err != nil {
			return fmt.Errorf("%w %s: %v", errArg, key, err)
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w %s: %v", errArg, key, err)
	}
	return nil
}

// jsonText returns an optional structured argument as JSON text.
func jsonText(args map[string]any, key string) (string, error) {
	switch v := args[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w %s: %v", errArg, key, err)
		}
		return string(data), nil
	}
}

func requiredJSONText(args map[string]any, key string) (string, error) {
	s, err := jsonText(args, key)
	if err == nil && s == "" {
		err = fmt.Errorf("%w: %s is required", errArg, key)
	}
	return s, err
}

func requiredJSON(args map[string]any, key string, dst any) error {
	if v, ok := args[key]; !ok || v == nil || v == "" {
		return fmt.Errorf("%w: %s is required", errArg, key)
	}
	return jsonArg(args, key, dst)
}
