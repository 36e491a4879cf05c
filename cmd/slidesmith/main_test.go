package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/config"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/engine"
)

func createTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// run parses args and runs the selected command, returning its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	eng, err := engine.New(config.Load(), nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	var out bytes.Buffer
	var cli CLI
	parser, err := newParser(&cli, eng, &out)
	if err != nil {
		t.Fatalf("newParser: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run()
	return out.String(), err
}

func TestVersionCmd_Run(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "slidesmith version "+config.Version+"\n" {
		t.Errorf("out = %q", out)
	}
}

func TestCompileCmd_Run(t *testing.T) {
	for _, args := range [][]string{
		{"compile", "--target", "s1", "--text", "- *a*"},
		{"compile", "--target=s1", "--text=- *a*"},
		{"compile", "-t", "- *a*", "--target", "s1"},
	} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		var res engine.CompileResult
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if res.PlainText != "a" || res.Requests[0].InsertText.ObjectId != "s1" {
			t.Errorf("%v: res = %+v", args, res)
		}
	}
}

func TestCompileCmd_RequiresText(t *testing.T) {
	if _, err := run(t, "compile"); err == nil || !strings.Contains(err.Error(), "--text") {
		t.Errorf("err = %v", err)
	}
}

func TestFitImageCmd_Run(t *testing.T) {
	out, err := run(t, "fit-image", "--area", "0,0,1000,1000", "--aspect", "2")
	if err != nil {
		t.Fatal(err)
	}
	var res engine.ImageResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Box.Width != 1000 || res.Box.Height != 500 || res.Box.Y != 0 {
		t.Errorf("res = %+v", res)
	}

	if _, err := run(t, "fit-image", "--area", "0,0,1", "--aspect", "2"); err == nil {
		t.Error("expected an error for a short --area")
	}
	if _, err := run(t, "fit-image", "--area", "0,0,1,1", "--mode", "diagonal"); err == nil {
		t.Error("expected an enum error for --mode")
	}
}

func TestFitTableCmd_Run(t *testing.T) {
	table := createTestFile(t, "table.json", `{"headers":["a","b"],"rows":[["1","2"]]}`)
	out, err := run(t, "fit-table", table, "--width", "8000000", "--height", "4000000")
	if err != nil {
		t.Fatal(err)
	}
	var res engine.TableResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Fits || res.FontSizePt != 12 {
		t.Errorf("res = %+v", res)
	}

	out, err = run(t, "fit-table", table, "--width", "8000000", "--height", "4000000",
		"--measured", "3000000,3000000", "--font", "12")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.FontSizePt >= 12 {
		t.Errorf("measured overflow should shrink the font: %+v", res)
	}
}

func TestConvertCmd_Run(t *testing.T) {
	src := createTestFile(t, "deck.md", "# One\n- a\n---\n# Two\n| k | v |\n|---|---|\n| x | 1 |\n")
	out, err := run(t, "convert", src)
	if err != nil {
		t.Fatal(err)
	}
	var d deck.Deck
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(d.Slides) != 2 || d.Slides[1].Class() != deck.ClassTableFullscreen {
		t.Errorf("deck = %+v", d)
	}
}

func TestPlanCmd_RequiresTemplate(t *testing.T) {
	src := createTestFile(t, "deck.md", "# One\n")
	if _, err := run(t, "plan", src); err == nil || !strings.Contains(err.Error(), "--template") {
		t.Errorf("err = %v", err)
	}
}

const slidePage = `{"objectId":"s1","pageElements":[
	{"objectId":"t","shape":{"placeholder":{"type":"TITLE"}},
	 "size":{"width":{"magnitude":1000,"unit":"EMU"},"height":{"magnitude":100,"unit":"EMU"}},
	 "transform":{"scaleX":1,"scaleY":1,"translateY":100,"unit":"EMU"}},
	{"objectId":"tbl","table":{"tableRows":[
	 {"rowHeight":{"magnitude":3000000,"unit":"EMU"},"tableCells":[{"text":{"textElements":[{"textRun":{"content":"a\n"}}]}}]},
	 {"rowHeight":{"magnitude":3000000,"unit":"EMU"},"tableCells":[{"text":{"textElements":[{"textRun":{"content":"1\n"}}]}}]}]}}],
	"slideProperties":{"notesPage":{"notesProperties":{"speakerNotesObjectId":"n1"}}}}`

func TestRegionsCmd_SlidePage(t *testing.T) {
	out, err := run(t, "regions", "--slide-page", createTestFile(t, "page.json", slidePage))
	if err != nil {
		t.Fatal(err)
	}
	var res engine.RegionsResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Bounds.Title.ObjectID != "t" || res.Fullscreen.Y != 200 {
		t.Errorf("res = %+v", res)
	}

	if _, err := run(t, "regions"); err == nil || !strings.Contains(err.Error(), "--slide-page") {
		t.Errorf("err = %v", err)
	}
}

func TestVerifyCmd_Run(t *testing.T) {
	page := createTestFile(t, "page.json", slidePage)
	check := createTestFile(t, "check.json", `{"tableId":"tbl","content":{"headers":["a"],"rows":[["1"]]},
		"target":{"x":0,"y":0,"width":8000000,"height":4000000},"fontPt":12}`)
	out, err := run(t, "verify-table", page, check)
	if err != nil {
		t.Fatal(err)
	}
	var res engine.VerifyTableResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.FontSizePt >= 12 || res.Batch == nil {
		t.Errorf("overflowing table should shrink: %+v", res)
	}
}

func TestNotesCmd_Run(t *testing.T) {
	out, err := run(t, "notes", createTestFile(t, "page.json", slidePage), "--notes", "- remember this")
	if err != nil {
		t.Fatal(err)
	}
	var res engine.NotesResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.NotesID != "n1" || res.Batch.Requests[0].InsertText.Text != "- remember this" {
		t.Errorf("res = %+v", res)
	}
}

func TestPlanCmd_Presentation(t *testing.T) {
	src := createTestFile(t, "deck.md", "# One\n- a\n- b\n---\n# Two\n- c\n")
	pres := createTestFile(t, "pres.json", `{"layouts":[{"objectId":"g1",
		"layoutProperties":{"displayName":"Title and Content"},
		"pageElements":[
		 {"objectId":"lt","shape":{"placeholder":{"type":"TITLE"}},
		  "size":{"width":{"magnitude":8000000,"unit":"EMU"},"height":{"magnitude":700000,"unit":"EMU"}},
		  "transform":{"scaleX":1,"scaleY":1,"translateY":200000,"unit":"EMU"}},
		 {"objectId":"lb","shape":{"placeholder":{"type":"BODY","index":1}},
		  "size":{"width":{"magnitude":8000000,"unit":"EMU"},"height":{"magnitude":3000000,"unit":"EMU"}},
		  "transform":{"scaleX":1,"scaleY":1,"translateY":1000000,"unit":"EMU"}}]}]}`)
	out, err := run(t, "plan", src, "--presentation", pres, "--batch-size", "3", "--batch")
	if err != nil {
		t.Fatal(err)
	}
	var batches []slides.BatchUpdatePresentationRequest
	if err := json.Unmarshal([]byte(out), &batches); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(batches) < 2 || len(batches[0].Requests) != 3 {
		t.Fatalf("batches = %d", len(batches))
	}
	if cs := batches[0].Requests[0].CreateSlide; cs == nil || cs.SlideLayoutReference.LayoutId != "g1" {
		t.Errorf("first request = %+v", batches[0].Requests[0])
	}
}

func TestInfoCmd_Run(t *testing.T) {
	out, err := run(t, "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Plan cache") {
		t.Errorf("out = %s", out)
	}
}
