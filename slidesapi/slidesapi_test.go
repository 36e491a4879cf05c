package slidesapi

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"google.golang.org/api/slides/v1"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/geometry"
	"github.com/Cortexa-LLC/mcp/src/slidesmith/richtext"
)

func compile(t *testing.T, lines ...string) *richtext.Compiled {
	t.Helper()
	c, err := richtext.NewCompiler(richtext.DefaultOptions())
	if err != nil {
		t.Fatalf("NewCompiler: %v", err)
	}
	return c.Compile("body", lines)
}

func TestRequests_OneRequestPerOperation(t *testing.T) {
	out := compile(t, "- **a** *b*", "  - c", "plain")
	reqs := Requests(out.Ops)
	if len(reqs) != len(out.Ops) {
		t.Fatalf("%d requests for %d ops", len(reqs), len(out.Ops))
	}

	ins := reqs[0].InsertText
	if ins == nil || ins.ObjectId != "body" || ins.Text != "a b\nc\nplain" || ins.CellLocation != nil {
		t.Fatalf("insert = %+v", ins)
	}

	bold := reqs[1].UpdateTextStyle
	if bold == nil || !bold.Style.Bold || bold.Fields != "bold" {
		t.Fatalf("bold = %+v", bold)
	}
	if bold.TextRange.Type != "FIXED_RANGE" || *bold.TextRange.StartIndex != 0 || *bold.TextRange.EndIndex != 1 {
		t.Errorf("bold range = %+v", bold.TextRange)
	}

	bullets := reqs[3].CreateParagraphBullets
	if bullets == nil || bullets.BulletPreset != richtext.PresetDisc || *bullets.TextRange.EndIndex != 5 {
		t.Fatalf("bullets = %+v", bullets)
	}

	indent := reqs[4].UpdateParagraphStyle
	if indent == nil || indent.Fields != "indentStart" {
		t.Fatalf("indent = %+v", indent)
	}
	if d := indent.Style.IndentStart; d.Magnitude != 18 || d.Unit != "PT" {
		t.Errorf("indent dimension = %+v", d)
	}
}

func TestRequest_BoldItalicTogether(t *testing.T) {
	r := Request(richtext.ApplyStyle{ObjectID: "x", Range: richtext.Range{Start: 1, End: 2}, Bold: true, Italic: true}, nil)
	if r.UpdateTextStyle.Fields != "bold,italic" || !r.UpdateTextStyle.Style.Italic {
		t.Errorf("style = %+v", r.UpdateTextStyle)
	}
	if Request(richtext.ApplyStyle{ObjectID: "x"}, nil) != nil {
		t.Errorf("style with no attributes should produce no request")
	}
}

func TestRequest_EmptyRangeDropped(t *testing.T) {
	empty := richtext.Range{Start: 3, End: 3}
	for _, op := range []richtext.Operation{
		richtext.ApplyStyle{ObjectID: "x", Range: empty, Bold: true},
		richtext.ApplyBullet{ObjectID: "x", Range: empty, Preset: "BULLET_DISC_CIRCLE_SQUARE"},
		richtext.ApplyIndent{ObjectID: "x", Range: empty, MagnitudePt: 18},
	} {
		if r := Request(op, nil); r != nil {
			t.Errorf("%T over an empty range produced %+v", op, r)
		}
	}
	if Request(richtext.InsertText{ObjectID: "x", Text: "a"}, nil) == nil {
		t.Error("insert has no range and must not be dropped")
	}
}

func TestCellRequests_AddressByLocation(t *testing.T) {
	c, err := richtext.NewCompiler(richtext.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	out := c.CompileCell("tbl", "**Head**")
	reqs := CellRequests(out.Ops, 0, 2)
	if len(reqs) != 2 {
		t.Fatalf("got %d requests", len(reqs))
	}
	loc := reqs[0].InsertText.CellLocation
	if loc == nil || loc.RowIndex != 0 || loc.ColumnIndex != 2 {
		t.Errorf("insert location = %+v", loc)
	}
	if reqs[1].UpdateTextStyle.CellLocation.ColumnIndex != 2 {
		t.Errorf("style location = %+v", reqs[1].UpdateTextStyle.CellLocation)
	}
}

func TestCreateImage_TruncatesToWholeEMU(t *testing.T) {
	r := CreateImage("img", "p1", "https://example.com/a.png", geometry.Box{X: 1.7, Y: 2.9, Width: 100.9, Height: 50.2})
	props := r.CreateImage.ElementProperties
	if props.PageObjectId != "p1" || props.Transform.TranslateX != 1 || props.Transform.TranslateY != 2 {
		t.Errorf("transform = %+v", props.Transform)
	}
	if props.Size.Width.Magnitude != 100 || props.Size.Height.Magnitude != 50 || props.Size.Width.Unit != "EMU" {
		t.Errorf("size = %+v %+v", props.Size.Width, props.Size.Height)
	}
}

func TestTableRequests(t *testing.T) {
	ct := CreateTable("t", "p", 3, 2, geometry.Box{Width: 1000, Height: 500})
	if ct.CreateTable.Rows != 3 || ct.CreateTable.Columns != 2 {
		t.Errorf("create table = %+v", ct.CreateTable)
	}

	align := MiddleAlignCells("t", 3, 2).UpdateTableCellProperties
	if align.TableRange.RowSpan != 3 || align.TableRange.ColumnSpan != 2 || align.TableCellProperties.ContentAlignment != "MIDDLE" {
		t.Errorf("alignment = %+v", align)
	}

	widths := ColumnWidths("t", []geometry.EMU{10, 2000000})
	if len(widths) != 2 {
		t.Fatalf("got %d width requests", len(widths))
	}
	if w := widths[0].UpdateTableColumnProperties.TableColumnProperties.ColumnWidth.Magnitude; w != 32*12700 {
		t.Errorf("narrow column width = %v, want 32pt", w)
	}

	fonts := FontSize("t", [][]string{{"a", ""}, {"", "b"}}, 9)
	if len(fonts) != 2 {
		t.Fatalf("font requests = %d, want 2 (empty cells skipped)", len(fonts))
	}
	if loc := fonts[1].UpdateTextStyle.CellLocation; loc.RowIndex != 1 || loc.ColumnIndex != 1 {
		t.Errorf("second font cell = %+v", loc)
	}
	if fonts[0].UpdateTextStyle.Style.FontSize.Magnitude != 9 {
		t.Errorf("font size = %+v", fonts[0].UpdateTextStyle.Style.FontSize)
	}
}

func TestCreateSlideAndReplace(t *testing.T) {
	r := CreateSlide("s1", "layout-1", -1, []PlaceholderMapping{{Type: "TITLE", ObjectID: "s1_title"}})
	cs := r.CreateSlide
	if cs.SlideLayoutReference.LayoutId != "layout-1" || cs.InsertionIndex != 0 {
		t.Errorf("create slide = %+v", cs)
	}
	if len(cs.PlaceholderIdMappings) != 1 || cs.PlaceholderIdMappings[0].LayoutPlaceholder.Type != "TITLE" {
		t.Errorf("mappings = %+v", cs.PlaceholderIdMappings)
	}

	rt := ReplaceAllText("{{Workshop Title}}", "Go", "m1").ReplaceAllText
	if rt.ContainsText.Text != "{{Workshop Title}}" || rt.ReplaceText != "Go" || rt.PageObjectIds[0] != "m1" {
		t.Errorf("replace = %+v", rt)
	}
}

func TestBatchJSONShape(t *testing.T) {
	out := compile(t, "- *x*", "    - y")
	b, err := json.Marshal(NewBatch(Requests(out.Ops)))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"insertText"`, `"updateTextStyle"`, `"createParagraphBullets"`, `"indentStart"`, `"FIXED_RANGE"`, `"magnitude":36`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("batch JSON missing %s: %s", want, b)
		}
	}
}

func testPage() *slides.Page {
	dim := func(v float64) *slides.Dimension { return &slides.Dimension{Magnitude: v, Unit: "EMU"} }
	return &slides.Page{
		ObjectId: "p1",
		PageElements: []*slides.PageElement{
			{
				ObjectId:  "title",
				Size:      &slides.Size{Width: dim(8000000), Height: dim(800000)},
				Transform: &slides.AffineTransform{ScaleX: 1, ScaleY: 1, TranslateX: 300000, TranslateY: 200000, Unit: "EMU"},
				Shape:     &slides.Shape{Placeholder: &slides.Placeholder{Type: "CENTERED_TITLE"}},
			},
			{
				ObjectId:  "sub",
				Size:      &slides.Size{Width: dim(3000000), Height: dim(100000)},
				Transform: &slides.AffineTransform{ScaleX: -1, ScaleY: 2, TranslateX: 0, TranslateY: 4900000, Unit: "EMU"},
				Shape:     &slides.Shape{Placeholder: &slides.Placeholder{Type: "SUBTITLE"}},
			},
			{ObjectId: "num", Shape: &slides.Shape{Placeholder: &slides.Placeholder{Type: "SLIDE_NUMBER"}}},
			{ObjectId: "box", Shape: &slides.Shape{ShapeType: "TEXT_BOX"}},
			{
				ObjectId: "tbl",
				Table: &slides.Table{TableRows: []*slides.TableRow{
					{RowHeight: dim(400000), TableCells: []*slides.TableCell{
						{Text: &slides.TextContent{TextElements: []*slides.TextElement{{TextRun: &slides.TextRun{Content: "Name\n"}}}}},
						{Text: &slides.TextContent{TextElements: []*slides.TextElement{{TextRun: &slides.TextRun{Content: "Value\n"}}}}},
					}},
					{RowHeight: &slides.Dimension{Magnitude: 20, Unit: "PT"}, TableCells: []*slides.TableCell{
						{Text: &slides.TextContent{TextElements: []*slides.TextElement{
							{TextRun: &slides.TextRun{Content: "al"}},
							{TextRun: &slides.TextRun{Content: "pha\n"}},
						}}},
						{},
					}},
				}},
			},
		},
		SlideProperties: &slides.SlideProperties{
			NotesPage: &slides.Page{NotesProperties: &slides.NotesProperties{SpeakerNotesObjectId: "notes"}},
		},
	}
}

func TestRegionsFromPage(t *testing.T) {
	regions := RegionsFromPage(testPage())
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2: %+v", len(regions), regions)
	}
	if regions[0].Role != geometry.RoleTitle || regions[0].X != 300000 {
		t.Errorf("title region = %+v", regions[0])
	}
	sub := regions[1].Box()
	if sub.Width != 3000000 || sub.Height != 200000 {
		t.Errorf("mirrored subtitle box = %s", sub)
	}
	if RegionsFromPage(nil) != nil {
		t.Errorf("nil page should yield no regions")
	}
}

func TestSpeakerNotesID(t *testing.T) {
	p := testPage()
	if id := SpeakerNotesID(p); id != "notes" {
		t.Errorf("notes id = %q", id)
	}
	if id := SpeakerNotesID(&slides.Page{}); id != "" {
		t.Errorf("notes id without notes page = %q", id)
	}
}

func TestMeasuredTable(t *testing.T) {
	m, err := MeasuredTable(testPage(), "tbl")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(m.Content.Headers, ",") != "Name,Value" {
		t.Errorf("headers = %q", m.Content.Headers)
	}
	if len(m.Content.Rows) != 1 || m.Content.Rows[0][0] != "alpha" || m.Content.Rows[0][1] != "" {
		t.Errorf("rows = %q", m.Content.Rows)
	}
	if m.Total() != 400000+20*12700 {
		t.Errorf("total = %v", m.Total())
	}

	_, err = MeasuredTable(testPage(), "missing")
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("error = %v, want ErrTableNotFound", err)
	}
}

func TestPageSize(t *testing.T) {
	if got := PageSize(nil); got != geometry.DefaultPage {
		t.Errorf("nil presentation page = %+v", got)
	}
	p := &slides.Presentation{PageSize: &slides.Size{
		Width:  &slides.Dimension{Magnitude: 720, Unit: "PT"},
		Height: &slides.Dimension{Magnitude: 540, Unit: "PT"},
	}}
	if got := PageSize(p); got.Width != 9144000 || got.Height != 6858000 {
		t.Errorf("4:3 page = %+v", got)
	}
}

func TestSplitBatches(t *testing.T) {
	reqs := make([]*slides.Request, 7)
	for i := range reqs {
		reqs[i] = ReplaceAllText("{{x}}", "y")
	}
	batches := SplitBatches(reqs, 3)
	if len(batches) != 3 || len(batches[0]) != 3 || len(batches[2]) != 1 {
		t.Errorf("batch sizes wrong: %d batches", len(batches))
	}
	if got := SplitBatches(reqs, 0); len(got) != 1 || len(got[0]) != 7 {
		t.Errorf("unbounded split = %d batches", len(got))
	}
	if SplitBatches(nil, 3) != nil {
		t.Errorf("empty input should give no batches")
	}
}

func TestTemplateFromPresentation(t *testing.T) {
	layout := testPage()
	layout.ObjectId = "layout1"
	layout.LayoutProperties = &slides.LayoutProperties{Name: "TITLE_AND_BODY", DisplayName: "Title and body"}
	p := &slides.Presentation{
		PageSize: &slides.Size{
			Width:  &slides.Dimension{Magnitude: 720, Unit: "PT"},
			Height: &slides.Dimension{Magnitude: 405, Unit: "PT"},
		},
		Layouts: []*slides.Page{
			layout,
			{ObjectId: "layout2", LayoutProperties: &slides.LayoutProperties{Name: "BLANK"}},
		},
	}

	ids := LayoutIDs(p)
	if ids["Title and body"] != "layout1" || ids["BLANK"] != "layout2" {
		t.Errorf("ids = %v", ids)
	}

	tmpl := Template(p)
	if tmpl.Page.Width != 9144000 || tmpl.Page.Height != 5143500 {
		t.Errorf("page = %+v", tmpl.Page)
	}
	l, ok := tmpl.Layout("Title and body")
	if !ok || l.ID != "layout1" {
		t.Fatalf("layout = %+v, %v", l, ok)
	}
	if len(l.Placeholders) != 2 || l.Placeholders[0].Type != "CENTERED_TITLE" || l.Placeholders[1].Region.ObjectID != "sub" {
		t.Errorf("placeholders = %+v", l.Placeholders)
	}
	if got := Template(nil); len(got.Layouts) != 0 || got.Page != geometry.DefaultPage {
		t.Errorf("nil presentation = %+v", got)
	}
}
