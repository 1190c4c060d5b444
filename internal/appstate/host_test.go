package appstate

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/editor"
	"github.com/example/annocanvas/internal/geometry"
)

var gray = color.RGBA{100, 100, 100, 255}

var testLabels = []annotation.Label{
	{ID: "car", Name: "Car", Color: "#FF0000"},
	{ID: "roof", Name: "Roof", Color: "#00FF00"},
}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(gray), image.Point{}, draw.Src)
	return img
}

type fakeLoader struct {
	img image.Image
	err error
}

func (f fakeLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	return f.img, f.err
}

type harness struct {
	*host
	sent    []any
	clock   time.Time
	changes [][]annotation.Annotation
	picked  []string
}

// newHarness returns a started host whose canvas is exactly 400x300, so a
// 400x300 image sits at scale 1 with its origin at the canvas corner.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	hs := &harness{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	base := []Option{
		WithImage(grayImage(400, 300)),
		WithEditorOptions(
			editor.WithLabels(testLabels),
			editor.WithSelectedLabel("car"),
			editor.WithIDGenerator(annotation.NewCounterGenerator("a")),
			editor.WithOnAnnotationsChange(func(l []annotation.Annotation) { hs.changes = append(hs.changes, l) }),
			editor.WithOnLabelSelectedChange(func(id string) { hs.picked = append(hs.picked, id) }),
		),
	}
	a := New(append(base, opts...)...)
	hs.host = newHost(a, 0, 0, func(e any) { hs.sent = append(hs.sent, e) })
	hs.spawn = func(fn func()) { fn() }
	hs.after = func(time.Duration, func()) {}
	hs.now = func() time.Time { return hs.clock }
	hs.handle(size.Event{WidthPx: hs.toolbarWidth + 400, HeightPx: headerHeight + 300 + bottomHeight})
	hs.start()
	hs.pump()
	if tr := hs.ed.Transform(); a.Image != nil && (tr.Scale != 1 || !tr.Offset.Eq(geometry.Pt(0, 0))) {
		t.Fatalf("unexpected transform %+v", tr)
	}
	return hs
}

// pump delivers queued background results to the host.
func (hs *harness) pump() {
	for len(hs.sent) > 0 {
		e := hs.sent[0]
		hs.sent = hs.sent[1:]
		if _, ok := e.(paint.Event); ok {
			continue
		}
		hs.handle(e)
	}
}

// mouseAt builds an event at an image pixel for the default fixture.
func (hs *harness) mouseAt(x, y float64, b mouse.Button, d mouse.Direction) mouse.Event {
	c := hs.canvasRect()
	return mouse.Event{X: float32(float64(c.Min.X) + x), Y: float32(float64(c.Min.Y) + y), Button: b, Direction: d}
}

func (hs *harness) click(x, y float64) {
	hs.handle(hs.mouseAt(x, y, mouse.ButtonLeft, mouse.DirPress))
	hs.handle(hs.mouseAt(x, y, mouse.ButtonLeft, mouse.DirRelease))
}

func (hs *harness) press(r rune, code key.Code, mods key.Modifiers) bool {
	return hs.handle(key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress})
}

func TestDragDrawsBox(t *testing.T) {
	hs := newHarness(t)
	hs.handle(hs.mouseAt(10, 10, mouse.ButtonLeft, mouse.DirPress))
	hs.handle(hs.mouseAt(50, 40, mouse.ButtonNone, mouse.DirNone))
	hs.handle(hs.mouseAt(50, 40, mouse.ButtonLeft, mouse.DirRelease))

	list := hs.ed.Annotations()
	if len(list) != 1 || list[0].Kind != annotation.KindBox || list[0].LabelID != "car" {
		t.Fatalf("annotations = %+v", list)
	}
	if p := list[0].Points; !p[0].Eq(geometry.Pt(10, 10)) || !p[1].Eq(geometry.Pt(50, 40)) {
		t.Fatalf("points = %+v", p)
	}
	if len(hs.changes) != 1 {
		t.Fatalf("changes = %d", len(hs.changes))
	}
}

func TestReleaseOutsideCanvasCommits(t *testing.T) {
	hs := newHarness(t)
	hs.handle(hs.mouseAt(10, 10, mouse.ButtonLeft, mouse.DirPress))
	hs.handle(hs.mouseAt(-20, 40, mouse.ButtonNone, mouse.DirNone))
	hs.handle(hs.mouseAt(-20, 40, mouse.ButtonLeft, mouse.DirRelease))

	list := hs.ed.Annotations()
	if len(list) != 1 {
		t.Fatalf("annotations = %+v", list)
	}
	if p := list[0].Points[1]; p.X != 0 || p.Y != 40 {
		t.Fatalf("second corner = %+v, want clamped to x=0", p)
	}
}

func TestDoubleClickClosesPolygon(t *testing.T) {
	hs := newHarness(t)
	hs.press('p', key.CodeP, 0)
	for _, p := range []geometry.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 80}} {
		hs.click(p.X, p.Y)
		hs.clock = hs.clock.Add(time.Second)
	}
	if hs.ed.InProgress() == nil || len(hs.ed.InProgress().Points) != 3 {
		t.Fatalf("in progress = %+v", hs.ed.InProgress())
	}
	// Second press of a double click on the last vertex.
	hs.clock = hs.clock.Add(-900 * time.Millisecond)
	hs.click(101, 81)

	list := hs.ed.Annotations()
	if len(list) != 1 || list[0].Kind != annotation.KindPolygon {
		t.Fatalf("annotations = %+v", list)
	}
	if n := len(list[0].Points); n != 3 {
		t.Fatalf("vertices = %d, want 3", n)
	}
	if hs.ed.InProgress() != nil {
		t.Fatal("polygon still open")
	}
}

func TestClickTracker(t *testing.T) {
	var c clickTracker
	t0 := time.Unix(0, 0)
	if _, double := c.press(geometry.Pt(5, 5), t0); double {
		t.Fatal("first press reported double")
	}
	if _, double := c.press(geometry.Pt(20, 5), t0.Add(100*time.Millisecond)); double {
		t.Fatal("distant press reported double")
	}
	first, double := c.press(geometry.Pt(22, 7), t0.Add(200*time.Millisecond))
	if !double || !first.Eq(geometry.Pt(20, 5)) {
		t.Fatalf("press = %+v %v", first, double)
	}
	if _, double := c.press(geometry.Pt(22, 7), t0.Add(300*time.Millisecond)); double {
		t.Fatal("third press reported double")
	}
	if _, double := c.press(geometry.Pt(22, 7), t0.Add(time.Second)); double {
		t.Fatal("slow press reported double")
	}
}

func TestToolbarButtons(t *testing.T) {
	hs := newHarness(t)
	center := func(b *CacheButton) (float32, float32) {
		r := b.Rect()
		return float32(r.Min.X+r.Dx()/2), float32(r.Min.Y+r.Dy()/2)
	}
	x, y := center(hs.kindButtons[2])
	hs.handle(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if hs.ed.Kind() != annotation.KindPoint {
		t.Fatalf("kind = %v", hs.ed.Kind())
	}
	x, y = center(hs.labelButtons[1])
	hs.handle(mouse.Event{X: x, Y: y, Button: mouse.ButtonNone, Direction: mouse.DirNone})
	if hs.hoverLabel != 1 {
		t.Fatalf("hover = %d", hs.hoverLabel)
	}
	hs.handle(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if hs.ed.SelectedLabel() != "roof" || len(hs.picked) != 1 || hs.picked[0] != "roof" {
		t.Fatalf("selected = %q picked = %v", hs.ed.SelectedLabel(), hs.picked)
	}
	if len(hs.ed.Annotations()) != 0 {
		t.Fatal("toolbar click drew a shape")
	}
}

func TestKeyBindings(t *testing.T) {
	hs := newHarness(t)
	hs.press('P', key.CodeP, key.ModShift)
	if hs.ed.Kind() != annotation.KindPolygon {
		t.Fatalf("kind = %v", hs.ed.Kind())
	}
	hs.press('b', key.CodeB, 0)
	if hs.ed.Kind() != annotation.KindBox {
		t.Fatalf("kind = %v", hs.ed.Kind())
	}
	hs.press(']', key.CodeRightSquareBracket, 0)
	if hs.ed.SelectedLabel() != "roof" {
		t.Fatalf("selected = %q", hs.ed.SelectedLabel())
	}
	hs.press('[', key.CodeLeftSquareBracket, 0)
	if hs.ed.SelectedLabel() != "car" {
		t.Fatalf("selected = %q", hs.ed.SelectedLabel())
	}

	hs.handle(hs.mouseAt(10, 10, mouse.ButtonLeft, mouse.DirPress))
	hs.press(-1, key.CodeEscape, 0)
	if hs.ed.InProgress() != nil {
		t.Fatal("escape did not cancel")
	}
	hs.handle(hs.mouseAt(10, 10, mouse.ButtonLeft, mouse.DirRelease))

	hs.handle(hs.mouseAt(5, 5, mouse.ButtonLeft, mouse.DirPress))
	hs.handle(hs.mouseAt(30, 30, mouse.ButtonLeft, mouse.DirRelease))
	if len(hs.ed.Annotations()) != 1 {
		t.Fatalf("annotations = %d", len(hs.ed.Annotations()))
	}
	hs.press(-1, key.CodeDeleteBackspace, 0)
	if len(hs.ed.Annotations()) != 0 {
		t.Fatal("backspace did not remove")
	}

	if !hs.press('s', key.CodeS, 0) {
		t.Fatal("plain s stopped the loop")
	}
	if hs.press('q', key.CodeQ, 0) {
		t.Fatal("q did not stop the loop")
	}
	if hs.ctx.Err() == nil {
		t.Fatal("quit did not cancel background work")
	}
}

func TestShortcutMatching(t *testing.T) {
	ctrlC := KeyShortcut{Rune: 'c', Modifiers: key.ModControl}
	ctrlShiftC := KeyShortcut{Rune: 'c', Modifiers: key.ModControl | key.ModShift}
	esc := KeyShortcut{Code: key.CodeEscape}
	cases := []struct {
		sc   KeyShortcut
		e    key.Event
		want bool
	}{
		{ctrlC, key.Event{Rune: 'c', Modifiers: key.ModControl}, true},
		{ctrlC, key.Event{Rune: 'c'}, false},
		{ctrlC, key.Event{Rune: 'c', Modifiers: key.ModControl | key.ModShift}, true},
		{ctrlShiftC, key.Event{Rune: 'c', Modifiers: key.ModControl}, false},
		{ctrlShiftC, key.Event{Rune: 'c', Modifiers: key.ModControl | key.ModShift}, true},
		{esc, key.Event{Rune: -1, Code: key.CodeEscape}, true},
		{esc, key.Event{Rune: -1, Code: key.CodeEscape, Modifiers: key.ModShift}, false},
	}
	for i, c := range cases {
		if got := c.sc.Matches(c.e); got != c.want {
			t.Errorf("case %d: Matches = %v, want %v", i, got, c.want)
		}
	}

	hs := newHarness(t)
	action, ok := hs.lookup(key.Event{Rune: 'C', Modifiers: key.ModControl | key.ModShift})
	if !ok || action != "copy-annotations" {
		t.Fatalf("lookup = %q %v", action, ok)
	}
}

func TestWheelZoomAndReset(t *testing.T) {
	hs := newHarness(t)
	before := hs.ed.ToImage(geometry.Pt(100, 100))
	hs.handle(hs.mouseAt(100, 100, mouse.ButtonWheelUp, mouse.DirStep))
	if s := hs.ed.Transform().Scale; s != 1.25 {
		t.Fatalf("scale = %v", s)
	}
	if after := hs.ed.ToImage(geometry.Pt(100, 100)); !after.Eq(before) {
		t.Fatalf("anchor moved from %+v to %+v", before, after)
	}
	hs.handle(hs.mouseAt(100, 100, mouse.ButtonWheelDown, mouse.DirStep))
	if s := hs.ed.Transform().Scale; s != 1 {
		t.Fatalf("scale = %v", s)
	}
	hs.press('=', key.CodeEqualSign, 0)
	hs.press('0', key.Code0, 0)
	if s := hs.ed.Transform().Scale; s != 1 {
		t.Fatalf("reset scale = %v", s)
	}
}

func TestMiddleDragPans(t *testing.T) {
	hs := newHarness(t)
	hs.handle(hs.mouseAt(100, 100, mouse.ButtonMiddle, mouse.DirPress))
	hs.handle(hs.mouseAt(110, 105, mouse.ButtonNone, mouse.DirNone))
	hs.handle(hs.mouseAt(110, 105, mouse.ButtonMiddle, mouse.DirRelease))
	if off := hs.ed.Transform().Offset; !off.Eq(geometry.Pt(10, 5)) {
		t.Fatalf("offset = %+v", off)
	}
	if hs.panning || len(hs.ed.Annotations()) != 0 || hs.ed.InProgress() != nil {
		t.Fatal("pan left state behind")
	}
	hs.press(-1, key.CodeLeftArrow, 0)
	if off := hs.ed.Transform().Offset; !off.Eq(geometry.Pt(0, 5)) {
		t.Fatalf("offset after arrow = %+v", off)
	}
}

func TestSave(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	hs := newHarness(t, WithOutput(out))
	hs.handle(hs.mouseAt(5, 5, mouse.ButtonLeft, mouse.DirPress))
	hs.handle(hs.mouseAt(30, 30, mouse.ButtonLeft, mouse.DirRelease))

	hs.press('s', key.CodeS, key.ModControl)
	if !hs.ed.Processing() {
		t.Fatal("save did not mark the editor busy")
	}
	hs.pump()
	if hs.ed.Processing() {
		t.Fatal("editor still busy after save")
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !hs.messageVisible() || !strings.Contains(hs.message, out) {
		t.Fatalf("message = %q", hs.message)
	}
}

func TestSaveWithoutOutput(t *testing.T) {
	hs := newHarness(t)
	hs.press('s', key.CodeS, key.ModControl)
	if hs.ed.Processing() || !strings.Contains(hs.message, "no output") {
		t.Fatalf("processing=%v message=%q", hs.ed.Processing(), hs.message)
	}
}

func TestPressDismissesMessage(t *testing.T) {
	hs := newHarness(t)
	hs.flash("hello")
	hs.handle(hs.mouseAt(10, 10, mouse.ButtonLeft, mouse.DirPress))
	if hs.messageVisible() {
		t.Fatal("message still visible")
	}
	if hs.ed.InProgress() != nil {
		t.Fatal("dismissing press started a shape")
	}
	hs.clock = hs.clock.Add(3 * time.Second)
	hs.flash("again")
	hs.clock = hs.clock.Add(3 * time.Second)
	if hs.messageVisible() {
		t.Fatal("message did not expire")
	}
}

func TestBackgroundLoad(t *testing.T) {
	hs := newHarness(t, WithImage(nil), WithImageRef("photo.png"), WithLoader(fakeLoader{img: grayImage(800, 600)}))
	if !hs.ed.Ready() {
		t.Fatalf("not ready: %v", hs.ed.Err())
	}
	if s := hs.ed.Transform().Scale; s != 0.5 {
		t.Fatalf("scale = %v", s)
	}
}

func TestBackgroundLoadError(t *testing.T) {
	boom := errors.New("boom")
	hs := newHarness(t, WithImage(nil), WithImageRef("photo.png"), WithLoader(fakeLoader{err: boom}))
	if hs.ed.Ready() || !errors.Is(hs.ed.Err(), boom) {
		t.Fatalf("ready=%v err=%v", hs.ed.Ready(), hs.ed.Err())
	}
	hs.click(10, 10)
	if len(hs.ed.Annotations()) != 0 || hs.ed.InProgress() != nil {
		t.Fatal("input accepted without an image")
	}
}

func TestPaintRequestsCoalesced(t *testing.T) {
	hs := newHarness(t)
	hs.paint(image.NewRGBA(image.Rect(0, 0, hs.width, hs.height)))
	hs.sent = nil
	hs.handle(hs.mouseAt(10, 10, mouse.ButtonLeft, mouse.DirPress))
	for i := 0; i < 5; i++ {
		hs.handle(hs.mouseAt(20+float64(i), 20, mouse.ButtonNone, mouse.DirNone))
	}
	if len(hs.sent) != 1 {
		t.Fatalf("sent %d events, want 1", len(hs.sent))
	}
	hs.paint(image.NewRGBA(image.Rect(0, 0, hs.width, hs.height)))
	hs.handle(hs.mouseAt(40, 20, mouse.ButtonNone, mouse.DirNone))
	if len(hs.sent) != 2 {
		t.Fatalf("sent %d events after paint, want 2", len(hs.sent))
	}
}

func TestPaintLayout(t *testing.T) {
	hs := newHarness(t)
	dst := image.NewRGBA(image.Rect(0, 0, hs.width, hs.height))
	hs.paint(dst)

	if got := dst.RGBAAt(1, 1); got != hs.th.HeaderBackground {
		t.Fatalf("header = %v, want %v", got, hs.th.HeaderBackground)
	}
	c := hs.canvasRect()
	if got := dst.RGBAAt(c.Min.X+200, c.Min.Y+150); got != gray {
		t.Fatalf("canvas center = %v, want %v", got, gray)
	}
	if got := dst.RGBAAt(hs.width-1, hs.height-1); got != hs.th.ToolbarBackground {
		t.Fatalf("bottom bar = %v", got)
	}
	if hs.ed.Dirty() {
		t.Fatal("editor still dirty after paint")
	}
}
