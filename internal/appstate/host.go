package appstate

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/clipboard"
	"github.com/example/annocanvas/internal/editor"
	"github.com/example/annocanvas/internal/geometry"
	"github.com/example/annocanvas/internal/imageio"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/theme"
)

const (
	messageDuration = 2 * time.Second
	panStep         = 10
	doubleClickTime = 400 * time.Millisecond
	doubleClickSlop = 4
)

// loadedEvent carries the result of the background decode.
type loadedEvent struct {
	img image.Image
	err error
}

// savedEvent carries the result of the background save.
type savedEvent struct {
	path string
	err  error
}

type binding struct {
	sc     KeyShortcut
	action string
}

// clickTracker turns two presses close in time and space into a double
// click.
type clickTracker struct {
	at  time.Time
	pos geometry.Point
	ok  bool
}

// press records a press and reports whether it completes a double click,
// returning the position of the first press.
func (c *clickTracker) press(p geometry.Point, now time.Time) (geometry.Point, bool) {
	prev := c.pos
	double := c.ok && now.Sub(c.at) <= doubleClickTime &&
		abs(p.X-prev.X) <= doubleClickSlop && abs(p.Y-prev.Y) <= doubleClickSlop
	if double {
		c.ok = false
		return prev, true
	}
	c.at, c.pos, c.ok = now, p, true
	return p, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// host connects window events to an editor and draws the chrome around its
// canvas. It has no dependency on a live window, so it can be driven with
// synthetic events.
type host struct {
	a  *AppState
	ed *editor.Editor
	th *theme.Theme

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	toolbarWidth  int

	kindButtons  []*CacheButton
	labelButtons []*CacheButton
	shortcuts    []*CacheButton
	hoverKind    int
	hoverLabel   int
	hoverShort   int

	actions  map[string]func()
	bindings []binding

	clicks   clickTracker
	dragging bool
	panning  bool
	panLast  geometry.Point

	message      string
	messageUntil time.Time
	face         font.Face

	canvas       *image.RGBA
	pendingPaint bool
	quit         bool

	send  func(any)
	spawn func(func())
	after func(time.Duration, func())
	now   func() time.Time
}

func newHost(a *AppState, width, height int, send func(any)) *host {
	ctx, cancel := context.WithCancel(context.Background())
	h := &host{
		a:          a,
		th:         a.Theme,
		ctx:        ctx,
		cancel:     cancel,
		width:      width,
		height:     height,
		hoverKind:  -1,
		hoverLabel: -1,
		hoverShort: -1,
		send:       send,
		spawn:      func(fn func()) { go fn() },
		after:      func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:        time.Now,
		face:       render.FaceForSize(a.Render.FontSize),
	}
	opts := append([]editor.Option{}, a.editorOpt...)
	opts = append(opts,
		editor.WithRenderOptions(a.themedRender()),
		editor.WithOnInvalidate(h.requestPaint),
	)
	h.ed = editor.New(opts...)
	h.toolbarWidth = h.measureToolbar()
	h.buildButtons()
	h.registerActions()
	h.layout()
	return h
}

// start installs the initial image or begins decoding the reference.
func (h *host) start() {
	if h.a.Image != nil {
		h.ed.SetImage(h.a.Image)
		return
	}
	if h.a.Ref == "" {
		h.ed.SetLoadError(fmt.Errorf("no image given"))
		return
	}
	ref, loader, ctx := h.a.Ref, h.a.loader, h.ctx
	h.spawn(func() {
		img, err := loader.Load(ctx, ref)
		h.send(loadedEvent{img: img, err: err})
	})
}

func (h *host) close() { h.cancel() }

func (h *host) requestPaint() {
	if h.pendingPaint {
		return
	}
	h.pendingPaint = true
	h.send(paint.Event{})
}

func (h *host) flash(msg string) {
	h.message = msg
	log.Print(msg)
	h.messageUntil = h.now().Add(messageDuration)
	h.after(messageDuration, func() { h.send(paint.Event{}) })
	h.requestPaint()
}

func (h *host) messageVisible() bool {
	return h.message != "" && h.now().Before(h.messageUntil)
}

func (h *host) measureToolbar() int {
	w := minToolbarWidth
	grow := func(s string, pad int) {
		if n := textWidth(s) + pad; n > w {
			w = n
		}
	}
	grow(ProgramTitle, 8)
	for _, k := range kindLabels {
		grow(k.label, 8)
	}
	for _, l := range h.ed.Labels() {
		grow(l.Name, swatchSize+16)
	}
	return w
}

var kindLabels = []struct {
	label string
	kind  annotation.Kind
}{
	{"B:Box", annotation.KindBox},
	{"P:Poly", annotation.KindPolygon},
	{"O:Point", annotation.KindPoint},
}

var shortcutHints = []struct {
	label  string
	action string
}{
	{"Esc:Cancel", "cancel"},
	{"Del:Undo", "delete"},
	{"Enter:Close", "close"},
	{"0:Fit", "reset-view"},
	{"^S:Save", "save"},
	{"^C:Copy", "copy"},
	{"Q:Quit", "quit"},
}

func (h *host) buildButtons() {
	h.kindButtons = nil
	for _, k := range kindLabels {
		h.kindButtons = append(h.kindButtons, &CacheButton{Button: &KindButton{
			label:    k.label,
			kind:     k.kind,
			theme:    h.th,
			onSelect: h.ed.SetKind,
		}})
	}
	h.labelButtons = nil
	pal := render.NewPalette()
	for _, l := range h.ed.Labels() {
		h.labelButtons = append(h.labelButtons, &CacheButton{Button: &LabelButton{
			id:       l.ID,
			name:     l.Name,
			swatch:   pal.Resolve(l.Color),
			theme:    h.th,
			onSelect: h.ed.SelectLabel,
		}})
	}
	h.shortcuts = nil
	for _, s := range shortcutHints {
		h.shortcuts = append(h.shortcuts, &CacheButton{Button: &Shortcut{
			label:  s.label,
			action: s.action,
			theme:  h.th,
			run:    h.run,
		}})
	}
}

func (h *host) canvasRect() image.Rectangle {
	bottom := max(h.height-bottomHeight, headerHeight)
	return image.Rect(h.toolbarWidth, headerHeight, max(h.width, h.toolbarWidth), bottom)
}

func (h *host) layout() {
	y := headerHeight
	for _, b := range h.kindButtons {
		b.SetRect(image.Rect(0, y, h.toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	y += sectionGap
	for _, b := range h.labelButtons {
		b.SetRect(image.Rect(0, y, h.toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	x := 4
	top := h.height - bottomHeight + 3
	for _, b := range h.shortcuts {
		w := textWidth(b.Button.(*Shortcut).label) + 4
		b.SetRect(image.Rect(x, top, x+w, top+18))
		x += w + 4
	}
	c := h.canvasRect()
	h.ed.Resize(c.Dx(), c.Dy())
}

func (h *host) register(name string, keys KeyboardShortcuts, fn func()) {
	h.actions[name] = fn
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		h.bindings = append(h.bindings, binding{sc: sc, action: name})
	}
}

func (h *host) registerActions() {
	h.actions = map[string]func(){}
	h.bindings = nil
	zoomAtCenter := func(f float64) {
		c := h.canvasRect()
		h.ed.Zoom(f, geometry.Pt(float64(c.Dx())/2, float64(c.Dy())/2))
	}
	h.register("cancel", shortcutList{{Code: key.CodeEscape}}, func() { h.ed.KeyDown(editor.KeyEscape) })
	h.register("delete", shortcutList{{Code: key.CodeDeleteForward}}, func() { h.ed.KeyDown(editor.KeyDelete) })
	h.register("backspace", shortcutList{{Code: key.CodeDeleteBackspace}}, func() { h.ed.KeyDown(editor.KeyBackspace) })
	h.register("close", shortcutList{{Code: key.CodeReturnEnter}, {Code: key.CodeKeypadEnter}}, func() { h.ed.KeyDown(editor.KeyEnter) })
	h.register("box", shortcutList{{Rune: 'b'}}, func() { h.ed.SetKind(annotation.KindBox) })
	h.register("polygon", shortcutList{{Rune: 'p'}}, func() { h.ed.SetKind(annotation.KindPolygon) })
	h.register("point", shortcutList{{Rune: 'o'}}, func() { h.ed.SetKind(annotation.KindPoint) })
	h.register("prev-label", shortcutList{{Rune: '['}}, func() { h.ed.CycleLabel(-1) })
	h.register("next-label", shortcutList{{Rune: ']'}}, func() { h.ed.CycleLabel(1) })
	h.register("zoom-in", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { zoomAtCenter(h.a.ZoomStep) })
	h.register("zoom-out", shortcutList{{Rune: '-'}}, func() { zoomAtCenter(1 / h.a.ZoomStep) })
	h.register("reset-view", shortcutList{{Rune: '0'}}, h.ed.ResetView)
	h.register("pan-left", shortcutList{{Code: key.CodeLeftArrow}}, func() { h.ed.Pan(-panStep, 0) })
	h.register("pan-right", shortcutList{{Code: key.CodeRightArrow}}, func() { h.ed.Pan(panStep, 0) })
	h.register("pan-up", shortcutList{{Code: key.CodeUpArrow}}, func() { h.ed.Pan(0, -panStep) })
	h.register("pan-down", shortcutList{{Code: key.CodeDownArrow}}, func() { h.ed.Pan(0, panStep) })
	// Ctrl+Shift+C must be matched before Ctrl+C.
	h.register("copy-annotations", shortcutList{{Rune: 'c', Modifiers: key.ModControl | key.ModShift}}, h.copyAnnotations)
	h.register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, h.copyImage)
	h.register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, h.save)
	h.register("quit", shortcutList{{Rune: 'q'}}, func() { h.quit = true })
}

func (h *host) run(action string) {
	if fn, ok := h.actions[action]; ok {
		fn()
	}
}

func (h *host) lookup(e key.Event) (string, bool) {
	if e.Rune > 0 {
		e.Rune = unicode.ToLower(e.Rune)
	}
	for _, b := range h.bindings {
		if b.sc.Matches(e) {
			return b.action, true
		}
	}
	return "", false
}

// handle processes one window event and reports whether the loop should
// continue.
func (h *host) handle(e any) bool {
	switch e := e.(type) {
	case size.Event:
		h.width, h.height = e.WidthPx, e.HeightPx
		h.layout()
		h.requestPaint()
	case mouse.Event:
		h.handleMouse(e)
	case key.Event:
		if e.Direction == key.DirPress {
			if action, ok := h.lookup(e); ok {
				h.run(action)
			}
		}
	case loadedEvent:
		if e.err != nil {
			log.Printf("load %s: %v", h.a.Ref, e.err)
			h.ed.SetLoadError(e.err)
		} else {
			h.ed.SetImage(e.img)
		}
	case savedEvent:
		h.ed.SetProcessing(false)
		if e.err != nil {
			h.flash(fmt.Sprintf("save failed: %v", e.err))
			break
		}
		h.flash(fmt.Sprintf("saved %s", e.path))
		h.a.notifier.Save(e.path)
	}
	if h.quit {
		h.cancel()
		return false
	}
	return true
}

func (h *host) local(e mouse.Event) geometry.Point {
	c := h.canvasRect()
	return geometry.Pt(float64(e.X)-float64(c.Min.X), float64(e.Y)-float64(c.Min.Y))
}

func (h *host) handleMouse(e mouse.Event) {
	if e.Direction == mouse.DirPress && h.messageVisible() {
		h.messageUntil = time.Time{}
		h.requestPaint()
		return
	}
	p := image.Pt(int(e.X), int(e.Y))
	inCanvas := p.In(h.canvasRect())

	if e.Button.IsWheel() {
		if inCanvas && e.Direction == mouse.DirStep {
			switch e.Button {
			case mouse.ButtonWheelUp:
				h.ed.Zoom(h.a.ZoomStep, h.local(e))
			case mouse.ButtonWheelDown:
				h.ed.Zoom(1/h.a.ZoomStep, h.local(e))
			}
		}
		return
	}

	if h.panning {
		lp := h.local(e)
		h.ed.Pan(lp.X-h.panLast.X, lp.Y-h.panLast.Y)
		h.panLast = lp
		if e.Button == mouse.ButtonMiddle && e.Direction == mouse.DirRelease {
			h.panning = false
		}
		return
	}
	if h.dragging {
		switch {
		case e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft:
			h.dragging = false
			h.ed.PointerUp(h.local(e))
		case e.Direction == mouse.DirNone:
			h.ed.PointerMove(h.local(e))
		}
		return
	}

	if inCanvas {
		h.setHover(-1, -1, -1)
		lp := h.local(e)
		switch {
		case e.Direction == mouse.DirPress && e.Button == mouse.ButtonMiddle:
			h.panning = true
			h.panLast = lp
		case e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft:
			h.pressCanvas(lp)
		case e.Direction == mouse.DirNone:
			h.ed.PointerMove(lp)
		}
		return
	}

	kind, label, short := hit(h.kindButtons, p), hit(h.labelButtons, p), hit(h.shortcuts, p)
	h.setHover(kind, label, short)
	if e.Direction != mouse.DirPress || e.Button != mouse.ButtonLeft {
		return
	}
	switch {
	case kind >= 0:
		h.kindButtons[kind].Activate()
	case label >= 0:
		h.labelButtons[label].Activate()
	case short >= 0:
		h.shortcuts[short].Activate()
	}
}

func (h *host) pressCanvas(lp geometry.Point) {
	first, double := h.clicks.press(lp, h.now())
	if double && h.ed.InProgress() != nil && h.ed.InProgress().Kind == annotation.KindPolygon {
		h.ed.DoubleClick(first)
		return
	}
	h.dragging = true
	h.ed.PointerDown(lp)
}

func hit(buttons []*CacheButton, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.Rect()) {
			return i
		}
	}
	return -1
}

func (h *host) setHover(kind, label, short int) {
	if kind == h.hoverKind && label == h.hoverLabel && short == h.hoverShort {
		return
	}
	h.hoverKind, h.hoverLabel, h.hoverShort = kind, label, short
	h.requestPaint()
}

func (h *host) save() {
	if h.a.Output == "" {
		h.flash("save: no output file")
		return
	}
	if h.ed.Processing() {
		return
	}
	img, err := h.ed.Snapshot()
	if err != nil {
		h.flash(fmt.Sprintf("save: %v", err))
		return
	}
	out, opts := h.a.Output, h.a.SaveOptions
	h.ed.SetProcessing(true)
	h.spawn(func() {
		err := imageio.Save(img, out, opts)
		h.send(savedEvent{path: out, err: err})
	})
}

func (h *host) copyImage() {
	img, err := h.ed.Snapshot()
	if err != nil {
		h.flash(fmt.Sprintf("copy: %v", err))
		return
	}
	if err := clipboard.WriteImage(img); err != nil {
		h.flash(fmt.Sprintf("copy: %v", err))
		return
	}
	h.flash("image copied to clipboard")
	h.a.notifier.Copy(h.a.Ref, img)
}

func (h *host) copyAnnotations() {
	list := h.ed.Annotations()
	if err := clipboard.WriteAnnotations(list); err != nil {
		h.flash(fmt.Sprintf("copy: %v", err))
		return
	}
	h.flash(fmt.Sprintf("%d annotations copied to clipboard", len(list)))
}

// paint draws the whole window into dst.
func (h *host) paint(dst *image.RGBA) {
	h.pendingPaint = false
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(h.th.Background), image.Point{}, draw.Src)

	header := image.Rect(0, 0, b.Dx(), headerHeight)
	draw.Draw(dst, header, image.NewUniform(h.th.HeaderBackground), image.Point{}, draw.Src)
	drawString(dst, 4, 16, ProgramTitle, h.th.Foreground)
	if h.a.Ref != "" {
		x := h.toolbarWidth + 4
		drawString(dst, x, 16, fitText(h.a.Ref, b.Dx()-x-4), h.th.Foreground)
	}

	toolbar := image.Rect(0, headerHeight, h.toolbarWidth, b.Dy()-bottomHeight)
	draw.Draw(dst, toolbar, image.NewUniform(h.th.ToolbarBackground), image.Point{}, draw.Src)
	for i, btn := range h.kindButtons {
		btn.Draw(dst, h.buttonState(i == h.hoverKind, btn.Button.(*KindButton).kind == h.ed.Kind()))
	}
	for i, btn := range h.labelButtons {
		btn.Draw(dst, h.buttonState(i == h.hoverLabel, btn.Button.(*LabelButton).id == h.ed.SelectedLabel()))
	}

	c := h.canvasRect()
	if !c.Empty() {
		if h.canvas == nil || h.canvas.Bounds().Size() != c.Size() {
			h.canvas = image.NewRGBA(image.Rect(0, 0, c.Dx(), c.Dy()))
		}
		h.ed.Paint(h.canvas)
		if h.messageVisible() {
			render.DrawMessage(h.canvas, h.face, h.message, h.th.PanelText, h.th.PanelBackground)
		}
		draw.Draw(dst, c, h.canvas, image.Point{}, draw.Src)
	}

	bottom := image.Rect(0, b.Dy()-bottomHeight, b.Dx(), b.Dy())
	draw.Draw(dst, bottom, image.NewUniform(h.th.ToolbarBackground), image.Point{}, draw.Src)
	for i, btn := range h.shortcuts {
		btn.Draw(dst, h.buttonState(i == h.hoverShort, false))
	}
}

func (h *host) buttonState(hover, active bool) ButtonState {
	switch {
	case active:
		return StatePressed
	case hover:
		return StateHover
	}
	return StateDefault
}
