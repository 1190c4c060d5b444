package appstate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/theme"
)

const (
	headerHeight = 24
	bottomHeight = 24
	buttonHeight = 24
	swatchSize   = 12
	sectionGap   = 8
)

// minToolbarWidth is widened at start up to fit the longest label name.
const minToolbarWidth = 72

// KeyShortcut describes a keyboard combination that triggers an action.
// Rune bindings ignore Shift unless it is listed; Code bindings compare all
// modifiers.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

const modMask = key.ModControl | key.ModAlt | key.ModMeta

// Matches reports whether e triggers s.
func (s KeyShortcut) Matches(e key.Event) bool {
	if s.Rune != 0 {
		if e.Rune != s.Rune {
			return false
		}
		if e.Modifiers&modMask != s.Modifiers&modMask {
			return false
		}
		return s.Modifiers&key.ModShift == 0 || e.Modifiers&key.ModShift != 0
	}
	return e.Code == s.Code && e.Modifiers&(modMask|key.ModShift) == s.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// buttonColors picks the background and text color for state.
func buttonColors(th *theme.Theme, state ButtonState) (bg, fg color.RGBA) {
	switch state {
	case StateHover:
		return th.ButtonBackgroundHover, th.ButtonText
	case StatePressed:
		return th.ButtonBackgroundActive, th.ButtonTextActive
	}
	return th.ButtonBackground, th.ButtonText
}

// Shortcut is a clickable hint in the bottom bar.
type Shortcut struct {
	label  string
	action string
	rect   image.Rectangle
	theme  *theme.Theme
	run    func(string)
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	bg, fg := buttonColors(s.theme, state)
	draw.Draw(dst, s.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	drawRect(dst, s.rect, s.theme.ButtonBorder)
	drawString(dst, s.rect.Min.X+2, s.rect.Min.Y+14, s.label, fg)
}

func (s *Shortcut) Rect() image.Rectangle     { return s.rect }
func (s *Shortcut) SetRect(r image.Rectangle) { s.rect = r }

func (s *Shortcut) Activate() {
	if s.run != nil {
		s.run(s.action)
	}
}

// KindButton selects the geometry kind new shapes are drawn with.
type KindButton struct {
	label    string
	kind     annotation.Kind
	rect     image.Rectangle
	theme    *theme.Theme
	onSelect func(annotation.Kind)
}

func (kb *KindButton) Draw(dst *image.RGBA, state ButtonState) {
	bg, fg := buttonColors(kb.theme, state)
	draw.Draw(dst, kb.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	drawString(dst, kb.rect.Min.X+4, kb.rect.Min.Y+16, kb.label, fg)
}

func (kb *KindButton) Rect() image.Rectangle     { return kb.rect }
func (kb *KindButton) SetRect(r image.Rectangle) { kb.rect = r }

func (kb *KindButton) Activate() {
	if kb.onSelect != nil {
		kb.onSelect(kb.kind)
	}
}

// LabelButton selects a label. It shows the label color as a swatch.
type LabelButton struct {
	id       string
	name     string
	swatch   color.RGBA
	rect     image.Rectangle
	theme    *theme.Theme
	onSelect func(string)
}

func (lb *LabelButton) Draw(dst *image.RGBA, state ButtonState) {
	bg, fg := buttonColors(lb.theme, state)
	draw.Draw(dst, lb.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	sw := image.Rect(lb.rect.Min.X+4, lb.rect.Min.Y+6, lb.rect.Min.X+4+swatchSize, lb.rect.Min.Y+6+swatchSize)
	draw.Draw(dst, sw, image.NewUniform(lb.swatch), image.Point{}, draw.Src)
	drawRect(dst, sw, lb.theme.ButtonBorder)
	drawString(dst, sw.Max.X+4, lb.rect.Min.Y+16, lb.name, fg)
}

func (lb *LabelButton) Rect() image.Rectangle     { return lb.rect }
func (lb *LabelButton) SetRect(r image.Rectangle) { lb.rect = r }

func (lb *LabelButton) Activate() {
	if lb.onSelect != nil {
		lb.onSelect(lb.id)
	}
}

func textWidth(s string) int {
	return (&font.Drawer{Face: basicfont.Face7x13}).MeasureString(s).Ceil()
}

func drawString(dst *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// drawRect outlines r with a one pixel border.
func drawRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	u := image.NewUniform(col)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// fitText shortens s with an ellipsis so it fits in width pixels.
func fitText(s string, width int) string {
	if textWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && textWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
