package editor

import (
	"log"

	"github.com/example/annocanvas/internal/drawstate"
	"github.com/example/annocanvas/internal/geometry"
)

// Key is a keyboard command the editor understands.
type Key int

const (
	KeyEscape Key = iota + 1
	KeyDelete
	KeyBackspace
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyDelete:
		return "Delete"
	case KeyBackspace:
		return "Backspace"
	case KeyEnter:
		return "Enter"
	}
	return "Key(?)"
}

// accepting reports whether input should reach the draw state. Nothing is
// accepted before the image decodes or while the host is processing.
func (e *Editor) accepting() bool {
	return e.ready && !e.processing
}

// PointerDown handles a button press at a screen point.
func (e *Editor) PointerDown(screen geometry.Point) {
	if !e.accepting() {
		return
	}
	e.apply(e.machine.PointerDown(e.ToImage(screen), e.selected))
}

// PointerMove handles pointer motion at a screen point.
func (e *Editor) PointerMove(screen geometry.Point) {
	if !e.accepting() {
		return
	}
	e.apply(e.machine.PointerMove(e.ToImage(screen)))
}

// PointerUp handles a button release at a screen point.
func (e *Editor) PointerUp(screen geometry.Point) {
	if !e.accepting() {
		return
	}
	e.apply(e.machine.PointerUp(e.ToImage(screen)))
}

// DoubleClick closes an open polygon at a screen point.
func (e *Editor) DoubleClick(screen geometry.Point) {
	if !e.accepting() {
		return
	}
	e.apply(e.machine.DoubleClick(e.ToImage(screen)))
}

// KeyDown handles a key press and reports whether it was consumed.
// Escape discards the shape in progress, Delete and Backspace remove the most
// recent annotation and Enter closes an open polygon.
func (e *Editor) KeyDown(k Key) bool {
	if !e.accepting() {
		return false
	}
	switch k {
	case KeyEscape:
		e.apply(e.machine.Cancel())
		return true
	case KeyDelete, KeyBackspace:
		if _, ok := e.store.RemoveLast(); ok {
			e.Invalidate()
		}
		return true
	case KeyEnter:
		e.apply(e.machine.Close())
		return true
	}
	return false
}

// apply commits a finished shape and schedules a repaint.
func (e *Editor) apply(res drawstate.Result) {
	if res.Committed != nil {
		if _, err := e.store.Commit(res.Committed.Annotation()); err != nil {
			log.Printf("commit %s: %v", res.Committed.Kind, err)
		}
	}
	if res.Changed {
		e.Invalidate()
	}
}
