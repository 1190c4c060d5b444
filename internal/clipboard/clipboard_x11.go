//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"image"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Without cgo the clipboard is served by owning the X11 CLIPBOARD selection
// from a hidden window and answering conversion requests ourselves.

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		owner, initErr = newSelectionOwner()
	})
	return initErr
}

// WriteImage publishes img as PNG.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	return owner.publish(map[xproto.Atom][]byte{owner.atoms["image/png"]: data})
}

// WriteText publishes UTF-8 text under the usual text targets.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data := []byte(text)
	return owner.publish(map[xproto.Atom][]byte{
		owner.atoms["UTF8_STRING"]:              data,
		owner.atoms["text/plain;charset=utf-8"]: data,
		xproto.AtomString:                       data,
	})
}

type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  map[string]xproto.Atom

	mu      sync.RWMutex
	targets map[xproto.Atom][]byte
}

var atomNames = []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png"}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{conn: conn, window: window, atoms: make(map[string]xproto.Atom)}
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			xproto.DestroyWindow(conn, window)
			conn.Close()
			return nil, err
		}
		o.atoms[name] = reply.Atom
	}
	go o.serve()
	return o, nil
}

func (o *selectionOwner) publish(targets map[xproto.Atom][]byte) error {
	o.mu.Lock()
	o.targets = targets
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms["CLIPBOARD"], xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.targets = nil
			o.mu.Unlock()
		}
	}
}

// answer writes the requested target onto the requestor's property and
// notifies it. Unknown targets are refused with property None.
func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.RLock()
	targets := o.targets
	o.mu.RUnlock()

	if e.Target == o.atoms["TARGETS"] {
		list := []xproto.Atom{o.atoms["TARGETS"]}
		for atom := range targets {
			list = append(list, atom)
		}
		buf := make([]byte, 4*len(list))
		for i, atom := range list {
			xgb.Put32(buf[i*4:], uint32(atom))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(list)), buf)
	} else if data, ok := targets[e.Target]; ok {
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, e.Target, 8, uint32(len(data)), data)
	} else {
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}
