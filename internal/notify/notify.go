// Package notify turns editor events into desktop notifications.
package notify

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/example/annocanvas/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires after a rendered frame is written to disk.
	EventSave Event = "save"
	// EventCopy fires after a rendered frame is placed on the clipboard.
	EventCopy Event = "copy"
)

// thumbSize bounds the preview attached to copy notifications.
const thumbSize = 256

// Preferences holds the title and per-event body templates. Templates take a
// single %s.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Templates: map[Event]string{
			EventSave: "Saved %s",
			EventCopy: "Copied %s to clipboard",
		},
	}
}

// LoadPreferences applies ANNOCANVAS_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("ANNOCANVAS_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for event, key := range map[Event]string{
		EventSave: "ANNOCANVAS_NOTIFY_SAVE_TEXT",
		EventCopy: "ANNOCANVAS_NOTIFY_COPY_TEXT",
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[event] = v
		}
	}
	return prefs
}

// Sender delivers one notification. platform.Notify is the default.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends notifications for enabled events. A nil *Notifier is valid
// and sends nothing.
type Notifier struct {
	mu      sync.Mutex
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	templates := make(map[Event]string, len(prefs.Templates))
	for k, v := range prefs.Templates {
		templates[k] = v
	}
	return &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: templates},
		enabled: make(map[Event]bool),
		send:    platform.Notify,
	}
}

// WithSender replaces the delivery function and returns n.
func (n *Notifier) WithSender(s Sender) *Notifier {
	n.mu.Lock()
	n.send = s
	n.mu.Unlock()
	return n
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.enabled[event] = enabled
	n.mu.Unlock()
}

// Enabled reports whether event is switched on.
func (n *Notifier) Enabled(event Event) bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled[event]
}

// Save announces a written file. The file itself is used as the icon.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy announces a clipboard copy with a thumbnail of img when given.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	opts := platform.Options{}
	if img != nil {
		path, cleanup, err := writeThumbnail(img)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	n.mu.Lock()
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	title, send := n.prefs.Title, n.send
	n.mu.Unlock()
	if tmpl == "" || send == nil {
		return
	}
	body := tmpl
	if strings.Contains(tmpl, "%") {
		body = fmt.Sprintf(tmpl, strings.TrimSpace(detail))
	}
	if err := send(title, strings.TrimSpace(body), opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func writeThumbnail(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "annocanvas-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	thumb := imaging.Fit(img, thumbSize, thumbSize, imaging.Lanczos)
	if err := imaging.Encode(f, thumb, imaging.PNG); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
