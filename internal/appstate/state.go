package appstate

import (
	"image"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"

	"github.com/example/annocanvas/internal/editor"
	"github.com/example/annocanvas/internal/imageio"
	"github.com/example/annocanvas/internal/notify"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/theme"
)

// ProgramTitle is shown in the header and window title.
const ProgramTitle = "AnnoCanvas"

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

// AppState holds the configuration of one editing window.
type AppState struct {
	Ref         string
	Image       image.Image
	Output      string
	Title       string
	Width       int
	Height      int
	ZoomStep    float64
	Theme       *theme.Theme
	Render      render.Options
	SaveOptions imageio.SaveOptions

	loader    editor.ImageLoader
	notifier  *notify.Notifier
	editorOpt []editor.Option

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithImageRef sets the path or URL decoded in the background on start up.
func WithImageRef(ref string) Option { return func(a *AppState) { a.Ref = ref } }

// WithImage supplies an already decoded image. It takes precedence over the
// reference.
func WithImage(img image.Image) Option { return func(a *AppState) { a.Image = img } }

// WithLoader replaces the decoder used for the image reference.
func WithLoader(l editor.ImageLoader) Option { return func(a *AppState) { a.loader = l } }

// WithOutput sets the file the annotated snapshot is saved to.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithSize sets the initial window size.
func WithSize(w, h int) Option {
	return func(a *AppState) {
		a.Width = w
		a.Height = h
	}
}

// WithZoomStep sets the factor applied per wheel notch or zoom key.
func WithZoomStep(step float64) Option { return func(a *AppState) { a.ZoomStep = step } }

// WithTheme sets the colors of the window chrome and canvas backdrop.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithRenderOptions sets the shape styling. Theme colors are applied on top.
func WithRenderOptions(o render.Options) Option { return func(a *AppState) { a.Render = o } }

// WithSaveOptions sets the encoder settings used by the save action.
func WithSaveOptions(o imageio.SaveOptions) Option { return func(a *AppState) { a.SaveOptions = o } }

// WithNotifier enables desktop notifications for save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithEditorOptions passes options through to the editor, such as labels,
// seeded annotations and change callbacks.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(a *AppState) { a.editorOpt = append(a.editorOpt, opts...) }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Width:       defaultWidth,
		Height:      defaultHeight,
		ZoomStep:    1.25,
		Render:      render.DefaultOptions(),
		SaveOptions: imageio.DefaultSaveOptions(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.loader == nil {
		a.loader = imageio.NewDecoder()
	}
	if a.ZoomStep <= 1 {
		a.ZoomStep = 1.25
	}
	if a.Title == "" {
		a.Title = ProgramTitle
	}
	return a
}

// themedRender overlays the theme's canvas colors on the render options.
func (a *AppState) themedRender() render.Options {
	o := a.Render
	o.Background = a.Theme.CanvasBackground
	o.CheckerLight = a.Theme.CheckerLight
	o.CheckerDark = a.Theme.CheckerDark
	o.PanelColor = a.Theme.PanelBackground
	o.TextColor = a.Theme.PanelText
	return o
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: a.Width, Height: a.Height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	h := newHost(a, a.Width, a.Height, func(e any) { w.Send(e) })
	defer h.close()
	h.start()

	var buf screen.Buffer
	defer func() {
		if buf != nil {
			buf.Release()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case paint.Event:
			sz := image.Pt(h.width, h.height)
			if sz.X <= 0 || sz.Y <= 0 {
				continue
			}
			if buf == nil || buf.Size() != sz {
				if buf != nil {
					buf.Release()
				}
				buf, err = s.NewBuffer(sz)
				if err != nil {
					log.Printf("new buffer: %v", err)
					buf = nil
					continue
				}
			}
			h.paint(buf.RGBA())
			w.Upload(image.Point{}, buf, buf.Bounds())
			w.Publish()
		default:
			if !h.handle(e) {
				return
			}
		}
	}
}
