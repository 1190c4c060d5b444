// Package editor is the annotation editing core. An Editor owns the committed
// annotations, the shape being drawn and the view transform, and turns
// screen-space input into store mutations. It does no I/O of its own beyond
// the optional Load helper and never talks to a window system; hosts feed it
// events and call Paint.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/drawstate"
	"github.com/example/annocanvas/internal/geometry"
	"github.com/example/annocanvas/internal/render"
)

// ErrNotReady is returned by operations that need a decoded image.
var ErrNotReady = errors.New("image not ready")

// ImageLoader decodes an image reference. *imageio.Decoder satisfies it.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Editor is a single editing session over one image.
type Editor struct {
	store    *annotation.Store
	labels   *annotation.Registry
	machine  *drawstate.Machine
	renderer *render.Renderer

	img       image.Image
	ready     bool
	loadErr   error
	viewport  geometry.Size
	transform geometry.Transform

	selected   string
	processing bool
	dirty      bool

	onAnnotationsChange   func([]annotation.Annotation)
	onLabelSelectedChange func(string)
	onInvalidate          func()

	// construction-time settings
	kind       annotation.Kind
	ids        annotation.IDGenerator
	seed       []annotation.Annotation
	renderOpts render.Options
}

// Option configures an Editor.
type Option func(*Editor)

// WithLabels seeds the label registry.
func WithLabels(labels []annotation.Label) Option {
	return func(e *Editor) { e.labels.Set(labels) }
}

// WithAnnotations seeds previously persisted annotations. Seeding does not
// fire the change callback.
func WithAnnotations(list []annotation.Annotation) Option {
	return func(e *Editor) { e.seed = list }
}

// WithSelectedLabel sets the label new shapes are tagged with.
func WithSelectedLabel(id string) Option {
	return func(e *Editor) { e.selected = id }
}

// WithKind sets the initial drawing tool.
func WithKind(k annotation.Kind) Option {
	return func(e *Editor) { e.kind = k }
}

// WithViewport sets the initial canvas size in screen pixels.
func WithViewport(w, h int) Option {
	return func(e *Editor) { e.viewport = geometry.Size{W: float64(w), H: float64(h)} }
}

// WithIDGenerator overrides the UUID ids given to new annotations.
func WithIDGenerator(g annotation.IDGenerator) Option {
	return func(e *Editor) { e.ids = g }
}

// WithRenderOptions replaces the renderer options.
func WithRenderOptions(o render.Options) Option {
	return func(e *Editor) { e.renderOpts = o }
}

// WithOnAnnotationsChange registers the callback receiving the full sequence
// after every commit or removal.
func WithOnAnnotationsChange(fn func([]annotation.Annotation)) Option {
	return func(e *Editor) { e.onAnnotationsChange = fn }
}

// WithOnLabelSelectedChange registers the callback fired when the user picks
// a label through the editor's own controls.
func WithOnLabelSelectedChange(fn func(string)) Option {
	return func(e *Editor) { e.onLabelSelectedChange = fn }
}

// WithOnInvalidate registers the callback asking the host for a repaint.
func WithOnInvalidate(fn func()) Option {
	return func(e *Editor) { e.onInvalidate = fn }
}

// New creates an editor with no image. It accepts no input until SetImage or
// a successful Load.
func New(opts ...Option) *Editor {
	e := &Editor{
		labels:     annotation.NewRegistry(),
		kind:       annotation.KindBox,
		renderOpts: render.DefaultOptions(),
	}
	for _, o := range opts {
		o(e)
	}
	storeOpts := []annotation.StoreOption{annotation.WithChangeListener(e.annotationsChanged)}
	if e.ids != nil {
		storeOpts = append(storeOpts, annotation.WithIDGenerator(e.ids))
	}
	e.store = annotation.NewStore(storeOpts...)
	e.store.Reset(e.seed)
	e.seed = nil
	e.machine = drawstate.New(e.kind)
	e.renderer = render.New(e.renderOpts)
	e.dirty = true
	return e
}

func (e *Editor) annotationsChanged(list []annotation.Annotation) {
	if e.onAnnotationsChange != nil {
		e.onAnnotationsChange(list)
	}
}

// Load decodes ref with l and makes the editor ready. A failure leaves the
// editor permanently not ready for this reference; load another to retry.
func (e *Editor) Load(ctx context.Context, l ImageLoader, ref string) error {
	img, err := l.Load(ctx, ref)
	if err != nil {
		e.SetLoadError(err)
		return err
	}
	e.SetImage(img)
	return nil
}

// SetImage installs a decoded image, fits it to the viewport and discards any
// shape in progress.
func (e *Editor) SetImage(img image.Image) {
	if img == nil {
		e.SetLoadError(errors.New("no image"))
		return
	}
	e.img = img
	e.ready = true
	e.loadErr = nil
	e.machine.Cancel()
	e.transform = e.fit()
	e.Invalidate()
}

// SetLoadError records a decode failure. The editor shows the error and
// ignores input.
func (e *Editor) SetLoadError(err error) {
	e.img = nil
	e.ready = false
	e.loadErr = err
	e.machine.Cancel()
	e.Invalidate()
}

func (e *Editor) fit() geometry.Transform {
	size := e.imageSize()
	if e.viewport.Empty() {
		return geometry.Identity(size)
	}
	return geometry.FitTransform(size, e.viewport)
}

func (e *Editor) imageSize() geometry.Size {
	if e.img == nil {
		return geometry.Size{}
	}
	b := e.img.Bounds()
	return geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Resize sets the canvas size and refits the image.
func (e *Editor) Resize(w, h int) {
	e.viewport = geometry.Size{W: float64(w), H: float64(h)}
	if e.ready {
		e.transform = e.fit()
	}
	e.Invalidate()
}

// Zoom scales the view by factor about the screen point anchor.
func (e *Editor) Zoom(factor float64, anchor geometry.Point) {
	if !e.accepting() {
		return
	}
	next := e.transform.ZoomAt(factor, anchor)
	if next == e.transform {
		return
	}
	e.transform = next
	e.Invalidate()
}

// Pan shifts the view by dx, dy screen pixels.
func (e *Editor) Pan(dx, dy float64) {
	if !e.accepting() || (dx == 0 && dy == 0) {
		return
	}
	e.transform = e.transform.Pan(dx, dy)
	e.Invalidate()
}

// ResetView restores the fit-and-center transform.
func (e *Editor) ResetView() {
	if !e.ready {
		return
	}
	e.transform = e.fit()
	e.Invalidate()
}

// SetLabels replaces the label registry. Annotations whose label disappears
// stay in the store and are skipped when painting.
func (e *Editor) SetLabels(labels []annotation.Label) {
	e.labels.Set(labels)
	e.Invalidate()
}

// SetAnnotations replaces the committed sequence without firing the change
// callback.
func (e *Editor) SetAnnotations(list []annotation.Annotation) {
	e.store.Reset(list)
	e.Invalidate()
}

// SetSelectedLabel is the host setting the active label. It does not fire
// the selection callback.
func (e *Editor) SetSelectedLabel(id string) {
	if e.selected == id {
		return
	}
	e.selected = id
	e.Invalidate()
}

// SelectLabel is the user picking a label through the editor's controls.
func (e *Editor) SelectLabel(id string) {
	if e.selected == id {
		return
	}
	e.selected = id
	if e.onLabelSelectedChange != nil {
		e.onLabelSelectedChange(id)
	}
	e.Invalidate()
}

// CycleLabel selects the label step positions away from the current one.
func (e *Editor) CycleLabel(step int) {
	if id := e.labels.Next(e.selected, step); id != "" {
		e.SelectLabel(id)
	}
}

// SetKind switches the drawing tool, discarding any shape in progress.
func (e *Editor) SetKind(k annotation.Kind) {
	if k == e.machine.Kind() {
		return
	}
	e.machine.SetKind(k)
	e.Invalidate()
}

// SetProcessing toggles the host's busy flag. While set, all input is
// ignored.
func (e *Editor) SetProcessing(on bool) {
	if e.processing == on {
		return
	}
	e.processing = on
	e.Invalidate()
}

// Invalidate marks the frame dirty and asks the host to repaint.
func (e *Editor) Invalidate() {
	e.dirty = true
	if e.onInvalidate != nil {
		e.onInvalidate()
	}
}

// Dirty reports whether state changed since the last Paint.
func (e *Editor) Dirty() bool { return e.dirty }

// Paint renders the current frame into dst.
func (e *Editor) Paint(dst *image.RGBA) {
	e.renderer.Paint(dst, e.Frame())
	e.dirty = false
}

// Frame returns the inputs of the next paint.
func (e *Editor) Frame() render.Frame {
	return render.Frame{
		Image:       e.img,
		Transform:   e.transform,
		Annotations: e.store.Annotations(),
		Labels:      e.labels,
		InProgress:  e.machine.Current(),
		Ready:       e.ready,
		Err:         e.loadErr,
		Processing:  e.processing,
		Status:      []string{e.Status(), e.labelLine()},
	}
}

// Snapshot paints the image and its committed annotations at native
// resolution, without status text or the shape in progress.
func (e *Editor) Snapshot() (*image.RGBA, error) {
	if !e.ready {
		return nil, ErrNotReady
	}
	size := e.imageSize()
	dst := image.NewRGBA(image.Rect(0, 0, int(size.W), int(size.H)))
	e.renderer.Paint(dst, render.Frame{
		Image:       e.img,
		Transform:   geometry.Identity(size),
		Annotations: e.store.Annotations(),
		Labels:      e.labels,
		Ready:       true,
	})
	return dst, nil
}

// Status summarises the session on one line.
func (e *Editor) Status() string {
	dims := "loading"
	switch {
	case e.ready:
		b := e.img.Bounds()
		dims = fmt.Sprintf("%d × %d", b.Dx(), b.Dy())
	case e.loadErr != nil:
		dims = "unavailable"
	}
	return fmt.Sprintf("Image: %s · Annotations: %d · Drawing: %s", dims, e.store.Len(), e.machine.Kind())
}

func (e *Editor) labelLine() string {
	if l, ok := e.labels.Lookup(e.selected); ok {
		return "Label: " + l.Name
	}
	return "Label: none (select a label to draw)"
}

// Annotations returns a copy of the committed sequence.
func (e *Editor) Annotations() []annotation.Annotation { return e.store.Annotations() }

// Labels returns the registry contents in order.
func (e *Editor) Labels() []annotation.Label { return e.labels.Labels() }

// Label resolves id against the registry.
func (e *Editor) Label(id string) (annotation.Label, bool) { return e.labels.Lookup(id) }

func (e *Editor) SelectedLabel() string { return e.selected }
func (e *Editor) Kind() annotation.Kind { return e.machine.Kind() }
func (e *Editor) Ready() bool { return e.ready }
func (e *Editor) Err() error { return e.loadErr }
func (e *Editor) Processing() bool { return e.processing }
func (e *Editor) Transform() geometry.Transform { return e.transform }
func (e *Editor) Image() image.Image { return e.img }
func (e *Editor) InProgress() *drawstate.InProgress { return e.machine.Current() }
func (e *Editor) State() drawstate.State { return e.machine.State() }
func (e *Editor) Stats() annotation.Stats { return e.store.Stats() }
func (e *Editor) Viewport() geometry.Size { return e.viewport }

// ToImage maps a screen point to image pixels under the current view.
func (e *Editor) ToImage(screen geometry.Point) geometry.Point {
	return geometry.ToImageSpace(screen, e.transform)
}
