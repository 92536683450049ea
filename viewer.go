package quire

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/quirelab/quire/internal/platform"
	"github.com/quirelab/quire/pkg/adapters/imaging"
	"github.com/quirelab/quire/pkg/core"
	"github.com/quirelab/quire/pkg/interaction"
	"github.com/quirelab/quire/pkg/raster"
	"github.com/quirelab/quire/pkg/render"
)

// Zoom is clamped to this range. Zoom is a presentation transform applied
// by the host; the raster scale stays fixed so zooming never invalidates
// the bitmap cache.
const (
	minZoom = 0.25
	maxZoom = 4.0
)

// Viewer is a document session: one loaded document, its annotation graph,
// the gesture machine and the rasterization pipeline, plus an event stream
// hosts subscribe to with glob patterns.
type Viewer struct {
	logger *slog.Logger
	cfg    platform.Config

	store   *core.Store
	machine *interaction.Machine
	ras     *raster.Rasterizer
	sched   *raster.Scheduler

	mu     sync.RWMutex
	source core.Source
	page   int
	zoom   float64
	single bool
	closed bool

	subMu   sync.Mutex
	subs    map[int]*subscription
	nextSub int
}

type subscription struct {
	pattern string
	ch      chan core.Event
}

func newViewer(ctx context.Context, src core.Source, o *platform.Options) (*Viewer, error) {
	doc, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	if doc.PageCount() == 0 {
		return nil, fmt.Errorf("document %s: %w", doc.Name, core.ErrPageNotFound)
	}

	v := &Viewer{
		logger: o.Logger,
		cfg:    o.Config,
		source: src,
		page:   1,
		zoom:   1,
		subs:   make(map[int]*subscription),
	}

	v.store = core.NewStore()
	v.store.Reset(doc)
	v.store.SetSink(v.dispatch)

	backend := o.Backend
	if backend == nil {
		// Blank pages stand in until a real backend is wired; overlays
		// still flatten correctly for export.
		backend = raster.BackendFunc(func(ctx context.Context, page int, scale float64) (image.Image, error) {
			return imaging.NewBlank(v.Document()).RenderPage(ctx, page, scale)
		})
	}
	v.ras = raster.NewRasterizer(backend, o.Config.RasterScale, o.Logger)
	v.ras.OnRendered(func(page int) {
		v.dispatch(core.Event{
			Topic: fmt.Sprintf("page/%d/rendered", page),
			Type:  core.EventRendered,
			Page:  page,
		})
	})

	onSelect := o.OnSelect
	v.machine = interaction.New(v.store, interaction.Config{
		Prompter: o.Prompter,
		Defaults: o.Config.ToolDefaults(),
		Logger:   o.Logger,
		OnSelect: func(id string) {
			v.dispatch(core.Event{
				Topic: "selection/changed",
				Type:  core.EventSelected,
				ID:    id,
			})
			if onSelect != nil {
				onSelect(id)
			}
		},
	})

	if o.Observer != nil {
		v.sched = raster.NewScheduler(o.Observer, v.ras, raster.SchedulerConfig{
			Margin:    o.Config.PrefetchMargin,
			Threshold: o.Config.VisibilityThreshold,
			Logger:    o.Logger,
		})
		if err := v.sched.Subscribe(ctx, doc); err != nil {
			return nil, fmt.Errorf("subscribing scheduler: %w", err)
		}
	}

	o.Logger.Info("document opened", "name", doc.Name, "pages", doc.PageCount())
	return v, nil
}

// --- Accessors ---

// Document returns the loaded document.
func (v *Viewer) Document() *core.Document { return v.store.Document() }

// Store returns the annotation store.
func (v *Viewer) Store() *core.Store { return v.store }

// Machine returns the gesture state machine. Feed it pointer and keyboard
// events from the host's input loop.
func (v *Viewer) Machine() *interaction.Machine { return v.machine }

// Rasterizer returns the page rasterizer.
func (v *Viewer) Rasterizer() *raster.Rasterizer { return v.ras }

// --- Navigation & presentation ---

// CurrentPage returns the page the viewer is positioned on.
func (v *Viewer) CurrentPage() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.page
}

// GoToPage moves the viewer to a page. In single-page mode the target page
// is rendered eagerly.
func (v *Viewer) GoToPage(ctx context.Context, n int) error {
	doc := v.Document()
	if _, ok := doc.Page(n); !ok {
		return fmt.Errorf("page %d of %d: %w", n, doc.PageCount(), core.ErrPageNotFound)
	}
	v.mu.Lock()
	v.page = n
	single := v.single
	v.mu.Unlock()

	if single {
		v.ras.Request(ctx, n)
	}
	return nil
}

// Zoom returns the current zoom factor.
func (v *Viewer) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

// SetZoom sets the zoom factor, clamped to [0.25, 4].
func (v *Viewer) SetZoom(z float64) {
	v.mu.Lock()
	v.zoom = core.Clamp(z, minZoom, maxZoom)
	v.mu.Unlock()
}

// SinglePage reports whether single-page display mode is active.
func (v *Viewer) SinglePage() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.single
}

// SetSinglePage toggles between continuous scroll and single-page display.
// Entering single-page mode stops visibility-driven scheduling and renders
// the current page immediately.
func (v *Viewer) SetSinglePage(ctx context.Context, on bool) {
	v.mu.Lock()
	v.single = on
	page := v.page
	v.mu.Unlock()

	if v.sched != nil {
		v.sched.SetSinglePage(on)
	}
	if on {
		v.ras.Request(ctx, page)
	} else if v.sched != nil {
		if err := v.sched.Subscribe(ctx, v.Document()); err != nil {
			v.logger.Error("failed to resume visibility scheduling", "error", err)
		}
	}
}

// --- Document lifecycle ---

// Reload re-reads the document from its source. The annotation graph and
// the bitmap cache belong to the old revision and are discarded; in-flight
// renders complete but their output is dropped.
func (v *Viewer) Reload(ctx context.Context) error {
	doc, err := v.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("reloading document: %w", err)
	}
	if doc.PageCount() == 0 {
		return fmt.Errorf("document %s: %w", doc.Name, core.ErrPageNotFound)
	}

	v.store.Reset(doc)
	v.ras.Invalidate()

	v.mu.Lock()
	if v.page > doc.PageCount() {
		v.page = doc.PageCount()
	}
	single := v.single
	page := v.page
	v.mu.Unlock()

	if v.sched != nil && !single {
		if err := v.sched.Subscribe(ctx, doc); err != nil {
			return fmt.Errorf("resubscribing scheduler: %w", err)
		}
	}
	if single {
		v.ras.Request(ctx, page)
	}

	v.dispatch(core.Event{
		Topic: "document/replaced",
		Type:  core.EventReplaced,
	})
	v.logger.Info("document replaced", "name", doc.Name, "pages", doc.PageCount())
	return nil
}

// --- Rendering ---

// Scene builds the overlay scene for a page, reflecting the current
// selection.
func (v *Viewer) Scene(page int) render.Scene {
	return render.Build(v.store.PageAnnotations(page), v.machine.Selected())
}

// ComposePage renders the page bitmap synchronously and flattens the
// annotation overlay onto it.
func (v *Viewer) ComposePage(ctx context.Context, page int) (image.Image, error) {
	base, err := v.ras.Render(ctx, page)
	if err != nil {
		return nil, err
	}
	b := base.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, base, b.Min, draw.Src)
	overlay := render.Flatten(v.Scene(page), b.Dx(), b.Dy())
	draw.Draw(dst, b, overlay, image.Point{}, draw.Over)
	return dst, nil
}

// --- Stamps ---

// Stamps returns the configured stamp catalogue.
func (v *Viewer) Stamps() []interaction.StampDef {
	return v.cfg.StampCatalogue()
}

// SelectStamp picks a catalogue entry by kind for the stamp tool.
func (v *Viewer) SelectStamp(kind string) error {
	for _, def := range v.Stamps() {
		if def.Kind == kind {
			v.machine.SetStamp(def)
			return nil
		}
	}
	return fmt.Errorf("stamp %q not in catalogue", kind)
}

// --- Persistence ---

// Annotations returns a snapshot of every annotation, ordered by page then
// insertion order, for the persistence collaborator.
func (v *Viewer) Annotations() []core.Annotation {
	return v.store.All()
}

// Export serializes the document's annotations to JSON.
func (v *Viewer) Export() ([]byte, error) {
	return core.MarshalAnnotations(v.store.All())
}

// Import adds annotations from Export-format JSON to the current document.
// Records that collide with existing ids or name missing pages abort the
// import partway; already-added records stay.
func (v *Viewer) Import(data []byte) error {
	anns, err := core.UnmarshalAnnotations(data)
	if err != nil {
		return err
	}
	for _, a := range anns {
		if err := v.store.Add(a); err != nil {
			return fmt.Errorf("importing %s: %w", a.Meta().ID, err)
		}
	}
	return nil
}

// --- Events ---

// Watch subscribes to viewer events whose topic matches a doublestar glob
// pattern ("annotation/**", "page/*/rendered", "**"). The channel closes
// when ctx is canceled or the viewer closes. Slow consumers lose events
// once their buffer fills.
func (v *Viewer) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	v.subMu.Lock()
	if v.isClosed() {
		v.subMu.Unlock()
		return nil, fmt.Errorf("viewer is closed")
	}
	id := v.nextSub
	v.nextSub++
	sub := &subscription{
		pattern: pattern,
		ch:      make(chan core.Event, v.cfg.EventBuffer),
	}
	v.subs[id] = sub
	v.subMu.Unlock()

	go func() {
		<-ctx.Done()
		v.subMu.Lock()
		if s, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(s.ch)
		}
		v.subMu.Unlock()
	}()

	return sub.ch, nil
}

func (v *Viewer) dispatch(e core.Event) {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	for _, sub := range v.subs {
		if ok, _ := doublestar.Match(sub.pattern, e.Topic); !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			v.logger.Debug("event dropped, subscriber buffer full",
				"topic", e.Topic, "pattern", sub.pattern)
		}
	}
}

func (v *Viewer) isClosed() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.closed
}

// Close releases the scheduler subscription and closes all event channels.
// Close is idempotent.
func (v *Viewer) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	var err error
	if v.sched != nil {
		err = v.sched.Close()
	}

	v.subMu.Lock()
	for id, sub := range v.subs {
		delete(v.subs, id)
		close(sub.ch)
	}
	v.subMu.Unlock()

	return err
}

// --- Observability ---

// ViewerState exposes internal state for observability.
type ViewerState struct {
	Document    string                 `json:"document,omitempty"`
	Pages       int                    `json:"pages"`
	CurrentPage int                    `json:"current_page"`
	Zoom        float64                `json:"zoom"`
	SinglePage  bool                   `json:"single_page"`
	Subscribers int                    `json:"subscribers"`
	Store       core.StoreState        `json:"store"`
	Raster      raster.RasterizerState `json:"raster"`
}

// State implements introspection.Introspectable.
func (v *Viewer) State() any {
	v.mu.RLock()
	st := ViewerState{
		CurrentPage: v.page,
		Zoom:        v.zoom,
		SinglePage:  v.single,
	}
	v.mu.RUnlock()

	if doc := v.Document(); doc != nil {
		st.Document = doc.Name
		st.Pages = doc.PageCount()
	}
	v.subMu.Lock()
	st.Subscribers = len(v.subs)
	v.subMu.Unlock()

	st.Store = v.store.State().(core.StoreState)
	st.Raster = v.ras.State().(raster.RasterizerState)
	return st
}

// ComponentType implements introspection.Component.
func (v *Viewer) ComponentType() string {
	return "viewer"
}

var _ introspection.Introspectable = (*Viewer)(nil)
var _ introspection.Component = (*Viewer)(nil)
