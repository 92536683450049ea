package raster

import (
	"context"
	"image"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultScale is the fixed internal render scale applied when none is
// configured. 2x display resolution keeps cached bitmaps sharp under zoom.
const DefaultScale = 2.0

// Rasterizer caches page bitmaps keyed by page number. Requests are
// fire-and-forget: a request for a page that is already cached or already
// pending is ignored, and a render completing after the document was
// replaced is discarded by generation check.
type Rasterizer struct {
	mu      sync.Mutex
	backend Backend
	scale   float64
	cache   map[int]image.Image
	pending map[int]struct{}
	gen     uint64

	group  singleflight.Group
	logger *slog.Logger

	// onRendered fires after a bitmap lands in the cache.
	onRendered func(page int)
}

// NewRasterizer creates a rasterizer over the given backend. A non-positive
// scale falls back to DefaultScale.
func NewRasterizer(backend Backend, scale float64, logger *slog.Logger) *Rasterizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Rasterizer{
		backend: backend,
		scale:   scale,
		cache:   make(map[int]image.Image),
		pending: make(map[int]struct{}),
		logger:  logger,
	}
}

// OnRendered registers a callback fired after each successful render.
func (r *Rasterizer) OnRendered(fn func(page int)) {
	r.mu.Lock()
	r.onRendered = fn
	r.mu.Unlock()
}

// Scale returns the fixed internal render scale.
func (r *Rasterizer) Scale() float64 { return r.scale }

// Request asks for the page's bitmap asynchronously. It returns immediately;
// duplicate requests while a render is pending are dropped. A render
// failure is logged and leaves the page without a bitmap, to be retried
// the next time the page triggers visibility.
func (r *Rasterizer) Request(ctx context.Context, page int) {
	r.mu.Lock()
	if _, ok := r.cache[page]; ok {
		r.mu.Unlock()
		return
	}
	if _, ok := r.pending[page]; ok {
		r.mu.Unlock()
		return
	}
	r.pending[page] = struct{}{}
	gen := r.gen
	r.mu.Unlock()

	go func() {
		img, err := r.renderShared(ctx, gen, page)

		r.mu.Lock()
		delete(r.pending, page)
		if err != nil {
			r.mu.Unlock()
			if r.logger != nil {
				r.logger.Error("page render failed", "page", page, "err", err)
			}
			return
		}
		if gen != r.gen {
			// The document was replaced mid-render; the result belongs to
			// the previous document and must not be cached.
			r.mu.Unlock()
			return
		}
		r.cache[page] = img
		fn := r.onRendered
		r.mu.Unlock()

		if fn != nil {
			fn(page)
		}
	}()
}

// Render renders the page synchronously, seeding the cache. It is used by
// single-page display mode, which renders the current page eagerly. An
// in-flight asynchronous render for the same page is shared, not repeated.
func (r *Rasterizer) Render(ctx context.Context, page int) (image.Image, error) {
	r.mu.Lock()
	if img, ok := r.cache[page]; ok {
		r.mu.Unlock()
		return img, nil
	}
	gen := r.gen
	r.mu.Unlock()

	img, err := r.renderShared(ctx, gen, page)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("page render failed", "page", page, "err", err)
		}
		return nil, err
	}

	r.mu.Lock()
	if gen == r.gen {
		r.cache[page] = img
	}
	fn := r.onRendered
	r.mu.Unlock()

	if fn != nil {
		fn(page)
	}
	return img, nil
}

// renderShared deduplicates concurrent renders for the same page. The key
// carries the document generation so a request issued after Invalidate never
// joins a render still in flight for the previous document.
func (r *Rasterizer) renderShared(ctx context.Context, gen uint64, page int) (image.Image, error) {
	key := strconv.FormatUint(gen, 10) + ":" + strconv.Itoa(page)
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.backend.RenderPage(ctx, page, r.scale)
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Bitmap returns the cached bitmap for a page, if any.
func (r *Rasterizer) Bitmap(page int) (image.Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.cache[page]
	return img, ok
}

// Cached reports whether the page's bitmap is in the cache.
func (r *Rasterizer) Cached(page int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cache[page]
	return ok
}

// Pending reports whether a render for the page is in flight.
func (r *Rasterizer) Pending(page int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[page]
	return ok
}

// Invalidate clears the cache and the pending set and bumps the document
// generation so in-flight results for the previous document are discarded
// when they complete.
func (r *Rasterizer) Invalidate() {
	r.mu.Lock()
	r.gen++
	r.cache = make(map[int]image.Image)
	r.pending = make(map[int]struct{})
	r.mu.Unlock()
}
