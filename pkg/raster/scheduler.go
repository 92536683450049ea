package raster

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quirelab/quire/pkg/core"
)

// Intersection is one visibility sample for a page placeholder: Ratio is
// the visible fraction of the placeholder within the viewport plus the
// prefetch margin.
type Intersection struct {
	Page  int
	Ratio float64
}

// Observer abstracts viewport-intersection detection, which is a
// host-specific primitive. A browser host wraps an intersection observer;
// tests and headless hosts supply their own implementation.
type Observer interface {
	// Observe starts watching the given pages and invokes fn for every
	// visibility change. margin is the prefetch margin in device pixels;
	// threshold is the visibility fraction above which a page counts as
	// intersecting.
	Observe(pages []int, margin int, threshold float64, fn func(Intersection)) error

	// Close stops watching and releases host resources.
	Close() error
}

// Scheduler triggers lazy rasterization from visibility: when a page
// placeholder intersects the viewport above the threshold, it issues one
// render request unless the page is already cached or pending. In
// single-page mode the scheduler is disabled entirely; the viewer renders
// the current page eagerly instead.
type Scheduler struct {
	mu         sync.Mutex
	obs        Observer
	ras        *Rasterizer
	margin     int
	threshold  float64
	singlePage bool
	subscribed bool
	logger     *slog.Logger
}

// SchedulerConfig holds the scheduler's tuning knobs.
type SchedulerConfig struct {
	Margin    int     // prefetch margin in device pixels
	Threshold float64 // visibility fraction, (0,1]
	Logger    *slog.Logger
}

// NewScheduler creates a scheduler bridging an observer to a rasterizer.
func NewScheduler(obs Observer, ras *Rasterizer, cfg SchedulerConfig) *Scheduler {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.1
	}
	return &Scheduler{
		obs:       obs,
		ras:       ras,
		margin:    cfg.Margin,
		threshold: cfg.Threshold,
		logger:    cfg.Logger,
	}
}

// Subscribe starts observing every page of the document, replacing any
// previous subscription. It is called again on each document change. In
// single-page mode it is a no-op.
func (s *Scheduler) Subscribe(ctx context.Context, doc *core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribed {
		if err := s.obs.Close(); err != nil && s.logger != nil {
			s.logger.Warn("observer close failed", "err", err)
		}
		s.subscribed = false
	}
	if s.singlePage || doc == nil {
		return nil
	}

	pages := make([]int, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = p.Number
	}

	err := s.obs.Observe(pages, s.margin, s.threshold, func(in Intersection) {
		if in.Ratio < s.threshold {
			return
		}
		if s.ras.Cached(in.Page) || s.ras.Pending(in.Page) {
			return
		}
		s.ras.Request(ctx, in.Page)
	})
	if err != nil {
		return err
	}
	s.subscribed = true
	return nil
}

// SetSinglePage toggles single-page display mode. Enabling it drops the
// current subscription.
func (s *Scheduler) SetSinglePage(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.singlePage = on
	if on && s.subscribed {
		if err := s.obs.Close(); err != nil && s.logger != nil {
			s.logger.Warn("observer close failed", "err", err)
		}
		s.subscribed = false
	}
}

// Close drops the subscription; it is safe to call repeatedly.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.subscribed {
		return nil
	}
	s.subscribed = false
	return s.obs.Close()
}
