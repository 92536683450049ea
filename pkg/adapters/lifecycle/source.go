// Package lifecycle bridges quire's typed event stream to the generic
// lifecycle event pipeline, so hosts built on lifecycle runtimes can
// consume annotation and render events alongside their other sources.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/quirelab/quire/pkg/core"
)

type quireSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits quire events. core.Event
// satisfies lifecycle.Event through its String method.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &quireSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *quireSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *quireSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
