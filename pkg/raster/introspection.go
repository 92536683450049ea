package raster

import (
	"sort"

	"github.com/aretw0/introspection"
)

// RasterizerState exposes internal state for observability.
type RasterizerState struct {
	Scale        float64 `json:"scale"`
	CachedPages  []int   `json:"cached_pages,omitempty"`
	PendingPages []int   `json:"pending_pages,omitempty"`
	Generation   uint64  `json:"generation"`
}

// State implements introspection.Introspectable.
func (r *Rasterizer) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := RasterizerState{Scale: r.scale, Generation: r.gen}
	for page := range r.cache {
		st.CachedPages = append(st.CachedPages, page)
	}
	for page := range r.pending {
		st.PendingPages = append(st.PendingPages, page)
	}
	sort.Ints(st.CachedPages)
	sort.Ints(st.PendingPages)
	return st
}

// ComponentType implements introspection.Component.
func (r *Rasterizer) ComponentType() string {
	return "rasterizer"
}

var _ introspection.Introspectable = (*Rasterizer)(nil)
var _ introspection.Component = (*Rasterizer)(nil)
