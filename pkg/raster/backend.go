// Package raster renders document pages to cached bitmaps on demand and
// schedules that work from viewport visibility.
//
// Pages render at a fixed internal scale, larger than any expected display
// zoom, so one cached bitmap survives display-size changes. The actual
// pixel production is delegated to a Backend; Quire treats it as an opaque
// capability.
package raster

import (
	"context"
	"image"
)

// Backend produces the pixels for a page. Implementations decode whatever
// the document source supplied (PDF content streams, page images, test
// fixtures). scale multiplies the page's intrinsic point dimensions.
type Backend interface {
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, page int, scale float64) (image.Image, error)

// RenderPage implements Backend.
func (f BackendFunc) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	return f(ctx, page, scale)
}
