// Package imaging provides raster.Backend implementations backed by
// pre-rendered page images. Hosts with a native PDF rasterizer plug their
// own backend in instead; these cover image-sequence documents, headless
// export, and tests.
package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/quirelab/quire/pkg/core"
)

// Sequence serves pages from numbered image files on disk. The file for
// page n is located with fmt.Sprintf(pattern, n), so a pattern like
// "pages/page-%d.png" maps page 3 to "pages/page-3.png". The source image
// is treated as the page at scale 1 and resampled for other scales.
type Sequence struct {
	pattern string
}

// NewSequence creates a backend over numbered page images.
func NewSequence(pattern string) *Sequence {
	return &Sequence{pattern: pattern}
}

// RenderPage loads and resamples the image for a page.
func (s *Sequence) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf(s.pattern, page)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page image %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding page image %s: %w", path, err)
	}
	return Resample(src, scale), nil
}

// Resample scales an image by the given factor using Catmull-Rom
// interpolation. A non-positive or unit scale returns the source
// unchanged.
func Resample(src image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1 {
		return src
	}
	b := src.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// Blank produces plain white pages sized from the document's page
// dimensions, one pixel per point at scale 1. It backs headless export of
// annotation overlays when no page bitmaps exist.
type Blank struct {
	doc *core.Document
}

// NewBlank creates a blank-page backend for a document.
func NewBlank(doc *core.Document) *Blank {
	return &Blank{doc: doc}
}

// RenderPage returns a white canvas matching the page size.
func (b *Blank) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := b.doc.Page(page)
	if !ok {
		return nil, fmt.Errorf("page %d: %w", page, core.ErrPageNotFound)
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(p.Width * scale)
	h := int(p.Height * scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	white := image.NewUniform(color.White)
	xdraw.Draw(img, img.Bounds(), white, image.Point{}, xdraw.Src)
	return img, nil
}
