package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/quirelab/quire/pkg/core"
)

// Flatten rasterizes a scene onto an RGBA canvas of the given pixel size.
// Hosts normally composite the scene as live vector elements; Flatten
// serves export and headless rendering, where the overlay has to be baked
// into the page bitmap.
func Flatten(scene Scene, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	fl := flattener{
		dst: dst,
		sx:  float64(width) / 100,
		sy:  float64(height) / 100,
	}
	for _, p := range scene {
		switch v := p.(type) {
		case *Path:
			fl.path(v)
		case *Box:
			fl.box(v)
		case *Label:
			fl.label(v)
		}
	}
	return dst
}

type flattener struct {
	dst    *image.RGBA
	sx, sy float64
}

func (f *flattener) px(p core.Point) (float32, float32) {
	return float32(p.X * f.sx), float32(p.Y * f.sy)
}

// path strokes a polyline by filling one quad per segment. Joins are left
// butt-ended, which is indistinguishable at typical stroke widths.
func (f *flattener) path(p *Path) {
	if len(p.Points) < 2 {
		return
	}
	half := p.Width / 100 * float64(f.dst.Bounds().Dx()) / 2
	if half <= 0 {
		return
	}
	r := vector.NewRasterizer(f.dst.Bounds().Dx(), f.dst.Bounds().Dy())
	for i := 1; i < len(p.Points); i++ {
		ax, ay := f.px(p.Points[i-1])
		bx, by := f.px(p.Points[i])
		dx, dy := float64(bx-ax), float64(by-ay)
		n := math.Hypot(dx, dy)
		if n == 0 {
			continue
		}
		// Perpendicular unit offset scaled to half the stroke width.
		ox := float32(-dy / n * half)
		oy := float32(dx / n * half)
		r.MoveTo(ax+ox, ay+oy)
		r.LineTo(bx+ox, by+oy)
		r.LineTo(bx-ox, by-oy)
		r.LineTo(ax-ox, ay-oy)
		r.ClosePath()
	}
	f.fill(r, p.Color, p.Opacity)
}

func (f *flattener) box(b *Box) {
	rect := b.Rect.Normalized()
	x0, y0 := float32(rect.X*f.sx), float32(rect.Y*f.sy)
	x1, y1 := float32((rect.X+rect.W)*f.sx), float32((rect.Y+rect.H)*f.sy)
	if b.Fill != "" {
		r := vector.NewRasterizer(f.dst.Bounds().Dx(), f.dst.Bounds().Dy())
		quad(r, x0, y0, x1, y1)
		f.fill(r, b.Fill, b.Opacity)
	}
	if b.Border != "" {
		const bw = 2
		r := vector.NewRasterizer(f.dst.Bounds().Dx(), f.dst.Bounds().Dy())
		quad(r, x0, y0, x1, y0+bw)
		quad(r, x0, y1-bw, x1, y1)
		quad(r, x0, y0+bw, x0+bw, y1-bw)
		quad(r, x1-bw, y0+bw, x1, y1-bw)
		f.fill(r, b.Border, b.Opacity)
	}
}

func quad(r *vector.Rasterizer, x0, y0, x1, y1 float32) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.ClosePath()
}

func (f *flattener) fill(r *vector.Rasterizer, hex string, opacity float64) {
	c := parseColor(hex, opacity)
	r.Draw(f.dst, f.dst.Bounds(), image.NewUniform(c), image.Point{})
}

func (f *flattener) label(l *Label) {
	if l.Text == "" {
		return
	}
	x, y := l.At.X*f.sx, l.At.Y*f.sy
	d := font.Drawer{
		Dst:  f.dst,
		Src:  image.NewUniform(parseColor(l.Color, l.Opacity)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x), int(y)+basicfont.Face7x13.Ascent),
	}
	d.DrawString(l.Text)
}

// parseColor decodes a #rrggbb (or #rgb) color and premultiplies the
// opacity into the alpha channel. Unparseable input falls back to opaque
// black so a bad color is visible rather than silently dropped.
func parseColor(hex string, opacity float64) color.Color {
	r, g, b, ok := hexRGB(hex)
	if !ok {
		r, g, b = 0, 0, 0
	}
	a := core.Clamp(opacity, 0, 1)
	if a == 0 {
		a = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a * 255)}
}

func hexRGB(s string) (r, g, b uint8, ok bool) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0, false
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			n, valid := hexNibble(hex[i])
			if !valid {
				return 0, 0, 0, false
			}
			v[i] = n<<4 | n
		}
		return v[0], v[1], v[2], true
	case 6:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			hi, okHi := hexNibble(hex[2*i])
			lo, okLo := hexNibble(hex[2*i+1])
			if !okHi || !okLo {
				return 0, 0, 0, false
			}
			v[i] = hi<<4 | lo
		}
		return v[0], v[1], v[2], true
	}
	return 0, 0, 0, false
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
