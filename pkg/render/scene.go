// Package render derives a vector overlay scene from an annotation
// collection. Build is a pure function: the scene is re-derived in full on
// every store change and composited above the page bitmap by the host.
package render

import (
	"github.com/quirelab/quire/pkg/core"
)

// Note boxes grow with their content, bounded to these percentage-space
// limits.
const (
	noteMinWidth  = 12.0
	noteMaxWidth  = 36.0
	noteMinHeight = 6.0
	noteMaxHeight = 24.0

	notePlaceholder = "Add a note…"
)

// Base carries the fields shared by all scene primitives. Interactive
// marks primitives that must receive pointer events directly (notes,
// text); everything else lets pointer input fall through to the page so
// drag-through keeps working.
type Base struct {
	AnnotationID string
	Interactive  bool
	Selected     bool
}

// Path is a continuous polyline stroke. Width is in percentage units of
// the page width.
type Path struct {
	Base
	Points  []core.Point
	Color   string
	Width   float64
	Opacity float64
}

// Box is a filled and/or outlined rectangle. An empty Fill draws only the
// Border; an empty Border draws only the fill.
type Box struct {
	Base
	Rect    core.Rect
	Fill    string
	Border  string
	Opacity float64
}

// Label is text anchored at a point.
type Label struct {
	Base
	At         core.Point
	Text       string
	FontFamily string
	FontSize   float64
	FontWeight string
	FontStyle  string
	Color      string
	Opacity    float64
}

// Primitive is the closed union of scene elements.
type Primitive interface {
	base() *Base
}

func (p *Path) base() *Base  { return &p.Base }
func (b *Box) base() *Base   { return &b.Base }
func (l *Label) base() *Base { return &l.Base }

// Scene is an ordered primitive list; order equals z-order.
type Scene []Primitive

// Build derives the overlay scene for an annotation sequence. The input
// order is preserved, so later-added annotations draw on top. selectedID
// marks the selected annotation, which affects only variants that render a
// selection outline.
func Build(anns []core.Annotation, selectedID string) Scene {
	var scene Scene
	for _, a := range anns {
		selected := a.Meta().ID == selectedID
		switch v := a.(type) {
		case *core.Freehand:
			scene = append(scene, strokePath(&v.Common, v.Points, v.StrokeWidth, selected))
		case *core.Signature:
			scene = append(scene, strokePath(&v.Common, v.Points, v.StrokeWidth, selected))
		case *core.Highlight:
			scene = append(scene, fillBoxes(&v.Common, v.Rects, selected)...)
		case *core.Redact:
			scene = append(scene, fillBoxes(&v.Common, v.Rects, selected)...)
		case *core.Underline:
			scene = append(scene, lineBoxes(&v.Common, v.Rects, selected, false)...)
		case *core.Strikethrough:
			scene = append(scene, lineBoxes(&v.Common, v.Rects, selected, true)...)
		case *core.Stamp:
			scene = append(scene, stampPrimitives(v, selected)...)
		case *core.Note:
			scene = append(scene, notePrimitives(v, selected)...)
		case *core.Text:
			scene = append(scene, textPrimitives(v, selected)...)
		case *core.Link:
			scene = append(scene, &Box{
				Base:    Base{AnnotationID: v.ID, Selected: selected},
				Rect:    core.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H},
				Border:  v.Color,
				Opacity: v.Opacity,
			})
		}
	}
	return scene
}

func strokePath(c *core.Common, points []core.Point, width float64, selected bool) *Path {
	return &Path{
		Base:    Base{AnnotationID: c.ID, Selected: selected},
		Points:  points,
		Color:   c.Color,
		Width:   width,
		Opacity: c.Opacity,
	}
}

func fillBoxes(c *core.Common, rects []core.Rect, selected bool) Scene {
	out := make(Scene, 0, len(rects))
	for _, r := range rects {
		out = append(out, &Box{
			Base:    Base{AnnotationID: c.ID, Selected: selected},
			Rect:    r,
			Fill:    c.Color,
			Opacity: c.Opacity,
		})
	}
	return out
}

// lineBoxes draws one thin rule per rect: at the baseline for underline,
// across the middle for strikethrough.
func lineBoxes(c *core.Common, rects []core.Rect, selected, middle bool) Scene {
	const rule = 0.4
	out := make(Scene, 0, len(rects))
	for _, r := range rects {
		y := r.Y + r.H - rule
		if middle {
			y = r.Y + r.H/2 - rule/2
		}
		out = append(out, &Box{
			Base:    Base{AnnotationID: c.ID, Selected: selected},
			Rect:    core.Rect{X: r.X, Y: y, W: r.W, H: rule},
			Fill:    c.Color,
			Opacity: c.Opacity,
		})
	}
	return out
}

func stampPrimitives(v *core.Stamp, selected bool) Scene {
	box := core.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H}
	return Scene{
		&Box{
			Base:    Base{AnnotationID: v.ID, Selected: selected},
			Rect:    box,
			Border:  v.Color,
			Opacity: v.Opacity,
		},
		&Label{
			Base:    Base{AnnotationID: v.ID, Selected: selected},
			At:      core.Point{X: box.X + box.W/2, Y: box.Y + box.H/2},
			Text:    v.Label,
			Color:   v.Color,
			Opacity: v.Opacity,
		},
	}
}

func notePrimitives(v *core.Note, selected bool) Scene {
	content := v.Content
	if content == "" {
		content = notePlaceholder
	}
	n := float64(len(v.Content))
	box := core.Rect{
		X: v.X,
		Y: v.Y,
		W: core.Clamp(noteMinWidth+n/4, noteMinWidth, noteMaxWidth),
		H: core.Clamp(noteMinHeight+n/10, noteMinHeight, noteMaxHeight),
	}
	scene := Scene{
		&Box{
			Base:    Base{AnnotationID: v.ID, Interactive: true, Selected: selected},
			Rect:    box,
			Fill:    v.Color,
			Opacity: v.Opacity,
		},
	}
	if v.Open {
		scene = append(scene, &Label{
			Base:    Base{AnnotationID: v.ID, Interactive: true, Selected: selected},
			At:      core.Point{X: box.X + 1, Y: box.Y + 2},
			Text:    content,
			Color:   "#212121",
			Opacity: v.Opacity,
		})
	}
	return scene
}

func textPrimitives(v *core.Text, selected bool) Scene {
	scene := Scene{}
	if selected {
		scene = append(scene, &Box{
			Base:    Base{AnnotationID: v.ID, Interactive: true, Selected: true},
			Rect:    core.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H},
			Border:  "#1976d2",
			Opacity: 1,
		})
	}
	scene = append(scene, &Label{
		Base:       Base{AnnotationID: v.ID, Interactive: true, Selected: selected},
		At:         core.Point{X: v.X, Y: v.Y},
		Text:       v.Content,
		FontFamily: v.FontFamily,
		FontSize:   v.FontSize,
		FontWeight: v.FontWeight,
		FontStyle:  v.FontStyle,
		Color:      v.Color,
		Opacity:    v.Opacity,
	})
	return scene
}
