package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the annotation union.
type Kind string

const (
	KindText          Kind = "text"
	KindHighlight     Kind = "highlight"
	KindUnderline     Kind = "underline"
	KindStrikethrough Kind = "strikethrough"
	KindFreehand      Kind = "freehand"
	KindSignature     Kind = "signature"
	KindStamp         Kind = "stamp"
	KindNote          Kind = "note"
	KindRedact        Kind = "redact"
	KindLink          Kind = "link"
)

// Common holds the fields shared by every annotation variant. X, Y, W and H
// are in page percentage space; Opacity ranges over [0,1]; Color is a hex
// string like "#ffeb3b".
type Common struct {
	ID        string    `json:"id"`
	Page      int       `json:"page"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	W         float64   `json:"w"`
	H         float64   `json:"h"`
	Rotation  float64   `json:"rotation"`
	Opacity   float64   `json:"opacity"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Annotation is the tagged union of all overlay object variants. The set of
// variants is fixed; renderers dispatch on the concrete type (or Kind) and
// can rely on the union being closed.
type Annotation interface {
	Kind() Kind

	// Meta returns the shared fields for in-place mutation by the store.
	Meta() *Common

	// clone seals the interface and supports copy-on-write updates.
	clone() Annotation
}

// Freehand is a hand-drawn stroke captured as an ordered point list.
type Freehand struct {
	Common
	Points      []Point `json:"points"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Signature is a drawn signature stroke. It shares the freehand shape but
// is kept distinct so renderers and exporters can treat it specially.
type Signature struct {
	Common
	Points      []Point `json:"points"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Highlight marks one or more page rectangles with a translucent fill.
type Highlight struct {
	Common
	Rects []Rect `json:"rects"`
}

// Redact covers one or more page rectangles with an opaque fill.
type Redact struct {
	Common
	Rects []Rect `json:"rects"`
}

// Underline draws a line under one or more text rectangles.
type Underline struct {
	Common
	Rects []Rect `json:"rects"`
}

// Strikethrough draws a line through one or more text rectangles.
type Strikethrough struct {
	Common
	Rects []Rect `json:"rects"`
}

// Stamp places a decorative stamp shape with a label.
type Stamp struct {
	Common
	StampKind string `json:"stamp_kind"`
	Label     string `json:"label,omitempty"`
}

// Note is a sticky note with text content and an open/closed flag.
type Note struct {
	Common
	Content string `json:"content"`
	Open    bool   `json:"open"`
}

// Text is literal text placed on the page.
type Text struct {
	Common
	Content    string  `json:"content"`
	FontFamily string  `json:"font_family"`
	FontSize   float64 `json:"font_size"`
	FontWeight string  `json:"font_weight"`
	FontStyle  string  `json:"font_style"`
	Align      string  `json:"align"`
}

// Link points at an external URL or an internal page. Exactly one of URL
// and TargetPage is set.
type Link struct {
	Common
	URL        string `json:"url,omitempty"`
	TargetPage int    `json:"target_page,omitempty"`
}

func (a *Freehand) Kind() Kind      { return KindFreehand }
func (a *Signature) Kind() Kind     { return KindSignature }
func (a *Highlight) Kind() Kind     { return KindHighlight }
func (a *Redact) Kind() Kind        { return KindRedact }
func (a *Underline) Kind() Kind     { return KindUnderline }
func (a *Strikethrough) Kind() Kind { return KindStrikethrough }
func (a *Stamp) Kind() Kind         { return KindStamp }
func (a *Note) Kind() Kind          { return KindNote }
func (a *Text) Kind() Kind          { return KindText }
func (a *Link) Kind() Kind          { return KindLink }

func (a *Freehand) Meta() *Common      { return &a.Common }
func (a *Signature) Meta() *Common     { return &a.Common }
func (a *Highlight) Meta() *Common     { return &a.Common }
func (a *Redact) Meta() *Common        { return &a.Common }
func (a *Underline) Meta() *Common     { return &a.Common }
func (a *Strikethrough) Meta() *Common { return &a.Common }
func (a *Stamp) Meta() *Common         { return &a.Common }
func (a *Note) Meta() *Common          { return &a.Common }
func (a *Text) Meta() *Common          { return &a.Common }
func (a *Link) Meta() *Common          { return &a.Common }

func (a *Freehand) clone() Annotation {
	c := *a
	c.Points = append([]Point(nil), a.Points...)
	return &c
}

func (a *Signature) clone() Annotation {
	c := *a
	c.Points = append([]Point(nil), a.Points...)
	return &c
}

func (a *Highlight) clone() Annotation {
	c := *a
	c.Rects = append([]Rect(nil), a.Rects...)
	return &c
}

func (a *Redact) clone() Annotation {
	c := *a
	c.Rects = append([]Rect(nil), a.Rects...)
	return &c
}

func (a *Underline) clone() Annotation {
	c := *a
	c.Rects = append([]Rect(nil), a.Rects...)
	return &c
}

func (a *Strikethrough) clone() Annotation {
	c := *a
	c.Rects = append([]Rect(nil), a.Rects...)
	return &c
}

func (a *Stamp) clone() Annotation { c := *a; return &c }
func (a *Note) clone() Annotation  { c := *a; return &c }
func (a *Text) clone() Annotation  { c := *a; return &c }
func (a *Link) clone() Annotation  { c := *a; return &c }

// Patch carries a partial update for an annotation. Nil fields are left
// untouched. Content and Open only apply to variants that carry them and
// are ignored elsewhere.
type Patch struct {
	X        *float64
	Y        *float64
	W        *float64
	H        *float64
	Rotation *float64
	Opacity  *float64
	Color    *string
	Content  *string
	Open     *bool
	Points   []Point
}

func (p Patch) apply(a Annotation) {
	c := a.Meta()
	if p.X != nil {
		c.X = *p.X
	}
	if p.Y != nil {
		c.Y = *p.Y
	}
	if p.W != nil {
		c.W = *p.W
	}
	if p.H != nil {
		c.H = *p.H
	}
	if p.Rotation != nil {
		c.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		c.Opacity = *p.Opacity
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	switch v := a.(type) {
	case *Note:
		if p.Content != nil {
			v.Content = *p.Content
		}
		if p.Open != nil {
			v.Open = *p.Open
		}
	case *Text:
		if p.Content != nil {
			v.Content = *p.Content
		}
	case *Stamp:
		if p.Content != nil {
			v.Label = *p.Content
		}
	case *Freehand:
		if p.Points != nil {
			v.Points = append([]Point(nil), p.Points...)
		}
	case *Signature:
		if p.Points != nil {
			v.Points = append([]Point(nil), p.Points...)
		}
	}
}

// newByKind is the construction table used when decoding exported
// annotations.
var newByKind = map[Kind]func() Annotation{
	KindFreehand:      func() Annotation { return &Freehand{} },
	KindSignature:     func() Annotation { return &Signature{} },
	KindHighlight:     func() Annotation { return &Highlight{} },
	KindRedact:        func() Annotation { return &Redact{} },
	KindUnderline:     func() Annotation { return &Underline{} },
	KindStrikethrough: func() Annotation { return &Strikethrough{} },
	KindStamp:         func() Annotation { return &Stamp{} },
	KindNote:          func() Annotation { return &Note{} },
	KindText:          func() Annotation { return &Text{} },
	KindLink:          func() Annotation { return &Link{} },
}

type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalAnnotations encodes annotations as a JSON array of
// {kind, data} envelopes, preserving order.
func MarshalAnnotations(anns []Annotation) ([]byte, error) {
	envs := make([]envelope, len(anns))
	for i, a := range anns {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("marshal %s annotation: %w", a.Kind(), err)
		}
		envs[i] = envelope{Kind: a.Kind(), Data: data}
	}
	return json.MarshalIndent(envs, "", "  ")
}

// UnmarshalAnnotations decodes the envelope format produced by
// MarshalAnnotations.
func UnmarshalAnnotations(data []byte) ([]Annotation, error) {
	var envs []envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("decode annotation list: %w", err)
	}
	anns := make([]Annotation, len(envs))
	for i, env := range envs {
		make, ok := newByKind[env.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
		}
		a := make()
		if err := json.Unmarshal(env.Data, a); err != nil {
			return nil, fmt.Errorf("decode %s annotation: %w", env.Kind, err)
		}
		anns[i] = a
	}
	return anns, nil
}
