// Package core defines the domain of Quire: documents, pages, the
// polymorphic annotation model, and the annotation store.
//
// All annotation geometry lives in page percentage space (see Point). The
// core is agnostic to how pages are rasterized or displayed; rendering and
// interaction build on top of it.
package core

import "context"

// Page is one rasterizable unit of a document. Width and Height are the
// intrinsic page dimensions in points; Rotation is one of 0, 90, 180, 270.
type Page struct {
	Number   int     `json:"number"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
}

// Document is the loaded document's page inventory. It carries no byte
// content: parsing and rasterization are adapter concerns.
type Document struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Pages []Page `json:"pages"`
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Page returns the page with the given 1-based number.
func (d *Document) Page(number int) (Page, bool) {
	if d == nil {
		return Page{}, false
	}
	for _, p := range d.Pages {
		if p.Number == number {
			return p, true
		}
	}
	return Page{}, false
}

// Source supplies documents to the viewer. Implementations parse whatever
// container format they support (PDF, image sequences, fixtures) and return
// the page inventory; Quire never reads file structure itself.
type Source interface {
	Load(ctx context.Context) (*Document, error)
}
