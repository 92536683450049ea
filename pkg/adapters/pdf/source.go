// Package pdf loads document metadata from PDF files via pdfcpu. Only the
// page inventory is extracted here; pixel output comes from whatever
// raster.Backend the host wires in.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quirelab/quire/pkg/core"
)

// Letter-size fallback, in points, for pages whose media box cannot be
// read.
const (
	fallbackWidth  = 612.0
	fallbackHeight = 792.0
)

// Source reads a PDF from disk on every Load, so a reload after a file
// change picks up the fresh page inventory.
type Source struct {
	path   string
	logger *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSource creates a Source for the PDF at path.
func NewSource(path string, opts ...Option) *Source {
	s := &Source{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file the source reads from.
func (s *Source) Path() string { return s.path }

// Load reads the PDF and returns its page inventory.
func (s *Source) Load(ctx context.Context) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	doc, err := Parse(data, filepath.Base(s.path), s.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	doc.ID = s.path
	return doc, nil
}

// Parse extracts the page inventory from raw PDF bytes. Pages whose
// dimensions cannot be determined fall back to letter size with a warning
// rather than failing the whole document.
func Parse(data []byte, name string, logger *slog.Logger) (*core.Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	doc := &core.Document{
		Name:  name,
		Pages: make([]core.Page, 0, count),
	}

	dims, err := api.PageDims(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to read page dimensions, assuming letter size",
			"document", name, "error", err)
		dims = nil
	}

	for i := 0; i < count; i++ {
		page := core.Page{
			Number: i + 1,
			Width:  fallbackWidth,
			Height: fallbackHeight,
		}
		if i < len(dims) && dims[i].Width > 0 && dims[i].Height > 0 {
			page.Width = dims[i].Width
			page.Height = dims[i].Height
		}
		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}
