// Package quire is the composition root for the quire document viewer
// engine.
//
// It connects the domain packages (annotation store, gesture machine,
// rasterizer, overlay renderer) with the infrastructure adapters (PDF
// metadata, page imaging, file watching) behind a single Viewer facade.
//
// Philosophy:
//
// Quire is a headless page-viewing and annotation engine for toolmakers.
// It owns the interactive state of a document session, which pages are
// rasterized, what annotations exist, what gesture is in flight, while
// staying agnostic about where pixels come from and where they go. Hosts
// plug in a raster backend and a viewport observer and consume the event
// stream.
//
// Features:
//
//   - **Copy-on-write annotation store**: snapshots handed out are never
//     mutated behind the caller's back.
//   - **Gesture state machine**: pointer and keyboard input becomes
//     validated annotation mutations, one gesture at a time.
//   - **Lazy rasterization**: pages render when they approach the
//     viewport, deduplicated and cached per document generation.
//   - **Vector overlay scenes**: annotations compile to a primitive list
//     hosts can composite live, or flatten to a bitmap for export.
//   - **Pluggable adapters**: PDF metadata via pdfcpu, image-sequence
//     backends, fsnotify hot reload.
//
// Usage:
//
//	// Open a document with functional options
//	viewer, err := quire.Open(ctx, pdf.NewSource("contract.pdf"),
//		quire.WithBackend(backend),
//		quire.WithLogger(logger),
//	)
//
//	// Annotate
//	viewer.Machine().SetTool(interaction.ToolHighlight)
package quire
