package main

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quirelab/quire"
	"github.com/quirelab/quire/pkg/adapters/imaging"
	"github.com/quirelab/quire/pkg/adapters/pdf"
)

var (
	renderPage        int
	renderOut         string
	renderScale       float64
	renderAnnotations string
	renderPages       string
)

var renderCmd = &cobra.Command{
	Use:   "render [file.pdf]",
	Short: "Flatten a page with its annotations to a PNG",
	Long: `Render one page of a document to a PNG file, with annotations from an
optional JSON file baked into the bitmap. Without a page image source the
page body is blank; use --pages to supply pre-rendered page bitmaps.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		opts := []quire.Option{quire.WithLogger(slog.Default())}
		if configPath != "" {
			opts = append(opts, quire.WithConfigFile(configPath))
		}
		if renderScale > 0 {
			opts = append(opts, quire.WithRasterScale(renderScale))
		}
		if renderPages != "" {
			opts = append(opts, quire.WithBackend(imaging.NewSequence(renderPages)))
		}

		viewer, err := quire.Open(ctx, pdf.NewSource(args[0]), opts...)
		if err != nil {
			fatal("Error opening document", err)
		}
		defer viewer.Close()

		if renderAnnotations != "" {
			data, err := os.ReadFile(renderAnnotations)
			if err != nil {
				fatal("Error reading annotations", err)
			}
			if err := viewer.Import(data); err != nil {
				fatal("Error importing annotations", err)
			}
		}

		img, err := viewer.ComposePage(ctx, renderPage)
		if err != nil {
			fatal("Error rendering page", err)
		}

		out, err := os.Create(renderOut)
		if err != nil {
			fatal("Error creating output file", err)
		}
		defer out.Close()
		if err := png.Encode(out, img); err != nil {
			fatal("Error encoding PNG", err)
		}

		fmt.Printf("wrote %s (page %d of %s)\n", renderOut, renderPage, args[0])
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().IntVar(&renderPage, "page", 1, "Page number to render")
	renderCmd.Flags().StringVar(&renderOut, "out", "page.png", "Output PNG path")
	renderCmd.Flags().Float64Var(&renderScale, "scale", 0, "Render scale (default from config)")
	renderCmd.Flags().StringVar(&renderAnnotations, "annotations", "", "JSON annotations file to flatten")
	renderCmd.Flags().StringVar(&renderPages, "pages", "", "Page image pattern, e.g. pages/page-%d.png")
}
