package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quirelab/quire/pkg/adapters/pdf"
)

var (
	infoJSON bool
)

var infoCmd = &cobra.Command{
	Use:   "info [file.pdf]",
	Short: "Inspect a document's page inventory",
	Long:  `Read a PDF and print its page count and per-page dimensions. Outputs a table by default, or a JSON object with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src := pdf.NewSource(args[0], pdf.WithLogger(slog.Default()))
		doc, err := src.Load(context.Background())
		if err != nil {
			fatal("Error reading document", err)
		}

		if infoJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(doc); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("%s: %d page(s)\n", doc.Name, doc.PageCount())
		for _, p := range doc.Pages {
			fmt.Printf("  page %d: %.1f x %.1f pt\n", p.Number, p.Width, p.Height)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output in JSON format")
}
