package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quirelab/quire"
	"github.com/quirelab/quire/pkg/adapters/pdf"
	"github.com/quirelab/quire/pkg/adapters/watch"
)

var (
	watchPattern string
)

var watchCmd = &cobra.Command{
	Use:   "watch [file.pdf]",
	Short: "Watch a document and stream viewer events",
	Long: `Open a document, reload it whenever the file changes on disk, and print
viewer events matching the topic pattern until interrupted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []quire.Option{quire.WithLogger(slog.Default())}
		if configPath != "" {
			opts = append(opts, quire.WithConfigFile(configPath))
		}

		viewer, err := quire.Open(ctx, pdf.NewSource(args[0]), opts...)
		if err != nil {
			fatal("Error opening document", err)
		}
		defer viewer.Close()

		events, err := viewer.Watch(ctx, watchPattern)
		if err != nil {
			fatal("Error subscribing to events", err)
		}

		worker := watch.NewWorker(args[0], viewer, watch.WithLogger(slog.Default()))
		if err := worker.Start(ctx); err != nil {
			fatal("Error starting watcher", err)
		}
		defer worker.Stop(context.Background())

		fmt.Printf("watching %s (pattern %q), ctrl-c to stop\n", args[0], watchPattern)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				fmt.Println(e.String())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "**", "Topic glob pattern to subscribe with")
}
