// Command export renders the public pages, artwork pages and site metadata
// into the configured storage provider so the site can be served statically.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/DukeRupert/youkai/internal"
	"github.com/DukeRupert/youkai/internal/app"
	"github.com/DukeRupert/youkai/internal/export"
	"github.com/DukeRupert/youkai/internal/storage"
)

func run() error {
	concurrency := flag.Int("concurrency", 4, "documents rendered in parallel")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	site, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer site.Close()

	store, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}

	exporter := export.New(site.Mux, site.Artworks, store, export.Config{Concurrency: *concurrency}, logger)
	summary, err := exporter.Run(ctx)
	if summary != nil {
		printSummary(context.Background(), os.Stdout, summary, store)
	}
	if err != nil {
		return err
	}
	if len(summary.Failures) > 0 {
		return fmt.Errorf("%d documents failed to export", len(summary.Failures))
	}
	return nil
}

func openStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
			Endpoint:        cfg.R2Endpoint,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

func printSummary(ctx context.Context, w io.Writer, s *export.Summary, store storage.Storage) {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)

	ok.Fprintf(w, "exported %d documents", len(s.Written))
	dim.Fprintf(w, " in %s\n", s.Duration.Round(time.Millisecond))
	if len(s.Written) > 0 {
		if root, err := store.URL(ctx, storage.PageKey("/"), time.Hour); err == nil {
			dim.Fprintf(w, "  site root: %s\n", root)
		}
	}

	if len(s.Failures) == 0 {
		return
	}
	bad.Fprintf(w, "%d failed:\n", len(s.Failures))
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  %s ", f.Path)
		bad.Fprintf(w, "[%s] ", f.Reason)
		fmt.Fprintln(w, f.Err)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
