// Command sync mirrors every artwork from the hosted content API into the
// Postgres database read by CONTENT_PROVIDER=postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/DukeRupert/youkai/internal"
	"github.com/DukeRupert/youkai/internal/app"
	"github.com/DukeRupert/youkai/internal/query"
)

func run() error {
	prune := flag.Bool("prune", true, "delete mirrored artworks no longer published")
	dryRun := flag.Bool("dry-run", false, "fetch and report without writing")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	client, err := app.NewContentClient(cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	artworks, err := query.NewGROQ(client).All(ctx)
	if err != nil {
		return fmt.Errorf("fetch artworks: %w", err)
	}
	logger.Info("Fetched artworks", "count", len(artworks), "duration_ms", time.Since(start).Milliseconds())

	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	if *dryRun {
		warn.Printf("dry run: %d artworks would be mirrored\n", len(artworks))
		return nil
	}

	db, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	mirror := query.NewPostgres(db)
	ids := make([]string, 0, len(artworks))
	for _, a := range artworks {
		if err := mirror.Upsert(ctx, a); err != nil {
			return fmt.Errorf("mirror %s: %w", a.ID, err)
		}
		ids = append(ids, a.ID)
	}

	var removed int64
	if *prune {
		removed, err = mirror.Prune(ctx, ids)
		if err != nil {
			return fmt.Errorf("prune mirror: %w", err)
		}
	}

	ok.Printf("mirrored %d artworks", len(ids))
	fmt.Printf(" in %s\n", time.Since(start).Round(time.Millisecond))
	if removed > 0 {
		warn.Printf("removed %d unpublished artworks\n", removed)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
