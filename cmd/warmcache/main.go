// Command warmcache pre-renders calendar documents into the SQLite document
// cache so the API serves them without rendering on first request.
//
// Usage:
//
//	go run ./cmd/warmcache --from 2024 --to 2030 --db data/kalender.db
//
// This tool:
// 1. Creates/opens the SQLite database
// 2. Runs migrations to ensure schema is current
// 3. Renders every year/format/theme combination, years in parallel
// 4. Prints the cache totals
//
// Existing cache entries are served as-is; pass --purge to re-render them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/alecthomas/kong"

	"github.com/zapponejosh/jaarkalender/internal/database"
	"github.com/zapponejosh/jaarkalender/internal/export"
	"github.com/zapponejosh/jaarkalender/internal/logger"
)

// CLI holds the command-line flags.
type CLI struct {
	From     int      `name:"from" required:"" help:"First year to render"`
	To       int      `name:"to" required:"" help:"Last year to render (inclusive)"`
	DB       string   `name:"db" default:"data/kalender.db" env:"DATABASE_PATH" help:"Path to SQLite database"`
	Formats  []string `name:"format" default:"pdf,html,ics" help:"Formats to render"`
	Themes   []string `name:"theme" default:"light,dark" help:"Themes to render"`
	PageSize string   `name:"page-size" default:"A4" enum:"A4,A3,Letter" env:"PDF_PAGE_SIZE" help:"PDF page size"`
	Purge    bool     `name:"purge" help:"Drop cached documents of the range first"`
	Verbose  bool     `short:"v" help:"Verbose output"`
}

// WarmStats tracks what a run produced.
type WarmStats struct {
	Rendered int
	Cached   int
	Purged   int64
	Bytes    int64
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("warmcache"),
		kong.Description("Pre-render calendar documents into the document cache"),
		kong.UsageOnError(),
	)

	level := "info"
	if cli.Verbose {
		level = "debug"
	}
	log := logger.New(os.Stdout, level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, &cli, os.Stdout, log); err != nil {
		log.Error("warm cache failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("warm cache complete")
}

func run(ctx context.Context, cli *CLI, out io.Writer, log *slog.Logger) error {
	startTime := time.Now()

	if cli.To < cli.From {
		return fmt.Errorf("--to %d is before --from %d", cli.To, cli.From)
	}
	years := make([]int, 0, cli.To-cli.From+1)
	for y := cli.From; y <= cli.To; y++ {
		years = append(years, y)
	}

	// =========================================================================
	// Step 1: Open database and run migrations
	// =========================================================================
	log.Info("opening database", slog.String("path", cli.DB))

	db, err := database.Open(database.DefaultConfig(cli.DB), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations complete", slog.Int("applied", migrated))

	svc := export.NewService(db, export.Options{PageSize: cli.PageSize}, log)

	// =========================================================================
	// Step 2: Optionally purge the range
	// =========================================================================
	var stats WarmStats
	if cli.Purge {
		for _, year := range years {
			n, err := svc.Purge(ctx, year)
			if err != nil {
				return fmt.Errorf("purge %d: %w", year, err)
			}
			stats.Purged += n
		}
	}

	// =========================================================================
	// Step 3: Render
	// =========================================================================
	for _, format := range cli.Formats {
		for _, theme := range cli.Themes {
			docs, err := svc.ExportYears(ctx, years, format, theme, false)
			if err != nil {
				return fmt.Errorf("render %s/%s: %w", format, theme, err)
			}
			for _, doc := range docs {
				if doc.Cached {
					stats.Cached++
				} else {
					stats.Rendered++
					stats.Bytes += doc.Size
				}
			}
			log.Debug("render progress", slog.String("format", format), slog.String("theme", theme), slog.Int("years", len(docs)))
		}
	}

	// =========================================================================
	// Step 4: Verify
	// =========================================================================
	totals, err := db.CacheStats(ctx)
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}

	elapsed := time.Since(startTime)

	// Print summary
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Warm Cache Summary ===")
	fmt.Fprintf(out, "Years:               %d-%d\n", cli.From, cli.To)
	fmt.Fprintf(out, "Purged:              %d\n", stats.Purged)
	fmt.Fprintf(out, "Rendered:            %d (%s)\n", stats.Rendered, bytefmt.ByteSize(uint64(stats.Bytes)))
	fmt.Fprintf(out, "Already cached:      %d\n", stats.Cached)
	fmt.Fprintf(out, "Documents in cache:  %d (%s)\n", totals.Documents, bytefmt.ByteSize(uint64(totals.TotalBytes)))
	fmt.Fprintf(out, "Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}
