package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/baptizedtechnology/bibleproject-scrapers/internal/app"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/config"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/logger"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/processor"
)

func main() {
	scrapePodcasts := flag.Bool("podcasts", false, "Scrape podcast episodes")
	scrapeStudyNotes := flag.Bool("study-notes", false, "Scrape study note PDFs")
	scrapeClassroom := flag.Bool("classroom", false, "Scrape classroom content")
	runProcess := flag.Bool("process", false, "Process pending content into embedded chunks")
	contentType := flag.String("content-type", "", "Content type filter for -process (podcast, study_notes, classroom)")
	limit := flag.Int("limit", 10, "Maximum items to process in one -process run")
	full := flag.Bool("full", false, "Run all scrapers, then process pending content")
	flag.Parse()

	if !*scrapePodcasts && !*scrapeStudyNotes && !*scrapeClassroom && !*runProcess && !*full {
		flag.Usage()
		os.Exit(2)
	}

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Structured logger: JSON to stdout plus a per-run log file, with
	// the run id stamped on every record.
	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		w, err := logger.NewRunWriter(cfg.LogDir, time.Now())
		if err != nil {
			slog.Warn("failed to open run log file, logging to stdout only", "error", err)
		} else {
			out = w
		}
	}
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(out, nil)))
	slog.SetDefault(log)

	ctx := logger.WithRunID(context.Background(), uuid.NewString())
	slog.InfoContext(ctx, "starting run",
		"podcasts", *scrapePodcasts, "study_notes", *scrapeStudyNotes,
		"classroom", *scrapeClassroom, "process", *runProcess, "full", *full)

	// 3. Database + migrations
	db, err := app.Bootstrap(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 4. Wiring
	a, err := app.New(ctx, cfg, db)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.WarnContext(ctx, "cleanup error", "error", err)
		}
	}()

	// 5. Dispatch. Scraper failures do not abort the rest of the run;
	// the exit code reflects whether anything failed.
	failed := false

	if *scrapePodcasts || *full {
		if err := a.Podcasts.Scrape(ctx); err != nil {
			slog.ErrorContext(ctx, "podcast scrape failed", "error", err)
			failed = true
		}
	}
	if *scrapeStudyNotes || *full {
		if err := a.StudyNotes.Scrape(ctx); err != nil {
			slog.ErrorContext(ctx, "study notes scrape failed", "error", err)
			failed = true
		}
	}
	if *scrapeClassroom || *full {
		if err := a.Classroom.Scrape(ctx); err != nil {
			slog.ErrorContext(ctx, "classroom scrape failed", "error", err)
			failed = true
		}
	}
	if *runProcess || *full {
		n, err := processor.Run(ctx, a.Processor, *contentType, *limit)
		if err != nil {
			slog.ErrorContext(ctx, "processing failed", "error", err)
			failed = true
		} else {
			slog.InfoContext(ctx, "processing done", "processed", n)
		}
	}

	if failed {
		os.Exit(1)
	}
	slog.InfoContext(ctx, "run completed")
}
