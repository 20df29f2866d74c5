package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/chatbot"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/classroom"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/history"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/podcasts"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/studynotes"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/adapter/gemini"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/adapter/openai"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/config"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/processor"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/scrape"
)

// App wires config, database and adapters into the scrapers and the
// processor. One App instance serves one CLI run.
type App struct {
	Podcasts   *podcasts.Scraper
	StudyNotes *studynotes.Scraper
	Classroom  *classroom.Scraper
	Processor  *processor.Processor
	History    *history.PostgresRepo

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	client := scrape.NewClient(
		cfg.UserAgent,
		time.Duration(cfg.RequestTimeout)*time.Second,
		scrape.WithDelay(time.Duration(cfg.RequestDelay*float64(time.Second))),
		scrape.WithRetries(cfg.RequestRetries, time.Duration(cfg.RetryDelaySecs)*time.Second),
		scrape.WithTempDir(cfg.TempDir),
	)

	indexRepo := index.NewPostgresRepo(db)
	indexService := index.NewService(indexRepo, cfg.DefaultChatbotID)
	chatbotRepo := chatbot.NewPostgresRepo(db)
	historyRepo := history.NewPostgresRepo(db)

	a := &App{
		Podcasts:   podcasts.NewScraper(client, indexService, historyRepo, podcasts.ListingURL, cfg.PodcastMaxPages),
		StudyNotes: studynotes.NewScraper(client, indexService, historyRepo, studynotes.DownloadsURL),
		Classroom:  classroom.NewScraper(client, indexService, historyRepo, classroom.ClassroomURL),
		History:    historyRepo,
	}

	openaiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.WhisperModel)

	var embedder processor.Embedder
	switch cfg.EmbeddingProvider {
	case "gemini":
		g, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		embedder = g
	default:
		embedder = openaiClient
	}

	a.Processor = processor.New(indexRepo, chatbotRepo, embedder, openaiClient, client, cfg.MaxChunkSize, cfg.ChunkOverlap)

	return a, nil
}

func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
