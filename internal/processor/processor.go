package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/chatbot"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/text"
)

// Processor drains pending index rows into embedded chatbot source
// chunks. One item at a time: failures mark the row failed and move on,
// a failed run never blocks the rest of the batch.
type Processor struct {
	pending     PendingStore
	chunks      ChunkStore
	embedder    Embedder
	transcriber Transcriber
	downloader  Downloader

	maxChunkSize int
	overlap      int
}

func New(pending PendingStore, chunks ChunkStore, embedder Embedder, transcriber Transcriber, downloader Downloader, maxChunkSize, overlap int) *Processor {
	if maxChunkSize <= 0 {
		maxChunkSize = 4000
	}
	if overlap < 0 {
		overlap = 200
	}
	return &Processor{
		pending:      pending,
		chunks:       chunks,
		embedder:     embedder,
		transcriber:  transcriber,
		downloader:   downloader,
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
	}
}

// Process handles up to limit pending rows of the given content type.
// An empty contentType processes every type. Returns the number of rows
// fully processed.
func (p *Processor) Process(ctx context.Context, contentType string, limit int) (int, error) {
	items, err := p.pending.GetPending(ctx, contentType, limit)
	if err != nil {
		return 0, fmt.Errorf("loading pending content: %w", err)
	}
	if len(items) == 0 {
		slog.InfoContext(ctx, "no pending content", "content_type", contentType)
		return 0, nil
	}
	slog.InfoContext(ctx, "processing pending content", "count", len(items), "content_type", contentType)

	processed := 0
	for i := range items {
		item := &items[i]
		if err := p.processItem(ctx, item); err != nil {
			slog.ErrorContext(ctx, "item processing failed",
				"id", item.ID, "title", item.Title, "content_type", item.ContentType, "error", err)
			if markErr := p.pending.MarkFailed(ctx, item.ID); markErr != nil {
				slog.ErrorContext(ctx, "failed to mark item failed", "id", item.ID, "error", markErr)
			}
			continue
		}
		if err := p.pending.MarkProcessed(ctx, item.ID); err != nil {
			slog.ErrorContext(ctx, "failed to mark item processed", "id", item.ID, "error", err)
			continue
		}
		processed++
	}

	slog.InfoContext(ctx, "processing run finished", "processed", processed, "total", len(items))
	return processed, nil
}

func (p *Processor) processItem(ctx context.Context, item *index.Item) error {
	content, err := p.itemContent(ctx, item)
	if err != nil {
		return err
	}

	cleaned := text.Clean(content)
	if cleaned == "" {
		return fmt.Errorf("item %s has no content after cleaning", item.ID)
	}

	chunks := text.Split(cleaned, p.maxChunkSize, p.overlap)
	slog.InfoContext(ctx, "chunked item", "id", item.ID, "chunks", len(chunks))

	sourceURL := item.URL
	if sourceURL == "" {
		sourceURL = item.DownloadURL
	}

	for i, chunk := range chunks {
		embedding, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embedding chunk %d/%d: %w", i+1, len(chunks), err)
		}

		metadata := text.MergeMetadata(item.Metadata, map[string]any{
			"original_content_id": item.ID,
			"chunk_index":         i,
			"total_chunks":        len(chunks),
		})

		err = p.chunks.Insert(ctx, &chatbot.SourceChunk{
			ChatbotID:      item.ChatbotID,
			Content:        chunk,
			Embedding:      embedding,
			Title:          item.Title,
			SourceURL:      sourceURL,
			ContentType:    item.ContentType,
			Metadata:       metadata,
			ContentIndexID: item.ID,
		})
		if err != nil {
			return fmt.Errorf("storing chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// itemContent returns the text to chunk. Podcasts are downloaded and
// transcribed here; everything else carries its text from scrape time.
func (p *Processor) itemContent(ctx context.Context, item *index.Item) (string, error) {
	if item.ContentType != "podcast" {
		if strings.TrimSpace(item.TextContent) == "" {
			return "", fmt.Errorf("item %s has empty text content", item.ID)
		}
		return item.TextContent, nil
	}

	if item.DownloadURL == "" {
		return "", fmt.Errorf("podcast item %s has no download url", item.ID)
	}

	filename := text.CleanFilename(item.Title) + ".mp3"
	path, err := p.downloader.DownloadFile(ctx, item.DownloadURL, filename)
	if err != nil {
		return "", fmt.Errorf("downloading audio: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove temp audio", "path", path, "error", rmErr)
		}
	}()

	transcript, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return transcript, nil
}
