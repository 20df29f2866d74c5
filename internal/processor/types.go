package processor

import (
	"context"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/chatbot"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
)

// Embedder turns a chunk of text into a vector. Implemented by the
// openai and gemini adapters.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Transcriber turns a downloaded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Downloader fetches a remote file into the temp dir and returns its path.
type Downloader interface {
	DownloadFile(ctx context.Context, url, filename string) (string, error)
}

// PendingStore is the slice of the index repository the processor needs.
type PendingStore interface {
	GetPending(ctx context.Context, contentType string, limit int) ([]index.Item, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// ChunkStore persists finalized chunks.
type ChunkStore interface {
	Insert(ctx context.Context, chunk *chatbot.SourceChunk) error
}
