package chatbot

import (
	"context"
	"time"
)

// SourceChunk is one finalized, embedded chunk of content ready for
// retrieval. Rows are append-only: the processor creates them and nothing
// mutates them afterwards.
type SourceChunk struct {
	ID             string         `json:"id"`
	ChatbotID      string         `json:"chatbot_id"`
	Content        string         `json:"content"`
	Embedding      []float32      `json:"-"`
	Title          string         `json:"title"`
	SourceURL      string         `json:"source_url"`
	ContentType    string         `json:"content_type"`
	Metadata       map[string]any `json:"metadata"`
	ContentIndexID string         `json:"content_index_id"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Repository interface {
	Insert(ctx context.Context, chunk *SourceChunk) error
	CountBySource(ctx context.Context, contentIndexID string) (int, error)
}
