package history

import (
	"context"
	"time"
)

// Record captures one scrape operation for auditing: what was scraped, how
// many items turned up, and whether the run finished cleanly.
type Record struct {
	ID          string    `json:"id"`
	SourceType  string    `json:"source_type"`
	ItemsFound  int       `json:"items_found"`
	ItemsNew    int       `json:"items_new"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

type Repository interface {
	Save(ctx context.Context, rec *Record) error
	List(ctx context.Context, sourceType string) ([]Record, error)
}
