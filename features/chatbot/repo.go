package chatbot

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pgvector/pgvector-go"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, chunk *SourceChunk) error {
	metadata, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO chatbot_sources
		(chatbot_id, content, embedding, title, source_url, content_type, metadata, content_index_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		chunk.ChatbotID, chunk.Content, pgvector.NewVector(chunk.Embedding),
		chunk.Title, chunk.SourceURL, chunk.ContentType, metadata, chunk.ContentIndexID,
	).Scan(&chunk.ID, &chunk.CreatedAt)
}

func (r *PostgresRepo) CountBySource(ctx context.Context, contentIndexID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chatbot_sources WHERE content_index_id = $1`
	err := r.db.QueryRowContext(ctx, query, contentIndexID).Scan(&count)
	return count, err
}
