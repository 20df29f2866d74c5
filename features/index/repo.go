package index

import (
	"context"
	"database/sql"
	"encoding/json"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM scrape_content_index WHERE content_hash = $1)`
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, item *Item) error {
	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO scrape_content_index
		(url, download_url, content_hash, content_type, title, text_content, status, metadata, chatbot_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, discovered_at`
	return r.db.QueryRowContext(ctx, query,
		item.URL, item.DownloadURL, item.ContentHash, item.ContentType,
		item.Title, item.TextContent, item.Status, metadata, item.ChatbotID,
	).Scan(&item.ID, &item.DiscoveredAt)
}

// GetPending returns up to limit unprocessed rows, oldest first. Rows that
// are already processed are never returned; failed rows are retried on the
// next run.
func (r *PostgresRepo) GetPending(ctx context.Context, contentType string, limit int) ([]Item, error) {
	const cols = `id, url, download_url, content_type, title, text_content, status, metadata, chatbot_id, discovered_at`

	var (
		query string
		args  []any
	)
	if contentType != "" {
		query = `SELECT ` + cols + ` FROM scrape_content_index
			WHERE status != $1 AND content_type = $2
			ORDER BY discovered_at ASC LIMIT $3`
		args = []any{StatusProcessed, contentType, limit}
	} else {
		query = `SELECT ` + cols + ` FROM scrape_content_index
			WHERE status != $1
			ORDER BY discovered_at ASC LIMIT $2`
		args = []any{StatusProcessed, limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var metadata []byte
		if err := rows.Scan(&item.ID, &item.URL, &item.DownloadURL, &item.ContentType,
			&item.Title, &item.TextContent, &item.Status, &metadata,
			&item.ChatbotID, &item.DiscoveredAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepo) MarkProcessed(ctx context.Context, id string) error {
	query := `UPDATE scrape_content_index SET status = $1, processed_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, StatusProcessed, id)
	return err
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, id string) error {
	query := `UPDATE scrape_content_index SET status = $1, processed_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, StatusFailed, id)
	return err
}
