package history

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, rec *Record) error {
	query := `INSERT INTO scrape_history (source_type, items_found, items_new, status, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rec.SourceType, rec.ItemsFound, rec.ItemsNew, rec.Status, rec.Error,
		rec.StartedAt, rec.CompletedAt,
	).Scan(&rec.ID)
}

func (r *PostgresRepo) List(ctx context.Context, sourceType string) ([]Record, error) {
	query := `SELECT id, source_type, items_found, items_new, status, error, started_at, completed_at
		FROM scrape_history WHERE source_type = $1 ORDER BY started_at DESC`
	rows, err := r.db.QueryContext(ctx, query, sourceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SourceType, &rec.ItemsFound, &rec.ItemsNew,
			&rec.Status, &rec.Error, &rec.StartedAt, &rec.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
