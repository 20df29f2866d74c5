package chatbot_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/chatbot"
)

func TestPostgresRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := chatbot.NewPostgresRepo(db)

	chunk := &chatbot.SourceChunk{
		ChatbotID:      "bot-1",
		Content:        "In the beginning",
		Embedding:      []float32{0.1, 0.2},
		Title:          "Genesis Notes",
		SourceURL:      "https://bibleproject.com/downloads/genesis",
		ContentType:    "study_notes",
		Metadata:       map[string]any{"chunk_index": 0},
		ContentIndexID: "idx-1",
	}

	mock.ExpectQuery(`INSERT INTO chatbot_sources`).
		WithArgs("bot-1", "In the beginning", pgvector.NewVector([]float32{0.1, 0.2}),
			"Genesis Notes", chunk.SourceURL, "study_notes", []byte(`{"chunk_index":0}`), "idx-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("chunk-1", time.Now()))

	err = repo.Insert(context.Background(), chunk)
	assert.NoError(t, err)
	assert.Equal(t, "chunk-1", chunk.ID)
	assert.False(t, chunk.CreatedAt.IsZero())
}

func TestPostgresRepo_CountBySource(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := chatbot.NewPostgresRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM chatbot_sources WHERE content_index_id = $1")).
		WithArgs("idx-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountBySource(context.Background(), "idx-1")
	assert.NoError(t, err)
	assert.Equal(t, 7, count)
}
