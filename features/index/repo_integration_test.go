package index_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/chatbot"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/testutils"
)

func TestIndexRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	repo := index.NewPostgresRepo(s.DB)
	svc := index.NewService(repo, "chatbot-test")
	ctx := context.Background()

	// 1. Add a new item through the service
	item := &index.Item{
		URL:         "https://bibleproject.com/podcast/episode-one/",
		DownloadURL: "https://cdn.example.com/audio/one.mp3",
		ContentType: "podcast",
		Title:       "Episode One",
	}
	added, err := svc.Add(ctx, item)
	require.NoError(t, err)
	require.True(t, added)
	require.NotEmpty(t, item.ID)
	assert.Equal(t, index.StatusPending, item.Status)
	assert.Equal(t, "chatbot-test", item.ChatbotID)

	// 2. Re-scraping the same content is a no-op
	dup := &index.Item{
		URL:         "https://bibleproject.com/podcast/episode-one/",
		DownloadURL: "https://cdn.example.com/audio/one.mp3",
		ContentType: "podcast",
		Title:       "Episode One",
	}
	added, err = svc.Add(ctx, dup)
	require.NoError(t, err)
	assert.False(t, added)

	// 3. Pending query returns the row, oldest first
	pending, err := repo.GetPending(ctx, "podcast", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)

	// 4. A stored chunk links back to the index row
	chunkRepo := chatbot.NewPostgresRepo(s.DB)
	chunk := &chatbot.SourceChunk{
		ChatbotID:      "chatbot-test",
		Content:        "This is the transcript of episode one.",
		Embedding:      make([]float32, 1536),
		Title:          item.Title,
		SourceURL:      item.URL,
		ContentType:    "podcast",
		Metadata:       map[string]any{"chunk_index": 0},
		ContentIndexID: item.ID,
	}
	err = chunkRepo.Insert(ctx, chunk)
	require.NoError(t, err)
	require.NotEmpty(t, chunk.ID)

	count, err := chunkRepo.CountBySource(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// 5. Processed rows leave the pending set for good
	err = repo.MarkProcessed(ctx, item.ID)
	require.NoError(t, err)

	pending, err = repo.GetPending(ctx, "podcast", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// 6. Failed rows come back for retry
	other := &index.Item{
		URL:         "https://bibleproject.com/podcast/episode-two/",
		ContentType: "podcast",
		Title:       "Episode Two",
	}
	_, err = svc.Add(ctx, other)
	require.NoError(t, err)
	err = repo.MarkFailed(ctx, other.ID)
	require.NoError(t, err)

	pending, err = repo.GetPending(ctx, "podcast", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].ID)
}
