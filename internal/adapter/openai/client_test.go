package openai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baptizedtechnology/bibleproject-scrapers/internal/adapter/openai"
)

func TestClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	c := openai.NewClient(srv.URL, "sk-test", "text-embedding-3-small", "whisper-1")
	vec, err := c.Embed(context.Background(), "in the beginning")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestClient_Embed_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := openai.NewClient(srv.URL, "sk-test", "text-embedding-3-small", "whisper-1")
	_, err := c.Embed(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "episode.mp3", header.Filename)

		w.Write([]byte(`{"text":"and God said"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "episode.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake-mp3"), 0o600))

	c := openai.NewClient(srv.URL, "sk-test", "text-embedding-3-small", "whisper-1")
	transcript, err := c.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "and God said", transcript)
}

func TestClient_Transcribe_MissingFile(t *testing.T) {
	c := openai.NewClient("http://localhost", "sk-test", "m", "whisper-1")
	_, err := c.Transcribe(context.Background(), "/nonexistent/file.mp3")
	assert.Error(t, err)
}
