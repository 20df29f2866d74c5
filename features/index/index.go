package index

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"
)

const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Item is one row of the content index: a scraped-but-not-yet-processed
// piece of content. Podcast items carry an empty TextContent and a
// DownloadURL pointing at the episode audio; text items carry the extracted
// text directly.
type Item struct {
	ID           string         `json:"id"`
	URL          string         `json:"url"`
	DownloadURL  string         `json:"download_url,omitempty"`
	ContentHash  string         `json:"-"`
	ContentType  string         `json:"content_type"`
	Title        string         `json:"title"`
	TextContent  string         `json:"text_content,omitempty"`
	Status       string         `json:"status"`
	Metadata     map[string]any `json:"metadata"`
	ChatbotID    string         `json:"chatbot_id"`
	DiscoveredAt time.Time      `json:"discovered_at"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
}

type Repository interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	Insert(ctx context.Context, item *Item) error
	GetPending(ctx context.Context, contentType string, limit int) ([]Item, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

type Service struct {
	repo      Repository
	chatbotID string
}

func NewService(repo Repository, chatbotID string) *Service {
	return &Service{repo: repo, chatbotID: chatbotID}
}

// Add indexes a scraped item unless an identical one already exists.
// Returns true when a new row was created. The dedupe hash covers both URL
// and content so re-scraping an unchanged listing is a no-op while an
// updated document at the same URL is indexed again.
func (s *Service) Add(ctx context.Context, item *Item) (bool, error) {
	item.ContentHash = ContentHash(item.URL, item.TextContent)

	exists, err := s.repo.ExistsByHash(ctx, item.ContentHash)
	if err != nil {
		return false, fmt.Errorf("checking content existence: %w", err)
	}
	if exists {
		slog.InfoContext(ctx, "content already indexed", "url", item.URL, "title", item.Title)
		return false, nil
	}

	item.Status = StatusPending
	if item.ChatbotID == "" {
		item.ChatbotID = s.chatbotID
	}
	if item.Metadata == nil {
		item.Metadata = map[string]any{}
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return false, fmt.Errorf("inserting content index row: %w", err)
	}

	slog.InfoContext(ctx, "added content to index", "url", item.URL, "title", item.Title, "content_type", item.ContentType)
	return true, nil
}

func ContentHash(url, content string) string {
	h := sha256.Sum256([]byte(url + "\n" + content))
	return fmt.Sprintf("%x", h)
}
