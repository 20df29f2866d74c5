package podcasts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/history"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/scrape"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/text"
)

const (
	BaseURL    = "https://bibleproject.com"
	ListingURL = BaseURL + "/podcasts/the-bible-project-podcast/"
)

type Fetcher interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

type Indexer interface {
	Add(ctx context.Context, item *index.Item) (bool, error)
}

type HistoryRepo interface {
	Save(ctx context.Context, rec *history.Record) error
}

// Scraper walks the paginated podcast listing, resolves each episode's
// audio download URL and stages it in the content index. Transcription
// happens later in the processor, so indexed rows carry no text.
type Scraper struct {
	fetch    Fetcher
	indexer  Indexer
	hist     HistoryRepo
	listing  string
	maxPages int
}

func NewScraper(fetch Fetcher, indexer Indexer, hist HistoryRepo, listingURL string, maxPages int) *Scraper {
	if listingURL == "" {
		listingURL = ListingURL
	}
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Scraper{fetch: fetch, indexer: indexer, hist: hist, listing: listingURL, maxPages: maxPages}
}

type episode struct {
	Title         string
	URL           string
	EpisodeNumber string
	Duration      string
}

func (s *Scraper) Scrape(ctx context.Context) error {
	started := time.Now()
	found, added := 0, 0

	record := func(status, errMsg string) {
		rec := &history.Record{
			SourceType:  "podcasts",
			ItemsFound:  found,
			ItemsNew:    added,
			Status:      status,
			Error:       errMsg,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err := s.hist.Save(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "failed to record scrape history", "error", err)
		}
	}

	episodes, err := s.loadEpisodes(ctx)
	if err != nil {
		record("failed", err.Error())
		return fmt.Errorf("loading podcast listing: %w", err)
	}
	if len(episodes) == 0 {
		record("failed", "no podcasts found")
		return fmt.Errorf("no podcasts found at %s", s.listing)
	}
	found = len(episodes)
	slog.InfoContext(ctx, "found podcasts", "count", found)

	for _, ep := range episodes {
		downloadURL, err := s.downloadURL(ctx, ep.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to resolve download url, skipping episode",
				"title", ep.Title, "url", ep.URL, "error", err)
			continue
		}

		metadata := text.MergeMetadata(text.MetadataTemplate("podcast"), map[string]any{
			"episode_number": ep.EpisodeNumber,
			"episode_title":  ep.Title,
			"duration":       ep.Duration,
		})

		ok, err := s.indexer.Add(ctx, &index.Item{
			URL:         ep.URL,
			DownloadURL: downloadURL,
			ContentType: "podcast",
			Title:       ep.Title,
			Metadata:    metadata,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to index episode, skipping", "title", ep.Title, "error", err)
			continue
		}
		if ok {
			added++
		}
	}

	record("completed", "")
	slog.InfoContext(ctx, "podcast scrape completed", "found", found, "new", added)
	return nil
}

// loadEpisodes pages through the listing. The site's "Load more" button
// fetches numbered pages under the hood, so plain page-parameter requests
// replace browser automation here. Paging stops at the first page that
// yields nothing new.
func (s *Scraper) loadEpisodes(ctx context.Context) ([]episode, error) {
	var all []episode
	seen := make(map[string]bool)

	for page := 1; page <= s.maxPages; page++ {
		url := s.listing
		if page > 1 {
			url = fmt.Sprintf("%s?page=%d", strings.TrimRight(s.listing, "/"), page)
		}

		body, err := s.fetch.Get(ctx, url)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.WarnContext(ctx, "listing page fetch failed, stopping pagination", "page", page, "error", err)
			break
		}

		episodes, err := parseListing(body)
		body.Close()
		if err != nil {
			return nil, err
		}

		newOnPage := 0
		for _, ep := range episodes {
			if seen[ep.URL] {
				continue
			}
			seen[ep.URL] = true
			all = append(all, ep)
			newOnPage++
		}

		if newOnPage == 0 {
			break
		}
		slog.InfoContext(ctx, "loaded listing page", "page", page, "episodes", len(all))
	}

	return all, nil
}

func parseListing(r io.Reader) ([]episode, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var episodes []episode
	doc.Find("div.podcast-episode-block").Each(func(_ int, block *goquery.Selection) {
		link := block.Find("a.podcast-episode-block-image").First()
		titleEl := block.Find("a.podcast-episode-block-title span.truncate").First()

		href, ok := link.Attr("href")
		if !ok || titleEl.Length() == 0 {
			return
		}

		ep := episode{
			Title: strings.TrimSpace(titleEl.Text()),
			URL:   scrape.AbsoluteURL(BaseURL, href),
		}

		block.Find("div.podcast-episode-block-meta span.meta-data-list-item").Each(func(_ int, meta *goquery.Selection) {
			t := strings.TrimSpace(meta.Text())
			if strings.HasPrefix(t, "Episode ") {
				ep.EpisodeNumber = t
			}
		})

		duration := block.Find("div.podcast-episode-block-footer div.text").First()
		if duration.Length() > 0 {
			ep.Duration = strings.TrimSpace(duration.Text())
		}

		episodes = append(episodes, ep)
	})

	return episodes, nil
}

// downloadURL fetches an episode page and pulls the audio URL off its
// download button.
func (s *Scraper) downloadURL(ctx context.Context, episodeURL string) (string, error) {
	body, err := s.fetch.Get(ctx, episodeURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}

	button := doc.Find("a.button[download]").First()
	href, ok := button.Attr("href")
	if !ok || href == "" {
		return "", fmt.Errorf("no download button on %s", episodeURL)
	}
	return scrape.AbsoluteURL(BaseURL, href), nil
}
