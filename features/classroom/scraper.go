package classroom

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
	BaseURL      = "https://bibleproject.com"
	ClassroomURL = BaseURL + "/classroom"
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

// Scraper collects course pages from the classroom listing and indexes
// their main-content text. Page text is good enough as-is, so rows are
// staged ready for chunking like study notes.
type Scraper struct {
	fetch   Fetcher
	indexer Indexer
	hist    HistoryRepo
	listing string
}

func NewScraper(fetch Fetcher, indexer Indexer, hist HistoryRepo, listingURL string) *Scraper {
	if listingURL == "" {
		listingURL = ClassroomURL
	}
	return &Scraper{fetch: fetch, indexer: indexer, hist: hist, listing: listingURL}
}

type course struct {
	Title string
	URL   string
}

func (s *Scraper) Scrape(ctx context.Context) error {
	started := time.Now()
	found, added := 0, 0

	record := func(status, errMsg string) {
		rec := &history.Record{
			SourceType:  "classroom",
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

	courses, err := s.loadCourses(ctx)
	if err != nil {
		record("failed", err.Error())
		return fmt.Errorf("loading classroom listing: %w", err)
	}
	if len(courses) == 0 {
		record("failed", "no classroom courses found")
		return fmt.Errorf("no classroom courses found at %s", s.listing)
	}
	found = len(courses)
	slog.InfoContext(ctx, "found classroom courses", "count", found)

	for _, c := range courses {
		content, title, err := s.coursePage(ctx, c.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to fetch course page, skipping",
				"title", c.Title, "url", c.URL, "error", err)
			continue
		}
		if c.Title != "" {
			title = c.Title
		}

		metadata := text.MergeMetadata(text.MetadataTemplate("classroom"), map[string]any{
			"course_title": title,
		})

		ok, err := s.indexer.Add(ctx, &index.Item{
			URL:         c.URL,
			ContentType: "classroom",
			Title:       title,
			TextContent: content,
			Metadata:    metadata,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to index course, skipping", "title", title, "error", err)
			continue
		}
		if ok {
			added++
		}
	}

	record("completed", "")
	slog.InfoContext(ctx, "classroom scrape completed", "found", found, "new", added)
	return nil
}

func (s *Scraper) loadCourses(ctx context.Context) ([]course, error) {
	body, err := s.fetch.Get(ctx, s.listing)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseCourses(body)
}

func parseCourses(r io.Reader) ([]course, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var courses []course
	seen := make(map[string]bool)
	doc.Find(`a[href*="/classroom/"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		url := scrape.AbsoluteURL(BaseURL, href)
		if url == ClassroomURL || strings.TrimRight(url, "/") == ClassroomURL {
			return
		}
		if seen[url] {
			return
		}
		seen[url] = true
		courses = append(courses, course{
			Title: strings.TrimSpace(link.Text()),
			URL:   url,
		})
	})

	return courses, nil
}

// coursePage extracts a page's main-content text: headings, paragraphs
// and list items under main/article, the whole document as fallback.
func (s *Scraper) coursePage(ctx context.Context, url string) (content, title string, err error) {
	body, err := s.fetch.Get(ctx, url)
	if err != nil {
		return "", "", err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	var parts []string
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, el *goquery.Selection) {
		t := strings.TrimSpace(el.Text())
		if t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return "", "", fmt.Errorf("no readable content on %s", url)
	}
	return strings.Join(parts, "\n\n"), title, nil
}
