package studynotes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/history"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/pdfio"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/scrape"
	"github.com/baptizedtechnology/bibleproject-scrapers/internal/text"
)

const (
	BaseURL      = "https://bibleproject.com"
	DownloadsURL = BaseURL + "/downloads/study-notes/"
)

type Fetcher interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
	DownloadFile(ctx context.Context, url, filename string) (string, error)
}

type Indexer interface {
	Add(ctx context.Context, item *index.Item) (bool, error)
}

type HistoryRepo interface {
	Save(ctx context.Context, rec *history.Record) error
}

// Scraper pulls study-note PDFs off the downloads page. Unlike podcasts,
// the text is extracted at scrape time, so indexed rows are ready for
// chunking without a second download.
type Scraper struct {
	fetch     Fetcher
	indexer   Indexer
	hist      HistoryRepo
	downloads string

	// extract is swappable in tests; defaults to pdfio.ExtractText.
	extract func(path string) (string, error)
}

func NewScraper(fetch Fetcher, indexer Indexer, hist HistoryRepo, downloadsURL string) *Scraper {
	if downloadsURL == "" {
		downloadsURL = DownloadsURL
	}
	return &Scraper{
		fetch:     fetch,
		indexer:   indexer,
		hist:      hist,
		downloads: downloadsURL,
		extract:   pdfio.ExtractText,
	}
}

type bundle struct {
	Title string
	URL   string
}

func (s *Scraper) Scrape(ctx context.Context) error {
	started := time.Now()
	found, added := 0, 0

	record := func(status, errMsg string) {
		rec := &history.Record{
			SourceType:  "study_notes",
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

	bundles, err := s.loadBundles(ctx)
	if err != nil {
		record("failed", err.Error())
		return fmt.Errorf("loading downloads page: %w", err)
	}
	if len(bundles) == 0 {
		record("failed", "no study notes found")
		return fmt.Errorf("no study notes found at %s", s.downloads)
	}
	found = len(bundles)
	slog.InfoContext(ctx, "found study note bundles", "count", found)

	for _, b := range bundles {
		content, pdfURL, err := s.extractBundle(ctx, b)
		if err != nil {
			slog.ErrorContext(ctx, "failed to extract study notes, skipping",
				"title", b.Title, "url", b.URL, "error", err)
			continue
		}

		metadata := text.MergeMetadata(text.MetadataTemplate("study_notes"), map[string]any{
			"document_title": b.Title,
			"pdf_url":        pdfURL,
		})

		ok, err := s.indexer.Add(ctx, &index.Item{
			URL:         b.URL,
			DownloadURL: pdfURL,
			ContentType: "study_notes",
			Title:       b.Title,
			TextContent: content,
			Metadata:    metadata,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to index study notes, skipping", "title", b.Title, "error", err)
			continue
		}
		if ok {
			added++
		}
	}

	record("completed", "")
	slog.InfoContext(ctx, "study notes scrape completed", "found", found, "new", added)
	return nil
}

func (s *Scraper) loadBundles(ctx context.Context) ([]bundle, error) {
	body, err := s.fetch.Get(ctx, s.downloads)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseDownloads(body)
}

func parseDownloads(r io.Reader) ([]bundle, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var bundles []bundle
	seen := make(map[string]bool)
	doc.Find("div.download-bundles-card-image").Each(func(_ int, card *goquery.Selection) {
		link := card.Closest("a")
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		title := strings.TrimSpace(link.Find("div.download-bundles-card-title").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}

		url := scrape.AbsoluteURL(BaseURL, href)
		if seen[url] {
			return
		}
		seen[url] = true
		bundles = append(bundles, bundle{Title: title, URL: url})
	})

	return bundles, nil
}

// extractBundle resolves a bundle's PDF link, downloads it and returns
// the extracted text. The temp file is removed once the text is out.
func (s *Scraper) extractBundle(ctx context.Context, b bundle) (content, pdfURL string, err error) {
	body, err := s.fetch.Get(ctx, b.URL)
	if err != nil {
		return "", "", err
	}
	doc, err := goquery.NewDocumentFromReader(body)
	body.Close()
	if err != nil {
		return "", "", err
	}

	button := doc.Find("a.resource-popout-button").First()
	href, ok := button.Attr("href")
	if !ok || href == "" {
		return "", "", fmt.Errorf("no resource download link on %s", b.URL)
	}
	pdfURL = scrape.AbsoluteURL(BaseURL, href)

	filename := text.CleanFilename(b.Title) + ".pdf"
	path, err := s.fetch.DownloadFile(ctx, pdfURL, filename)
	if err != nil {
		return "", "", fmt.Errorf("downloading %s: %w", pdfURL, err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove temp pdf", "path", path, "error", rmErr)
		}
	}()

	content, err = s.extract(path)
	if err != nil {
		return "", "", fmt.Errorf("extracting %s: %w", path, err)
	}
	if strings.TrimSpace(content) == "" {
		return "", "", fmt.Errorf("pdf %s produced no text", pdfURL)
	}
	return content, pdfURL, nil
}
