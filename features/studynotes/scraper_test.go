package studynotes

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baptizedtechnology/bibleproject-scrapers/features/history"
	"github.com/baptizedtechnology/bibleproject-scrapers/features/index"
)

const downloadsPage = `<html><body>
<a href="/downloads/genesis-notes/">
  <div class="download-bundles-card-image"></div>
  <div class="download-bundles-card-title">Genesis Study Notes</div>
</a>
<a href="/downloads/exodus-notes/">
  <div class="download-bundles-card-image"></div>
  <div class="download-bundles-card-title">Exodus Study Notes</div>
</a>
</body></html>`

const resourcePage = `<html><body>
<a class="resource-popout-button" href="https://cdn.example.com/notes/%s.pdf">Download PDF</a>
</body></html>`

type fakeFetcher struct {
	pages     map[string]string
	downloads map[string]string
	tempDir   string
}

func (f *fakeFetcher) Get(_ context.Context, url string) (io.ReadCloser, error) {
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

func (f *fakeFetcher) DownloadFile(_ context.Context, url, filename string) (string, error) {
	content, ok := f.downloads[url]
	if !ok {
		return "", fmt.Errorf("unexpected download %s", url)
	}
	path := filepath.Join(f.tempDir, filename)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Add(ctx context.Context, item *index.Item) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Save(ctx context.Context, rec *history.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func newTestScraper(t *testing.T, fetch *fakeFetcher, indexer Indexer, hist HistoryRepo) *Scraper {
	t.Helper()
	fetch.tempDir = t.TempDir()
	s := NewScraper(fetch, indexer, hist, "https://bibleproject.com/downloads/study-notes/")
	s.extract = func(path string) (string, error) {
		raw, err := os.ReadFile(path)
		return string(raw), err
	}
	return s
}

func TestScraper_Scrape(t *testing.T) {
	downloads := "https://bibleproject.com/downloads/study-notes/"

	t.Run("Extracts And Indexes Notes", func(t *testing.T) {
		fetch := &fakeFetcher{
			pages: map[string]string{
				downloads: downloadsPage,
				"https://bibleproject.com/downloads/genesis-notes/": fmt.Sprintf(resourcePage, "genesis"),
				"https://bibleproject.com/downloads/exodus-notes/":  fmt.Sprintf(resourcePage, "exodus"),
			},
			downloads: map[string]string{
				"https://cdn.example.com/notes/genesis.pdf": "In the beginning.",
				"https://cdn.example.com/notes/exodus.pdf":  "Out of Egypt.",
			},
		}
		indexer := new(MockIndexer)
		hist := new(MockHistory)

		indexer.On("Add", mock.Anything, mock.MatchedBy(func(item *index.Item) bool {
			return item.ContentType == "study_notes" && item.TextContent != "" &&
				strings.HasSuffix(item.DownloadURL, ".pdf")
		})).Return(true, nil).Twice()
		hist.On("Save", mock.Anything, mock.MatchedBy(func(rec *history.Record) bool {
			return rec.SourceType == "study_notes" && rec.Status == "completed" &&
				rec.ItemsFound == 2 && rec.ItemsNew == 2
		})).Return(nil).Once()

		s := newTestScraper(t, fetch, indexer, hist)
		err := s.Scrape(context.Background())

		require.NoError(t, err)
		indexer.AssertExpectations(t)
		hist.AssertExpectations(t)
	})

	t.Run("Skips Bundle Without PDF Link", func(t *testing.T) {
		fetch := &fakeFetcher{
			pages: map[string]string{
				downloads: downloadsPage,
				"https://bibleproject.com/downloads/genesis-notes/": `<html><body>nothing here</body></html>`,
				"https://bibleproject.com/downloads/exodus-notes/":  fmt.Sprintf(resourcePage, "exodus"),
			},
			downloads: map[string]string{
				"https://cdn.example.com/notes/exodus.pdf": "Out of Egypt.",
			},
		}
		indexer := new(MockIndexer)
		hist := new(MockHistory)

		indexer.On("Add", mock.Anything, mock.MatchedBy(func(item *index.Item) bool {
			return item.Title == "Exodus Study Notes"
		})).Return(true, nil).Once()
		hist.On("Save", mock.Anything, mock.MatchedBy(func(rec *history.Record) bool {
			return rec.ItemsFound == 2 && rec.ItemsNew == 1
		})).Return(nil).Once()

		s := newTestScraper(t, fetch, indexer, hist)
		err := s.Scrape(context.Background())

		require.NoError(t, err)
		indexer.AssertExpectations(t)
		hist.AssertExpectations(t)
	})

	t.Run("Empty PDF Is Skipped", func(t *testing.T) {
		fetch := &fakeFetcher{
			pages: map[string]string{
				downloads: downloadsPage,
				"https://bibleproject.com/downloads/genesis-notes/": fmt.Sprintf(resourcePage, "genesis"),
				"https://bibleproject.com/downloads/exodus-notes/":  fmt.Sprintf(resourcePage, "exodus"),
			},
			downloads: map[string]string{
				"https://cdn.example.com/notes/genesis.pdf": "   \n ",
				"https://cdn.example.com/notes/exodus.pdf":  "Out of Egypt.",
			},
		}
		indexer := new(MockIndexer)
		hist := new(MockHistory)
		indexer.On("Add", mock.Anything, mock.MatchedBy(func(item *index.Item) bool {
			return item.Title == "Exodus Study Notes"
		})).Return(true, nil).Once()
		hist.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		s := newTestScraper(t, fetch, indexer, hist)
		err := s.Scrape(context.Background())

		require.NoError(t, err)
		indexer.AssertExpectations(t)
	})

	t.Run("Empty Downloads Page Is An Error", func(t *testing.T) {
		fetch := &fakeFetcher{pages: map[string]string{downloads: `<html><body></body></html>`}}
		indexer := new(MockIndexer)
		hist := new(MockHistory)
		hist.On("Save", mock.Anything, mock.MatchedBy(func(rec *history.Record) bool {
			return rec.Status == "failed"
		})).Return(nil).Once()

		s := newTestScraper(t, fetch, indexer, hist)
		err := s.Scrape(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no study notes found")
		hist.AssertExpectations(t)
	})
}

func TestParseDownloads(t *testing.T) {
	bundles, err := parseDownloads(strings.NewReader(downloadsPage))
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "Genesis Study Notes", bundles[0].Title)
	assert.Equal(t, "https://bibleproject.com/downloads/genesis-notes/", bundles[0].URL)
}
