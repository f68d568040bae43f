// Package feedsync turns remote RSS/Atom sources into stored feed items.
// Every failure is scoped to the feed it happened on; a batch sync keeps
// going past fetch and parse errors.
package feedsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"feedln/internal/storage"
)

// DefaultTimeout bounds a single feed fetch when the config does not
// override it.
const DefaultTimeout = 8 * time.Second

var (
	// ErrFetch marks network failures: timeouts, transport errors and
	// non-2xx responses.
	ErrFetch = errors.New("fetch failed")
	// ErrParse marks a payload gofeed could not parse.
	ErrParse = errors.New("parse failed")
)

// Store is the subset of the storage layer the pipeline needs.
type Store interface {
	InsertItemIfAbsent(ctx context.Context, it storage.Item) (bool, error)
	ListFeedsByCategory(ctx context.Context, categoryID int64, order storage.FeedOrder) ([]storage.Feed, error)
	AllFeeds(ctx context.Context) ([]storage.Feed, error)
}

// Result reports the outcome of syncing one feed.
type Result struct {
	Feed     storage.Feed
	Inserted int
	Err      error
}

// Progress is called before each feed of a batch sync, for the status
// line. i is zero-based.
type Progress func(i, n int, feed storage.Feed)

// Syncer fetches, parses and merges feeds.
type Syncer struct {
	store  Store
	client *http.Client
	parser *gofeed.Parser
	log    logrus.FieldLogger
}

// New returns a Syncer whose fetches are bounded by timeout.
func New(store Store, timeout time.Duration, log logrus.FieldLogger) *Syncer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Syncer{
		store:  store,
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		log:    log,
	}
}

// SyncFeed fetches one feed and inserts the entries the store does not
// already have. Fetch and parse failures come back in Result.Err wrapping
// ErrFetch or ErrParse; the feed's stored items are left unchanged.
func (s *Syncer) SyncFeed(ctx context.Context, feed storage.Feed) Result {
	res := Result{Feed: feed}

	body, err := s.fetch(ctx, feed.URL)
	if err != nil {
		s.log.WithError(err).WithField("url", feed.URL).Warn("feed fetch failed")
		res.Err = err
		return res
	}

	parsed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		s.log.WithError(err).WithField("url", feed.URL).Warn("feed parse failed")
		res.Err = fmt.Errorf("%w: %s: %v", ErrParse, feed.URL, err)
		return res
	}

	for _, entry := range parsed.Items {
		if entry == nil || entry.Title == "" {
			continue
		}
		item := storage.Item{
			FeedID:  feed.ID,
			Title:   entry.Title,
			Summary: entry.Description,
			Content: entry.Content,
			Updated: epoch(entry.UpdatedParsed, entry.PublishedParsed),
			Created: epoch(entry.PublishedParsed, nil),
			Link:    entry.Link,
		}
		inserted, err := s.store.InsertItemIfAbsent(ctx, item)
		if err != nil {
			// Per-item failures must not abort the rest of the entries.
			s.log.WithError(err).WithField("title", entry.Title).Warn("item insert failed")
			continue
		}
		if inserted {
			res.Inserted++
		}
	}
	s.log.WithFields(logrus.Fields{"url": feed.URL, "inserted": res.Inserted}).Info("feed synced")
	return res
}

// SyncCategory syncs every feed of a category in sequence. Per-feed
// failures are collected in the results, never propagated.
func (s *Syncer) SyncCategory(ctx context.Context, categoryID int64, progress Progress) ([]Result, error) {
	feeds, err := s.store.ListFeedsByCategory(ctx, categoryID, storage.FeedsByName)
	if err != nil {
		return nil, fmt.Errorf("list category feeds: %w", err)
	}
	return s.syncFeeds(ctx, feeds, progress), nil
}

// SyncAll syncs every stored feed once, in sequence.
func (s *Syncer) SyncAll(ctx context.Context, progress Progress) ([]Result, error) {
	feeds, err := s.store.AllFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return s.syncFeeds(ctx, feeds, progress), nil
}

func (s *Syncer) syncFeeds(ctx context.Context, feeds []storage.Feed, progress Progress) []Result {
	results := make([]Result, 0, len(feeds))
	for i, feed := range feeds {
		if progress != nil {
			progress(i, len(feeds), feed)
		}
		results = append(results, s.SyncFeed(ctx, feed))
	}
	return results
}

func (s *Syncer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	return body, nil
}

// Totals folds a batch of results into inserted and failed counts.
func Totals(results []Result) (inserted, failed int) {
	for _, r := range results {
		inserted += r.Inserted
		if r.Err != nil {
			failed++
		}
	}
	return inserted, failed
}

func epoch(primary, fallback *time.Time) int64 {
	if primary != nil {
		return primary.Unix()
	}
	if fallback != nil {
		return fallback.Unix()
	}
	return 0
}
