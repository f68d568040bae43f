// Package feedlist reads and maintains the CSV feed list that seeds the
// store: one row per feed as (Name, URL, Category, Tags), where Category
// may hold several names separated by semicolons.
package feedlist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Entry is one parsed feed list row.
type Entry struct {
	Name       string
	URL        string
	Categories []string
	Tags       string
}

var header = []string{"Name", "URL", "Category", "Tags"}

func isHeader(record []string) bool {
	return len(record) >= 2 &&
		strings.EqualFold(strings.TrimSpace(record[0]), header[0]) &&
		strings.EqualFold(strings.TrimSpace(record[1]), header[1])
}

// Store is the subset of the storage layer the importer needs.
type Store interface {
	UpsertFeed(ctx context.Context, name, url, tags string) (int64, error)
	UpsertCategory(ctx context.Context, name string) (int64, error)
	LinkFeedCategory(ctx context.Context, feedID, categoryID int64) error
}

// EnsureFile creates the feed list with a header and one sample feed when
// it does not exist yet.
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat feed list %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create feed list %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write(header)
	_ = w.Write([]string{"CP737 Blog", "https://cp737.net/blog.rss", "blogs", ""})
	w.Flush()
	return w.Error()
}

// Load parses the feed list. Rows whose Name starts with '#' are
// comments; rows without a URL, with a repeated URL, or too short to
// parse are skipped with a warning.
func Load(path string, log logrus.FieldLogger) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed list %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var entries []Entry
	seen := make(map[string]struct{})
	line := 0
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.WithError(err).WithField("line", line).Warn("skipping malformed feed list row")
			continue
		}
		// The header is recognized by content, not position, so a
		// malformed first line does not push it down into the data.
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) < 2 {
			log.WithField("line", line).Warn("skipping short feed list row")
			continue
		}
		name := strings.TrimSpace(record[0])
		if strings.HasPrefix(name, "#") {
			continue
		}
		url := strings.TrimSpace(record[1])
		if url == "" {
			log.WithField("line", line).Warn("skipping feed list row without URL")
			continue
		}
		if _, dup := seen[url]; dup {
			log.WithFields(logrus.Fields{"line": line, "url": url}).Warn("skipping duplicate feed URL")
			continue
		}
		seen[url] = struct{}{}

		entry := Entry{Name: name, URL: url}
		if len(record) > 2 {
			for _, c := range strings.Split(record[2], ";") {
				if c = strings.TrimSpace(c); c != "" {
					entry.Categories = append(entry.Categories, c)
				}
			}
		}
		if len(record) > 3 {
			entry.Tags = strings.TrimSpace(record[3])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Import upserts feeds, categories and their links. Running it twice with
// the same input leaves the store unchanged.
func Import(ctx context.Context, store Store, entries []Entry) error {
	for _, e := range entries {
		feedID, err := store.UpsertFeed(ctx, e.Name, e.URL, e.Tags)
		if err != nil {
			return fmt.Errorf("import feed %q: %w", e.URL, err)
		}
		for _, cat := range e.Categories {
			catID, err := store.UpsertCategory(ctx, cat)
			if err != nil {
				return fmt.Errorf("import category %q: %w", cat, err)
			}
			if err := store.LinkFeedCategory(ctx, feedID, catID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Append adds one feed row to the CSV file.
func Append(path string, e Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feed list %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{e.Name, e.URL, strings.Join(e.Categories, ";"), e.Tags}); err != nil {
		return fmt.Errorf("append feed row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// KnownURLs returns the set of URLs currently listed in the file, for the
// orphan-pruning pass.
func KnownURLs(path string, log logrus.FieldLogger) (map[string]struct{}, error) {
	entries, err := Load(path, log)
	if err != nil {
		return nil, err
	}
	urls := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		urls[e.URL] = struct{}{}
	}
	return urls, nil
}
