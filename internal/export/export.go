// Package export writes single items and the OPML feed list to files.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"feedln/internal/opml"
	"feedln/internal/storage"
)

// ItemFilename returns the timestamped file name for a plain-text item
// export.
func ItemFilename(now time.Time) string {
	return now.Format("20060102_150405") + "_rss.txt"
}

// OPMLFilename returns the timestamped file name for an OPML export.
func OPMLFilename(now time.Time) string {
	return "feedln-" + now.Format("20060102_150405") + ".opml"
}

// Item writes one item as readable plain text.
func Item(it storage.Item, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", it.Title)
	fmt.Fprintf(&b, "Date: %s\n", time.Unix(it.Updated, 0).Format(time.DateOnly))
	fmt.Fprintf(&b, "Summary: %s\n", it.Summary)
	b.WriteString(strings.Repeat("-", 70) + "\n")
	fmt.Fprintf(&b, "Content:\n%s\n", it.Content)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write item export %s: %w", path, err)
	}
	return nil
}

// OPML writes the feed list as an OPML document.
func OPML(feeds []storage.ExportFeed, path string, now time.Time) error {
	data, err := opml.Export(feeds, now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write opml export %s: %w", path, err)
	}
	return nil
}
