// Package opml renders the stored feeds as an OPML 2.0 document grouped
// by category, and parses OPML back into feed list entries.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"feedln/internal/storage"
)

type document struct {
	XMLName xml.Name  `xml:"opml"`
	Version string    `xml:"version,attr"`
	Head    head      `xml:"head"`
	Body    []outline `xml:"body>outline"`
}

type head struct {
	Title       string `xml:"title"`
	DateCreated string `xml:"dateCreated"`
}

type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	Category string    `xml:"category,attr,omitempty"`
	Outlines []outline `xml:"outline,omitempty"`
}

// Uncategorized is the group used for feeds without any category.
const Uncategorized = "Uncategorized"

// Export renders feeds grouped by category, categories sorted by name.
// A feed belonging to several categories appears under each of them.
func Export(feeds []storage.ExportFeed, now time.Time) ([]byte, error) {
	groups := make(map[string][]storage.ExportFeed)
	for _, f := range feeds {
		cats := f.Categories
		if len(cats) == 0 {
			cats = []string{Uncategorized}
		}
		for _, c := range cats {
			groups[c] = append(groups[c], f)
		}
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := document{
		Version: "2.0",
		Head: head{
			Title:       "Feedln Export",
			DateCreated: now.Format(time.RFC1123Z),
		},
	}
	for _, name := range names {
		group := outline{Text: name, Title: name}
		for _, f := range groups[name] {
			group.Outlines = append(group.Outlines, outline{
				Text:     f.Name,
				Title:    f.Name,
				Type:     "rss",
				XMLURL:   f.URL,
				Category: f.Tags,
			})
		}
		doc.Body = append(doc.Body, group)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal opml: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// Entry is one feed parsed out of an OPML document.
type Entry struct {
	Name     string
	URL      string
	Category string
}

// Parse extracts feeds from an OPML document; a feed's category is the
// enclosing outline's text, when there is one.
func Parse(r io.Reader) ([]Entry, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}
	var entries []Entry
	var walk func(outlines []outline, parent string)
	walk = func(outlines []outline, parent string) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				name := o.Title
				if name == "" {
					name = o.Text
				}
				entries = append(entries, Entry{Name: name, URL: o.XMLURL, Category: parent})
				continue
			}
			group := o.Text
			if group == "" {
				group = o.Title
			}
			walk(o.Outlines, group)
		}
	}
	walk(doc.Body, "")
	return entries, nil
}
