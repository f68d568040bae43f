// Package view formats rows and chrome for the browsing screens. Every
// screen shares the same shape: a header band, a page of rows, a footer
// band; only the row formatter differs.
package view

import (
	"fmt"
	"strings"
	"time"

	"feedln/internal/storage"
	"feedln/internal/tui/theme"
)

// Band renders a full-width header or footer line.
func Band(text string, width int, style func(...string) string) string {
	return style(pad(truncate(text, width), width))
}

// CountedLine formats a category or feed row: cursor, unread and total
// counts, then the name.
func CountedLine(active bool, counts storage.ItemCounts, name string, width int) string {
	marker := " "
	if active {
		marker = ">"
	}
	return truncate(fmt.Sprintf("%s %5d | %5d | %s", marker, counts.Unread, counts.Total, name), width)
}

// ItemLine formats an item row with its date and title. Category-wide
// listings also show the owning feed name.
func ItemLine(active bool, it storage.Item, width int) string {
	marker := " "
	if active {
		marker = ">"
	}
	date := time.Unix(it.Updated, 0).Format(time.DateOnly)
	if it.FeedName != "" {
		return truncate(fmt.Sprintf("%s %s | %-15s | %s", marker, date, truncate(it.FeedName, 15), it.Title), width)
	}
	return truncate(fmt.Sprintf("%s %s | %s", marker, date, it.Title), width)
}

// LinkLine formats a row of the links browser.
func LinkLine(active bool, kind, url string, width int) string {
	marker := " "
	if active {
		marker = ">"
	}
	return truncate(fmt.Sprintf("%s %s: %s", marker, kind, url), width)
}

// EntryHeader renders the reader view's fixed header: title, link, date
// and a rule.
func EntryHeader(it storage.Item, width int, th theme.Theme) []string {
	date := time.Unix(it.Updated, 0).Format("2006-01-02 / 15:04:05")
	titleLabel := "Title:"
	dateLabel := "Date: " + date
	gap := width - len(titleLabel) - len(dateLabel)
	if gap < 1 {
		gap = 1
	}
	return []string{
		th.EntryMeta.Render(titleLabel) + strings.Repeat(" ", gap) + th.EntryMeta.Render(dateLabel),
		th.EntryTitle.Render(truncate(it.Title, width)),
		truncate("<"+it.Link+">", width),
		th.Rule.Render(strings.Repeat("-", max(1, width))),
	}
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

func pad(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
