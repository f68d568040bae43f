package storage

// Category is a user-defined grouping label, many-to-many with feeds.
type Category struct {
	ID   int64
	Name string
}

// Feed is a named, URL-addressed source of syndicated content.
type Feed struct {
	ID   int64
	Name string
	URL  string
	Tags string
}

// Item is one syndicated entry belonging to a feed. Items are immutable
// once inserted; only the read flag is ever updated.
//
// Items are deduplicated on (feed_id, title). Two genuinely different
// posts sharing a title therefore collide and the second one is dropped.
// This is a known limitation, kept because the feed list format has no
// stable per-entry identifier to key on.
type Item struct {
	ID       int64
	FeedID   int64
	Title    string
	Summary  string
	Content  string
	Read     bool
	Updated  int64 // unix seconds, 0 when the source feed omits it
	Created  int64 // unix seconds, 0 when the source feed omits it
	Link     string
	FeedName string // populated by category-wide queries, empty otherwise
}

// Body returns the richest available text for the reader view.
func (it Item) Body() string {
	if it.Content != "" {
		return it.Content
	}
	return it.Summary
}

// ItemCounts holds total and unread item counts for a feed or category.
type ItemCounts struct {
	Total  int
	Unread int
}

// CategoryOrder selects the sort order for category listings.
type CategoryOrder int

const (
	CategoriesByName CategoryOrder = iota
	CategoriesByID
	CategoriesByUnread
)

func (o CategoryOrder) String() string {
	switch o {
	case CategoriesByID:
		return "ID"
	case CategoriesByUnread:
		return "Unread Count"
	default:
		return "Name"
	}
}

// Next cycles to the following sort order, wrapping around.
func (o CategoryOrder) Next() CategoryOrder {
	if o >= CategoriesByUnread {
		return CategoriesByName
	}
	return o + 1
}

// FeedOrder selects the sort order for feed listings.
type FeedOrder int

const (
	FeedsByName FeedOrder = iota
	FeedsByID
	FeedsByURL
	FeedsByUnread
)

func (o FeedOrder) String() string {
	switch o {
	case FeedsByID:
		return "By ID"
	case FeedsByURL:
		return "By URL"
	case FeedsByUnread:
		return "By Unread Count"
	default:
		return "By Name"
	}
}

// Next cycles to the following sort order, wrapping around.
func (o FeedOrder) Next() FeedOrder {
	if o >= FeedsByUnread {
		return FeedsByName
	}
	return o + 1
}

// ItemOrder selects the sort order for item listings.
type ItemOrder int

const (
	// ItemsByRecency orders by last_updated, newest first.
	ItemsByRecency ItemOrder = iota
	// ItemsByTitle orders by title descending. Descending is deliberate,
	// inherited behavior.
	ItemsByTitle
)

func (o ItemOrder) String() string {
	if o == ItemsByTitle {
		return "Title"
	}
	return "Date"
}

// SearchScope selects which item columns a substring search inspects.
type SearchScope int

const (
	SearchAll SearchScope = iota
	SearchTitle
	SearchContent
	SearchSummary
)

func (s SearchScope) String() string {
	switch s {
	case SearchTitle:
		return "title"
	case SearchContent:
		return "content"
	case SearchSummary:
		return "summary"
	default:
		return "all"
	}
}

// Search is an optional substring filter for category-wide item queries.
// A zero Search matches everything.
type Search struct {
	Text  string
	Scope SearchScope
}

// ExportFeed is a feed with its category names, for OPML export.
type ExportFeed struct {
	Name       string
	URL        string
	Tags       string
	Categories []string
}
