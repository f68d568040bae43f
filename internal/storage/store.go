// Package storage provides the SQLite persistence layer for feeds,
// categories and feed items.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite connection. All mutations commit atomically per
// call; constraint violations on insert paths are swallowed and logged so
// batch operations keep going.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// New opens or creates the SQLite database at the given path and ensures
// the schema exists.
func New(path string, log logrus.FieldLogger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS feeds (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  url TEXT NOT NULL UNIQUE,
  tags TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS feed_categories (
  feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  PRIMARY KEY (feed_id, category_id)
);
CREATE TABLE IF NOT EXISTS feed_items (
  id INTEGER PRIMARY KEY,
  feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  summary TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL DEFAULT '',
  is_read INTEGER NOT NULL DEFAULT 0,
  last_updated INTEGER NOT NULL DEFAULT 0,
  created INTEGER NOT NULL DEFAULT 0,
  link TEXT NOT NULL DEFAULT '',
  UNIQUE(feed_id, title)
);
`

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Reset drops every table and recreates the empty schema. Callers gate
// this behind an explicit confirmation.
func (s *Store) Reset(ctx context.Context) error {
	drop := `
DROP TABLE IF EXISTS feed_items;
DROP TABLE IF EXISTS feed_categories;
DROP TABLE IF EXISTS categories;
DROP TABLE IF EXISTS feeds;
`
	if _, err := s.db.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("recreate schema: %w", err)
	}
	return nil
}

// UpsertFeed inserts a feed if the URL is new and returns the feed id
// either way. A uniqueness race on concurrent insert is logged, not
// raised.
func (s *Store) UpsertFeed(ctx context.Context, name, url, tags string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO feeds (name, url, tags) VALUES (?, ?, ?)
ON CONFLICT(url) DO NOTHING
`, name, url, tags)
	if err != nil {
		s.log.WithError(err).WithField("url", url).Warn("feed insert failed")
	} else if n, _ := res.RowsAffected(); n > 0 {
		return res.LastInsertId()
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM feeds WHERE url = ?`, url).Scan(&id); err != nil {
		return 0, fmt.Errorf("look up feed %q: %w", url, err)
	}
	return id, nil
}

// UpsertCategory inserts a category if the name is new and returns its id.
func (s *Store) UpsertCategory(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO categories (name) VALUES (?)
ON CONFLICT(name) DO NOTHING
`, name)
	if err != nil {
		s.log.WithError(err).WithField("category", name).Warn("category insert failed")
	} else if n, _ := res.RowsAffected(); n > 0 {
		return res.LastInsertId()
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("look up category %q: %w", name, err)
	}
	return id, nil
}

// LinkFeedCategory attaches a feed to a category. Idempotent.
func (s *Store) LinkFeedCategory(ctx context.Context, feedID, categoryID int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO feed_categories (feed_id, category_id) VALUES (?, ?)
ON CONFLICT(feed_id, category_id) DO NOTHING
`, feedID, categoryID)
	if err != nil {
		return fmt.Errorf("link feed %d to category %d: %w", feedID, categoryID, err)
	}
	return nil
}

// ListCategories returns all categories in the requested order. The
// unread-count order counts zero for categories with no feeds or items.
func (s *Store) ListCategories(ctx context.Context, order CategoryOrder) ([]Category, error) {
	if order == CategoriesByUnread {
		rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.name, COUNT(CASE WHEN fi.is_read = 0 THEN 1 END) AS unread_count
FROM categories c
LEFT JOIN feed_categories fc ON c.id = fc.category_id
LEFT JOIN feeds f ON fc.feed_id = f.id
LEFT JOIN feed_items fi ON f.id = fi.feed_id
GROUP BY c.id, c.name
ORDER BY unread_count DESC, c.name ASC
`)
		if err != nil {
			return nil, fmt.Errorf("query categories by unread: %w", err)
		}
		defer rows.Close()
		var out []Category
		for rows.Next() {
			var c Category
			var unread int
			if err := rows.Scan(&c.ID, &c.Name, &unread); err != nil {
				return nil, fmt.Errorf("scan category: %w", err)
			}
			out = append(out, c)
		}
		return out, rows.Err()
	}

	orderBy := "name ASC"
	if order == CategoriesByID {
		orderBy = "id ASC"
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY `+orderBy)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListFeedsByCategory returns the feeds linked to a category in the
// requested order.
func (s *Store) ListFeedsByCategory(ctx context.Context, categoryID int64, order FeedOrder) ([]Feed, error) {
	if order == FeedsByUnread {
		rows, err := s.db.QueryContext(ctx, `
SELECT f.id, f.name, f.url, f.tags,
       COUNT(CASE WHEN fi.is_read = 0 THEN 1 END) AS unread_count
FROM feeds f
JOIN feed_categories fc ON f.id = fc.feed_id
LEFT JOIN feed_items fi ON f.id = fi.feed_id
WHERE fc.category_id = ?
GROUP BY f.id, f.name, f.url, f.tags
ORDER BY unread_count DESC
`, categoryID)
		if err != nil {
			return nil, fmt.Errorf("query feeds by unread: %w", err)
		}
		defer rows.Close()
		var out []Feed
		for rows.Next() {
			var f Feed
			var unread int
			if err := rows.Scan(&f.ID, &f.Name, &f.URL, &f.Tags, &unread); err != nil {
				return nil, fmt.Errorf("scan feed: %w", err)
			}
			out = append(out, f)
		}
		return out, rows.Err()
	}

	orderBy := "f.name ASC"
	switch order {
	case FeedsByID:
		orderBy = "f.id ASC"
	case FeedsByURL:
		orderBy = "f.url ASC"
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT f.id, f.name, f.url, f.tags
FROM feeds f
JOIN feed_categories fc ON f.id = fc.feed_id
WHERE fc.category_id = ?
ORDER BY `+orderBy, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()
	var out []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.ID, &f.Name, &f.URL, &f.Tags); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AllFeeds returns every feed, ordered by name.
func (s *Store) AllFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, url, tags FROM feeds ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()
	var out []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.ID, &f.Name, &f.URL, &f.Tags); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListItems returns a feed's items without their content bodies; the
// reader view loads the full body through GetItem.
func (s *Store) ListItems(ctx context.Context, feedID int64, order ItemOrder) ([]Item, error) {
	orderBy := "last_updated DESC"
	if order == ItemsByTitle {
		orderBy = "title DESC"
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, feed_id, title, summary, is_read, last_updated, created, link
FROM feed_items
WHERE feed_id = ?
ORDER BY `+orderBy, feedID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.FeedID, &it.Title, &it.Summary, &it.Read, &it.Updated, &it.Created, &it.Link); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListCategoryItems returns every item belonging to a category's feeds,
// newest first, each joined with its feed name. A non-empty search
// restricts the result to items whose searched columns contain the text
// (case-insensitive substring).
func (s *Store) ListCategoryItems(ctx context.Context, categoryID int64, search Search) ([]Item, error) {
	var b strings.Builder
	b.WriteString(`
SELECT fi.id, fi.feed_id, fi.title, fi.summary, fi.is_read, fi.last_updated, fi.created, fi.link, f.name
FROM feed_items fi
JOIN feeds f ON fi.feed_id = f.id
JOIN feed_categories fc ON f.id = fc.feed_id
WHERE fc.category_id = ?`)
	args := []any{categoryID}
	if search.Text != "" {
		pattern := "%" + search.Text + "%"
		switch search.Scope {
		case SearchTitle:
			b.WriteString(" AND fi.title LIKE ?")
			args = append(args, pattern)
		case SearchContent:
			b.WriteString(" AND fi.content LIKE ?")
			args = append(args, pattern)
		case SearchSummary:
			b.WriteString(" AND fi.summary LIKE ?")
			args = append(args, pattern)
		default:
			b.WriteString(" AND (fi.title LIKE ? OR fi.content LIKE ? OR fi.summary LIKE ?)")
			args = append(args, pattern, pattern, pattern)
		}
	}
	b.WriteString(" ORDER BY fi.last_updated DESC")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query category items: %w", err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.FeedID, &it.Title, &it.Summary, &it.Read, &it.Updated, &it.Created, &it.Link, &it.FeedName); err != nil {
			return nil, fmt.Errorf("scan category item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItem loads a single item including its content body.
func (s *Store) GetItem(ctx context.Context, itemID int64) (Item, error) {
	var it Item
	err := s.db.QueryRowContext(ctx, `
SELECT id, feed_id, title, summary, content, is_read, last_updated, created, link
FROM feed_items
WHERE id = ?
`, itemID).Scan(&it.ID, &it.FeedID, &it.Title, &it.Summary, &it.Content, &it.Read, &it.Updated, &it.Created, &it.Link)
	if err != nil {
		return Item{}, fmt.Errorf("load item %d: %w", itemID, err)
	}
	return it, nil
}

// CountByCategory returns total and unread item counts across a
// category's feeds. A category with no items counts (0, 0).
func (s *Store) CountByCategory(ctx context.Context, categoryID int64) (ItemCounts, error) {
	var c ItemCounts
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(fi.id), COALESCE(SUM(CASE WHEN fi.is_read = 0 THEN 1 ELSE 0 END), 0)
FROM feed_items fi
WHERE fi.feed_id IN (SELECT feed_id FROM feed_categories WHERE category_id = ?)
`, categoryID).Scan(&c.Total, &c.Unread)
	if err != nil {
		return ItemCounts{}, fmt.Errorf("count category items: %w", err)
	}
	return c, nil
}

// CountByFeed returns total and unread item counts for one feed.
func (s *Store) CountByFeed(ctx context.Context, feedID int64) (ItemCounts, error) {
	var c ItemCounts
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(id), COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0)
FROM feed_items
WHERE feed_id = ?
`, feedID).Scan(&c.Total, &c.Unread)
	if err != nil {
		return ItemCounts{}, fmt.Errorf("count feed items: %w", err)
	}
	return c, nil
}

// SetItemRead sets the read flag on a single item.
func (s *Store) SetItemRead(ctx context.Context, itemID int64, read bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE feed_items SET is_read = ? WHERE id = ?`, boolToInt(read), itemID); err != nil {
		return fmt.Errorf("mark item %d: %w", itemID, err)
	}
	return nil
}

// SetFeedRead sets the read flag on every item of a feed.
func (s *Store) SetFeedRead(ctx context.Context, feedID int64, read bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE feed_items SET is_read = ? WHERE feed_id = ?`, boolToInt(read), feedID); err != nil {
		return fmt.Errorf("mark feed %d: %w", feedID, err)
	}
	return nil
}

// InsertItemIfAbsent inserts an item unless the feed already has one with
// the same title. Reports whether a row was actually created.
func (s *Store) InsertItemIfAbsent(ctx context.Context, it Item) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO feed_items (feed_id, title, summary, content, last_updated, created, link)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(feed_id, title) DO NOTHING
`, it.FeedID, it.Title, it.Summary, it.Content, it.Updated, it.Created, it.Link)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"feed": it.FeedID, "title": it.Title}).Warn("item insert failed")
		return false, nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert item: %w", err)
	}
	return n > 0, nil
}

// PruneOrphans deletes feeds whose URL is absent from knownURLs, then
// categories left without any linked feed. Returns the removed feed ids.
// Item and link rows go away via the foreign-key cascades.
func (s *Store) PruneOrphans(ctx context.Context, knownURLs map[string]struct{}) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id, url FROM feeds`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	var removed []int64
	for rows.Next() {
		var id int64
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		if _, ok := knownURLs[url]; !ok {
			removed = append(removed, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}
	rows.Close()

	for _, id := range removed {
		if _, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("delete feed %d: %w", id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM categories WHERE id NOT IN (SELECT DISTINCT category_id FROM feed_categories)
`); err != nil {
		return nil, fmt.Errorf("delete empty categories: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return removed, nil
}

// TrimItems deletes all but the newest keep items of a feed and returns
// the number of deleted rows.
func (s *Store) TrimItems(ctx context.Context, feedID int64, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
DELETE FROM feed_items
WHERE feed_id = ? AND id NOT IN (
  SELECT id FROM feed_items WHERE feed_id = ? ORDER BY last_updated DESC LIMIT ?
)
`, feedID, feedID, keep)
	if err != nil {
		return 0, fmt.Errorf("trim feed %d: %w", feedID, err)
	}
	return res.RowsAffected()
}

// FeedsForExport returns every feed with its category names, for OPML
// export. Feeds without a category come back with an empty slice.
func (s *Store) FeedsForExport(ctx context.Context) ([]ExportFeed, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT f.name, f.url, f.tags, COALESCE(GROUP_CONCAT(c.name, char(31)), '')
FROM feeds f
LEFT JOIN feed_categories fc ON f.id = fc.feed_id
LEFT JOIN categories c ON fc.category_id = c.id
GROUP BY f.id
ORDER BY f.name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query export feeds: %w", err)
	}
	defer rows.Close()
	var out []ExportFeed
	for rows.Next() {
		var f ExportFeed
		var cats string
		if err := rows.Scan(&f.Name, &f.URL, &f.Tags, &cats); err != nil {
			return nil, fmt.Errorf("scan export feed: %w", err)
		}
		// Names are joined with the unit separator so commas inside a
		// category name survive the round trip.
		if cats != "" {
			f.Categories = strings.Split(cats, "\x1f")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
