package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"feedln/internal/export"
	"feedln/internal/feedlist"
	"feedln/internal/feedsync"
	"feedln/internal/storage"
)

type categoriesMsg struct {
	rows  []catRow
	reset bool
}

type feedsMsg struct {
	rows  []feedRow
	reset bool
}

type itemsMsg struct {
	items []storage.Item
	reset bool
}

type entryMsg struct {
	item storage.Item
}

type statusMsg struct {
	text string
	err  bool
}

type clearStatusMsg struct {
	id int
}

type syncStartMsg struct {
	feeds []storage.Feed
	label string
}

type syncFeedDoneMsg struct {
	result feedsync.Result
}

type errMsg struct {
	err error
}

func (m Model) loadCategoriesCmd(order storage.CategoryOrder, reset bool) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		cats, err := store.ListCategories(ctx, order)
		if err != nil {
			return errMsg{err}
		}
		rows := make([]catRow, 0, len(cats))
		for _, c := range cats {
			counts, err := store.CountByCategory(ctx, c.ID)
			if err != nil {
				return errMsg{err}
			}
			rows = append(rows, catRow{Category: c, Counts: counts})
		}
		return categoriesMsg{rows: rows, reset: reset}
	}
}

func (m Model) loadFeedsCmd(categoryID int64, order storage.FeedOrder, reset bool) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		feeds, err := store.ListFeedsByCategory(ctx, categoryID, order)
		if err != nil {
			return errMsg{err}
		}
		rows := make([]feedRow, 0, len(feeds))
		for _, f := range feeds {
			counts, err := store.CountByFeed(ctx, f.ID)
			if err != nil {
				return errMsg{err}
			}
			rows = append(rows, feedRow{Feed: f, Counts: counts})
		}
		return feedsMsg{rows: rows, reset: reset}
	}
}

func (m Model) loadFeedItemsCmd(feedID int64, order storage.ItemOrder, reset bool) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		items, err := store.ListItems(ctx, feedID, order)
		if err != nil {
			return errMsg{err}
		}
		return itemsMsg{items: items, reset: reset}
	}
}

func (m Model) loadCategoryItemsCmd(categoryID int64, search storage.Search, reset bool) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		items, err := store.ListCategoryItems(ctx, categoryID, search)
		if err != nil {
			return errMsg{err}
		}
		return itemsMsg{items: items, reset: reset}
	}
}

// reloadItemsCmd re-derives the items list from whichever source the
// screen is currently showing.
func (m Model) reloadItemsCmd(reset bool) tea.Cmd {
	if m.itemsFromFeed {
		return m.loadFeedItemsCmd(m.curFeed.ID, m.itemOrder, reset)
	}
	return m.loadCategoryItemsCmd(m.curCategory.ID, m.search, reset)
}

// openEntryCmd marks the item read and loads its full body, mirroring
// the select action: opening an item is what marks it read.
func (m Model) openEntryCmd(itemID int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		if err := store.SetItemRead(ctx, itemID, true); err != nil {
			return errMsg{err}
		}
		item, err := store.GetItem(ctx, itemID)
		if err != nil {
			return errMsg{err}
		}
		return entryMsg{item: item}
	}
}

func (m Model) markItemCmd(itemID int64, read bool) tea.Cmd {
	store := m.store
	reload := m.reloadItemsCmd(false)
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		if err := store.SetItemRead(ctx, itemID, read); err != nil {
			return errMsg{err}
		}
		return reload()
	}
}

func (m Model) markFeedCmd(feedID int64, read bool, reload tea.Cmd) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		if err := store.SetFeedRead(ctx, feedID, read); err != nil {
			return errMsg{err}
		}
		return reload()
	}
}

// markCategoryCmd marks every feed of one category; a zero categoryID
// marks every feed in the store.
func (m Model) markCategoryCmd(categoryID int64, read bool) tea.Cmd {
	store := m.store
	reload := m.loadCategoriesCmd(m.catOrder, false)
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		var feeds []storage.Feed
		var err error
		if categoryID == 0 {
			feeds, err = store.AllFeeds(ctx)
		} else {
			feeds, err = store.ListFeedsByCategory(ctx, categoryID, storage.FeedsByName)
		}
		if err != nil {
			return errMsg{err}
		}
		for _, f := range feeds {
			if err := store.SetFeedRead(ctx, f.ID, read); err != nil {
				return errMsg{err}
			}
		}
		return reload()
	}
}

// startSyncCmd collects the feeds to sync; the Update loop then walks the
// queue one feed at a time so progress shows between fetches.
func (m Model) startSyncCmd(categoryID int64, label string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		var feeds []storage.Feed
		var err error
		if categoryID == 0 {
			feeds, err = store.AllFeeds(ctx)
		} else {
			feeds, err = store.ListFeedsByCategory(ctx, categoryID, storage.FeedsByName)
		}
		if err != nil {
			return errMsg{err}
		}
		return syncStartMsg{feeds: feeds, label: label}
	}
}

// syncFeedCmd runs without a context deadline: the syncer's own HTTP
// client enforces the configured per-feed fetch timeout, and a shorter
// ambient deadline here would silently cap it.
func (m Model) syncFeedCmd(feed storage.Feed) tea.Cmd {
	syncer := m.syncer
	return func() tea.Msg {
		return syncFeedDoneMsg{result: syncer.SyncFeed(context.Background(), feed)}
	}
}

func (m Model) exportOPMLCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		feeds, err := store.FeedsForExport(ctx)
		if err != nil {
			return errMsg{err}
		}
		path := export.OPMLFilename(time.Now())
		if err := export.OPML(feeds, path, time.Now()); err != nil {
			return errMsg{err}
		}
		return statusMsg{text: "Feeds exported to " + path}
	}
}

func (m Model) exportEntryCmd(item storage.Item) tea.Cmd {
	return func() tea.Msg {
		path := export.ItemFilename(time.Now())
		if err := export.Item(item, path); err != nil {
			return errMsg{err}
		}
		return statusMsg{text: "Exported to: " + path}
	}
}

// addFeedCmd appends the new feed to the CSV list and re-imports it so
// the store and the file stay in step.
func (m Model) addFeedCmd(add pendingAdd) tea.Cmd {
	store := m.store
	path := m.paths.FeedFile
	log := m.log
	reload := m.loadCategoriesCmd(m.catOrder, true)
	return func() tea.Msg {
		entry := feedlist.Entry{Name: add.name, URL: add.url, Categories: splitCategories(add.category)}
		if err := feedlist.Append(path, entry); err != nil {
			return errMsg{err}
		}
		ctx, cancel := queryContext()
		defer cancel()
		if err := feedlist.Import(ctx, store, []feedlist.Entry{entry}); err != nil {
			return errMsg{err}
		}
		log.WithField("url", entry.URL).Info("new feed added")
		return reload()
	}
}

func (m Model) resetCmd() tea.Cmd {
	store := m.store
	path := m.paths.FeedFile
	log := m.log
	reload := m.loadCategoriesCmd(m.catOrder, true)
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		if err := store.Reset(ctx); err != nil {
			return errMsg{err}
		}
		entries, err := feedlist.Load(path, log)
		if err != nil {
			return errMsg{err}
		}
		if err := feedlist.Import(ctx, store, entries); err != nil {
			return errMsg{err}
		}
		log.Info("database reset")
		return reload()
	}
}

func (m Model) pruneCmd() tea.Cmd {
	store := m.store
	path := m.paths.FeedFile
	log := m.log
	return func() tea.Msg {
		known, err := feedlist.KnownURLs(path, log)
		if err != nil {
			return errMsg{err}
		}
		ctx, cancel := queryContext()
		defer cancel()
		removed, err := store.PruneOrphans(ctx, known)
		if err != nil {
			return errMsg{err}
		}
		log.WithField("removed", len(removed)).Info("orphan feeds pruned")
		return statusMsg{text: fmt.Sprintf("Removed %d orphan feeds", len(removed))}
	}
}

// trimCmd keeps only the newest items of every feed.
func (m Model) trimCmd(keep int) tea.Cmd {
	store := m.store
	log := m.log
	return func() tea.Msg {
		ctx, cancel := queryContext()
		defer cancel()
		feeds, err := store.AllFeeds(ctx)
		if err != nil {
			return errMsg{err}
		}
		var total int64
		for _, f := range feeds {
			n, err := store.TrimItems(ctx, f.ID, keep)
			if err != nil {
				return errMsg{err}
			}
			total += n
		}
		log.WithField("deleted", total).Info("old items trimmed")
		return statusMsg{text: fmt.Sprintf("Deleted %d old items", total)}
	}
}

func (m Model) editFileCmd(path string) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		if err := editInTerminal(cfg, path); err != nil {
			return statusMsg{text: err.Error(), err: true}
		}
		return statusMsg{text: "Editor closed"}
	}
}

func clearStatusCmd(id int) tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func splitCategories(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
