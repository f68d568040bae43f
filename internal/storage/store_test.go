package storage

import (
	"context"
	"path/filepath"
	"testing"

	"feedln/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "feedln.db"), logging.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustFeed(t *testing.T, s *Store, name, url string) int64 {
	t.Helper()
	id, err := s.UpsertFeed(context.Background(), name, url, "")
	if err != nil {
		t.Fatalf("UpsertFeed(%q) returned error: %v", url, err)
	}
	return id
}

func mustCategory(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.UpsertCategory(context.Background(), name)
	if err != nil {
		t.Fatalf("UpsertCategory(%q) returned error: %v", name, err)
	}
	return id
}

func mustLink(t *testing.T, s *Store, feedID, catID int64) {
	t.Helper()
	if err := s.LinkFeedCategory(context.Background(), feedID, catID); err != nil {
		t.Fatalf("LinkFeedCategory returned error: %v", err)
	}
}

func mustInsertItem(t *testing.T, s *Store, it Item) bool {
	t.Helper()
	inserted, err := s.InsertItemIfAbsent(context.Background(), it)
	if err != nil {
		t.Fatalf("InsertItemIfAbsent(%q) returned error: %v", it.Title, err)
	}
	return inserted
}

func TestUpsertFeed_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustFeed(t, s, "Blog", "https://example.com/rss")
	second := mustFeed(t, s, "Blog renamed", "https://example.com/rss")
	if first != second {
		t.Fatalf("expected same id for same URL, got %d and %d", first, second)
	}

	feeds, err := s.AllFeeds(ctx)
	if err != nil {
		t.Fatalf("AllFeeds returned error: %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("expected 1 feed, got %d", len(feeds))
	}
	if feeds[0].Name != "Blog" {
		t.Fatalf("second upsert must not rename, got %q", feeds[0].Name)
	}
}

func TestUpsertCategory_Idempotent(t *testing.T) {
	s := newTestStore(t)

	first := mustCategory(t, s, "news")
	second := mustCategory(t, s, "news")
	if first != second {
		t.Fatalf("expected same id, got %d and %d", first, second)
	}
}

func TestInsertItemIfAbsent_DeduplicatesOnTitle(t *testing.T) {
	s := newTestStore(t)
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")

	it := Item{FeedID: feedID, Title: "Hello", Summary: "s", Updated: 100}
	if !mustInsertItem(t, s, it) {
		t.Fatal("first insert should report inserted")
	}
	it.Summary = "different body"
	if mustInsertItem(t, s, it) {
		t.Fatal("second insert with same title should be a no-op")
	}

	counts, err := s.CountByFeed(context.Background(), feedID)
	if err != nil {
		t.Fatalf("CountByFeed returned error: %v", err)
	}
	if counts.Total != 1 || counts.Unread != 1 {
		t.Fatalf("expected 1 total / 1 unread, got %+v", counts)
	}
}

func TestCounts_FollowReadFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")
	catID := mustCategory(t, s, "news")
	mustLink(t, s, feedID, catID)

	mustInsertItem(t, s, Item{FeedID: feedID, Title: "a", Updated: 1})
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "b", Updated: 2})
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "c", Updated: 3})

	counts, err := s.CountByCategory(ctx, catID)
	if err != nil {
		t.Fatalf("CountByCategory returned error: %v", err)
	}
	if counts.Total != 3 || counts.Unread != 3 {
		t.Fatalf("expected 3/3, got %+v", counts)
	}

	items, err := s.ListItems(ctx, feedID, ItemsByRecency)
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if err := s.SetItemRead(ctx, items[0].ID, true); err != nil {
		t.Fatalf("SetItemRead returned error: %v", err)
	}

	counts, err = s.CountByFeed(ctx, feedID)
	if err != nil {
		t.Fatalf("CountByFeed returned error: %v", err)
	}
	if counts.Total != 3 || counts.Unread != 2 {
		t.Fatalf("expected 3 total / 2 unread, got %+v", counts)
	}

	if err := s.SetFeedRead(ctx, feedID, true); err != nil {
		t.Fatalf("SetFeedRead returned error: %v", err)
	}
	counts, err = s.CountByFeed(ctx, feedID)
	if err != nil {
		t.Fatalf("CountByFeed returned error: %v", err)
	}
	if counts.Unread != 0 {
		t.Fatalf("expected 0 unread after SetFeedRead, got %d", counts.Unread)
	}
}

func TestCountByFeed_EmptyFeedIsZero(t *testing.T) {
	s := newTestStore(t)
	feedID := mustFeed(t, s, "Empty", "https://example.com/empty")

	counts, err := s.CountByFeed(context.Background(), feedID)
	if err != nil {
		t.Fatalf("CountByFeed returned error: %v", err)
	}
	if counts.Total != 0 || counts.Unread != 0 {
		t.Fatalf("expected zero counts, got %+v", counts)
	}
}

func TestListItems_Orders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")

	mustInsertItem(t, s, Item{FeedID: feedID, Title: "alpha", Updated: 10})
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "zulu", Updated: 30})
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "mike", Updated: 20})

	byDate, err := s.ListItems(ctx, feedID, ItemsByRecency)
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if byDate[0].Title != "zulu" || byDate[2].Title != "alpha" {
		t.Fatalf("recency order wrong: %q, %q, %q", byDate[0].Title, byDate[1].Title, byDate[2].Title)
	}

	byTitle, err := s.ListItems(ctx, feedID, ItemsByTitle)
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if byTitle[0].Title != "zulu" || byTitle[2].Title != "alpha" {
		t.Fatalf("title order wrong: %q, %q, %q", byTitle[0].Title, byTitle[1].Title, byTitle[2].Title)
	}
}

func TestListItems_OmitsContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "a", Content: "<p>big body</p>"})

	items, err := s.ListItems(ctx, feedID, ItemsByRecency)
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if items[0].Content != "" {
		t.Fatalf("list query should not carry content, got %q", items[0].Content)
	}

	full, err := s.GetItem(ctx, items[0].ID)
	if err != nil {
		t.Fatalf("GetItem returned error: %v", err)
	}
	if full.Content != "<p>big body</p>" {
		t.Fatalf("GetItem should carry content, got %q", full.Content)
	}
}

func TestListCategories_UnreadOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	quiet := mustCategory(t, s, "quiet")
	busy := mustCategory(t, s, "busy")
	quietFeed := mustFeed(t, s, "Quiet", "https://example.com/quiet")
	busyFeed := mustFeed(t, s, "Busy", "https://example.com/busy")
	mustLink(t, s, quietFeed, quiet)
	mustLink(t, s, busyFeed, busy)

	mustInsertItem(t, s, Item{FeedID: busyFeed, Title: "a"})
	mustInsertItem(t, s, Item{FeedID: busyFeed, Title: "b"})
	mustInsertItem(t, s, Item{FeedID: quietFeed, Title: "c"})

	cats, err := s.ListCategories(ctx, CategoriesByUnread)
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "busy" {
		t.Fatalf("expected busy first, got %+v", cats)
	}

	cats, err = s.ListCategories(ctx, CategoriesByName)
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if cats[0].Name != "busy" || cats[1].Name != "quiet" {
		t.Fatalf("name order wrong: %+v", cats)
	}
}

func TestListCategoryItems_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustCategory(t, s, "news")
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")
	mustLink(t, s, feedID, catID)

	mustInsertItem(t, s, Item{FeedID: feedID, Title: "Go release", Summary: "compilers", Content: "toolchain"})
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "Weather", Summary: "rain and toolchain talk", Content: ""})

	all, err := s.ListCategoryItems(ctx, catID, Search{})
	if err != nil {
		t.Fatalf("ListCategoryItems returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
	if all[0].FeedName != "Blog" {
		t.Fatalf("category listing should carry the feed name, got %q", all[0].FeedName)
	}

	byTitle, err := s.ListCategoryItems(ctx, catID, Search{Text: "release", Scope: SearchTitle})
	if err != nil {
		t.Fatalf("ListCategoryItems returned error: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Go release" {
		t.Fatalf("title search wrong: %+v", byTitle)
	}

	anywhere, err := s.ListCategoryItems(ctx, catID, Search{Text: "toolchain", Scope: SearchAll})
	if err != nil {
		t.Fatalf("ListCategoryItems returned error: %v", err)
	}
	if len(anywhere) != 2 {
		t.Fatalf("expected toolchain in both items, got %d", len(anywhere))
	}

	byContent, err := s.ListCategoryItems(ctx, catID, Search{Text: "toolchain", Scope: SearchContent})
	if err != nil {
		t.Fatalf("ListCategoryItems returned error: %v", err)
	}
	if len(byContent) != 1 || byContent[0].Title != "Go release" {
		t.Fatalf("content search wrong: %+v", byContent)
	}
}

func TestPruneOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keepCat := mustCategory(t, s, "keep")
	dropCat := mustCategory(t, s, "drop")
	keep := mustFeed(t, s, "Keep", "https://example.com/keep")
	drop := mustFeed(t, s, "Drop", "https://example.com/drop")
	mustLink(t, s, keep, keepCat)
	mustLink(t, s, drop, dropCat)
	mustInsertItem(t, s, Item{FeedID: drop, Title: "orphan item"})

	removed, err := s.PruneOrphans(ctx, map[string]struct{}{"https://example.com/keep": {}})
	if err != nil {
		t.Fatalf("PruneOrphans returned error: %v", err)
	}
	if len(removed) != 1 || removed[0] != drop {
		t.Fatalf("expected [%d] removed, got %v", drop, removed)
	}

	feeds, err := s.AllFeeds(ctx)
	if err != nil {
		t.Fatalf("AllFeeds returned error: %v", err)
	}
	if len(feeds) != 1 || feeds[0].URL != "https://example.com/keep" {
		t.Fatalf("expected only the kept feed, got %+v", feeds)
	}

	cats, err := s.ListCategories(ctx, CategoriesByName)
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "keep" {
		t.Fatalf("empty category should be pruned too, got %+v", cats)
	}
}

func TestTrimItems_KeepsNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")

	for i := 1; i <= 5; i++ {
		mustInsertItem(t, s, Item{FeedID: feedID, Title: string(rune('a' + i)), Updated: int64(i)})
	}

	deleted, err := s.TrimItems(ctx, feedID, 2)
	if err != nil {
		t.Fatalf("TrimItems returned error: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	items, err := s.ListItems(ctx, feedID, ItemsByRecency)
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if len(items) != 2 || items[0].Updated != 5 || items[1].Updated != 4 {
		t.Fatalf("expected the two newest to survive, got %+v", items)
	}
}

func TestReset_DropsEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")
	mustInsertItem(t, s, Item{FeedID: feedID, Title: "a"})

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}

	feeds, err := s.AllFeeds(ctx)
	if err != nil {
		t.Fatalf("AllFeeds returned error: %v", err)
	}
	if len(feeds) != 0 {
		t.Fatalf("expected empty store after reset, got %d feeds", len(feeds))
	}

	// The schema must still be usable.
	if id := mustFeed(t, s, "Blog", "https://example.com/rss"); id == 0 {
		t.Fatal("expected insert to work after reset")
	}
}

func TestFeedsForExport_GroupsCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")
	mustLink(t, s, feedID, mustCategory(t, s, "news"))
	mustLink(t, s, feedID, mustCategory(t, s, "tech"))

	feeds, err := s.FeedsForExport(ctx)
	if err != nil {
		t.Fatalf("FeedsForExport returned error: %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("expected 1 feed, got %d", len(feeds))
	}
	if len(feeds[0].Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", feeds[0].Categories)
	}
}

func TestFeedsForExport_KeepsCommaInCategoryName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := mustFeed(t, s, "Blog", "https://example.com/rss")
	mustLink(t, s, feedID, mustCategory(t, s, "news, world"))
	mustLink(t, s, feedID, mustCategory(t, s, "tech"))

	feeds, err := s.FeedsForExport(ctx)
	if err != nil {
		t.Fatalf("FeedsForExport returned error: %v", err)
	}
	if len(feeds) != 1 || len(feeds[0].Categories) != 2 {
		t.Fatalf("expected 1 feed with 2 categories, got %+v", feeds)
	}
	found := false
	for _, c := range feeds[0].Categories {
		if c == "news, world" {
			found = true
		}
	}
	if !found {
		t.Fatalf("category name was split apart: %v", feeds[0].Categories)
	}
}
