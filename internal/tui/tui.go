// Package tui drives the interactive reader: a stack of browsing screens
// (categories, feeds, items, entry, links) that all share the same
// navigation state machine and differ only in data source and row format.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sirupsen/logrus"

	"feedln/internal/config"
	"feedln/internal/feedsync"
	"feedln/internal/render/article"
	"feedln/internal/speech"
	"feedln/internal/storage"
	"feedln/internal/tui/nav"
	"feedln/internal/tui/theme"
)

// Store is the persistence surface the screens read from and mutate.
type Store interface {
	ListCategories(ctx context.Context, order storage.CategoryOrder) ([]storage.Category, error)
	ListFeedsByCategory(ctx context.Context, categoryID int64, order storage.FeedOrder) ([]storage.Feed, error)
	ListItems(ctx context.Context, feedID int64, order storage.ItemOrder) ([]storage.Item, error)
	ListCategoryItems(ctx context.Context, categoryID int64, search storage.Search) ([]storage.Item, error)
	GetItem(ctx context.Context, itemID int64) (storage.Item, error)
	CountByCategory(ctx context.Context, categoryID int64) (storage.ItemCounts, error)
	CountByFeed(ctx context.Context, feedID int64) (storage.ItemCounts, error)
	SetItemRead(ctx context.Context, itemID int64, read bool) error
	SetFeedRead(ctx context.Context, feedID int64, read bool) error
	AllFeeds(ctx context.Context) ([]storage.Feed, error)
	FeedsForExport(ctx context.Context) ([]storage.ExportFeed, error)
	PruneOrphans(ctx context.Context, knownURLs map[string]struct{}) ([]int64, error)
	Reset(ctx context.Context) error
	TrimItems(ctx context.Context, feedID int64, keep int) (int64, error)
	UpsertFeed(ctx context.Context, name, url, tags string) (int64, error)
	UpsertCategory(ctx context.Context, name string) (int64, error)
	LinkFeedCategory(ctx context.Context, feedID, categoryID int64) error
}

// Syncer fetches one feed into the store; the model sequences batches
// itself so it can show per-feed progress between fetches.
type Syncer interface {
	SyncFeed(ctx context.Context, feed storage.Feed) feedsync.Result
}

type screen int

const (
	screenCategories screen = iota
	screenFeeds
	screenItems
	screenEntry
	screenLinks
)

// catRow and feedRow carry the per-row counts so that View stays free of
// store queries.
type catRow struct {
	storage.Category
	Counts storage.ItemCounts
}

type feedRow struct {
	storage.Feed
	Counts storage.ItemCounts
}

type promptKind int

const (
	promptNone promptKind = iota
	promptConfirmReset
	promptConfirmPrune
	promptConfirmTrim
	promptAddName
	promptAddURL
	promptAddCategory
	promptSearchText
)

type menuKind int

const (
	menuNone menuKind = iota
	menuSpeak
	menuSearchScope
)

// Model is the bubbletea model for the whole reader.
type Model struct {
	store   Store
	syncer  Syncer
	cfg     config.Config
	paths   config.DerivedPaths
	speaker *speech.Speaker
	log     logrus.FieldLogger
	th      theme.Theme

	width  int
	height int

	screen   screen
	showHelp bool

	cats     []catRow
	catNav   nav.List
	catOrder storage.CategoryOrder

	curCategory storage.Category
	feeds       []feedRow
	feedNav     nav.List
	feedOrder   storage.FeedOrder

	items         []storage.Item
	itemNav       nav.List
	itemOrder     storage.ItemOrder
	itemsFromFeed bool
	curFeed       storage.Feed
	search        storage.Search

	entry     storage.Item
	entryText []string
	entryNav  nav.List

	links   []article.Link
	linkNav nav.List

	prompt       promptKind
	input        textinput.Model
	pendingAdd   pendingAdd
	pendingScope storage.SearchScope

	menu menuKind

	status    string
	statusErr bool
	statusID  int

	syncing      bool
	syncQueue    []storage.Feed
	syncIndex    int
	syncInserted int
	syncFailed   int
	syncLabel    string

	fetchOnStart bool
}

type pendingAdd struct {
	name     string
	url      string
	category string
}

const queryTimeout = 10 * time.Second

// New builds the model. fetchOnStart queues a full sync right after the
// first category load.
func New(store Store, syncer Syncer, cfg config.Config, paths config.DerivedPaths, speaker *speech.Speaker, log logrus.FieldLogger, fetchOnStart bool) Model {
	input := textinput.New()
	input.CharLimit = 256
	return Model{
		store:        store,
		syncer:       syncer,
		cfg:          cfg,
		paths:        paths,
		speaker:      speaker,
		log:          log,
		th:           theme.Default(),
		catOrder:     storage.CategoriesByUnread,
		feedOrder:    storage.FeedsByUnread,
		itemOrder:    storage.ItemsByRecency,
		input:        input,
		fetchOnStart: fetchOnStart,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCategoriesCmd(m.catOrder, true)
}

// pageSize is the number of list rows between the header and footer
// bands.
func (m Model) pageSize() int {
	size := m.height - 2
	if size < 1 {
		size = 1
	}
	return size
}

// entryPageSize leaves room for the reader's four header lines.
func (m Model) entryPageSize() int {
	size := m.height - 6
	if size < 1 {
		size = 1
	}
	return size
}

func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}
