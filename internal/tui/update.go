package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"feedln/internal/feedsync"
	"feedln/internal/render/article"
	"feedln/internal/storage"
	"feedln/internal/tui/nav"
)

// trimKeepItems is how many newest items per feed survive a trim.
const trimKeepItems = 50

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case errMsg:
		m.log.WithError(msg.err).Error("operation failed")
		return m.setStatus(msg.err.Error(), true)

	case statusMsg:
		return m.setStatus(msg.text, msg.err)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case categoriesMsg:
		m.cats = msg.rows
		if msg.reset {
			m.catNav = nav.New(len(m.cats), m.pageSize())
		} else {
			m.catNav = m.catNav.Refresh(len(m.cats))
		}
		if m.fetchOnStart {
			m.fetchOnStart = false
			return m, m.startSyncCmd(0, "all feeds")
		}
		return m, nil

	case feedsMsg:
		m.feeds = msg.rows
		if msg.reset {
			m.feedNav = nav.New(len(m.feeds), m.pageSize())
		} else {
			m.feedNav = m.feedNav.Refresh(len(m.feeds))
		}
		return m, nil

	case itemsMsg:
		m.items = msg.items
		if msg.reset {
			m.itemNav = nav.New(len(m.items), m.pageSize())
		} else {
			m.itemNav = m.itemNav.Refresh(len(m.items))
		}
		return m, nil

	case entryMsg:
		m.entry = msg.item
		m.entryText = article.ContentLines(m.entry.Body(), m.contentWidth())
		m.entryNav = nav.New(len(m.entryText), m.entryPageSize())
		m.screen = screenEntry
		return m, m.reloadItemsCmd(false)

	case syncStartMsg:
		if len(msg.feeds) == 0 {
			return m.setStatus("Nothing to fetch", false)
		}
		m.syncing = true
		m.syncQueue = msg.feeds
		m.syncIndex = 0
		m.syncInserted = 0
		m.syncFailed = 0
		m.syncLabel = msg.label
		return m, m.syncFeedCmd(msg.feeds[0])

	case syncFeedDoneMsg:
		return m.advanceSync(msg.result)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) resize(width, height int) Model {
	m.width = width
	m.height = height
	m.catNav = m.catNav.Resize(m.pageSize())
	m.feedNav = m.feedNav.Resize(m.pageSize())
	m.itemNav = m.itemNav.Resize(m.pageSize())
	m.linkNav = m.linkNav.Resize(m.pageSize())
	if m.entry.ID != 0 {
		m.entryText = article.ContentLines(m.entry.Body(), m.contentWidth())
		m.entryNav = m.entryNav.Resize(m.entryPageSize()).Refresh(len(m.entryText))
	}
	m.input.Width = max(20, width-24)
	return m
}

func (m Model) contentWidth() int {
	return max(20, m.width-2)
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.status = text
	m.statusErr = isErr
	m.statusID++
	return m, clearStatusCmd(m.statusID)
}

func (m Model) advanceSync(res feedsync.Result) (Model, tea.Cmd) {
	if res.Err != nil {
		m.syncFailed++
		m.log.WithError(res.Err).WithField("feed", res.Feed.Name).Warn("feed sync failed")
	} else {
		m.syncInserted += res.Inserted
	}
	m.syncIndex++
	if m.syncIndex < len(m.syncQueue) {
		return m, m.syncFeedCmd(m.syncQueue[m.syncIndex])
	}
	m.syncing = false
	m.syncQueue = nil
	text := fmt.Sprintf("Fetched %s: %d new items", m.syncLabel, m.syncInserted)
	if m.syncFailed > 0 {
		text = fmt.Sprintf("%s, %d feeds failed", text, m.syncFailed)
	}
	m, statusCmd := m.setStatus(text, m.syncFailed > 0)
	return m, tea.Batch(statusCmd, m.afterMutationCmd())
}

// afterMutationCmd reloads whatever list screens are live so counts and
// rows reflect the change.
func (m Model) afterMutationCmd() tea.Cmd {
	cmds := []tea.Cmd{m.loadCategoriesCmd(m.catOrder, false)}
	if m.screen >= screenFeeds && m.curCategory.ID != 0 {
		cmds = append(cmds, m.loadFeedsCmd(m.curCategory.ID, m.feedOrder, false))
	}
	if m.screen >= screenItems {
		cmds = append(cmds, m.reloadItemsCmd(false))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.menu != menuNone {
		return m.handleMenuKey(key)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key == "q" {
		return m, tea.Quit
	}
	if key == "h" {
		m.showHelp = true
		return m, nil
	}
	if key == "x" {
		m.speaker.Stop()
		return m, nil
	}

	switch m.screen {
	case screenCategories:
		return m.keysCategories(key)
	case screenFeeds:
		return m.keysFeeds(key)
	case screenItems:
		return m.keysItems(key)
	case screenEntry:
		return m.keysEntry(key)
	case screenLinks:
		return m.keysLinks(key)
	}
	return m, nil
}

// moveList applies the shared motion keys; ok reports whether the key was
// one of them.
func moveList(l nav.List, key string) (nav.List, bool) {
	switch key {
	case "up", "k":
		return l.MoveUp(), true
	case "down", "j":
		return l.MoveDown(), true
	case "pgup":
		return l.PageUp(), true
	case "pgdown":
		return l.PageDown(), true
	case "home":
		return l.Home(), true
	case "end":
		return l.End(), true
	}
	return l, false
}

func (m Model) keysCategories(key string) (tea.Model, tea.Cmd) {
	if l, ok := moveList(m.catNav, key); ok {
		m.catNav = l
		return m, nil
	}
	switch key {
	case "enter", "right":
		if row, ok := m.selectedCategory(); ok {
			m.curCategory = row.Category
			m.screen = screenFeeds
			return m, m.loadFeedsCmd(row.ID, m.feedOrder, true)
		}
	case "tab":
		if row, ok := m.selectedCategory(); ok {
			m.curCategory = row.Category
			m.itemsFromFeed = false
			m.search = storage.Search{}
			m.screen = screenItems
			return m, m.loadCategoryItemsCmd(row.ID, m.search, true)
		}
	case "/":
		if _, ok := m.selectedCategory(); ok {
			m.menu = menuSearchScope
		}
	case "a":
		return m.openPrompt(promptAddName, "Feed name"), nil
	case "f":
		if row, ok := m.selectedCategory(); ok {
			return m, m.startSyncCmd(row.ID, row.Name)
		}
	case "F":
		return m, m.startSyncCmd(0, "all feeds")
	case "r", "u":
		if row, ok := m.selectedCategory(); ok {
			return m, m.markCategoryCmd(row.ID, key == "r")
		}
	case "R", "U":
		return m, m.markCategoryCmd(0, key == "R")
	case "o":
		m.catOrder = m.catOrder.Next()
		return m, m.loadCategoriesCmd(m.catOrder, true)
	case "O":
		return m, m.exportOPMLCmd()
	case "e":
		return m, m.editFileCmd(m.paths.FeedFile)
	case "l":
		return m, m.editFileCmd(m.paths.LogFile)
	case "s":
		if row, ok := m.selectedCategory(); ok {
			m.speaker.Speak(row.Name)
		}
	case "!":
		return m.openPrompt(promptConfirmReset, "Reset database? Type yes"), nil
	case "#":
		return m.openPrompt(promptConfirmPrune, "Remove feeds missing from the feed file? Type yes"), nil
	case "%":
		return m.openPrompt(promptConfirmTrim, fmt.Sprintf("Keep newest %d items per feed? Type yes", trimKeepItems)), nil
	}
	return m, nil
}

func (m Model) keysFeeds(key string) (tea.Model, tea.Cmd) {
	if l, ok := moveList(m.feedNav, key); ok {
		m.feedNav = l
		return m, nil
	}
	switch key {
	case "esc", "left":
		m.screen = screenCategories
		return m, m.loadCategoriesCmd(m.catOrder, false)
	case "enter", "right":
		if row, ok := m.selectedFeed(); ok {
			m.curFeed = row.Feed
			m.itemsFromFeed = true
			m.search = storage.Search{}
			m.screen = screenItems
			return m, m.loadFeedItemsCmd(row.ID, m.itemOrder, true)
		}
	case "f":
		if row, ok := m.selectedFeed(); ok {
			return m, m.startSyncCmd0(row.Feed)
		}
	case "r", "u":
		if row, ok := m.selectedFeed(); ok {
			return m, m.markFeedCmd(row.ID, key == "r", m.loadFeedsCmd(m.curCategory.ID, m.feedOrder, false))
		}
	case "o":
		m.feedOrder = m.feedOrder.Next()
		return m, m.loadFeedsCmd(m.curCategory.ID, m.feedOrder, true)
	case "s":
		if row, ok := m.selectedFeed(); ok {
			m.speaker.Speak(row.Name)
		}
	}
	return m, nil
}

// startSyncCmd0 queues a single feed.
func (m Model) startSyncCmd0(feed storage.Feed) tea.Cmd {
	return func() tea.Msg {
		return syncStartMsg{feeds: []storage.Feed{feed}, label: feed.Name}
	}
}

func (m Model) keysItems(key string) (tea.Model, tea.Cmd) {
	if l, ok := moveList(m.itemNav, key); ok {
		m.itemNav = l
		return m, nil
	}
	switch key {
	case "esc", "left":
		if m.itemsFromFeed {
			m.screen = screenFeeds
			return m, m.loadFeedsCmd(m.curCategory.ID, m.feedOrder, false)
		}
		m.screen = screenCategories
		return m, m.loadCategoriesCmd(m.catOrder, false)
	case "enter", "right":
		if it, ok := m.selectedItem(); ok {
			return m, m.openEntryCmd(it.ID)
		}
	case "d":
		m.itemOrder = storage.ItemsByRecency
		return m, m.reloadItemsCmd(true)
	case "t":
		m.itemOrder = storage.ItemsByTitle
		return m, m.reloadItemsCmd(true)
	case "r", "u":
		if it, ok := m.selectedItem(); ok {
			return m, m.markItemCmd(it.ID, key == "r")
		}
	case "s":
		if it, ok := m.selectedItem(); ok {
			m.speaker.Speak(it.Title)
		}
	}
	return m, nil
}

func (m Model) keysEntry(key string) (tea.Model, tea.Cmd) {
	if l, ok := moveList(m.entryNav, key); ok {
		m.entryNav = l
		return m, nil
	}
	switch key {
	case "esc", "left":
		m.screen = screenItems
		return m, m.reloadItemsCmd(false)
	case "e":
		return m, m.exportEntryCmd(m.entry)
	case "o":
		return m, m.openURLCmd(m.entry.Link, false)
	case "l":
		m.links = entryLinks(m.entry)
		m.linkNav = nav.New(len(m.links), m.pageSize())
		m.screen = screenLinks
	case "s":
		m.menu = menuSpeak
	case "1":
		return m, m.copyCmd(m.entry.Title, "Title copied")
	case "2":
		return m, m.copyCmd(m.entry.Link, "Link copied")
	case "3":
		return m, m.copyCmd(m.entry.Summary, "Summary copied")
	case "4":
		return m, m.copyCmd(article.Text(m.entry.Body()), "Content copied")
	}
	return m, nil
}

func (m Model) keysLinks(key string) (tea.Model, tea.Cmd) {
	if l, ok := moveList(m.linkNav, key); ok {
		m.linkNav = l
		return m, nil
	}
	switch key {
	case "esc", "left":
		m.screen = screenEntry
	case "enter", "o":
		if link, ok := m.selectedLink(); ok {
			return m, m.openURLCmd(link.URL, false)
		}
	case "m":
		if link, ok := m.selectedLink(); ok {
			return m, m.openURLCmd(link.URL, true)
		}
	case "c":
		if link, ok := m.selectedLink(); ok {
			return m, m.copyCmd(link.URL, "Link copied")
		}
	}
	return m, nil
}

func (m Model) handleMenuKey(key string) (tea.Model, tea.Cmd) {
	switch m.menu {
	case menuSpeak:
		m.menu = menuNone
		switch key {
		case "t":
			m.speaker.Speak(m.entry.Title)
		case "s":
			m.speaker.Speak(article.Text(m.entry.Summary))
		case "c":
			m.speaker.Speak(article.Text(m.entry.Body()))
		case "x":
			m.speaker.Stop()
		}
	case menuSearchScope:
		switch key {
		case "a", "t", "c", "s":
			m.menu = menuNone
			m.pendingScope = scopeForKey(key)
			return m.openPrompt(promptSearchText, "Search text"), nil
		case "esc":
			m.menu = menuNone
		}
	}
	return m, nil
}

func scopeForKey(key string) storage.SearchScope {
	switch key {
	case "t":
		return storage.SearchTitle
	case "c":
		return storage.SearchContent
	case "s":
		return storage.SearchSummary
	}
	return storage.SearchAll
}

func (m Model) openPrompt(kind promptKind, placeholder string) Model {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	return m
}

func (m Model) closePrompt() Model {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closePrompt(), nil
	case "enter":
		return m.submitPrompt(m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt(value string) (tea.Model, tea.Cmd) {
	kind := m.prompt
	m = m.closePrompt()
	switch kind {
	case promptConfirmReset:
		if value == "yes" {
			return m, m.resetCmd()
		}
		return m.setStatus("Reset cancelled", false)
	case promptConfirmPrune:
		if value == "yes" {
			return m, tea.Sequence(m.pruneCmd(), m.loadCategoriesCmd(m.catOrder, false))
		}
		return m.setStatus("Prune cancelled", false)
	case promptConfirmTrim:
		if value == "yes" {
			return m, tea.Sequence(m.trimCmd(trimKeepItems), m.loadCategoriesCmd(m.catOrder, false))
		}
		return m.setStatus("Trim cancelled", false)
	case promptAddName:
		if value == "" {
			return m, nil
		}
		m.pendingAdd = pendingAdd{name: value}
		return m.openPrompt(promptAddURL, "Feed URL"), nil
	case promptAddURL:
		if value == "" {
			return m, nil
		}
		m.pendingAdd.url = value
		return m.openPrompt(promptAddCategory, "Categories (a;b)"), nil
	case promptAddCategory:
		m.pendingAdd.category = value
		return m, m.addFeedCmd(m.pendingAdd)
	case promptSearchText:
		if value == "" {
			return m, nil
		}
		m.search = storage.Search{Text: value, Scope: m.pendingScope}
		if row, ok := m.selectedCategory(); ok {
			m.curCategory = row.Category
			m.itemsFromFeed = false
			m.screen = screenItems
			return m, m.loadCategoryItemsCmd(row.ID, m.search, true)
		}
	}
	return m, nil
}

func (m Model) selectedCategory() (catRow, bool) {
	if m.catNav.Cursor < len(m.cats) {
		return m.cats[m.catNav.Cursor], true
	}
	return catRow{}, false
}

func (m Model) selectedFeed() (feedRow, bool) {
	if m.feedNav.Cursor < len(m.feeds) {
		return m.feeds[m.feedNav.Cursor], true
	}
	return feedRow{}, false
}

func (m Model) selectedItem() (storage.Item, bool) {
	if m.itemNav.Cursor < len(m.items) {
		return m.items[m.itemNav.Cursor], true
	}
	return storage.Item{}, false
}

func (m Model) selectedLink() (article.Link, bool) {
	if m.linkNav.Cursor < len(m.links) {
		return m.links[m.linkNav.Cursor], true
	}
	return article.Link{}, false
}

// entryLinks prepends the item's own link to the ones found in its body.
func entryLinks(it storage.Item) []article.Link {
	links := article.ExtractLinks(it.Body())
	if it.Link == "" {
		return links
	}
	out := make([]article.Link, 0, len(links)+1)
	out = append(out, article.Link{URL: it.Link, Kind: article.LinkURL})
	for _, l := range links {
		if l.URL != it.Link {
			out = append(out, l)
		}
	}
	return out
}
