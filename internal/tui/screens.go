package tui

import (
	"fmt"
	"strings"

	"feedln/internal/tui/view"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(view.Band(m.headerText(), m.width, m.th.Header.Render))
	b.WriteString("\n")

	switch m.screen {
	case screenCategories:
		m.writeCategoryRows(&b)
	case screenFeeds:
		m.writeFeedRows(&b)
	case screenItems:
		m.writeItemRows(&b)
	case screenEntry:
		m.writeEntry(&b)
	case screenLinks:
		m.writeLinkRows(&b)
	}

	b.WriteString(m.footer())
	return b.String()
}

func (m Model) headerText() string {
	switch m.screen {
	case screenCategories:
		return fmt.Sprintf("feedln | categories (%s)", m.catOrder)
	case screenFeeds:
		return fmt.Sprintf("feedln | %s (%s)", m.curCategory.Name, m.feedOrder)
	case screenItems:
		source := m.curCategory.Name
		if m.itemsFromFeed {
			source = m.curFeed.Name
		}
		if m.search.Text != "" {
			return fmt.Sprintf("feedln | %s | search %q in %s", source, m.search.Text, m.search.Scope)
		}
		return fmt.Sprintf("feedln | %s (%s)", source, m.itemOrder)
	case screenEntry:
		return "feedln | " + m.entry.Title
	case screenLinks:
		return "feedln | links | " + m.entry.Title
	}
	return "feedln"
}

func (m Model) writeCategoryRows(b *strings.Builder) {
	start, end := m.catNav.Window()
	for i := start; i < end; i++ {
		row := m.cats[i]
		line := view.CountedLine(i == m.catNav.Cursor, row.Counts, row.Name, m.width)
		b.WriteString(m.th.StyleRow(row.Counts.Unread > 0, line))
		b.WriteString("\n")
	}
	m.fillBlank(b, end-start)
}

func (m Model) writeFeedRows(b *strings.Builder) {
	start, end := m.feedNav.Window()
	for i := start; i < end; i++ {
		row := m.feeds[i]
		line := view.CountedLine(i == m.feedNav.Cursor, row.Counts, row.Name, m.width)
		b.WriteString(m.th.StyleRow(row.Counts.Unread > 0, line))
		b.WriteString("\n")
	}
	m.fillBlank(b, end-start)
}

func (m Model) writeItemRows(b *strings.Builder) {
	start, end := m.itemNav.Window()
	for i := start; i < end; i++ {
		it := m.items[i]
		line := view.ItemLine(i == m.itemNav.Cursor, it, m.width)
		b.WriteString(m.th.StyleRow(!it.Read, line))
		b.WriteString("\n")
	}
	m.fillBlank(b, end-start)
}

func (m Model) writeLinkRows(b *strings.Builder) {
	start, end := m.linkNav.Window()
	for i := start; i < end; i++ {
		link := m.links[i]
		line := view.LinkLine(i == m.linkNav.Cursor, link.Kind.String(), link.URL, m.width)
		b.WriteString(m.th.StyleRow(false, line))
		b.WriteString("\n")
	}
	m.fillBlank(b, end-start)
}

func (m Model) writeEntry(b *strings.Builder) {
	for _, line := range view.EntryHeader(m.entry, m.width, m.th) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	start, end := m.entryNav.Window()
	for i := start; i < end; i++ {
		b.WriteString(m.entryText[i])
		b.WriteString("\n")
	}
	m.fillBlank(b, 4+end-start)
}

// fillBlank pads the body out so the footer always lands on the last
// row.
func (m Model) fillBlank(b *strings.Builder, used int) {
	for i := used; i < m.height-2; i++ {
		b.WriteString("\n")
	}
}

func (m Model) footer() string {
	if m.prompt != promptNone {
		return view.Band(m.input.Placeholder+": "+m.input.View(), m.width, m.th.Prompt.Render)
	}
	if m.menu == menuSpeak {
		return view.Band("speak: [t]itle [s]ummary [c]ontent [x] stop", m.width, m.th.Prompt.Render)
	}
	if m.menu == menuSearchScope {
		return view.Band("search in: [a]ll [t]itle [c]ontent [s]ummary", m.width, m.th.Prompt.Render)
	}
	if m.syncing && m.syncIndex < len(m.syncQueue) {
		text := fmt.Sprintf("Fetching %d/%d: %s", m.syncIndex+1, len(m.syncQueue), m.syncQueue[m.syncIndex].Name)
		return view.Band(text, m.width, m.th.Footer.Render)
	}
	if m.status != "" {
		style := m.th.Footer
		if m.statusErr {
			style = m.th.FooterErr
		}
		return view.Band(m.status, m.width, style.Render)
	}
	return view.Band(m.footerHint(), m.width, m.th.Footer.Render)
}

func (m Model) footerHint() string {
	switch m.screen {
	case screenCategories:
		return "enter open | tab items | a add | f/F fetch | o sort | / search | h help | q quit"
	case screenFeeds:
		return "enter open | f fetch | r/u read | o sort | esc back | h help"
	case screenItems:
		return "enter read | d/t sort | r/u mark | s speak | esc back | h help"
	case screenEntry:
		return "o open | l links | e export | s speak | 1-4 copy | esc back"
	case screenLinks:
		return "enter open | m media | c copy | esc back"
	}
	return ""
}

func (m Model) helpView() string {
	lines := []string{
		"feedln keys",
		"",
		"  all screens   up/down pgup/pgdn home/end move, q quit, h help, x stop speech",
		"  categories    enter feeds, tab items, a add feed, f fetch, F fetch all",
		"                r/u mark category, R/U mark all, o sort, O export OPML",
		"                e edit feed file, l view log, / search",
		"                ! reset, # prune, % trim (all ask for a typed yes)",
		"  feeds         enter items, f fetch, r/u mark, o sort",
		"  items         enter read entry, d by date, t by title, r/u mark, s speak",
		"  entry         o open link, l links, e export, s speak menu, 1-4 copy",
		"  links         enter browser, m media player, c copy",
		"",
		"press any key to close",
	}
	var b strings.Builder
	b.WriteString(view.Band("feedln | help", m.width, m.th.Header.Render))
	b.WriteString("\n")
	for i, line := range lines {
		if i >= m.height-1 {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
