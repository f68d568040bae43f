package theme

import "github.com/charmbracelet/lipgloss"

// Theme carries the lipgloss styles for the reader. The palette follows
// the classic full-screen reader look: colored header and footer bands
// over plain list rows, bold rows for unread.
type Theme struct {
	Header     lipgloss.Style
	Footer     lipgloss.Style
	FooterErr  lipgloss.Style
	Prompt     lipgloss.Style
	Row        lipgloss.Style
	RowUnread  lipgloss.Style
	EntryTitle lipgloss.Style
	EntryMeta  lipgloss.Style
	Rule       lipgloss.Style
}

func Default() Theme {
	yellow := lipgloss.Color("11")
	blue := lipgloss.Color("4")
	red := lipgloss.Color("1")
	green := lipgloss.Color("2")
	white := lipgloss.Color("15")
	grey := lipgloss.Color("7")

	return Theme{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(yellow).Background(blue),
		Footer:     lipgloss.NewStyle().Bold(true).Foreground(yellow).Background(blue),
		FooterErr:  lipgloss.NewStyle().Bold(true).Foreground(yellow).Background(red),
		Prompt:     lipgloss.NewStyle().Bold(true).Foreground(white).Background(green),
		Row:        lipgloss.NewStyle().Foreground(grey),
		RowUnread:  lipgloss.NewStyle().Bold(true).Foreground(white),
		EntryTitle: lipgloss.NewStyle().Bold(true),
		EntryMeta:  lipgloss.NewStyle().Foreground(grey),
		Rule:       lipgloss.NewStyle().Foreground(grey),
	}
}

// StyleRow picks the row style for read or unread content.
func (t Theme) StyleRow(unread bool, line string) string {
	if unread {
		return t.RowUnread.Render(line)
	}
	return t.Row.Render(line)
}
