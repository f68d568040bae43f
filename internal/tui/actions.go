package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"feedln/internal/config"
	"feedln/internal/tui/platform"
)

// openURLCmd launches the configured browser, or the media player when
// media is set. Launch failures surface as a status line.
func (m Model) openURLCmd(raw string, media bool) tea.Cmd {
	cfg := m.cfg
	log := m.log
	return func() tea.Msg {
		url, err := platform.ValidateURL(raw)
		if err != nil {
			return statusMsg{text: err.Error(), err: true}
		}
		program := cfg.Browser
		if media {
			program = cfg.Media
		}
		if !platform.Installed(program) {
			return statusMsg{text: program + " is not installed", err: true}
		}
		if media {
			err = platform.OpenDetached(program, url)
		} else {
			err = platform.Open(program, url)
		}
		if err != nil {
			log.WithError(err).WithField("url", url).Warn("open failed")
			return statusMsg{text: "Could not open " + url, err: true}
		}
		return statusMsg{text: "Opened in " + program}
	}
}

func (m Model) copyCmd(text, okStatus string) tea.Cmd {
	return func() tea.Msg {
		if err := platform.CopyText(text); err != nil {
			return statusMsg{text: "Clipboard unavailable", err: true}
		}
		return statusMsg{text: okStatus}
	}
}

func editInTerminal(cfg config.Config, path string) error {
	return platform.EditInTerminal(cfg.Terminal, cfg.TermFlags, cfg.Editor, path)
}
