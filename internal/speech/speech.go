// Package speech runs text-to-speech in the background so speaking never
// blocks input handling.
package speech

import (
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"
)

// Speaker is a single-slot handle around the speech command. Speak
// replaces the handle; an utterance already in flight may run to its
// natural end unless Stop interrupts it.
type Speaker struct {
	command string
	enabled bool
	log     logrus.FieldLogger

	mu  sync.Mutex
	cur *exec.Cmd
}

// New probes for the speech command on PATH; when it is missing the
// Speaker stays disabled and both methods are no-ops.
func New(command string, log logrus.FieldLogger) *Speaker {
	s := &Speaker{command: command, log: log}
	if command == "" {
		return s
	}
	if _, err := exec.LookPath(command); err == nil {
		s.enabled = true
	}
	return s
}

// Enabled reports whether the speech command was found.
func (s *Speaker) Enabled() bool {
	return s != nil && s.enabled
}

// Speak starts speaking text on a background goroutine, fire and forget.
func (s *Speaker) Speak(text string) {
	if !s.Enabled() || text == "" {
		return
	}
	cmd := exec.Command(s.command, text)
	if err := cmd.Start(); err != nil {
		s.log.WithError(err).Warn("speech start failed")
		return
	}
	s.mu.Lock()
	s.cur = cmd
	s.mu.Unlock()
	go func() {
		_ = cmd.Wait()
		s.mu.Lock()
		if s.cur == cmd {
			s.cur = nil
		}
		s.mu.Unlock()
	}()
}

// Stop interrupts the current utterance, best effort.
func (s *Speaker) Stop() {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	cmd := s.cur
	s.cur = nil
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
