package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// StatusTracker implements domain.CycleObserver and keeps what the tray shows.
type StatusTracker struct {
	mu        sync.Mutex
	last      *domain.CycleReport
	cycles    int64
	failures  int64
	dialogs   int64
	listeners []func(domain.CycleReport)
}

// NewStatusTracker creates an empty tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// Subscribe registers fn to be called after every cycle.
func (s *StatusTracker) Subscribe(fn func(report domain.CycleReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// CycleFinished records the report and notifies subscribers.
func (s *StatusTracker) CycleFinished(report domain.CycleReport) {
	s.mu.Lock()
	s.last = &report
	s.cycles++
	s.failures += int64(report.Failures)
	s.dialogs += int64(report.DialogsMatched)
	listeners := make([]func(domain.CycleReport), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(report)
	}
}

// Last returns the most recent report.
func (s *StatusTracker) Last() (domain.CycleReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.CycleReport{}, false
	}
	return *s.last, true
}

// Line is the one-line status shown in the tray menu.
func (s *StatusTracker) Line(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return "No restoration yet"
	}

	line := fmt.Sprintf("Last restore %s (%s)",
		humanize.RelTime(s.last.FinishedAt, now, "ago", "from now"),
		s.last.Cycle.Classification)
	if s.last.Failures > 0 {
		line += fmt.Sprintf(", %d failed", s.last.Failures)
	}
	return line
}

// Summary is the totals line shown below the status.
func (s *StatusTracker) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fmt.Sprintf("%s %s, %s %s dismissed",
		humanize.Comma(s.cycles), plural(s.cycles, "cycle", "cycles"),
		humanize.Comma(s.dialogs), plural(s.dialogs, "dialog", "dialogs"))
}

// Tooltip is the tray icon hover text.
func (s *StatusTracker) Tooltip(autoHide bool) string {
	state := "off"
	if autoHide {
		state = "on"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return fmt.Sprintf("hidebar: auto-hide %s", state)
	}
	return fmt.Sprintf("hidebar: auto-hide %s, last %s", state, s.last.Cycle.Classification)
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Ensure StatusTracker implements domain.CycleObserver.
var _ domain.CycleObserver = (*StatusTracker)(nil)
