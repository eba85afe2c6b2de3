// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture; it imports no other package of this module.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// AutoHidePreference is the single persisted taskbar flag.
type AutoHidePreference struct {
	Enabled bool `json:"enabled"`
}

// MonitorRect is one monitor's bounds in virtual desktop coordinates.
type MonitorRect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Width returns the horizontal size of the monitor.
func (r MonitorRect) Width() int32 { return r.Right - r.Left }

// Height returns the vertical size of the monitor.
func (r MonitorRect) Height() int32 { return r.Bottom - r.Top }

// DisplaySnapshot is a point-in-time description of the monitor layout.
// Only equality of the layout matters, so the fingerprint keeps OS enumeration order.
type DisplaySnapshot struct {
	Timestamp         time.Time
	MonitorCount      int
	LayoutFingerprint string
	Degenerate        bool // Unreadable, no monitors, or a zero-size monitor
}

// NewDisplaySnapshot builds a snapshot from the enumerated monitor bounds.
func NewDisplaySnapshot(at time.Time, monitors []MonitorRect) DisplaySnapshot {
	parts := make([]string, 0, len(monitors))
	degenerate := len(monitors) == 0
	for _, m := range monitors {
		if m.Width() <= 0 || m.Height() <= 0 {
			degenerate = true
		}
		parts = append(parts, fmt.Sprintf("%dx%d@%d,%d", m.Width(), m.Height(), m.Left, m.Top))
	}
	return DisplaySnapshot{
		Timestamp:         at,
		MonitorCount:      len(monitors),
		LayoutFingerprint: strings.Join(parts, ";"),
		Degenerate:        degenerate,
	}
}

// UnreadableSnapshot is recorded when the display layout could not be queried.
func UnreadableSnapshot(at time.Time) DisplaySnapshot {
	return DisplaySnapshot{Timestamp: at, Degenerate: true}
}

// SameLayout reports whether two snapshots describe the same topology.
func (s DisplaySnapshot) SameLayout(other DisplaySnapshot) bool {
	return s.MonitorCount == other.MonitorCount &&
		s.LayoutFingerprint == other.LayoutFingerprint &&
		s.Degenerate == other.Degenerate
}

// Classification is the kind of display transition being handled.
type Classification int

const (
	ClassificationNormal Classification = iota
	ClassificationInputSwitch
	ClassificationScreenBlankRecovery
)

// String returns the string representation of Classification.
func (c Classification) String() string {
	switch c {
	case ClassificationNormal:
		return "normal"
	case ClassificationInputSwitch:
		return "input-switch"
	case ClassificationScreenBlankRecovery:
		return "screen-blank-recovery"
	default:
		return "unknown"
	}
}

// ClassificationResult is the classifier output for one snapshot.
type ClassificationResult struct {
	Classification Classification
	Snapshot       DisplaySnapshot
	// Suppressed is set while the screen is genuinely blanked; no restoration may run.
	Suppressed bool
}

// TriggerKind identifies what woke the restoration engine.
type TriggerKind string

const (
	TriggerDisplayChanged TriggerKind = "display-changed"
	TriggerDisplayPoll    TriggerKind = "display-poll"
	TriggerPowerResume    TriggerKind = "power-resume"
	TriggerSessionUnlock  TriggerKind = "session-unlock"
	TriggerManual         TriggerKind = "manual"
)

// IsDisplay reports whether the trigger carries a display snapshot to classify.
func (k TriggerKind) IsDisplay() bool {
	return k == TriggerDisplayChanged || k == TriggerDisplayPoll
}

// Trigger is a raw event fed to the orchestrator.
type Trigger struct {
	Kind     TriggerKind
	At       time.Time
	Snapshot *DisplaySnapshot // Set for display triggers only
}

// RestorationCycle is the in-flight record of one restoration run.
type RestorationCycle struct {
	ID             string
	Trigger        TriggerKind
	Classification Classification
	Policy         string
	StartedAt      time.Time
	AttemptsMade   int
}

// IconState is the tray icon visual.
type IconState int

const (
	IconUp   IconState = iota // Taskbar pinned
	IconDown                  // Taskbar hidden
)

// String returns the string representation of IconState.
func (s IconState) String() string {
	if s == IconDown {
		return "down"
	}
	return "up"
}

// IconFor maps the preference onto the icon shown in the tray.
func IconFor(autoHide bool) IconState {
	if autoHide {
		return IconDown
	}
	return IconUp
}

// CycleReport captures what happened during a single restoration cycle.
type CycleReport struct {
	Cycle             RestorationCycle
	FinishedAt        time.Time
	PreferenceEnabled bool
	Applied           int
	Failures          int
	DialogsMatched    int
	Icon              IconState
}

// DialogCandidate is a read-only view of one OS window seen during a sweep.
type DialogCandidate struct {
	Handle    uintptr
	ClassName string
	Text      string // Title plus any static child text
}
