package usecase

import (
	"time"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// DefaultInputSwitchWindow is the gap under which a repeated topology change
// is treated as an input-source switch rather than a deliberate reconfiguration.
const DefaultInputSwitchWindow = 5 * time.Second

// Classifier labels display transitions.
// It is stateful only through the blanked latch: the same (latch, previous,
// current, elapsed) tuple always yields the same result and latch transition.
// Not safe for concurrent use; the orchestrator serializes calls.
type Classifier struct {
	inputSwitchWindow time.Duration
	blanked           bool
}

// NewClassifier creates a classifier with the given input-switch window.
func NewClassifier(inputSwitchWindow time.Duration) *Classifier {
	if inputSwitchWindow <= 0 {
		inputSwitchWindow = DefaultInputSwitchWindow
	}
	return &Classifier{inputSwitchWindow: inputSwitchWindow}
}

// Classify labels the transition to current. A zero lastChangeAt means no
// earlier change has been seen.
//
// Blank recovery is checked before the input-switch window because it is the
// most disruptive condition.
func (c *Classifier) Classify(previous *domain.DisplaySnapshot, current domain.DisplaySnapshot, lastChangeAt, now time.Time) domain.ClassificationResult {
	result := domain.ClassificationResult{
		Classification: domain.ClassificationNormal,
		Snapshot:       current,
	}

	if current.Degenerate {
		c.blanked = true
		result.Suppressed = true
		return result
	}

	if c.blanked || (previous != nil && previous.Degenerate) {
		c.blanked = false
		result.Classification = domain.ClassificationScreenBlankRecovery
		return result
	}

	if !lastChangeAt.IsZero() && now.Sub(lastChangeAt) < c.inputSwitchWindow {
		result.Classification = domain.ClassificationInputSwitch
	}

	return result
}

// Latched reports whether the display is currently considered blanked.
func (c *Classifier) Latched() bool {
	return c.blanked
}

// SetInputSwitchWindow changes the input-switch window (config reload).
func (c *Classifier) SetInputSwitchWindow(d time.Duration) {
	if d > 0 {
		c.inputSwitchWindow = d
	}
}

// InputSwitchWindow returns the current input-switch window.
func (c *Classifier) InputSwitchWindow() time.Duration {
	return c.inputSwitchWindow
}
