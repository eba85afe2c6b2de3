package domain

import "context"

// PreferenceStore owns the persisted auto-hide flag.
// Implementation: bit 3 of byte 8 of the StuckRects3 registry blob.
type PreferenceStore interface {
	// Get returns the persisted flag, or ErrStoreUnavailable.
	Get() (bool, error)

	// Set writes the flag and asks the live shell to apply it.
	Set(enabled bool) error

	// Toggle flips the flag and returns the new value.
	Toggle() (bool, error)
}

// ShellController applies the flag to the running shell.
type ShellController interface {
	// Apply sends the auto-hide state to the taskbar and asks it to repaint.
	// Returns ErrShellUnavailable when the taskbar window does not exist.
	Apply(enabled bool) error

	// Available reports whether the taskbar window currently exists.
	Available() bool
}

// WindowEnumerator lists top-level windows for dialog sweeps.
type WindowEnumerator interface {
	// Enumerate calls visit once per window. A non-nil err passed to visit
	// means that window could not be inspected; the returned error means the
	// enumeration itself failed.
	Enumerate(visit func(c DialogCandidate, err error)) error
}

// WindowCloser performs the closure attempts on one matched dialog.
type WindowCloser interface {
	// RequestClose posts a close request.
	RequestClose(handle uintptr) error

	// PressDefault finds a child "OK" button and clicks it.
	// Returns false when no such button exists.
	PressDefault(handle uintptr) (bool, error)

	// SendEscape synthesizes Escape key down/up.
	SendEscape(handle uintptr) error
}

// DialogSweeper dismisses shell conflict dialogs.
type DialogSweeper interface {
	// Sweep returns the number of matched windows. It never fails.
	Sweep() int
}

// DisplayProbe reads the current monitor layout.
type DisplayProbe interface {
	Monitors() ([]MonitorRect, error)
}

// EventSource delivers OS notifications (power, session, display) as triggers.
type EventSource interface {
	// Start subscribes to OS notifications.
	Start(ctx context.Context) error

	// Events returns the trigger channel. It is closed by Close.
	Events() <-chan TriggerKind

	// Close unsubscribes and releases every OS resource.
	Close() error
}

// CycleObserver is told when a restoration cycle ends.
type CycleObserver interface {
	CycleFinished(report CycleReport)
}

// StartupManager handles the per-user startup shortcut.
type StartupManager interface {
	// Install creates the startup shortcut pointing at execPath.
	Install(execPath string) error

	// Uninstall removes the shortcut; a missing shortcut is not an error.
	Uninstall() error

	// IsInstalled checks if the shortcut exists.
	IsInstalled() bool

	// GetShortcutPath returns the shortcut file path.
	GetShortcutPath() string
}

// ProcessManager handles OS process lookups.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// FindByName returns PIDs of processes matching the pattern.
	FindByName(pattern string) ([]int, error)

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// Notifier shows informational notices for manual user actions.
type Notifier interface {
	Info(title, message string)
	Warn(title, message string)
}
