package domain

import "github.com/pkg/errors"

// Local-recovery errors. None of them is fatal to the process.
var (
	// ErrStoreUnavailable means the preference value is missing or malformed.
	// Callers treat it as "auto-hide off".
	ErrStoreUnavailable = errors.New("taskbar preference unavailable")

	// ErrShellUnavailable means the taskbar window could not be found.
	// The next trigger retries.
	ErrShellUnavailable = errors.New("taskbar window not found")

	// ErrEnumeration means one window's properties could not be read during a sweep.
	ErrEnumeration = errors.New("window could not be inspected")

	// ErrUnsupportedPlatform is returned by platform adapters outside Windows.
	ErrUnsupportedPlatform = errors.New("platform has no supported taskbar shell")
)
