//go:build !windows

package infra

import (
	"github.com/pkg/errors"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// WindowEnumeratorImpl has no windows to list off Windows.
type WindowEnumeratorImpl struct{}

// NewWindowEnumerator creates the top-level window enumerator.
func NewWindowEnumerator() domain.WindowEnumerator {
	return &WindowEnumeratorImpl{}
}

// Enumerate always fails with ErrUnsupportedPlatform.
func (e *WindowEnumeratorImpl) Enumerate(func(domain.DialogCandidate, error)) error {
	return errors.Wrap(domain.ErrUnsupportedPlatform, "window enumeration")
}

// WindowCloserImpl has no windows to close off Windows.
type WindowCloserImpl struct{}

// NewWindowCloser creates the dialog closer.
func NewWindowCloser() domain.WindowCloser {
	return &WindowCloserImpl{}
}

func (c *WindowCloserImpl) RequestClose(uintptr) error {
	return domain.ErrUnsupportedPlatform
}

func (c *WindowCloserImpl) PressDefault(uintptr) (bool, error) {
	return false, domain.ErrUnsupportedPlatform
}

func (c *WindowCloserImpl) SendEscape(uintptr) error {
	return domain.ErrUnsupportedPlatform
}
