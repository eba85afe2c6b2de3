//go:build !windows

package infra

import (
	"github.com/pkg/errors"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

type unsupportedValue struct{}

// NewTaskbarSettingsValue returns a value that is always unavailable off Windows.
func NewTaskbarSettingsValue() BinaryValue {
	return unsupportedValue{}
}

func (unsupportedValue) Read() ([]byte, error) {
	return nil, errors.Wrap(domain.ErrUnsupportedPlatform, "taskbar settings")
}

func (unsupportedValue) Write([]byte) error {
	return errors.Wrap(domain.ErrUnsupportedPlatform, "taskbar settings")
}
