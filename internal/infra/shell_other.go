//go:build !windows

package infra

import (
	"github.com/pkg/errors"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

func taskbarPresent() bool {
	return false
}

func setAutoHide(bool) error {
	return errors.Wrap(domain.ErrShellUnavailable, taskbarClass)
}
