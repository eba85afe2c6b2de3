//go:build !windows

package infra

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

func startupDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "autostart"), nil
}

func createShortcut(string, string) error {
	return errors.Wrap(domain.ErrUnsupportedPlatform, "startup shortcut")
}
