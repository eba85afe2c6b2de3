//go:build !windows

package tray

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/config"
	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

func registerHotkey(combo config.Hotkey, _ func(), _ *zap.Logger) (func(), error) {
	return nil, errors.Wrapf(domain.ErrUnsupportedPlatform, "global hotkey %s", combo)
}
