//go:build windows

package tray

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.design/x/hotkey"

	"github.com/eliteGoblin/focusd/hidebar/internal/config"
)

var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModAlt,
	"win":   hotkey.ModWin,
}

var keyMap = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// registerHotkey binds combo globally and calls fn on every key-down until
// the returned stop function runs.
func registerHotkey(combo config.Hotkey, fn func(), logger *zap.Logger) (func(), error) {
	key, ok := keyMap[combo.Key]
	if !ok {
		return nil, errors.Wrapf(config.ErrHotkeyInvalid, "unmapped key %q", combo.Key)
	}
	mods := make([]hotkey.Modifier, 0, len(combo.Modifiers))
	for _, m := range combo.Modifiers {
		mod, ok := modMap[m]
		if !ok {
			return nil, errors.Wrapf(config.ErrHotkeyInvalid, "unmapped modifier %q", m)
		}
		mods = append(mods, mod)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, errors.Wrap(err, "register hotkey")
	}

	done := make(chan struct{})
	go func() {
		keydown := hk.Keydown()
		for {
			select {
			case _, ok := <-keydown:
				if !ok {
					return
				}
				logger.Debug("hotkey pressed", zap.Stringer("combo", combo))
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			if err := hk.Unregister(); err != nil {
				logger.Debug("hotkey unregister failed", zap.Error(err))
			}
		})
	}, nil
}
