package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHotkeyInvalid is returned when the hotkey string cannot be parsed.
var ErrHotkeyInvalid = errors.New("hotkey: invalid key combination")

// Hotkey is a parsed combo such as "ctrl+alt+h".
type Hotkey struct {
	Modifiers []string // Canonical names: ctrl, shift, alt, win
	Key       string   // a-z, 0-9 or f1-f12
}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"win":     "win",
	"super":   "win",
}

// ParseHotkey validates a combo string. At least one modifier is required so
// the shortcut never swallows plain typing.
func ParseHotkey(combo string) (Hotkey, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	if len(parts) < 2 {
		return Hotkey{}, fmt.Errorf("%w: %q (need at least one modifier)", ErrHotkeyInvalid, combo)
	}
	keyPart := strings.TrimSpace(parts[len(parts)-1])
	if !validKey(keyPart) {
		return Hotkey{}, fmt.Errorf("%w: unknown key %q", ErrHotkeyInvalid, keyPart)
	}

	var h Hotkey
	seen := map[string]bool{}
	for _, m := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[strings.TrimSpace(m)]
		if !ok {
			return Hotkey{}, fmt.Errorf("%w: unknown modifier %q", ErrHotkeyInvalid, m)
		}
		if seen[mod] {
			continue
		}
		seen[mod] = true
		h.Modifiers = append(h.Modifiers, mod)
	}
	h.Key = keyPart
	return h, nil
}

// String returns the canonical "ctrl+alt+h" form.
func (h Hotkey) String() string {
	return strings.Join(append(append([]string(nil), h.Modifiers...), h.Key), "+")
}

func validKey(k string) bool {
	if len(k) == 1 {
		c := k[0]
		return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	}
	if strings.HasPrefix(k, "f") {
		var n int
		if _, err := fmt.Sscanf(k, "f%d", &n); err == nil && fmt.Sprintf("f%d", n) == k {
			return n >= 1 && n <= 12
		}
	}
	return false
}
