package policy

import (
	"strings"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// DialogClass is the window class of standard Win32 dialog boxes.
const DialogClass = "#32770"

// DialogRules decides which windows are shell conflict dialogs.
type DialogRules struct {
	// Classes restricts matches to these window classes (case-insensitive).
	// Empty means any class.
	Classes []string
	// Patterns are case-insensitive substrings of the window title or text.
	Patterns []string
}

// DefaultDialogRules returns the known shell conflict messages.
func DefaultDialogRules() DialogRules {
	return DialogRules{
		Classes: []string{DialogClass},
		Patterns: []string{
			"already hidden",
			"can't have two taskbars",
			"cannot have two taskbars",
			"one auto-hide toolbar per side",
			"auto-hide toolbar",
			"already an auto-hide",
		},
	}
}

// Matches reports whether the candidate is one of the dialogs to dismiss.
func (r DialogRules) Matches(c domain.DialogCandidate) bool {
	if len(r.Classes) > 0 && !containsFold(r.Classes, c.ClassName) {
		return false
	}
	text := strings.ToLower(c.Text)
	for _, p := range r.Patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
