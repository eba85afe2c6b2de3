package infra

import (
	"strings"
)

const (
	dialogClass = "#32770"
	staticClass = "Static"
	buttonClass = "Button"
)

// childWindow is one control inside a dialog.
type childWindow struct {
	Handle uintptr
	Class  string
}

// textReader returns a control's text, or "" when it cannot be read.
type textReader func(handle uintptr) string

// dialogText joins the caption with the text of every static control.
// read must work on controls owned by other processes.
func dialogText(caption string, children []childWindow, read textReader) string {
	parts := []string{caption}
	for _, c := range children {
		if !strings.EqualFold(c.Class, staticClass) {
			continue
		}
		if text := strings.TrimSpace(read(c.Handle)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// findButton returns the first button labelled label, ignoring '&' accelerators and case.
func findButton(children []childWindow, label string, read textReader) (uintptr, bool) {
	for _, c := range children {
		if !strings.EqualFold(c.Class, buttonClass) {
			continue
		}
		text := strings.TrimSpace(strings.ReplaceAll(read(c.Handle), "&", ""))
		if strings.EqualFold(text, label) {
			return c.Handle, true
		}
	}
	return 0, false
}
