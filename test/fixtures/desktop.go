// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"context"
	"strings"
	"sync"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// FakeDesktop simulates the parts of a Windows desktop the keeper touches:
// the taskbar, the monitor layout, top-level dialogs and OS notifications.
type FakeDesktop struct {
	mu       sync.Mutex
	monitors []domain.MonitorRect
	probeErr error
	dialogs  map[uintptr]domain.DialogCandidate
	applies  []bool
	shellErr error
	closed   []uintptr

	events     chan domain.TriggerKind
	eventsOnce sync.Once
}

// NewFakeDesktop creates a desktop showing the given monitors.
func NewFakeDesktop(monitors ...domain.MonitorRect) *FakeDesktop {
	return &FakeDesktop{
		monitors: monitors,
		dialogs:  make(map[uintptr]domain.DialogCandidate),
		events:   make(chan domain.TriggerKind, 16),
	}
}

// SetMonitors replaces the layout the next probe returns.
func (d *FakeDesktop) SetMonitors(monitors ...domain.MonitorRect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.monitors = monitors
	d.probeErr = nil
}

// FailProbe makes the monitor probe return err.
func (d *FakeDesktop) FailProbe(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.probeErr = err
}

// ShowConflictDialog opens a shell auto-hide conflict dialog.
func (d *FakeDesktop) ShowConflictDialog(handle uintptr) {
	d.ShowWindow(domain.DialogCandidate{
		Handle:    handle,
		ClassName: "#32770",
		Text:      "Taskbar - There is already an auto-hide toolbar on this side of your screen.",
	})
}

// ShowWindow opens any top-level window.
func (d *FakeDesktop) ShowWindow(w domain.DialogCandidate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialogs[w.Handle] = w
}

// OpenWindows returns the number of windows still open.
func (d *FakeDesktop) OpenWindows() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dialogs)
}

// Emit delivers an OS notification.
func (d *FakeDesktop) Emit(kind domain.TriggerKind) {
	d.events <- kind
}

// Applies returns every value sent to the taskbar.
func (d *FakeDesktop) Applies() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]bool(nil), d.applies...)
}

// FailShell makes every apply return err.
func (d *FakeDesktop) FailShell(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shellErr = err
}

// Apply implements domain.ShellController.
func (d *FakeDesktop) Apply(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shellErr != nil {
		return d.shellErr
	}
	d.applies = append(d.applies, enabled)
	return nil
}

// Available implements domain.ShellController.
func (d *FakeDesktop) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shellErr == nil
}

// Monitors implements domain.DisplayProbe.
func (d *FakeDesktop) Monitors() ([]domain.MonitorRect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.probeErr != nil {
		return nil, d.probeErr
	}
	return append([]domain.MonitorRect(nil), d.monitors...), nil
}

// Enumerate implements domain.WindowEnumerator.
func (d *FakeDesktop) Enumerate(visit func(c domain.DialogCandidate, err error)) error {
	d.mu.Lock()
	windows := make([]domain.DialogCandidate, 0, len(d.dialogs))
	for _, w := range d.dialogs {
		windows = append(windows, w)
	}
	d.mu.Unlock()

	for _, w := range windows {
		visit(w, nil)
	}
	return nil
}

// RequestClose implements domain.WindowCloser. Conflict dialogs close on request.
func (d *FakeDesktop) RequestClose(handle uintptr) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.dialogs[handle]; ok && strings.Contains(w.Text, "auto-hide") {
		delete(d.dialogs, handle)
		d.closed = append(d.closed, handle)
	}
	return nil
}

// PressDefault implements domain.WindowCloser.
func (d *FakeDesktop) PressDefault(uintptr) (bool, error) { return false, nil }

// SendEscape implements domain.WindowCloser.
func (d *FakeDesktop) SendEscape(uintptr) error { return nil }

// Start implements domain.EventSource.
func (d *FakeDesktop) Start(context.Context) error { return nil }

// Events implements domain.EventSource.
func (d *FakeDesktop) Events() <-chan domain.TriggerKind { return d.events }

// Close implements domain.EventSource.
func (d *FakeDesktop) Close() error {
	d.eventsOnce.Do(func() { close(d.events) })
	return nil
}

// Ensure FakeDesktop implements every desktop port.
var (
	_ domain.ShellController  = (*FakeDesktop)(nil)
	_ domain.DisplayProbe     = (*FakeDesktop)(nil)
	_ domain.WindowEnumerator = (*FakeDesktop)(nil)
	_ domain.WindowCloser     = (*FakeDesktop)(nil)
	_ domain.EventSource      = (*FakeDesktop)(nil)
)
