//go:build windows

package infra

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lxn/win"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

const (
	maxClassNameLen  = 256
	maxWindowTextLen = 512

	wmClose   = 0x0010
	wmKeyDown = 0x0100
	wmKeyUp   = 0x0101
	bmClick   = 0x00F5
	vkEscape  = 0x1B
)

// Callbacks are created once: the runtime caps how many a process may allocate.
// The visit targets are swapped in under the matching mutex.
var (
	topMu    sync.Mutex
	topVisit func(hwnd windows.HWND)
	topProc  = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		topVisit(hwnd)
		return 1
	})

	childMu    sync.Mutex
	childVisit func(hwnd win.HWND) bool
	childProc  = windows.NewCallback(func(hwnd win.HWND, _ uintptr) uintptr {
		if childVisit(hwnd) {
			return 1
		}
		return 0
	})
)

// WindowEnumeratorImpl implements domain.WindowEnumerator over EnumWindows.
type WindowEnumeratorImpl struct{}

// NewWindowEnumerator creates the top-level window enumerator.
func NewWindowEnumerator() domain.WindowEnumerator {
	return &WindowEnumeratorImpl{}
}

// Enumerate visits every top-level window. Dialog windows carry their static text.
func (e *WindowEnumeratorImpl) Enumerate(visit func(c domain.DialogCandidate, err error)) (err error) {
	topMu.Lock()
	defer topMu.Unlock()

	topVisit = func(hwnd windows.HWND) {
		defer func() {
			if r := recover(); r != nil {
				visit(domain.DialogCandidate{Handle: uintptr(hwnd)},
					errors.Wrap(domain.ErrEnumeration, fmt.Sprint(r)))
			}
		}()
		c, derr := describeWindow(hwnd)
		visit(c, derr)
	}
	defer func() { topVisit = nil }()

	if err := windows.EnumWindows(topProc, nil); err != nil {
		return errors.Wrap(domain.ErrEnumeration, err.Error())
	}
	return nil
}

func describeWindow(hwnd windows.HWND) (domain.DialogCandidate, error) {
	c := domain.DialogCandidate{Handle: uintptr(hwnd)}

	class := make([]uint16, maxClassNameLen)
	n, err := windows.GetClassName(hwnd, &class[0], int32(len(class)))
	if err != nil {
		return c, errors.Wrapf(domain.ErrEnumeration, "class name of %#x: %v", uintptr(hwnd), err)
	}
	c.ClassName = windows.UTF16ToString(class[:n])

	caption := windowText(hwnd)
	if c.ClassName == dialogClass {
		c.Text = dialogText(caption, listChildren(win.HWND(hwnd)), controlText)
	} else {
		c.Text = strings.TrimSpace(caption)
	}
	return c, nil
}

// windowText reads a top-level caption. Unreadable text is empty; the class
// name alone identifies the window.
func windowText(hwnd windows.HWND) string {
	buf := make([]uint16, maxWindowTextLen)
	n, err := windows.GetWindowText(hwnd, &buf[0], int32(len(buf)))
	if err != nil || n <= 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func childClass(hwnd win.HWND) string {
	buf := make([]uint16, maxClassNameLen)
	n, err := windows.GetClassName(windows.HWND(hwnd), &buf[0], int32(len(buf)))
	if err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func listChildren(parent win.HWND) []childWindow {
	var children []childWindow
	forEachChild(parent, func(child win.HWND) bool {
		children = append(children, childWindow{Handle: uintptr(child), Class: childClass(child)})
		return true
	})
	return children
}

func forEachChild(parent win.HWND, fn func(child win.HWND) bool) {
	childMu.Lock()
	defer childMu.Unlock()

	childVisit = fn
	defer func() { childVisit = nil }()
	win.EnumChildWindows(parent, childProc, 0)
}

// WindowCloserImpl implements domain.WindowCloser with posted messages.
// Posting never blocks on a hung dialog.
type WindowCloserImpl struct{}

// NewWindowCloser creates the dialog closer.
func NewWindowCloser() domain.WindowCloser {
	return &WindowCloserImpl{}
}

// RequestClose posts WM_CLOSE.
func (c *WindowCloserImpl) RequestClose(handle uintptr) error {
	return post(win.HWND(handle), wmClose, 0, 0)
}

// PressDefault clicks the child "OK" button, if there is one.
func (c *WindowCloserImpl) PressDefault(handle uintptr) (bool, error) {
	ok, found := findButton(listChildren(win.HWND(handle)), "OK", controlText)
	if !found {
		return false, nil
	}
	if err := post(win.HWND(ok), bmClick, 0, 0); err != nil {
		return false, err
	}
	return true, nil
}

// SendEscape posts an Escape key press and release.
func (c *WindowCloserImpl) SendEscape(handle uintptr) error {
	hwnd := win.HWND(handle)
	if err := post(hwnd, wmKeyDown, vkEscape, 0x00010001); err != nil {
		return err
	}
	return post(hwnd, wmKeyUp, vkEscape, 0xC0010001)
}

func post(hwnd win.HWND, msg uint32, wParam, lParam uintptr) error {
	if win.PostMessage(hwnd, msg, wParam, lParam) != 0 {
		return nil
	}
	if err := windows.GetLastError(); err != nil {
		return errors.Wrapf(err, "post %#x to %#x", msg, uintptr(hwnd))
	}
	return errors.Errorf("post %#x to %#x failed", msg, uintptr(hwnd))
}

// Ensure implementations satisfy their interfaces.
var (
	_ domain.WindowEnumerator = (*WindowEnumeratorImpl)(nil)
	_ domain.WindowCloser     = (*WindowCloserImpl)(nil)
)
