//go:build windows

package infra

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// user32 entry points lxn/win does not bind.
var (
	moduser32               = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = moduser32.NewProc("EnumDisplayMonitors")
	procSendMessageTimeoutW = moduser32.NewProc("SendMessageTimeoutW")
)

const (
	wmGetText        = 0x000D
	wmGetTextLength  = 0x000E
	smtoAbortIfHung  = 0x0002
	controlTextLimit = 200 // ms per message to a foreign control
	maxControlText   = 4096
)

// sendMessageTimeout returns the message result and false when the call
// failed or the target window is hung.
func sendMessageTimeout(hwnd uintptr, msg uint32, wParam, lParam uintptr) (uintptr, bool) {
	var result uintptr
	r, _, _ := procSendMessageTimeoutW.Call(
		hwnd,
		uintptr(msg),
		wParam,
		lParam,
		smtoAbortIfHung,
		controlTextLimit,
		uintptr(unsafe.Pointer(&result)),
	)
	return result, r != 0
}

// controlText reads a control's text with WM_GETTEXT, which works across
// processes. A hung or unreadable control reads as "".
func controlText(hwnd uintptr) string {
	n, ok := sendMessageTimeout(hwnd, wmGetTextLength, 0, 0)
	if !ok || n == 0 {
		return ""
	}
	if n > maxControlText {
		n = maxControlText
	}
	buf := make([]uint16, n+1)
	copied, ok := sendMessageTimeout(hwnd, wmGetText, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	if !ok || copied == 0 {
		return ""
	}
	if copied > n {
		copied = n
	}
	return windows.UTF16ToString(buf[:copied])
}
