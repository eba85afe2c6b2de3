//go:build windows

package infra

import (
	"unsafe"

	"github.com/lxn/win"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

var (
	modshell32          = windows.NewLazySystemDLL("shell32.dll")
	procSHAppBarMessage = modshell32.NewProc("SHAppBarMessage")
)

const (
	abmSetState     = 0x0000000A
	absAutoHide     = 0x1
	wmSettingChange = 0x001A
)

// appBarData mirrors APPBARDATA.
type appBarData struct {
	cbSize           uint32
	hWnd             win.HWND
	uCallbackMessage uint32
	uEdge            uint32
	rc               win.RECT
	lParam           uintptr
}

func findTaskbar() win.HWND {
	return win.FindWindow(windows.StringToUTF16Ptr(taskbarClass), nil)
}

func taskbarPresent() bool {
	return findTaskbar() != 0
}

// setAutoHide sends ABM_SETSTATE to the taskbar and then WM_SETTINGCHANGE so it repaints.
// Neither call reports whether the shell honoured the request.
func setAutoHide(enabled bool) error {
	hwnd := findTaskbar()
	if hwnd == 0 {
		return errors.Wrap(domain.ErrShellUnavailable, taskbarClass)
	}

	abd := appBarData{hWnd: hwnd}
	abd.cbSize = uint32(unsafe.Sizeof(abd))
	if enabled {
		abd.lParam = absAutoHide
	}

	if err := procSHAppBarMessage.Find(); err != nil {
		return errors.Wrap(err, "SHAppBarMessage")
	}
	procSHAppBarMessage.Call(abmSetState, uintptr(unsafe.Pointer(&abd)))

	win.SendMessage(hwnd, wmSettingChange, 0, 0)
	return nil
}
