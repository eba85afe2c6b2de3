//go:build windows

package infra

import (
	"path/filepath"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

func startupDir() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Startup, 0)
}

// createShortcut writes a .lnk through the WScript.Shell automation object.
func createShortcut(path, target string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		oleErr, ok := err.(*ole.OleError)
		if !ok || oleErr.Code() != ole.S_FALSE {
			return errors.Wrap(err, "CoInitializeEx")
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return errors.Wrap(err, "create WScript.Shell")
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return errors.Wrap(err, "query IDispatch")
	}
	defer shell.Release()

	created, err := oleutil.CallMethod(shell, "CreateShortcut", path)
	if err != nil {
		return errors.Wrap(err, "CreateShortcut")
	}
	shortcut := created.ToIDispatch()
	defer shortcut.Release()

	props := []struct {
		name  string
		value string
	}{
		{"TargetPath", target},
		{"WorkingDirectory", filepath.Dir(target)},
		{"Arguments", "run"},
		{"Description", "Keeps the taskbar auto-hidden"},
	}
	for _, p := range props {
		if _, err := oleutil.PutProperty(shortcut, p.name, p.value); err != nil {
			return errors.Wrapf(err, "set %s", p.name)
		}
	}

	if _, err := oleutil.CallMethod(shortcut, "Save"); err != nil {
		return errors.Wrap(err, "save shortcut")
	}
	return nil
}
