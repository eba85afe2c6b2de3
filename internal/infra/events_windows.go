//go:build windows

package infra

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/lxn/win"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

const (
	eventWindowClass = "hidebarEventSink"

	wmDestroy             = 0x0002
	wmDisplayChange       = 0x007E
	wmPowerBroadcast      = 0x0218
	wmWTSSessionChange    = 0x02B1
	pbtAPMResumeSuspend   = 0x0007
	pbtAPMResumeAutomatic = 0x0012
	wtsSessionUnlock      = 0x8
	notifyForThisSession  = 0

	errorClassAlreadyExists = 1410
)

var (
	modwtsapi32                        = windows.NewLazySystemDLL("wtsapi32.dll")
	procWTSRegisterSessionNotification = modwtsapi32.NewProc("WTSRegisterSessionNotification")
	procWTSUnRegisterSessionNotify     = modwtsapi32.NewProc("WTSUnRegisterSessionNotification")

	activeSource  atomic.Pointer[EventSourceImpl]
	eventWndProc  = windows.NewCallback(dispatchEvent)
	registerClass sync.Once
	registerErr   error
)

// EventSourceImpl implements domain.EventSource with a hidden top-level window.
// Message-only windows do not receive broadcasts such as WM_DISPLAYCHANGE.
type EventSourceImpl struct {
	logger    *zap.Logger
	events    chan domain.TriggerKind
	hwnd      atomic.Uintptr
	done      chan struct{}
	started   atomic.Bool
	closeOnce sync.Once
}

// NewEventSource creates the OS notification source.
func NewEventSource(logger *zap.Logger) domain.EventSource {
	return &EventSourceImpl{
		logger: logger,
		events: make(chan domain.TriggerKind, 16),
		done:   make(chan struct{}),
	}
}

// Start creates the sink window on a dedicated OS thread and subscribes to
// session notifications. The window is torn down when ctx ends or Close is called.
func (s *EventSourceImpl) Start(ctx context.Context) error {
	if !activeSource.CompareAndSwap(nil, s) {
		return errors.New("another event source is already running")
	}

	ready := make(chan error, 1)
	go s.loop(ready)
	if err := <-ready; err != nil {
		activeSource.CompareAndSwap(s, nil)
		return err
	}
	s.started.Store(true)

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return nil
}

// Events returns the trigger channel.
func (s *EventSourceImpl) Events() <-chan domain.TriggerKind {
	return s.events
}

// Close destroys the sink window and waits for its thread to exit.
func (s *EventSourceImpl) Close() error {
	s.closeOnce.Do(func() {
		if !s.started.Load() {
			close(s.events)
			return
		}
		if hwnd := win.HWND(s.hwnd.Load()); hwnd != 0 {
			win.PostMessage(hwnd, wmClose, 0, 0)
		}
		<-s.done
	})
	return nil
}

func (s *EventSourceImpl) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hInstance := win.GetModuleHandle(nil)
	className := windows.StringToUTF16Ptr(eventWindowClass)

	registerClass.Do(func() {
		var wc win.WNDCLASSEX
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		wc.LpfnWndProc = eventWndProc
		wc.HInstance = hInstance
		wc.LpszClassName = className
		if win.RegisterClassEx(&wc) == 0 {
			if errno := windows.GetLastError(); errno != windows.Errno(errorClassAlreadyExists) {
				registerErr = lastError("RegisterClassEx", errno)
			}
		}
	})
	if registerErr != nil {
		ready <- registerErr
		return
	}

	hwnd := win.CreateWindowEx(0, className, className, 0, 0, 0, 0, 0, 0, 0, hInstance, nil)
	if hwnd == 0 {
		ready <- lastError("CreateWindowEx", windows.GetLastError())
		return
	}
	s.hwnd.Store(uintptr(hwnd))

	if r, _, err := procWTSRegisterSessionNotification.Call(uintptr(hwnd), notifyForThisSession); r == 0 {
		s.logger.Warn("session notifications unavailable, unlock will not trigger restoration", zap.Error(err))
	}

	ready <- nil
	s.logger.Debug("event sink window created", zap.Uintptr("hwnd", uintptr(hwnd)))

	var msg win.MSG
	for {
		r := win.GetMessage(&msg, 0, 0, 0)
		if r == 0 || r == -1 {
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	activeSource.CompareAndSwap(s, nil)
	close(s.events)
	close(s.done)
	s.logger.Debug("event sink window closed")
}

func lastError(op string, err error) error {
	if err == nil {
		return errors.Errorf("%s failed", op)
	}
	return errors.Wrap(err, op)
}

func (s *EventSourceImpl) emit(kind domain.TriggerKind) {
	select {
	case s.events <- kind:
	default:
		s.logger.Debug("event queue full, dropping", zap.String("trigger", string(kind)))
	}
}

func dispatchEvent(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	s := activeSource.Load()
	if s == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case wmPowerBroadcast:
		if wParam == pbtAPMResumeSuspend || wParam == pbtAPMResumeAutomatic {
			s.emit(domain.TriggerPowerResume)
		}
		return 1
	case wmWTSSessionChange:
		if wParam == wtsSessionUnlock {
			s.emit(domain.TriggerSessionUnlock)
		}
		return 0
	case wmDisplayChange:
		s.emit(domain.TriggerDisplayChanged)
		return 0
	case wmClose:
		procWTSUnRegisterSessionNotify.Call(uintptr(hwnd))
		win.DestroyWindow(hwnd)
		return 0
	case wmDestroy:
		s.hwnd.Store(0)
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// Ensure EventSourceImpl implements domain.EventSource.
var _ domain.EventSource = (*EventSourceImpl)(nil)
