//go:build windows

package infra

import (
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

var (
	monitorMu    sync.Mutex
	monitorVisit func(h win.HMONITOR)
	monitorProc  = windows.NewCallback(func(h win.HMONITOR, _ win.HDC, _ *win.RECT, _ uintptr) uintptr {
		monitorVisit(h)
		return 1
	})
)

// DisplayProbeImpl implements domain.DisplayProbe with EnumDisplayMonitors.
type DisplayProbeImpl struct{}

// NewDisplayProbe creates the monitor layout reader.
func NewDisplayProbe() domain.DisplayProbe {
	return &DisplayProbeImpl{}
}

// Monitors returns every monitor rectangle in enumeration order.
// A monitor whose info cannot be read is reported as a zero rectangle.
func (p *DisplayProbeImpl) Monitors() ([]domain.MonitorRect, error) {
	monitorMu.Lock()
	defer monitorMu.Unlock()

	var rects []domain.MonitorRect
	monitorVisit = func(h win.HMONITOR) {
		var mi win.MONITORINFO
		mi.CbSize = uint32(unsafe.Sizeof(mi))
		if !win.GetMonitorInfo(h, &mi) {
			rects = append(rects, domain.MonitorRect{})
			return
		}
		rects = append(rects, domain.MonitorRect{
			Left:   mi.RcMonitor.Left,
			Top:    mi.RcMonitor.Top,
			Right:  mi.RcMonitor.Right,
			Bottom: mi.RcMonitor.Bottom,
		})
	}
	defer func() { monitorVisit = nil }()

	if err := procEnumDisplayMonitors.Find(); err != nil {
		return nil, errors.Wrap(err, "EnumDisplayMonitors")
	}
	if r, _, callErr := procEnumDisplayMonitors.Call(0, 0, monitorProc, 0); r == 0 {
		return nil, errors.Wrap(callErr, "EnumDisplayMonitors failed")
	}
	return rects, nil
}

// Ensure DisplayProbeImpl implements domain.DisplayProbe.
var _ domain.DisplayProbe = (*DisplayProbeImpl)(nil)
