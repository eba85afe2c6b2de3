// Package tray is the notification-area shell around the keeper: icon, menu and hotkey.
package tray

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/config"
	"github.com/eliteGoblin/focusd/hidebar/internal/daemon"
	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

//go:embed icons/up.ico
var iconUp []byte

//go:embed icons/down.ico
var iconDown []byte

// Options wires the tray to the rest of the application.
type Options struct {
	Prefs    domain.PreferenceStore
	Keeper   *daemon.Keeper
	Status   *daemon.StatusTracker
	Startup  domain.StartupManager
	Notifier domain.Notifier
	ExecPath string
	Hotkey   config.HotkeyConfig
	Logger   *zap.Logger
	OnReady  func()
	OnExit   func()
}

// Tray owns the icon and menu. Run must be called from the main goroutine.
type Tray struct {
	opts   Options
	logger *zap.Logger

	mu         sync.Mutex
	icon       domain.IconState
	iconSet    bool
	statusItem *systray.MenuItem
	totalsItem *systray.MenuItem
	toggleItem *systray.MenuItem
	startItem  *systray.MenuItem

	stopHotkey func()
	quit       chan struct{}
	quitOnce   sync.Once
}

// New creates the tray.
func New(opts Options) *Tray {
	return &Tray{
		opts:   opts,
		logger: opts.Logger,
		quit:   make(chan struct{}),
	}
}

// Run shows the tray icon and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the icon and makes Run return.
func (t *Tray) Quit() {
	t.quitOnce.Do(func() {
		close(t.quit)
		systray.Quit()
	})
}

func (t *Tray) onReady() {
	enabled := t.readPreference()

	systray.SetTitle("hidebar")
	t.setIcon(domain.IconFor(enabled))
	systray.SetTooltip(t.opts.Status.Tooltip(enabled))

	t.statusItem = systray.AddMenuItem(t.opts.Status.Line(time.Now()), "")
	t.statusItem.Disable()
	t.totalsItem = systray.AddMenuItem(t.opts.Status.Summary(), "")
	t.totalsItem.Disable()
	systray.AddSeparator()

	t.toggleItem = systray.AddMenuItemCheckbox("Auto-hide taskbar", "Toggle taskbar auto-hide", enabled)
	reapply := systray.AddMenuItem("Re-apply now", "Restore auto-hide immediately")
	sweep := systray.AddMenuItem("Sweep dialogs now", "Close taskbar conflict dialogs")
	systray.AddSeparator()

	t.startItem = systray.AddMenuItemCheckbox("Start with Windows", "Add or remove the startup shortcut", t.opts.Startup.IsInstalled())
	systray.AddSeparator()
	exit := systray.AddMenuItem("Exit", "Quit hidebar")

	t.opts.Status.Subscribe(t.cycleFinished)
	t.startHotkey()

	go t.menuLoop(reapply, sweep, exit)

	t.logger.Info("tray ready", zap.Bool("auto_hide", enabled))
	if t.opts.OnReady != nil {
		t.opts.OnReady()
	}
}

func (t *Tray) onExit() {
	if t.stopHotkey != nil {
		t.stopHotkey()
	}
	t.logger.Info("tray exited")
}

func (t *Tray) menuLoop(reapply, sweep, exit *systray.MenuItem) {
	for {
		select {
		case <-t.toggleItem.ClickedCh:
			t.Toggle()

		case <-reapply.ClickedCh:
			if !t.opts.Keeper.Reapply() {
				t.logger.Debug("re-apply skipped, restoration in progress")
			}

		case <-sweep.ClickedCh:
			n := t.opts.Keeper.SweepNow()
			t.opts.Notifier.Info("Sweep", fmt.Sprintf("%d conflict %s dismissed.", n, dialogWord(n)))

		case <-t.startItem.ClickedCh:
			t.toggleStartup()

		case <-exit.ClickedCh:
			t.logger.Info("exit requested from tray")
			if t.opts.OnExit != nil {
				t.opts.OnExit()
			}
			t.Quit()
			return

		case <-t.quit:
			return
		}
	}
}

// Toggle flips the auto-hide preference and refreshes the icon.
func (t *Tray) Toggle() {
	enabled, err := t.opts.Prefs.Toggle()
	if err != nil {
		t.logger.Warn("toggle failed", zap.Error(err))
		t.opts.Notifier.Warn("Auto-hide", fmt.Sprintf("Could not change the taskbar setting: %v", err))
	} else {
		t.logger.Info("auto-hide toggled", zap.Bool("enabled", enabled))
	}

	t.setIcon(domain.IconFor(enabled))
	if enabled {
		t.toggleItem.Check()
	} else {
		t.toggleItem.Uncheck()
	}
	systray.SetTooltip(t.opts.Status.Tooltip(enabled))
}

// Refresh updates the status lines; the keeper calls it after every poll.
func (t *Tray) Refresh() {
	t.mu.Lock()
	status, totals := t.statusItem, t.totalsItem
	t.mu.Unlock()
	if status == nil {
		return
	}
	status.SetTitle(t.opts.Status.Line(time.Now()))
	totals.SetTitle(t.opts.Status.Summary())
}

func (t *Tray) cycleFinished(report domain.CycleReport) {
	t.setIcon(report.Icon)
	systray.SetTooltip(t.opts.Status.Tooltip(report.PreferenceEnabled))
	t.Refresh()
}

func (t *Tray) toggleStartup() {
	if t.opts.Startup.IsInstalled() {
		if err := t.opts.Startup.Uninstall(); err != nil {
			t.opts.Notifier.Warn("Startup", fmt.Sprintf("Could not remove the startup shortcut: %v", err))
			return
		}
		t.startItem.Uncheck()
		t.opts.Notifier.Info("Info", "Startup shortcut removed.")
		return
	}

	if err := t.opts.Startup.Install(t.opts.ExecPath); err != nil {
		t.opts.Notifier.Warn("Startup", fmt.Sprintf("Could not create the startup shortcut: %v", err))
		return
	}
	t.startItem.Check()
	t.opts.Notifier.Info("Info", "Startup shortcut created.")
}

func (t *Tray) startHotkey() {
	if !t.opts.Hotkey.Enabled {
		return
	}
	combo, err := config.ParseHotkey(t.opts.Hotkey.Combo)
	if err != nil {
		t.logger.Warn("hotkey disabled", zap.Error(err))
		return
	}
	stop, err := registerHotkey(combo, t.Toggle, t.logger)
	if err != nil {
		t.logger.Warn("hotkey not registered", zap.Stringer("combo", combo), zap.Error(err))
		return
	}
	t.stopHotkey = stop
	t.logger.Info("hotkey registered", zap.Stringer("combo", combo))
}

func (t *Tray) setIcon(state domain.IconState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.iconSet && t.icon == state {
		return
	}
	t.icon, t.iconSet = state, true
	if state == domain.IconDown {
		systray.SetIcon(iconDown)
	} else {
		systray.SetIcon(iconUp)
	}
}

func (t *Tray) readPreference() bool {
	enabled, err := t.opts.Prefs.Get()
	if err != nil {
		t.logger.Warn("taskbar preference unavailable, showing auto-hide off", zap.Error(err))
		return false
	}
	return enabled
}

func dialogWord(n int) string {
	if n == 1 {
		return "dialog"
	}
	return "dialogs"
}
