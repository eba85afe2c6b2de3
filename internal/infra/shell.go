package infra

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// ShellProcessName is the process hosting the taskbar.
const ShellProcessName = "explorer.exe"

// taskbarClass is the window class of the primary taskbar.
const taskbarClass = "Shell_TrayWnd"

// ShellControllerImpl implements domain.ShellController.
type ShellControllerImpl struct {
	processes domain.ProcessManager
	logger    *zap.Logger
}

// NewShellController creates the taskbar controller.
// processes is only consulted to explain why the taskbar is missing.
func NewShellController(processes domain.ProcessManager, logger *zap.Logger) domain.ShellController {
	return &ShellControllerImpl{
		processes: processes,
		logger:    logger,
	}
}

// Apply sets the taskbar auto-hide state and broadcasts the settings change.
func (s *ShellControllerImpl) Apply(enabled bool) error {
	if err := setAutoHide(enabled); err != nil {
		if errors.Is(err, domain.ErrShellUnavailable) {
			return s.explain(err)
		}
		return err
	}
	s.logger.Debug("taskbar state applied", zap.Bool("auto_hide", enabled))
	return nil
}

// Available reports whether the taskbar window exists.
func (s *ShellControllerImpl) Available() bool {
	return taskbarPresent()
}

// explain adds the shell process state to a missing-taskbar error.
func (s *ShellControllerImpl) explain(err error) error {
	if s.processes == nil {
		return err
	}
	pids, perr := s.processes.FindByName(ShellProcessName)
	if perr != nil {
		return err
	}
	if len(pids) == 0 {
		return errors.Wrap(err, ShellProcessName+" is not running")
	}
	return errors.Wrap(err, ShellProcessName+" is running, taskbar not created yet")
}

// Ensure ShellControllerImpl implements domain.ShellController.
var _ domain.ShellController = (*ShellControllerImpl)(nil)
