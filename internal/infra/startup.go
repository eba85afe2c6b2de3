package infra

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// ShortcutName is the file placed in the per-user startup folder.
const ShortcutName = "hidebar.lnk"

// StartupManagerImpl implements domain.StartupManager with a shortcut file.
type StartupManagerImpl struct {
	dir    string
	logger *zap.Logger
}

// NewStartupManager creates a manager for the current user's startup folder.
func NewStartupManager(logger *zap.Logger) (domain.StartupManager, error) {
	dir, err := startupDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolve startup folder")
	}
	return NewStartupManagerWithDir(dir, logger), nil
}

// NewStartupManagerWithDir creates a manager over dir (for testing).
func NewStartupManagerWithDir(dir string, logger *zap.Logger) domain.StartupManager {
	return &StartupManagerImpl{dir: dir, logger: logger}
}

// Install creates the shortcut pointing at execPath, replacing any existing one.
func (m *StartupManagerImpl) Install(execPath string) error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return err
	}
	abs, err := filepath.Abs(execPath)
	if err != nil {
		return err
	}
	if err := createShortcut(m.GetShortcutPath(), abs); err != nil {
		return errors.Wrap(err, "create startup shortcut")
	}
	m.logger.Info("startup shortcut installed",
		zap.String("path", m.GetShortcutPath()),
		zap.String("target", abs))
	return nil
}

// Uninstall removes the shortcut. A missing shortcut is not an error.
func (m *StartupManagerImpl) Uninstall() error {
	err := os.Remove(m.GetShortcutPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		m.logger.Info("startup shortcut removed", zap.String("path", m.GetShortcutPath()))
	}
	return nil
}

// IsInstalled checks if the shortcut exists.
func (m *StartupManagerImpl) IsInstalled() bool {
	_, err := os.Stat(m.GetShortcutPath())
	return err == nil
}

// GetShortcutPath returns the shortcut file path.
func (m *StartupManagerImpl) GetShortcutPath() string {
	return filepath.Join(m.dir, ShortcutName)
}

// Ensure StartupManagerImpl implements domain.StartupManager.
var _ domain.StartupManager = (*StartupManagerImpl)(nil)
