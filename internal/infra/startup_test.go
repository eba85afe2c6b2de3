package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartupManager_Paths(t *testing.T) {
	dir := t.TempDir()
	m := NewStartupManagerWithDir(dir, zap.NewNop())

	assert.Equal(t, filepath.Join(dir, ShortcutName), m.GetShortcutPath())
	assert.False(t, m.IsInstalled())
}

func TestStartupManager_UninstallRemovesShortcut(t *testing.T) {
	dir := t.TempDir()
	m := NewStartupManagerWithDir(dir, zap.NewNop())
	require.NoError(t, os.WriteFile(m.GetShortcutPath(), []byte("lnk"), 0644))
	assert.True(t, m.IsInstalled())

	require.NoError(t, m.Uninstall())

	assert.False(t, m.IsInstalled())
}

func TestStartupManager_UninstallMissingIsNoop(t *testing.T) {
	m := NewStartupManagerWithDir(t.TempDir(), zap.NewNop())

	assert.NoError(t, m.Uninstall())
	assert.NoError(t, m.Uninstall())
}

func TestNewStartupManager_ResolvesFolder(t *testing.T) {
	m, err := NewStartupManager(zap.NewNop())
	if err != nil {
		t.Skipf("no startup folder in this environment: %v", err)
	}
	assert.Equal(t, ShortcutName, filepath.Base(m.GetShortcutPath()))
}
