package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessManager_FindsSelf(t *testing.T) {
	pm := NewProcessManager()
	exe, err := os.Executable()
	require.NoError(t, err)

	pids, err := pm.FindByName(filepath.Base(exe))
	require.NoError(t, err)

	assert.Contains(t, pids, os.Getpid())
	assert.True(t, pm.IsRunning(os.Getpid()))
	assert.False(t, pm.IsRunning(-1))
}

func TestOtherInstances_ExcludesSelf(t *testing.T) {
	pm := newMockProcessManager()
	pm.byName["hidebar.exe"] = []int{pm.self, 100, 200}

	others, err := OtherInstances(pm, "hidebar.exe")
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200}, others)

	pm.byName["hidebar.exe"] = []int{pm.self}
	others, err = OtherInstances(pm, "hidebar.exe")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestOtherInstances_SkipsExitedProcesses(t *testing.T) {
	pm := newMockProcessManager()
	pm.byName["hidebar.exe"] = []int{pm.self, 100, 200}
	pm.exited = map[int]bool{100: true}

	others, err := OtherInstances(pm, "hidebar.exe")
	require.NoError(t, err)
	assert.Equal(t, []int{200}, others)
}

func TestTrimExe(t *testing.T) {
	assert.Equal(t, "explorer", trimExe("explorer.exe"))
	assert.Equal(t, "Explorer", trimExe("Explorer.EXE"))
	assert.Equal(t, "bash", trimExe("bash"))
	assert.Equal(t, ".exe", trimExe(".exe"))
}
