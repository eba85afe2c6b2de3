//go:build !windows

package infra

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

func TestShellController_UnavailableExplainsShellProcess(t *testing.T) {
	tests := []struct {
		name     string
		pids     []int
		findErr  error
		contains string
	}{
		{"shell not running", nil, nil, "explorer.exe is not running"},
		{"shell starting", []int{4242}, nil, "taskbar not created yet"},
		{"process lookup fails", nil, errors.New("denied"), "Shell_TrayWnd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := newMockProcessManager()
			pm.byName[ShellProcessName] = tt.pids
			pm.findErr = tt.findErr
			shell := NewShellController(pm, zap.NewNop())

			err := shell.Apply(true)

			assert.True(t, errors.Is(err, domain.ErrShellUnavailable))
			assert.Contains(t, err.Error(), tt.contains)
			assert.False(t, shell.Available())
		})
	}
}
