package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewDisplaySnapshot(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		monitors       []MonitorRect
		wantCount      int
		wantPrint      string
		wantDegenerate bool
	}{
		{"single", []MonitorRect{{0, 0, 1920, 1080}}, 1, "1920x1080@0,0", false},
		{"dual", []MonitorRect{{0, 0, 1920, 1080}, {1920, -200, 4480, 1240}}, 2, "1920x1080@0,0;2560x1440@1920,-200", false},
		{"none", nil, 0, "", true},
		{"zero size", []MonitorRect{{0, 0, 1920, 1080}, {1920, 0, 1920, 0}}, 2, "1920x1080@0,0;0x0@1920,0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDisplaySnapshot(at, tt.monitors)
			assert.Equal(t, at, s.Timestamp)
			assert.Equal(t, tt.wantCount, s.MonitorCount)
			assert.Equal(t, tt.wantPrint, s.LayoutFingerprint)
			assert.Equal(t, tt.wantDegenerate, s.Degenerate)
		})
	}
}

func TestSameLayout(t *testing.T) {
	a := NewDisplaySnapshot(time.Now(), []MonitorRect{{0, 0, 1920, 1080}})
	b := NewDisplaySnapshot(time.Now().Add(time.Minute), []MonitorRect{{0, 0, 1920, 1080}})
	moved := NewDisplaySnapshot(time.Now(), []MonitorRect{{1920, 0, 3840, 1080}})

	assert.True(t, a.SameLayout(b), "timestamps do not matter")
	assert.False(t, a.SameLayout(moved))
	assert.True(t, UnreadableSnapshot(time.Now()).SameLayout(NewDisplaySnapshot(time.Now(), nil)))
	assert.False(t, a.SameLayout(UnreadableSnapshot(time.Now())))
}

func TestTriggerKind_IsDisplay(t *testing.T) {
	assert.True(t, TriggerDisplayChanged.IsDisplay())
	assert.True(t, TriggerDisplayPoll.IsDisplay())
	assert.False(t, TriggerPowerResume.IsDisplay())
	assert.False(t, TriggerSessionUnlock.IsDisplay())
	assert.False(t, TriggerManual.IsDisplay())
}

func TestClassification_String(t *testing.T) {
	assert.Equal(t, "normal", ClassificationNormal.String())
	assert.Equal(t, "input-switch", ClassificationInputSwitch.String())
	assert.Equal(t, "screen-blank-recovery", ClassificationScreenBlankRecovery.String())
	assert.Equal(t, "unknown", Classification(42).String())
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, IconDown, IconFor(true))
	assert.Equal(t, IconUp, IconFor(false))
	assert.Equal(t, "down", IconDown.String())
	assert.Equal(t, "up", IconUp.String())
}

func TestErrorsSurviveWrapping(t *testing.T) {
	err := errors.Wrap(ErrShellUnavailable, "explorer.exe is not running")
	assert.True(t, errors.Is(err, ErrShellUnavailable))
	assert.False(t, errors.Is(err, ErrStoreUnavailable))
}
