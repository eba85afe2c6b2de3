package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/hidebar/internal/policy"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	c := DefaultConfig()

	require.NoError(t, c.Validate())
	assert.Equal(t, 2*time.Second, c.Intervals.DisplayPoll.Duration())
	assert.Equal(t, time.Second, c.Intervals.DialogSweep.Duration())
	assert.Equal(t, 5*time.Second, c.Classifier.InputSwitchWindow.Duration())
	assert.Equal(t, "ctrl+alt+h", c.Hotkey.Combo)
	assert.Equal(t, zapcore.InfoLevel, c.LogLevel())
}

func TestDefaultConfig_MatchesPolicyDefaults(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, []policy.Restoration{
		policy.Normal(),
		policy.InputSwitch(),
		policy.ScreenBlankRecovery(),
		policy.Direct(),
	}, c.RestorationPolicies())
	assert.Equal(t, policy.DefaultDialogRules(), c.DialogRules())
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"200ms", 200 * time.Millisecond, false},
		{"2s", 2 * time.Second, false},
		{"1500", 1500 * time.Millisecond, false},
		{"0", 0, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestParseConfig_OverlaysDefaults(t *testing.T) {
	data := []byte(`
[intervals]
display_poll = "3s"

[classifier]
input_switch_window = "4s"

[policies.input-switch]
apply_repeats = 4

[dialogs]
patterns = ["two taskbars"]

[log]
level = "debug"
`)

	c, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, c.Intervals.DisplayPoll.Duration())
	assert.Equal(t, time.Second, c.Intervals.DialogSweep.Duration(), "unset keys keep defaults")
	assert.Equal(t, 4*time.Second, c.Classifier.InputSwitchWindow.Duration())
	assert.Equal(t, []string{"two taskbars"}, c.Dialogs.Patterns)
	assert.Equal(t, zapcore.DebugLevel, c.LogLevel())

	sw := c.Policies.InputSwitch.Restoration(policy.NameInputSwitch)
	assert.Equal(t, 4, sw.ApplyRepeats)
	assert.Equal(t, 200*time.Millisecond, sw.PreApplyDelay, "unset policy fields keep defaults")

	reg, err := c.Registry()
	require.NoError(t, err)
	got, ok := reg.Get(policy.NameInputSwitch)
	require.True(t, ok)
	assert.Equal(t, 4, got.ApplyRepeats)
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad toml", `[intervals`},
		{"bad duration", "[intervals]\ndisplay_poll = \"later\""},
		{"zero poll", "[intervals]\ndisplay_poll = \"0\""},
		{"zero repeats", "[policies.normal]\napply_repeats = 0"},
		{"negative sweeps", "[policies.screen-blank-recovery]\nsweeps = -1"},
		{"no patterns", "[dialogs]\npatterns = []"},
		{"empty combo", "[hotkey]\ncombo = \"\""},
		{"bad level", "[log]\nlevel = \"loud\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestSaveConfig_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hidebar", "config.toml")
	c := DefaultConfig()
	c.Policies.Normal.PreApplyDelay = Duration(750 * time.Millisecond)
	c.Hotkey.Enabled = false

	require.NoError(t, SaveConfig(path, c))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, c, loaded)
}

func TestConfigPath(t *testing.T) {
	path, err := ConfigPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	assert.Equal(t, "config.toml", filepath.Base(path))
	assert.Equal(t, "hidebar", filepath.Base(filepath.Dir(path)))
}

func TestWatcher_PublishesValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	w, err := NewWatcher(path, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[intervals]\ndialog_sweep = \"5s\"\n"), 0600))

	select {
	case c := <-w.Updates():
		assert.Equal(t, 5*time.Second, c.Intervals.DialogSweep.Duration())
	case <-time.After(5 * time.Second):
		t.Fatal("no config update after write")
	}
}

func TestWatcher_IgnoresInvalidFileAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	w, err := NewWatcher(path, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0600))
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0600))

	select {
	case c := <-w.Updates():
		t.Fatalf("unexpected update: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.toml"), 0, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Start(), "start after stop is a no-op")
}
