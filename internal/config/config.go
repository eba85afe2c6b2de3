// Package config loads the optional TOML settings file and watches it for changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/hidebar/internal/policy"
)

// Duration is a time.Duration read from strings like "200ms", "2s" or "1500" (milliseconds).
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '200ms', '2s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the settings file layout.
// Loaded from %APPDATA%\hidebar\config.toml
type Config struct {
	Intervals  IntervalsConfig  `toml:"intervals"`
	Classifier ClassifierConfig `toml:"classifier"`
	Policies   PoliciesConfig   `toml:"policies"`
	Dialogs    DialogsConfig    `toml:"dialogs"`
	Hotkey     HotkeyConfig     `toml:"hotkey"`
	Log        LogConfig        `toml:"log"`
}

// IntervalsConfig holds the keeper's timer periods.
type IntervalsConfig struct {
	DisplayPoll Duration `toml:"display_poll"`
	DialogSweep Duration `toml:"dialog_sweep"`
}

// ClassifierConfig tunes display change classification.
type ClassifierConfig struct {
	InputSwitchWindow Duration `toml:"input_switch_window"`
}

// PoliciesConfig holds one schedule per restoration policy.
type PoliciesConfig struct {
	Normal              PolicyConfig `toml:"normal"`
	InputSwitch         PolicyConfig `toml:"input-switch"`
	ScreenBlankRecovery PolicyConfig `toml:"screen-blank-recovery"`
	Direct              PolicyConfig `toml:"direct"`
}

// PolicyConfig is one restoration schedule.
type PolicyConfig struct {
	Sweeps          int      `toml:"sweeps"`
	SweepPause      Duration `toml:"sweep_pause"`
	PreApplyDelay   Duration `toml:"pre_apply_delay"`
	ApplyRepeats    int      `toml:"apply_repeats"`
	InterApplyDelay Duration `toml:"inter_apply_delay"`
}

// DialogsConfig is the conflict dialog matching table.
type DialogsConfig struct {
	Classes  []string `toml:"classes"`
	Patterns []string `toml:"patterns"`
}

// HotkeyConfig configures the global toggle shortcut.
type HotkeyConfig struct {
	Enabled bool   `toml:"enabled"`
	Combo   string `toml:"combo"` // e.g. "ctrl+alt+h"
}

// LogConfig configures the debug log.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // Empty means debug.log next to the executable
}

func fromPolicy(r policy.Restoration) PolicyConfig {
	return PolicyConfig{
		Sweeps:          r.Sweeps,
		SweepPause:      Duration(r.SweepPause),
		PreApplyDelay:   Duration(r.PreApplyDelay),
		ApplyRepeats:    r.ApplyRepeats,
		InterApplyDelay: Duration(r.InterApplyDelay),
	}
}

// Restoration converts the schedule into a named policy.
func (p PolicyConfig) Restoration(name string) policy.Restoration {
	return policy.Restoration{
		Name:            name,
		Sweeps:          p.Sweeps,
		SweepPause:      p.SweepPause.Duration(),
		PreApplyDelay:   p.PreApplyDelay.Duration(),
		ApplyRepeats:    p.ApplyRepeats,
		InterApplyDelay: p.InterApplyDelay.Duration(),
	}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	rules := policy.DefaultDialogRules()
	return &Config{
		Intervals: IntervalsConfig{
			DisplayPoll: Duration(2 * time.Second),
			DialogSweep: Duration(1 * time.Second),
		},
		Classifier: ClassifierConfig{
			InputSwitchWindow: Duration(5 * time.Second),
		},
		Policies: PoliciesConfig{
			Normal:              fromPolicy(policy.Normal()),
			InputSwitch:         fromPolicy(policy.InputSwitch()),
			ScreenBlankRecovery: fromPolicy(policy.ScreenBlankRecovery()),
			Direct:              fromPolicy(policy.Direct()),
		},
		Dialogs: DialogsConfig{
			Classes:  rules.Classes,
			Patterns: rules.Patterns,
		},
		Hotkey: HotkeyConfig{
			Enabled: true,
			Combo:   "ctrl+alt+h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the path to the settings file.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "hidebar", "config.toml"), nil
}

// LoadConfig loads the configuration from path.
// If the file doesn't exist, returns the default configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig overlays TOML data on the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to path, creating the directory.
func SaveConfig(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Intervals.DisplayPoll <= 0 {
		return fmt.Errorf("intervals.display_poll must be positive, got %s", c.Intervals.DisplayPoll.Duration())
	}
	if c.Intervals.DialogSweep <= 0 {
		return fmt.Errorf("intervals.dialog_sweep must be positive, got %s", c.Intervals.DialogSweep.Duration())
	}
	if c.Classifier.InputSwitchWindow <= 0 {
		return fmt.Errorf("classifier.input_switch_window must be positive, got %s", c.Classifier.InputSwitchWindow.Duration())
	}

	for _, p := range c.RestorationPolicies() {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	if len(c.Dialogs.Patterns) == 0 {
		return fmt.Errorf("dialogs.patterns must not be empty")
	}

	if c.Hotkey.Enabled {
		if _, err := ParseHotkey(c.Hotkey.Combo); err != nil {
			return fmt.Errorf("hotkey.combo: %w", err)
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}

	return nil
}

// RestorationPolicies returns the four configured schedules.
func (c *Config) RestorationPolicies() []policy.Restoration {
	return []policy.Restoration{
		c.Policies.Normal.Restoration(policy.NameNormal),
		c.Policies.InputSwitch.Restoration(policy.NameInputSwitch),
		c.Policies.ScreenBlankRecovery.Restoration(policy.NameScreenBlankRecovery),
		c.Policies.Direct.Restoration(policy.NameDirect),
	}
}

// Registry builds the policy registry for the orchestrator.
func (c *Config) Registry() (*policy.Registry, error) {
	return policy.NewRegistryWithPolicies(c.RestorationPolicies()...)
}

// DialogRules returns the matching table for the sweeper.
func (c *Config) DialogRules() policy.DialogRules {
	return policy.DialogRules{
		Classes:  append([]string(nil), c.Dialogs.Classes...),
		Patterns: append([]string(nil), c.Dialogs.Patterns...),
	}
}

// LogLevel returns the configured level, defaulting to info.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
