// Package main is the CLI entry point for hidebar.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/hidebar/internal/config"
	"github.com/eliteGoblin/focusd/hidebar/internal/daemon"
	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
	"github.com/eliteGoblin/focusd/hidebar/internal/infra"
	"github.com/eliteGoblin/focusd/hidebar/internal/tray"
	"github.com/eliteGoblin/focusd/hidebar/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hidebar",
	Short: "Keeps the Windows taskbar auto-hidden",
	Long: `hidebar sits in the notification area and puts the taskbar back into
auto-hide mode whenever a display change, monitor input switch, resume from
sleep or session unlock knocks it out. It also dismisses the shell's
"auto-hide toolbar" conflict dialogs.

Running hidebar without a command starts the tray application.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runKeeper,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tray application",
	Long:  `Starts the tray icon, the display watcher and the dialog sweeper. Only one instance runs per user.`,
	RunE:  runKeeper,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip taskbar auto-hide",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPreferences(func(prefs domain.PreferenceStore) error {
			enabled, err := prefs.Toggle()
			if err != nil {
				return err
			}
			fmt.Printf("Auto-hide: %s\n", onOff(enabled))
			return nil
		})
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn taskbar auto-hide on",
	RunE:  func(cmd *cobra.Command, args []string) error { return setPreference(true) },
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn taskbar auto-hide off",
	RunE:  func(cmd *cobra.Command, args []string) error { return setPreference(false) },
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show auto-hide, shell and startup status",
	Long:  `Shows the persisted auto-hide preference, whether the taskbar exists, the startup shortcut and any running hidebar instance. Use --json for machine-readable output.`,
	RunE:  runStatus,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Dismiss taskbar conflict dialogs once",
	RunE:  runSweep,
}

var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Manage the per-user startup shortcut",
}

var startupInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Start hidebar when you sign in",
	RunE:  runStartupInstall,
}

var startupUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop starting hidebar when you sign in",
	RunE:  runStartupUninstall,
}

var startupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the startup shortcut exists",
	RunE:  runStartupStatus,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the settings file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	RunE:  runConfigInit,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configFlag  string
	debugFlag   bool
	jsonOutput  bool
	forceConfig bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Settings file (default %APPDATA%\\hidebar\\config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log at debug level")
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	configInitCmd.Flags().BoolVar(&forceConfig, "force", false, "Overwrite an existing settings file")

	startupCmd.AddCommand(startupInstallCmd, startupUninstallCmd, startupStatusCmd)
	configCmd.AddCommand(configPathCmd, configInitCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(startupCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func runKeeper(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	logger := createLogger(cfg)
	defer func() { _ = logger.Sync() }()

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	pm := infra.NewProcessManager()
	others, err := infra.OtherInstances(pm, filepath.Base(execPath))
	if err != nil {
		logger.Warn("instance check failed", zap.Error(err))
	}
	if len(others) > 0 {
		fmt.Printf("hidebar is already running (pid %d)\n", others[0])
		return nil
	}

	shell := infra.NewShellController(pm, logger)
	prefs := infra.NewPreferenceStore(infra.NewTaskbarSettingsValue(), shell, logger)
	sweeper := usecase.NewDialogSweeper(infra.NewWindowEnumerator(), infra.NewWindowCloser(), cfg.DialogRules(), logger)

	policies, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("invalid restoration policies: %w", err)
	}

	status := daemon.NewStatusTracker()
	orchestrator := usecase.NewOrchestrator(
		prefs,
		shell,
		sweeper,
		policies,
		usecase.NewClassifier(cfg.Classifier.InputSwitchWindow.Duration()),
		logger,
		usecase.WithObserver(status),
	)
	keeper := daemon.NewKeeper(
		daemon.KeeperConfigFrom(cfg),
		orchestrator,
		sweeper,
		infra.NewDisplayProbe(),
		infra.NewEventSource(logger),
		logger,
	)

	watcher, err := config.NewWatcher(cfgPath, config.DefaultReloadDelay, logger)
	if err != nil {
		logger.Warn("settings file will not be reloaded", zap.Error(err))
	} else if err := watcher.Start(); err != nil {
		logger.Warn("settings file will not be reloaded", zap.Error(err))
	} else {
		defer func() { _ = watcher.Stop() }()
		keeper.SetConfigUpdates(watcher.Updates())
	}

	startup, err := infra.NewStartupManager(logger)
	if err != nil {
		return fmt.Errorf("failed to locate startup folder: %w", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	keeperDone := make(chan error, 1)
	var t *tray.Tray
	t = tray.New(tray.Options{
		Prefs:    prefs,
		Keeper:   keeper,
		Status:   status,
		Startup:  startup,
		Notifier: infra.NewNotifier(logger),
		ExecPath: execPath,
		Hotkey:   cfg.Hotkey,
		Logger:   logger,
		OnReady: func() {
			go func() {
				keeperDone <- keeper.Run(ctx)
				t.Quit()
			}()
		},
		OnExit: cancel,
	})
	keeper.OnPoll(func(domain.DisplaySnapshot) { t.Refresh() })

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	logger.Info("hidebar starting",
		zap.String("version", Version),
		zap.String("config", cfgPath),
		zap.Int("pid", pm.GetCurrentPID()))

	t.Run()
	cancel()

	select {
	case err := <-keeperDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-time.After(5 * time.Second):
		logger.Warn("keeper did not stop in time")
	}
	return nil
}

func setPreference(enabled bool) error {
	return withPreferences(func(prefs domain.PreferenceStore) error {
		if err := prefs.Set(enabled); err != nil {
			return err
		}
		fmt.Printf("Auto-hide: %s\n", onOff(enabled))
		return nil
	})
}

func withPreferences(fn func(prefs domain.PreferenceStore) error) error {
	logger := createCLILogger()
	defer func() { _ = logger.Sync() }()

	shell := infra.NewShellController(infra.NewProcessManager(), logger)
	return fn(infra.NewPreferenceStore(infra.NewTaskbarSettingsValue(), shell, logger))
}

// statusReport is the --json shape of the status command.
type statusReport struct {
	AutoHide       *domain.AutoHidePreference `json:"auto_hide"`
	PreferenceErr  string                     `json:"preference_error,omitempty"`
	ShellAvailable bool                       `json:"shell_available"`
	Startup        bool                       `json:"startup_installed"`
	ShortcutPath   string                     `json:"shortcut_path,omitempty"`
	RunningPIDs    []int                      `json:"running_pids"`
	ConfigPath     string                     `json:"config_path"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := createCLILogger()
	defer func() { _ = logger.Sync() }()

	pm := infra.NewProcessManager()
	shell := infra.NewShellController(pm, logger)
	prefs := infra.NewPreferenceStore(infra.NewTaskbarSettingsValue(), shell, logger)

	report := statusReport{ShellAvailable: shell.Available(), RunningPIDs: []int{}}
	if enabled, err := prefs.Get(); err != nil {
		report.PreferenceErr = err.Error()
	} else {
		report.AutoHide = &domain.AutoHidePreference{Enabled: enabled}
	}
	if startup, err := infra.NewStartupManager(logger); err == nil {
		report.Startup = startup.IsInstalled()
		report.ShortcutPath = startup.GetShortcutPath()
	}
	if execPath, err := os.Executable(); err == nil {
		if pids, err := infra.OtherInstances(pm, filepath.Base(execPath)); err == nil {
			report.RunningPIDs = pids
		}
	}
	report.ConfigPath, _ = resolveConfigPath()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println("\n=== hidebar Status ===")
	if report.AutoHide != nil {
		fmt.Printf("Auto-hide: %s\n", onOff(report.AutoHide.Enabled))
	} else {
		fmt.Printf("Auto-hide: unknown (%s)\n", report.PreferenceErr)
	}
	if report.ShellAvailable {
		fmt.Println("Taskbar: present")
	} else {
		fmt.Println("Taskbar: not found")
	}
	if len(report.RunningPIDs) > 0 {
		fmt.Printf("Keeper: RUNNING (pid %d)\n", report.RunningPIDs[0])
	} else {
		fmt.Println("Keeper: NOT RUNNING")
	}
	if report.Startup {
		fmt.Printf("Startup: enabled (%s)\n", report.ShortcutPath)
	} else {
		fmt.Println("Startup: disabled")
	}
	fmt.Printf("Settings: %s\n", report.ConfigPath)
	fmt.Println("======================")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := createCLILogger()
	defer func() { _ = logger.Sync() }()

	sweeper := usecase.NewDialogSweeper(infra.NewWindowEnumerator(), infra.NewWindowCloser(), cfg.DialogRules(), logger)
	n := sweeper.Sweep()
	fmt.Printf("Dismissed %d conflict dialog(s)\n", n)
	return nil
}

func runStartupInstall(cmd *cobra.Command, args []string) error {
	startup, err := newCLIStartupManager()
	if err != nil {
		return err
	}
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	if err := startup.Install(execPath); err != nil {
		return fmt.Errorf("failed to create startup shortcut: %w", err)
	}
	fmt.Printf("Startup shortcut created: %s\n", startup.GetShortcutPath())
	return nil
}

func runStartupUninstall(cmd *cobra.Command, args []string) error {
	startup, err := newCLIStartupManager()
	if err != nil {
		return err
	}
	if err := startup.Uninstall(); err != nil {
		return fmt.Errorf("failed to remove startup shortcut: %w", err)
	}
	fmt.Println("Startup shortcut removed.")
	return nil
}

func runStartupStatus(cmd *cobra.Command, args []string) error {
	startup, err := newCLIStartupManager()
	if err != nil {
		return err
	}
	if startup.IsInstalled() {
		fmt.Printf("Startup: enabled (%s)\n", startup.GetShortcutPath())
	} else {
		fmt.Println("Startup: disabled")
	}
	return nil
}

func newCLIStartupManager() (domain.StartupManager, error) {
	startup, err := infra.NewStartupManager(createCLILogger())
	if err != nil {
		return nil, fmt.Errorf("failed to locate startup folder: %w", err)
	}
	return startup, nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !forceConfig {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote default settings to %s\n", path)
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
		return
	}
	fmt.Printf("hidebar version %s\n", Version)
	fmt.Printf("  Commit:     %s\n", Commit)
	fmt.Printf("  Build time: %s\n", BuildTime)
}

func resolveConfigPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to locate settings directory: %w", err)
	}
	return path, nil
}

func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// createLogger writes the debug log next to the executable unless the
// settings file names another path.
func createLogger(cfg *config.Config) *zap.Logger {
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = "debug.log"
		if execPath, err := os.Executable(); err == nil {
			logPath = filepath.Join(filepath.Dir(execPath), "debug.log")
		}
	}

	level := cfg.LogLevel()
	if debugFlag {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{logPath}
	zc.ErrorOutputPaths = []string{logPath, "stderr"}
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

// createCLILogger logs one-shot commands to stderr, quiet unless --debug.
func createCLILogger() *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	if !debugFlag {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
