// Package daemon hosts the restoration engine: timers, OS events and config reloads.
package daemon

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/config"
	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
	"github.com/eliteGoblin/focusd/hidebar/internal/policy"
	"github.com/eliteGoblin/focusd/hidebar/internal/usecase"
)

// KeeperConfig holds keeper timer configuration.
type KeeperConfig struct {
	DisplayPollInterval time.Duration // How often to snapshot the monitor layout (default 2s)
	DialogSweepInterval time.Duration // How often to sweep conflict dialogs (default 1s)
}

// DefaultKeeperConfig returns default keeper configuration.
func DefaultKeeperConfig() KeeperConfig {
	return KeeperConfig{
		DisplayPollInterval: 2 * time.Second,
		DialogSweepInterval: 1 * time.Second,
	}
}

// KeeperConfigFrom extracts the timer settings from a loaded config.
func KeeperConfigFrom(c *config.Config) KeeperConfig {
	return KeeperConfig{
		DisplayPollInterval: c.Intervals.DisplayPoll.Duration(),
		DialogSweepInterval: c.Intervals.DialogSweep.Duration(),
	}
}

// RuleSweeper is a dialog sweeper whose matching table can be replaced.
type RuleSweeper interface {
	domain.DialogSweeper
	SetRules(rules policy.DialogRules)
}

// Keeper is the long-running host of the restoration engine.
// It feeds display polls and OS notifications to the orchestrator, sweeps
// dialogs on its own timer and applies config reloads.
type Keeper struct {
	config       KeeperConfig
	orchestrator *usecase.Orchestrator
	sweeper      RuleSweeper
	probe        domain.DisplayProbe
	events       domain.EventSource
	logger       *zap.Logger
	now          func() time.Time

	reloads <-chan *config.Config
	onPoll  func(snapshot domain.DisplaySnapshot)

	mu  sync.Mutex
	ctx context.Context
}

// NewKeeper creates a keeper.
func NewKeeper(
	cfg KeeperConfig,
	orchestrator *usecase.Orchestrator,
	sweeper RuleSweeper,
	probe domain.DisplayProbe,
	events domain.EventSource,
	logger *zap.Logger,
) *Keeper {
	return &Keeper{
		config:       cfg,
		orchestrator: orchestrator,
		sweeper:      sweeper,
		probe:        probe,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// SetConfigUpdates sets the channel of reloaded configs. Call before Run.
func (k *Keeper) SetConfigUpdates(updates <-chan *config.Config) {
	k.reloads = updates
}

// OnPoll registers a hook called after every display poll. Call before Run.
func (k *Keeper) OnPoll(fn func(snapshot domain.DisplaySnapshot)) {
	k.onPoll = fn
}

// Run starts the keeper loop.
// This blocks until context is canceled, then releases every timer and OS
// subscription and waits for the active cycle to finish.
func (k *Keeper) Run(ctx context.Context) error {
	k.mu.Lock()
	k.ctx = ctx
	k.mu.Unlock()

	baseline := k.Snapshot()
	k.orchestrator.Prime(baseline)
	k.logger.Info("keeper started",
		zap.Int("monitors", baseline.MonitorCount),
		zap.String("layout", baseline.LayoutFingerprint),
		zap.Duration("poll_interval", k.config.DisplayPollInterval),
		zap.Duration("sweep_interval", k.config.DialogSweepInterval))

	var events <-chan domain.TriggerKind
	if err := k.events.Start(ctx); err != nil {
		k.logger.Warn("OS notifications unavailable, relying on polling", zap.Error(err))
	} else {
		events = k.events.Events()
	}

	// Set up tickers
	pollTicker := time.NewTicker(k.config.DisplayPollInterval)
	sweepTicker := time.NewTicker(k.config.DialogSweepInterval)

	defer func() {
		pollTicker.Stop()
		sweepTicker.Stop()
		if err := k.events.Close(); err != nil {
			k.logger.Warn("failed to close event source", zap.Error(err))
		}
		k.orchestrator.Wait()

		k.mu.Lock()
		k.ctx = nil
		k.mu.Unlock()
		k.logger.Info("keeper stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			k.logger.Info("keeper stopping")
			return ctx.Err()

		case <-pollTicker.C:
			k.poll(ctx)

		case <-sweepTicker.C:
			k.SweepNow()

		case kind, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			k.handleEvent(ctx, kind)

		case c, ok := <-k.reloads:
			if !ok {
				k.reloads = nil
				continue
			}
			k.apply(c, pollTicker, sweepTicker)
		}
	}
}

// Snapshot reads the current monitor layout. An unreadable layout is degenerate.
func (k *Keeper) Snapshot() domain.DisplaySnapshot {
	at := k.now()
	monitors, err := k.probe.Monitors()
	if err != nil {
		k.logger.Debug("display layout unreadable", zap.Error(err))
		return domain.UnreadableSnapshot(at)
	}
	return domain.NewDisplaySnapshot(at, monitors)
}

// SweepNow runs one dialog sweep and returns the number of matched dialogs.
func (k *Keeper) SweepNow() int {
	n := k.sweeper.Sweep()
	if n > 0 {
		k.logger.Info("conflict dialogs dismissed", zap.Int("count", n))
	}
	return n
}

// Reapply issues a manual restoration. Returns false when the keeper is not
// running or a cycle is already active.
func (k *Keeper) Reapply() bool {
	k.mu.Lock()
	ctx := k.ctx
	k.mu.Unlock()
	if ctx == nil {
		return false
	}
	return k.orchestrator.HandleTrigger(ctx, domain.Trigger{Kind: domain.TriggerManual, At: k.now()})
}

func (k *Keeper) poll(ctx context.Context) {
	snapshot := k.Snapshot()
	k.orchestrator.HandleTrigger(ctx, domain.Trigger{
		Kind:     domain.TriggerDisplayPoll,
		At:       snapshot.Timestamp,
		Snapshot: &snapshot,
	})
	if k.onPoll != nil {
		k.onPoll(snapshot)
	}
}

func (k *Keeper) handleEvent(ctx context.Context, kind domain.TriggerKind) {
	k.logger.Debug("OS notification", zap.String("trigger", string(kind)))

	trigger := domain.Trigger{Kind: kind, At: k.now()}
	if kind.IsDisplay() {
		snapshot := k.Snapshot()
		trigger.At = snapshot.Timestamp
		trigger.Snapshot = &snapshot
	}
	k.orchestrator.HandleTrigger(ctx, trigger)
}

// apply installs a reloaded config. A config whose policies do not build is ignored.
func (k *Keeper) apply(c *config.Config, pollTicker, sweepTicker *time.Ticker) {
	registry, err := c.Registry()
	if err != nil {
		k.logger.Warn("reloaded policies rejected", zap.Error(err))
		return
	}

	k.orchestrator.SetPolicies(registry)
	k.orchestrator.SetInputSwitchWindow(c.Classifier.InputSwitchWindow.Duration())
	k.sweeper.SetRules(c.DialogRules())

	next := KeeperConfigFrom(c)
	if next.DisplayPollInterval != k.config.DisplayPollInterval {
		pollTicker.Reset(next.DisplayPollInterval)
	}
	if next.DialogSweepInterval != k.config.DialogSweepInterval {
		sweepTicker.Reset(next.DialogSweepInterval)
	}
	k.config = next

	k.logger.Info("configuration applied",
		zap.Stringer("policies", registry),
		zap.Duration("poll_interval", next.DisplayPollInterval),
		zap.Duration("sweep_interval", next.DialogSweepInterval))
}
