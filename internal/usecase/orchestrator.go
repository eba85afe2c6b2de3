// Package usecase contains application business logic.
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
	"github.com/eliteGoblin/focusd/hidebar/internal/policy"
)

// EngineState is the orchestrator's top-level state.
type EngineState int

const (
	StateIdle EngineState = iota
	StateHandling
)

// String returns the string representation of EngineState.
func (s EngineState) String() string {
	if s == StateHandling {
		return "handling"
	}
	return "idle"
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSleeper replaces the wait function (tests record instead of waiting).
func WithSleeper(s Sleeper) OrchestratorOption {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// WithObserver registers the receiver of cycle reports.
func WithObserver(obs domain.CycleObserver) OrchestratorOption {
	return func(o *Orchestrator) { o.observer = obs }
}

// Orchestrator is the restoration state machine.
// All mutable engine state (Idle/Handling, the active cycle, the classifier
// latch and the last classified snapshot) is owned here under one mutex.
type Orchestrator struct {
	prefs    domain.PreferenceStore
	shell    domain.ShellController
	sweeper  domain.DialogSweeper
	observer domain.CycleObserver
	logger   *zap.Logger
	sleep    Sleeper
	now      func() time.Time

	mu           sync.Mutex
	state        EngineState
	cycle        *domain.RestorationCycle
	classifier   *Classifier
	policies     *policy.Registry
	lastSnapshot *domain.DisplaySnapshot
	lastChangeAt time.Time

	wg sync.WaitGroup
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(
	prefs domain.PreferenceStore,
	shell domain.ShellController,
	sweeper domain.DialogSweeper,
	policies *policy.Registry,
	classifier *Classifier,
	logger *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if policies == nil {
		policies = policy.NewRegistry()
	}
	if classifier == nil {
		classifier = NewClassifier(DefaultInputSwitchWindow)
	}
	o := &Orchestrator{
		prefs:      prefs,
		shell:      shell,
		sweeper:    sweeper,
		logger:     logger,
		sleep:      SleepContext,
		now:        time.Now,
		classifier: classifier,
		policies:   policies,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Prime records the baseline layout without triggering a restoration.
func (o *Orchestrator) Prime(snapshot domain.DisplaySnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastSnapshot = &snapshot
}

// HandleTrigger admits the trigger if no cycle is active and starts a cycle
// on its own goroutine. Triggers arriving while a cycle runs are dropped,
// not queued. Returns true if a cycle was started.
func (o *Orchestrator) HandleTrigger(ctx context.Context, trigger domain.Trigger) bool {
	if trigger.At.IsZero() {
		trigger.At = o.now()
	}

	o.mu.Lock()
	if o.state == StateHandling {
		active := o.cycle.ID
		o.mu.Unlock()
		o.logger.Debug("trigger dropped, restoration in progress",
			zap.String("trigger", string(trigger.Kind)),
			zap.String("active_cycle", active))
		return false
	}

	cycle, pol, ok := o.admitLocked(trigger)
	if !ok {
		o.mu.Unlock()
		return false
	}

	o.state = StateHandling
	o.cycle = cycle
	o.wg.Add(1)
	o.mu.Unlock()

	go o.run(ctx, *cycle, pol)
	return true
}

// admitLocked classifies the trigger and picks the schedule.
// Must be called with o.mu held and the engine idle.
func (o *Orchestrator) admitLocked(trigger domain.Trigger) (*domain.RestorationCycle, policy.Restoration, bool) {
	cycle := &domain.RestorationCycle{
		Trigger:        trigger.Kind,
		Classification: domain.ClassificationNormal,
		StartedAt:      trigger.At,
	}

	if !trigger.Kind.IsDisplay() {
		pol := o.policies.ForDirect()
		cycle.ID = ulid.Make().String()
		cycle.Policy = pol.Name
		return cycle, pol, true
	}

	if trigger.Snapshot == nil {
		o.logger.Warn("display trigger without snapshot", zap.String("trigger", string(trigger.Kind)))
		return nil, policy.Restoration{}, false
	}
	current := *trigger.Snapshot

	if trigger.Kind == domain.TriggerDisplayPoll {
		if o.lastSnapshot == nil {
			o.lastSnapshot = &current
			return nil, policy.Restoration{}, false
		}
		if o.lastSnapshot.SameLayout(current) {
			return nil, policy.Restoration{}, false
		}
	}

	result := o.classifier.Classify(o.lastSnapshot, current, o.lastChangeAt, trigger.At)
	o.lastSnapshot = &current
	o.lastChangeAt = trigger.At

	if result.Suppressed {
		o.logger.Info("display blanked, restoration suppressed",
			zap.String("trigger", string(trigger.Kind)),
			zap.Int("monitors", current.MonitorCount))
		return nil, policy.Restoration{}, false
	}

	pol := o.policies.ForClassification(result.Classification)
	cycle.ID = ulid.Make().String()
	cycle.Classification = result.Classification
	cycle.Policy = pol.Name
	return cycle, pol, true
}

// run executes one cycle. The engine returns to Idle on every exit path.
func (o *Orchestrator) run(ctx context.Context, cycle domain.RestorationCycle, pol policy.Restoration) {
	report := domain.CycleReport{Cycle: cycle}
	logger := o.logger.With(
		zap.String("cycle", cycle.ID),
		zap.String("trigger", string(cycle.Trigger)),
		zap.Stringer("classification", cycle.Classification),
		zap.String("policy", pol.Name))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("restoration cycle panicked", zap.String("panic", fmt.Sprint(r)))
		}

		o.mu.Lock()
		if o.cycle != nil {
			report.Cycle.AttemptsMade = o.cycle.AttemptsMade
		}
		o.state = StateIdle
		o.cycle = nil
		o.mu.Unlock()

		report.FinishedAt = o.now()
		logger.Info("restoration cycle finished",
			zap.Int("applied", report.Applied),
			zap.Int("failures", report.Failures),
			zap.Int("dialogs", report.DialogsMatched),
			zap.Stringer("icon", report.Icon))

		if o.observer != nil {
			o.observer.CycleFinished(report)
		}
		o.wg.Done()
	}()

	logger.Info("restoration cycle started")

	for i := 0; i < pol.Sweeps; i++ {
		if i > 0 && pol.SweepPause > 0 {
			if err := o.sleep(ctx, pol.SweepPause); err != nil {
				logger.Debug("cycle aborted", zap.Error(err))
				return
			}
		}
		report.DialogsMatched += o.sweeper.Sweep()
	}

	if err := o.sleep(ctx, pol.PreApplyDelay); err != nil {
		logger.Debug("cycle aborted", zap.Error(err))
		return
	}

	report.PreferenceEnabled = o.readPreference(logger)
	report.Icon = domain.IconFor(report.PreferenceEnabled)
	for i := 0; i < pol.ApplyRepeats && report.PreferenceEnabled; i++ {
		if i > 0 {
			if err := o.sleep(ctx, pol.InterApplyDelay); err != nil {
				logger.Debug("cycle aborted", zap.Error(err))
				return
			}
			// The user may have toggled off mid-cycle; never apply a stale value.
			if report.PreferenceEnabled = o.readPreference(logger); !report.PreferenceEnabled {
				report.Icon = domain.IconUp
				break
			}
		}

		o.mu.Lock()
		o.cycle.AttemptsMade++
		o.mu.Unlock()

		if err := o.shell.Apply(true); err != nil {
			report.Failures++
			logger.Warn("apply failed", zap.Int("attempt", i+1), zap.Error(err))
			continue
		}
		report.Applied++
	}

	if !report.PreferenceEnabled {
		logger.Debug("auto-hide not requested, applies skipped")
	}
}

// readPreference returns the persisted flag; an unavailable store counts as off.
func (o *Orchestrator) readPreference(logger *zap.Logger) bool {
	enabled, err := o.prefs.Get()
	if err != nil {
		logger.Warn("preference unavailable, treating auto-hide as off", zap.Error(err))
		return false
	}
	return enabled
}

// State returns the engine state and a copy of the active cycle, if any.
func (o *Orchestrator) State() (EngineState, *domain.RestorationCycle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cycle == nil {
		return o.state, nil
	}
	c := *o.cycle
	return o.state, &c
}

// BlankLatched reports whether the classifier considers the display blanked.
func (o *Orchestrator) BlankLatched() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.classifier.Latched()
}

// SetPolicies swaps the restoration schedules; a running cycle keeps its own.
func (o *Orchestrator) SetPolicies(policies *policy.Registry) {
	if policies == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.policies = policies
}

// SetInputSwitchWindow changes the classifier window.
func (o *Orchestrator) SetInputSwitchWindow(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.classifier.SetInputSwitchWindow(d)
}

// Wait blocks until every in-flight cycle has returned to Idle.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
