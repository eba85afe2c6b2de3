//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/daemon"
	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
	"github.com/eliteGoblin/focusd/hidebar/internal/infra"
	"github.com/eliteGoblin/focusd/hidebar/internal/policy"
	"github.com/eliteGoblin/focusd/hidebar/internal/usecase"
	"github.com/eliteGoblin/focusd/hidebar/test/fixtures"
)

var (
	laptop   = domain.MonitorRect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	external = domain.MonitorRect{Left: 1920, Top: 0, Right: 4480, Bottom: 1440}
)

// settingsBlob returns a StuckRects3-shaped blob with auto-hide set as given.
func settingsBlob(autoHide bool) []byte {
	data := make([]byte, 48)
	data[0] = 0x30
	data[8] = 0x02
	if autoHide {
		data[8] |= 0x08
	}
	return data
}

// fastPolicies keeps each schedule's shape with delays scaled down.
func fastPolicies() *policy.Registry {
	scale := func(r policy.Restoration) policy.Restoration {
		r.SweepPause /= 100
		r.PreApplyDelay /= 100
		r.InterApplyDelay /= 100
		return r
	}
	reg, err := policy.NewRegistryWithPolicies(
		scale(policy.Normal()),
		scale(policy.InputSwitch()),
		scale(policy.ScreenBlankRecovery()),
		scale(policy.Direct()),
	)
	Expect(err).NotTo(HaveOccurred())
	return reg
}

type reportLog struct {
	mu      sync.Mutex
	reports []domain.CycleReport
}

func (l *reportLog) add(r domain.CycleReport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports = append(l.reports, r)
}

func (l *reportLog) policies() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.reports))
	for i, r := range l.reports {
		names[i] = r.Cycle.Policy
	}
	return names
}

func (l *reportLog) last() domain.CycleReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.reports) == 0 {
		return domain.CycleReport{}
	}
	return l.reports[len(l.reports)-1]
}

var _ = Describe("Taskbar keeper", func() {
	var (
		desktop *fixtures.FakeDesktop
		value   *infra.MemoryValue
		prefs   domain.PreferenceStore
		status  *daemon.StatusTracker
		reports *reportLog
		keeper  *daemon.Keeper
		cancel  context.CancelFunc
		done    chan error
	)

	start := func(autoHide bool) {
		desktop = fixtures.NewFakeDesktop(laptop)
		value = infra.NewMemoryValue(settingsBlob(autoHide))
		logger := zap.NewNop()
		prefs = infra.NewPreferenceStore(value, desktop, logger)

		status = daemon.NewStatusTracker()
		reports = &reportLog{}
		status.Subscribe(reports.add)

		sweeper := usecase.NewDialogSweeper(desktop, desktop, policy.DefaultDialogRules(), logger)
		orchestrator := usecase.NewOrchestrator(prefs, desktop, sweeper, fastPolicies(), nil, logger,
			usecase.WithObserver(status))
		keeper = daemon.NewKeeper(daemon.KeeperConfig{
			DisplayPollInterval: 20 * time.Millisecond,
			DialogSweepInterval: 20 * time.Millisecond,
		}, orchestrator, sweeper, desktop, desktop, logger)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- keeper.Run(ctx) }()
	}

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	Context("with auto-hide enabled", func() {
		BeforeEach(func() { start(true) })

		It("restores auto-hide after a monitor is plugged in", func() {
			desktop.SetMonitors(laptop, external)

			Eventually(reports.policies).Should(ContainElement(policy.NameNormal))
			Expect(desktop.Applies()).To(ContainElement(true))
			Expect(reports.last().Icon).To(Equal(domain.IconDown))
		})

		It("treats a second change shortly after as an input switch", func() {
			desktop.SetMonitors(laptop, external)
			Eventually(reports.policies).Should(HaveLen(1))

			desktop.SetMonitors(laptop)

			Eventually(reports.policies).Should(Equal([]string{policy.NameNormal, policy.NameInputSwitch}))
			Expect(reports.last().Applied).To(Equal(2))
		})

		It("holds off while the screen is blank and recovers afterwards", func() {
			desktop.FailProbe(errors.New("no monitors"))
			Consistently(reports.policies, 150*time.Millisecond).Should(BeEmpty())
			Expect(desktop.Applies()).To(BeEmpty())

			desktop.SetMonitors(laptop)

			Eventually(reports.policies).Should(Equal([]string{policy.NameScreenBlankRecovery}))
			Expect(reports.last().Applied).To(Equal(3))
		})

		It("restores immediately on resume", func() {
			desktop.Emit(domain.TriggerPowerResume)

			Eventually(reports.policies).Should(Equal([]string{policy.NameDirect}))
			Expect(reports.last().Cycle.Trigger).To(Equal(domain.TriggerPowerResume))
		})

		It("dismisses conflict dialogs on its own timer", func() {
			desktop.ShowConflictDialog(7)
			desktop.ShowWindow(domain.DialogCandidate{Handle: 8, ClassName: "Notepad", Text: "notes"})

			Eventually(desktop.OpenWindows).Should(Equal(1))
			Consistently(desktop.OpenWindows, 100*time.Millisecond).Should(Equal(1))
		})

		It("re-applies on request", func() {
			Eventually(keeper.Reapply).Should(BeTrue())

			Eventually(reports.policies).Should(Equal([]string{policy.NameDirect}))
			Expect(reports.last().Cycle.Trigger).To(Equal(domain.TriggerManual))
		})
	})

	Context("with auto-hide disabled", func() {
		BeforeEach(func() { start(false) })

		It("runs the cycle without forcing auto-hide", func() {
			desktop.SetMonitors(laptop, external)

			Eventually(reports.policies).Should(HaveLen(1))
			Expect(reports.last().Applied).To(BeZero())
			Expect(reports.last().Icon).To(Equal(domain.IconUp))
			Expect(desktop.Applies()).To(BeEmpty())
		})

		It("picks up the preference once the user turns it on", func() {
			Expect(prefs.Set(true)).To(Succeed())
			Expect(infra.AutoHideBit(value.Bytes())).To(BeTrue())

			desktop.Emit(domain.TriggerSessionUnlock)

			Eventually(reports.policies).Should(HaveLen(1))
			Expect(reports.last().Applied).To(Equal(1))
			Expect(desktop.Applies()).To(Equal([]bool{true, true}))
		})
	})
})
