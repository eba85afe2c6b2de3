package usecase

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
	"github.com/eliteGoblin/focusd/hidebar/internal/policy"
)

// DialogSweeperImpl implements domain.DialogSweeper.
// It holds no state besides the rule table, so concurrent sweeps from the
// timer and from a restoration cycle may overlap.
type DialogSweeperImpl struct {
	windows domain.WindowEnumerator
	closer  domain.WindowCloser
	rules   atomic.Pointer[policy.DialogRules]
	logger  *zap.Logger
}

// NewDialogSweeper creates a sweeper over the given window source.
func NewDialogSweeper(
	windows domain.WindowEnumerator,
	closer domain.WindowCloser,
	rules policy.DialogRules,
	logger *zap.Logger,
) *DialogSweeperImpl {
	s := &DialogSweeperImpl{
		windows: windows,
		closer:  closer,
		logger:  logger,
	}
	s.SetRules(rules)
	return s
}

// SetRules replaces the matching table.
func (s *DialogSweeperImpl) SetRules(rules policy.DialogRules) {
	s.rules.Store(&rules)
}

// Rules returns the active matching table.
func (s *DialogSweeperImpl) Rules() policy.DialogRules {
	return *s.rules.Load()
}

// Sweep finds conflict dialogs and tries every closure step on each.
// Closure is not verified; it returns the number of matched windows.
func (s *DialogSweeperImpl) Sweep() int {
	rules := s.Rules()

	var matched []domain.DialogCandidate
	err := s.windows.Enumerate(func(c domain.DialogCandidate, err error) {
		if err != nil {
			s.logger.Debug("skipping window",
				zap.Uintptr("hwnd", c.Handle),
				zap.Error(err))
			return
		}
		if rules.Matches(c) {
			matched = append(matched, c)
		}
	})
	if err != nil {
		s.logger.Warn("window enumeration failed", zap.Error(err))
	}

	for _, c := range matched {
		s.dismiss(c)
	}

	return len(matched)
}

// dismiss runs close request, default button and Escape in order.
// Each step runs even if an earlier one reported success.
func (s *DialogSweeperImpl) dismiss(c domain.DialogCandidate) {
	s.logger.Info("dismissing shell dialog",
		zap.Uintptr("hwnd", c.Handle),
		zap.String("class", c.ClassName),
		zap.String("text", c.Text))

	if err := s.closer.RequestClose(c.Handle); err != nil {
		s.logger.Debug("close request failed", zap.Uintptr("hwnd", c.Handle), zap.Error(err))
	}

	pressed, err := s.closer.PressDefault(c.Handle)
	if err != nil {
		s.logger.Debug("default button failed", zap.Uintptr("hwnd", c.Handle), zap.Error(err))
	} else if !pressed {
		s.logger.Debug("no default button", zap.Uintptr("hwnd", c.Handle))
	}

	if err := s.closer.SendEscape(c.Handle); err != nil {
		s.logger.Debug("escape failed", zap.Uintptr("hwnd", c.Handle), zap.Error(err))
	}
}

// Ensure DialogSweeperImpl implements domain.DialogSweeper.
var _ domain.DialogSweeper = (*DialogSweeperImpl)(nil)
