package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

func TestStatusTracker_Empty(t *testing.T) {
	s := NewStatusTracker()

	_, ok := s.Last()
	assert.False(t, ok)
	assert.Equal(t, "No restoration yet", s.Line(time.Now()))
	assert.Equal(t, "0 cycles, 0 dialogs dismissed", s.Summary())
	assert.Equal(t, "hidebar: auto-hide off", s.Tooltip(false))
}

func TestStatusTracker_RecordsAndNotifies(t *testing.T) {
	s := NewStatusTracker()
	var got []domain.CycleReport
	s.Subscribe(func(r domain.CycleReport) { got = append(got, r) })

	finished := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	report := domain.CycleReport{
		Cycle:          domain.RestorationCycle{ID: "c1", Classification: domain.ClassificationInputSwitch},
		FinishedAt:     finished,
		Applied:        1,
		Failures:       1,
		DialogsMatched: 1,
		Icon:           domain.IconDown,
	}
	s.CycleFinished(report)

	assert.Equal(t, []domain.CycleReport{report}, got)
	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, "c1", last.Cycle.ID)

	assert.Equal(t, "Last restore 3 seconds ago (input-switch), 1 failed", s.Line(finished.Add(3*time.Second)))
	assert.Equal(t, "1 cycle, 1 dialog dismissed", s.Summary())
	assert.Equal(t, "hidebar: auto-hide on, last input-switch", s.Tooltip(true))
}

func TestStatusTracker_SummaryUsesThousandsSeparator(t *testing.T) {
	s := NewStatusTracker()
	for i := 0; i < 1200; i++ {
		s.CycleFinished(domain.CycleReport{DialogsMatched: 2})
	}

	assert.Equal(t, "1,200 cycles, 2,400 dialogs dismissed", s.Summary())
}
