// Package policy holds the restoration schedules and the dialog matching table.
// Both are data: defaults live here and the config file may override them.
package policy

import (
	"fmt"
	"time"
)

// Policy names.
const (
	NameNormal              = "normal"
	NameInputSwitch         = "input-switch"
	NameScreenBlankRecovery = "screen-blank-recovery"
	NameDirect              = "direct"
)

// Restoration is the fixed step sequence a cycle runs.
// The shell's acknowledgement is not observable, so the repeat counts and
// delays are the reliability mechanism.
type Restoration struct {
	Name            string
	Sweeps          int           // Dialog sweeps before applying
	SweepPause      time.Duration // Pause between consecutive sweeps
	PreApplyDelay   time.Duration // Wait after sweeping, before the first apply
	ApplyRepeats    int           // Number of apply calls
	InterApplyDelay time.Duration // Wait between applies
}

// Normal handles a single benign topology change.
func Normal() Restoration {
	return Restoration{
		Name:          NameNormal,
		Sweeps:        1,
		PreApplyDelay: 1000 * time.Millisecond,
		ApplyRepeats:  1,
	}
}

// InputSwitch handles the burst of changes an input-source switch produces.
func InputSwitch() Restoration {
	return Restoration{
		Name:            NameInputSwitch,
		Sweeps:          1,
		PreApplyDelay:   200 * time.Millisecond,
		ApplyRepeats:    2,
		InterApplyDelay: 200 * time.Millisecond,
	}
}

// ScreenBlankRecovery handles the display coming back after blanking.
func ScreenBlankRecovery() Restoration {
	return Restoration{
		Name:            NameScreenBlankRecovery,
		Sweeps:          2,
		PreApplyDelay:   100 * time.Millisecond,
		ApplyRepeats:    3,
		InterApplyDelay: 200 * time.Millisecond,
	}
}

// Direct is the one-shot used for resume, unlock and manual re-apply.
// These triggers do not provoke shell conflicts, so there is no sweep and no delay.
func Direct() Restoration {
	return Restoration{
		Name:         NameDirect,
		ApplyRepeats: 1,
	}
}

// Validate rejects schedules that could never apply or would wait backwards.
func (r Restoration) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("policy name is empty")
	}
	if r.Sweeps < 0 {
		return fmt.Errorf("policy %s: sweeps must be >= 0, got %d", r.Name, r.Sweeps)
	}
	if r.ApplyRepeats < 1 {
		return fmt.Errorf("policy %s: apply_repeats must be >= 1, got %d", r.Name, r.ApplyRepeats)
	}
	if r.SweepPause < 0 || r.PreApplyDelay < 0 || r.InterApplyDelay < 0 {
		return fmt.Errorf("policy %s: delays must not be negative", r.Name)
	}
	return nil
}

// TotalWait is the upper bound of time a cycle spends sleeping under this policy.
func (r Restoration) TotalWait() time.Duration {
	total := r.PreApplyDelay
	if r.Sweeps > 1 {
		total += time.Duration(r.Sweeps-1) * r.SweepPause
	}
	if r.ApplyRepeats > 1 {
		total += time.Duration(r.ApplyRepeats-1) * r.InterApplyDelay
	}
	return total
}
