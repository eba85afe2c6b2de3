//go:build !windows

package infra

import (
	"github.com/pkg/errors"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// DisplayProbeImpl cannot read monitors off Windows.
type DisplayProbeImpl struct{}

// NewDisplayProbe creates the monitor layout reader.
func NewDisplayProbe() domain.DisplayProbe {
	return &DisplayProbeImpl{}
}

// Monitors always fails with ErrUnsupportedPlatform.
func (p *DisplayProbeImpl) Monitors() ([]domain.MonitorRect, error) {
	return nil, errors.Wrap(domain.ErrUnsupportedPlatform, "display enumeration")
}
