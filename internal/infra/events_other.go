//go:build !windows

package infra

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// EventSourceImpl delivers no OS notifications off Windows.
type EventSourceImpl struct {
	logger    *zap.Logger
	events    chan domain.TriggerKind
	closeOnce sync.Once
}

// NewEventSource creates the OS notification source.
func NewEventSource(logger *zap.Logger) domain.EventSource {
	return &EventSourceImpl{
		logger: logger,
		events: make(chan domain.TriggerKind),
	}
}

// Start always fails with ErrUnsupportedPlatform; polling still works.
func (s *EventSourceImpl) Start(context.Context) error {
	return errors.Wrap(domain.ErrUnsupportedPlatform, "power and session notifications")
}

// Events returns a channel that only closes.
func (s *EventSourceImpl) Events() <-chan domain.TriggerKind {
	return s.events
}

// Close closes the event channel.
func (s *EventSourceImpl) Close() error {
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}
