//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// NotifierImpl writes notices to the log off Windows.
type NotifierImpl struct {
	logger *zap.Logger
}

// NewNotifier creates the user notice adapter.
func NewNotifier(logger *zap.Logger) domain.Notifier {
	return &NotifierImpl{logger: logger}
}

// Info logs an informational notice.
func (n *NotifierImpl) Info(title, message string) {
	n.logger.Info(message, zap.String("title", title))
}

// Warn logs a warning notice.
func (n *NotifierImpl) Warn(title, message string) {
	n.logger.Warn(message, zap.String("title", title))
}
