//go:build windows

package infra

import (
	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

const (
	mbIconWarning     = 0x00000030
	mbIconInformation = 0x00000040
	mbSetForeground   = 0x00010000
	mbTopMost         = 0x00040000
)

// NotifierImpl shows message boxes without blocking the caller.
type NotifierImpl struct {
	logger *zap.Logger
}

// NewNotifier creates the user notice adapter.
func NewNotifier(logger *zap.Logger) domain.Notifier {
	return &NotifierImpl{logger: logger}
}

// Info shows an informational notice.
func (n *NotifierImpl) Info(title, message string) {
	n.show(title, message, mbIconInformation)
}

// Warn shows a warning notice.
func (n *NotifierImpl) Warn(title, message string) {
	n.show(title, message, mbIconWarning)
}

func (n *NotifierImpl) show(title, message string, icon uint32) {
	n.logger.Debug("showing notice", zap.String("title", title), zap.String("message", message))
	go win.MessageBox(0,
		windows.StringToUTF16Ptr(message),
		windows.StringToUTF16Ptr(title),
		icon|mbSetForeground|mbTopMost)
}

// Ensure NotifierImpl implements domain.Notifier.
var _ domain.Notifier = (*NotifierImpl)(nil)
