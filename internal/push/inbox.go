package push

import (
	"context"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"go.uber.org/zap"
)

// Modal shows a title/body pair until the user dismisses it.
type Modal interface {
	Show(title, body string)
}

// Recorder stores delivered notifications.
type Recorder interface {
	Add(ctx context.Context, n core.Notification) error
}

// Inbox handles the app being opened from a notification.
type Inbox struct {
	modal    Modal
	recorder Recorder
	now      func() time.Time
	logger   *zap.Logger
}

// NewInbox creates an inbox. recorder may be nil.
func NewInbox(modal Modal, recorder Recorder, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{modal: modal, recorder: recorder, now: time.Now, logger: logger}
}

// Open shows n verbatim when both title and body are present. It reports
// whether the notification was shown.
func (i *Inbox) Open(ctx context.Context, n core.Notification) bool {
	if !n.IsValid() {
		i.logger.Debug("ignoring notification without title or body")
		return false
	}
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = i.now()
	}

	if i.modal != nil {
		i.modal.Show(n.Title, n.Body)
	}

	if i.recorder != nil {
		if err := i.recorder.Add(ctx, n); err != nil {
			i.logger.Warn("recording notification failed", zap.Error(err))
		}
	}
	return true
}
