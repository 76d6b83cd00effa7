// internal/storage/history/interface.go
package history

import (
	"context"

	"github.com/newthinker/cryptosignals/internal/core"
)

// Store defines the interface for notification history persistence.
type Store interface {
	// Add persists a notification and assigns an ID when missing.
	Add(ctx context.Context, n core.Notification) error

	// List returns up to limit notifications, newest first. A limit of
	// zero or less returns everything.
	List(ctx context.Context, limit int) ([]core.Notification, error)

	// Count returns the number of stored notifications.
	Count(ctx context.Context) (int, error)

	// Close releases any underlying resources.
	Close() error
}
