package history

import (
	"fmt"

	"github.com/newthinker/cryptosignals/internal/core"
)

// Open returns the store selected by driver ("memory" or "sqlite").
func Open(driver, dsn string, maxSize int) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(maxSize), nil
	case "sqlite":
		return NewSQLiteStore(dsn)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown history driver: %s", driver))
	}
}

// Format renders a notification the way the history dialog lists it.
func Format(n core.Notification) string {
	return n.Title + "\n" + n.Body
}
