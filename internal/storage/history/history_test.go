package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ImplementsStore(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
}

func TestSQLiteStore_ImplementsStore(t *testing.T) {
	var _ Store = (*SQLiteStore)(nil)
}

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(100),
		"sqlite": sqlite,
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Add(ctx, core.Notification{Title: "old", Body: "b", ReceivedAt: base}))
			require.NoError(t, store.Add(ctx, core.Notification{Title: "new", Body: "b", ReceivedAt: base.Add(2 * time.Hour)}))
			require.NoError(t, store.Add(ctx, core.Notification{Title: "mid", Body: "b", ReceivedAt: base.Add(time.Hour)}))

			items, err := store.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, items, 3)
			assert.Equal(t, "new", items[0].Title)
			assert.Equal(t, "mid", items[1].Title)
			assert.Equal(t, "old", items[2].Title)
			assert.NotEmpty(t, items[0].ID)

			limited, err := store.List(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
}

func TestStore_Empty(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			items, err := store.List(context.Background(), 10)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestMemoryStore_MaxSize(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()
	now := time.Now()

	store.Add(ctx, core.Notification{Title: "A", Body: "x", ReceivedAt: now})
	store.Add(ctx, core.Notification{Title: "B", Body: "x", ReceivedAt: now.Add(time.Second)})
	store.Add(ctx, core.Notification{Title: "C", Body: "x", ReceivedAt: now.Add(2 * time.Second)})

	items, _ := store.List(ctx, 0)
	require.Len(t, items, 2)
	assert.Equal(t, "C", items[0].Title)
	assert.Equal(t, "B", items[1].Title)
}

func TestSQLiteStore_PreservesFields(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer store.Close()

	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	in := core.Notification{ID: "n1", Topic: "signals_ar", Title: "تحديث", Body: "عملة BTC ارتفعت", ReceivedAt: at}
	require.NoError(t, store.Add(context.Background(), in))

	items, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, in, items[0])
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "", 10)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("redis", "", 10)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestFormat(t *testing.T) {
	got := Format(core.Notification{Title: "📈 UPDATE: SOL/USDT", Body: "SOL/USDT is up +3.12%"})
	assert.Equal(t, "📈 UPDATE: SOL/USDT\nSOL/USDT is up +3.12%", got)
}
