package share

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PanelCut/internal/model"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sampleResult() model.OptimizationResult {
	return model.OptimizationResult{
		Sheets: []model.SheetResult{{
			Index: 1, StockID: "MDF-19-2800x2070x19", MaterialRef: "MDF-19",
			Length: 2800, Width: 2070, Thickness: 19,
			Placements: []model.Placement{{PieceID: "p1-1", Name: "Side", Length: 720, Width: 560}},
			UsedArea:   403200, WasteArea: 5392800, Efficiency: 6.956521739130435,
		}},
		Stats: model.Stats{TotalPieces: 1, TotalSheets: 1, GlobalEfficiency: 6.956521739130435},
	}
}

// storeContract runs the behavior every Store must have.
func storeContract(t *testing.T, newStore func(clock *fakeClock) Store) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(clock)

		ticket, err := store.Put(ctx, sampleResult(), "Kitchen")
		require.NoError(t, err)
		assert.True(t, validID(ticket.ID), "id %q is not a canonical uuid", ticket.ID)
		assert.Equal(t, clock.Now().Add(time.Hour), ticket.ExpiresAt)

		got, err := store.Get(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kitchen", got.ProjectName)
		assert.Equal(t, sampleResult(), got.Result)
		assert.Equal(t, clock.Now(), got.CreatedAt)
		assert.Equal(t, ticket.ExpiresAt, got.ExpiresAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := newStore(newFakeClock())
		_, err := store.Get(ctx, "7d0c9a0e-3f55-4a8e-9a57-5d2b8f1f0b6c")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(clock)

		ticket, err := store.Put(ctx, sampleResult(), "")
		require.NoError(t, err)

		clock.Advance(59 * time.Minute)
		_, err = store.Get(ctx, ticket.ID)
		require.NoError(t, err)

		clock.Advance(time.Minute)
		_, err = store.Get(ctx, ticket.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("distinct ids", func(t *testing.T) {
		store := newStore(newFakeClock())
		a, err := store.Put(ctx, sampleResult(), "a")
		require.NoError(t, err)
		b, err := store.Put(ctx, sampleResult(), "b")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContract(t, func(clock *fakeClock) Store {
		return NewMemoryStore(WithTTL(time.Hour), WithClock(clock.Now))
	})
}

func TestMemoryStore_LazyPurge(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStore(WithTTL(time.Hour), WithClock(clock.Now))

	first, err := store.Put(ctx, sampleResult(), "")
	require.NoError(t, err)
	_, err = store.Put(ctx, sampleResult(), "")
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	clock.Advance(2 * time.Hour)
	_, err = store.Get(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, store.Len(), "expired entry should be dropped on read")

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Put(ctx, sampleResult(), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	ids := make([]string, 32)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket, err := store.Put(ctx, sampleResult(), "")
			if err == nil {
				ids[i] = ticket.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		_, err := store.Get(ctx, id)
		assert.NoError(t, err)
	}
}

func TestWithTTL_IgnoresNonPositive(t *testing.T) {
	o := defaultOptions()
	WithTTL(0)(&o)
	assert.Equal(t, DefaultTTL, o.ttl)
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("7d0c9a0e-3f55-4a8e-9a57-5d2b8f1f0b6c"))
	assert.False(t, validID("../etc/passwd"))
	assert.False(t, validID("{7d0c9a0e-3f55-4a8e-9a57-5d2b8f1f0b6c}"))
	assert.False(t, validID(""))
}

func TestQRCode(t *testing.T) {
	png, err := QRCode(URL("https://cut.example.com/", "abc"), 128)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/share/abc", URL("http://localhost:8080/", "abc"))
	assert.Equal(t, "http://localhost:8080/share/abc", URL("http://localhost:8080", "abc"))
}
