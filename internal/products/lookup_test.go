package products

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type countingLookupRepo struct {
	mu    sync.Mutex
	calls int
	rows  []LookupRow
	err   error
}

func (r *countingLookupRepo) SearchFragment(ctx context.Context, fragment string, limit int) ([]LookupRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.rows, nil
}

// search adapts SearchFragment to the debouncer's SearchFunc shape.
func (r *countingLookupRepo) search(ctx context.Context, fragment string) ([]LookupRow, error) {
	return r.SearchFragment(ctx, fragment, LookupLimit)
}

func (r *countingLookupRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func sampleRows() []LookupRow {
	return []LookupRow{
		{ProductID: 1, Code: "SKU-001", Name: "Kopi Arabika", CurrentStock: 12, UnitPrice: decimal.NewFromInt(25)},
		{ProductID: 2, Code: "SKU-002", Name: "Kopi Robusta", CurrentStock: 3, UnitPrice: decimal.NewFromInt(18)},
	}
}

func TestLookupShortFragmentSkipsRepository(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	lookup := NewLookup(repo, NewCache(nil, 0), 0)

	for _, q := range []string{"", " ", "a", " k "} {
		rows, err := lookup.Search(context.Background(), q)
		require.NoError(t, err)
		require.NotNil(t, rows)
		require.Empty(t, rows)
	}
	require.Equal(t, 0, repo.callCount())
}

func TestLookupReturnsRows(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	lookup := NewLookup(repo, NewCache(nil, 0), 0)

	rows, err := lookup.Search(context.Background(), "kopi")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "SKU-001", rows[0].Code)
	require.Equal(t, int64(12), rows[0].CurrentStock)
	require.Equal(t, 1, repo.callCount())
}

func TestLookupErrorIsDistinguishableFromEmpty(t *testing.T) {
	repo := &countingLookupRepo{err: errors.New("connection refused")}
	lookup := NewLookup(repo, NewCache(nil, 0), 0)

	rows, err := lookup.Search(context.Background(), "kopi")
	require.Error(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)

	repo2 := &countingLookupRepo{rows: []LookupRow{}}
	lookup2 := NewLookup(repo2, NewCache(nil, 0), 0)
	rows, err = lookup2.Search(context.Background(), "zzz")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestLookupCachesPerFragment(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingLookupRepo{rows: sampleRows()}
	lookup := NewLookup(repo, NewCache(client, time.Minute), 0)

	for i := 0; i < 3; i++ {
		rows, err := lookup.Search(context.Background(), "Kopi")
		require.NoError(t, err)
		require.Len(t, rows, 2)
	}
	// Case variants normalise to the same cache key.
	_, err := lookup.Search(context.Background(), "KOPI")
	require.NoError(t, err)
	require.Equal(t, 1, repo.callCount())
}

func TestLookupCacheBumpInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingLookupRepo{rows: sampleRows()}
	cache := NewCache(client, time.Minute)
	lookup := NewLookup(repo, cache, 0)

	_, err := lookup.Search(context.Background(), "kopi")
	require.NoError(t, err)
	require.Equal(t, 1, repo.callCount())

	require.NoError(t, cache.Bump(context.Background()))

	_, err = lookup.Search(context.Background(), "kopi")
	require.NoError(t, err)
	require.Equal(t, 2, repo.callCount())
}
