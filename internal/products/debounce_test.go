package products

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type deliveryRecorder struct {
	mu        sync.Mutex
	fragments []string
	results   [][]LookupRow
	signal    chan struct{}
}

func newDeliveryRecorder() *deliveryRecorder {
	return &deliveryRecorder{signal: make(chan struct{}, 16)}
}

func (r *deliveryRecorder) deliver(fragment string, rows []LookupRow, err error) {
	r.mu.Lock()
	r.fragments = append(r.fragments, fragment)
	r.results = append(r.results, rows)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *deliveryRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func (r *deliveryRecorder) delivered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.fragments))
	copy(out, r.fragments)
	return out
}

func TestDebouncerCollapsesRapidInput(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	rec := newDeliveryRecorder()
	deb := NewDebouncer(30*time.Millisecond, repo.search, rec.deliver)
	defer deb.Stop()

	ctx := context.Background()
	// "a" is below the minimum length and resolves immediately.
	deb.Input(ctx, "a")
	rec.wait(t)
	deb.Input(ctx, "ab")
	deb.Input(ctx, "abc")
	rec.wait(t)

	require.Equal(t, 1, repo.callCount())
	require.Equal(t, []string{"a", "abc"}, rec.delivered())
}

func TestDebouncerShortFragmentNeverQueries(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	rec := newDeliveryRecorder()
	deb := NewDebouncer(10*time.Millisecond, repo.search, rec.deliver)
	defer deb.Stop()

	deb.Input(context.Background(), "a")
	rec.wait(t)

	require.Equal(t, 0, repo.callCount())
	require.Equal(t, []string{"a"}, rec.delivered())
	rec.mu.Lock()
	rows := rec.results[0]
	rec.mu.Unlock()
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestDebouncerShortInputCancelsPending(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	rec := newDeliveryRecorder()
	deb := NewDebouncer(40*time.Millisecond, repo.search, rec.deliver)
	defer deb.Stop()

	ctx := context.Background()
	deb.Input(ctx, "kopi")
	// Deleting back below the threshold before the quiet period elapses
	// must cancel the pending query.
	deb.Input(ctx, "k")
	rec.wait(t)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 0, repo.callCount())
	require.Equal(t, []string{"k"}, rec.delivered())
}

func TestDebouncerDropsStaleResults(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	search := func(ctx context.Context, fragment string) ([]LookupRow, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-release
		}
		return []LookupRow{{ProductID: int64(n), Code: fragment}}, nil
	}

	rec := newDeliveryRecorder()
	deb := NewDebouncer(10*time.Millisecond, search, rec.deliver)
	defer deb.Stop()

	ctx := context.Background()
	deb.Input(ctx, "kopi")
	// Let the first query fire and block inside search.
	time.Sleep(50 * time.Millisecond)
	deb.Input(ctx, "kopi arabika")
	rec.wait(t)
	close(release)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, []string{"kopi arabika"}, rec.delivered())
}

func TestLookupSessionDebouncesConfiguredInterval(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	lookup := NewLookup(repo, NewCache(nil, 0), 20*time.Millisecond)
	rec := newDeliveryRecorder()
	deb := lookup.NewSession(rec.deliver)
	defer deb.Stop()

	ctx := context.Background()
	deb.Input(ctx, "ko")
	deb.Input(ctx, "kop")
	deb.Input(ctx, "kopi")
	rec.wait(t)

	require.Equal(t, 1, repo.callCount())
	require.Equal(t, []string{"kopi"}, rec.delivered())
}

func TestDebouncerStopSilencesPending(t *testing.T) {
	repo := &countingLookupRepo{rows: sampleRows()}
	rec := newDeliveryRecorder()
	deb := NewDebouncer(30*time.Millisecond, repo.search, rec.deliver)

	deb.Input(context.Background(), "kopi")
	deb.Stop()

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 0, repo.callCount())
	require.Empty(t, rec.delivered())
}
