package products

import (
	"context"
	"strings"
	"sync"
	"time"
)

// SearchFunc performs the actual lookup once the input settles.
type SearchFunc func(ctx context.Context, fragment string) ([]LookupRow, error)

// DeliverFunc receives the outcome for the fragment that won.
type DeliverFunc func(fragment string, rows []LookupRow, err error)

// Debouncer serialises keystroke-driven lookups: a query only fires after a
// quiet period with no further input, and a newer query supersedes any older
// one still pending or in flight (last-query-wins). Results of superseded
// queries are dropped, never delivered.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	gen      uint64
	search   SearchFunc
	deliver  DeliverFunc
}

// NewDebouncer builds a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration, search SearchFunc, deliver DeliverFunc) *Debouncer {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &Debouncer{interval: interval, search: search, deliver: deliver}
}

// Input registers a new fragment. Fragments below the minimum length resolve
// immediately to an empty result and cancel anything pending.
func (d *Debouncer) Input(ctx context.Context, fragment string) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len([]rune(strings.TrimSpace(fragment))) < MinFragmentLen {
		d.mu.Unlock()
		d.deliver(fragment, []LookupRow{}, nil)
		return
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.fire(ctx, gen, fragment)
	})
	d.mu.Unlock()
}

// Stop cancels any pending query without delivering anything.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(ctx context.Context, gen uint64, fragment string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	rows, err := d.search(ctx, fragment)

	d.mu.Lock()
	stale := gen != d.gen
	d.mu.Unlock()
	if stale {
		return
	}
	d.deliver(fragment, rows, err)
}
