package products

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// MinFragmentLen is the shortest fragment that reaches the repository.
// Shorter input returns an empty result without a round-trip.
const MinFragmentLen = 2

// LookupLimit caps the rows returned to line-item editors.
const LookupLimit = 10

// LookupPort is the repository subset the lookup service needs.
type LookupPort interface {
	SearchFragment(ctx context.Context, fragment string, limit int) ([]LookupRow, error)
}

// Lookup answers product searches from line-item editors. Results are cached
// per normalised fragment; identical in-flight queries are collapsed so a
// burst of editors typing the same code issues one repository call.
type Lookup struct {
	repo     LookupPort
	cache    *Cache
	debounce time.Duration
	group    singleflight.Group
}

// NewLookup builds the lookup service. cache may be nil; a non-positive
// debounce falls back to the debouncer default.
func NewLookup(repo LookupPort, cache *Cache, debounce time.Duration) *Lookup {
	return &Lookup{repo: repo, cache: cache, debounce: debounce}
}

// NewSession returns a debouncer feeding this lookup with the configured
// quiet period. Each editing session owns one.
func (l *Lookup) NewSession(deliver DeliverFunc) *Debouncer {
	return NewDebouncer(l.debounce, l.Search, deliver)
}

// Search matches the fragment case-insensitively against product code or
// name, capped at LookupLimit rows. Failures surface as an empty slice plus
// the error so callers can tell "no results" from "lookup broken".
func (l *Lookup) Search(ctx context.Context, fragment string) ([]LookupRow, error) {
	fragment = strings.TrimSpace(fragment)
	if len([]rune(fragment)) < MinFragmentLen {
		return []LookupRow{}, nil
	}

	normalised := strings.ToLower(fragment)
	key, err := l.cache.BuildKey(ctx, "products", "lookup", normalised)
	if err != nil {
		// Cache trouble must not break search; fall through to the repo.
		key = "products:lookup:" + normalised
	}

	result, err, _ := l.group.Do(key, func() (interface{}, error) {
		var rows []LookupRow
		err := l.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
			return l.repo.SearchFragment(ctx, fragment, LookupLimit)
		})
		return rows, err
	})
	if err != nil {
		return []LookupRow{}, err
	}

	rows, _ := result.([]LookupRow)
	if rows == nil {
		rows = []LookupRow{}
	}
	return rows, nil
}
