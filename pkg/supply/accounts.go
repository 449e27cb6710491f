package supply

import (
	"context"
	"fmt"
	"time"

	"github.com/ctcscan/supplyx/pkg/chain"
)

const (
	// DefaultPageSize matches the page size the node serves comfortably.
	DefaultPageSize = 1000
	// DefaultProgressEvery is the batch size between progress signals.
	DefaultProgressEvery = 10000
)

// ProgressFunc observes the account scan: total entries processed so far and
// throughput since the previous signal. Purely observational; the fold does
// not depend on it.
type ProgressFunc func(processed uint64, perSecond float64)

// AccountAggregator walks the whole account table in one ordered pass and
// folds every entry into running totals. Zero values for the fields fall
// back to the defaults; OnProgress may be nil.
type AccountAggregator struct {
	PageSize      int
	ProgressEvery int
	OnProgress    ProgressFunc
}

// Run scans the account table bound to snap. The scan is strictly
// sequential: each page request carries the previous page's last key, so no
// two fetches overlap. Any error aborts with no partial result.
func (a AccountAggregator) Run(ctx context.Context, snap Snapshot) (Totals, error) {
	pageSize := a.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	every := a.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	totals := NewTotals()
	var (
		processed uint64
		cursor    chain.StorageKey
		lastTick  = time.Now()
		lastCount uint64
	)
	for {
		page, err := NextPage(ctx, snap, pageSize, cursor)
		if err != nil {
			return Totals{}, fmt.Errorf("account scan after %d entries: %w", processed, err)
		}
		for _, e := range page.Entries {
			if err := totals.fold(e); err != nil {
				return Totals{}, fmt.Errorf("account %s: %w", e.Key.Hex(), err)
			}
		}
		processed += uint64(len(page.Entries))

		if a.OnProgress != nil && processed-lastCount >= uint64(every) {
			elapsed := time.Since(lastTick).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(processed-lastCount) / elapsed
			}
			a.OnProgress(processed, rate)
			lastTick = time.Now()
			lastCount = processed
		}

		if page.Next == nil {
			return totals, nil
		}
		cursor = page.Next
	}
}
