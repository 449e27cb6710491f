package supply

import (
	"context"
)

// Composer runs the account scan and the ledger scan against one snapshot
// and assembles the summary. The two scans run sequentially; both are
// read-only against a frozen block, so ordering is about bounding peak load
// on the node, not correctness.
type Composer struct {
	Accounts AccountAggregator
	Ledgers  LedgerAggregator
}

// Compose produces the snapshot's supply summary. Any failure in either
// scan aborts the whole composition; there are no partial results.
func (c Composer) Compose(ctx context.Context, snap Snapshot) (Summary, error) {
	totals, err := c.Accounts.Run(ctx, snap)
	if err != nil {
		return Summary{}, err
	}
	unbonding, err := c.Ledgers.Run(ctx, snap)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Total:     totals.Total,
		LockedUp:  totals.LockedUp,
		Reserved:  totals.Reserved,
		Unbonding: unbonding,
	}, nil
}
