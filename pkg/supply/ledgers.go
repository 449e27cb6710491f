package supply

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ctcscan/supplyx/pkg/chain"
)

// LedgerAggregator sums pending-unbond amounts across all staking ledgers.
// The ledger table is read in one unpaged scan; it stays small enough for
// that today, and the node's own tooling reads it the same way.
type LedgerAggregator struct{}

// Run returns the grand total of all unlock-chunk values as of the
// snapshot. Ledgers with no chunks, and keys holding no value, contribute
// zero; they are never an error.
func (LedgerAggregator) Run(ctx context.Context, snap Snapshot) (*uint256.Int, error) {
	pairs, err := snap.Pairs(ctx, chain.StakingLedgerPrefix)
	if err != nil {
		return nil, fmt.Errorf("ledger scan: %w", err)
	}

	unbonding := new(uint256.Int)
	for _, se := range pairs {
		if se.Value == nil {
			continue
		}
		e, err := DecodeLedgerEntry(se.Key, se.Value)
		if err != nil {
			return nil, err
		}
		for _, chunk := range e.Unlocking {
			if err := addChecked(unbonding, chunk); err != nil {
				return nil, fmt.Errorf("ledger %s: %w", se.Key.Hex(), err)
			}
		}
	}
	return unbonding, nil
}
