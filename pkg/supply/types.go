// Package supply is the aggregation engine: one ordered, paginated pass over
// the account table plus one unpaged scan of the staking ledgers, both bound
// to the same snapshot, folded into a single summary. Accumulation uses
// 256-bit unsigned integers; balances are 128-bit on chain, so headroom is
// wide, but any overflow is still a hard failure rather than a wrap.
package supply

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrOverflow means an accumulator exceeded the representable range. This is
// a defect signal: the run must abort, never wrap.
var ErrOverflow = errors.New("supply: accumulator overflow")

// Totals is the running accumulator for the account scan. It is exclusively
// owned by one in-flight aggregation; values only grow.
type Totals struct {
	Total    *uint256.Int
	LockedUp *uint256.Int
	Reserved *uint256.Int
}

func NewTotals() Totals {
	return Totals{
		Total:    new(uint256.Int),
		LockedUp: new(uint256.Int),
		Reserved: new(uint256.Int),
	}
}

// Summary is the immutable result of one composition run.
type Summary struct {
	Total     *uint256.Int
	LockedUp  *uint256.Int
	Reserved  *uint256.Int
	Unbonding *uint256.Int
}

// fold applies one account entry to the running totals:
//
//	total    += free + reserved
//	lockedUp += max(miscFrozen, feeFrozen)
//	reserved += reserved
//
// The two frozen fields represent overlapping lock reasons; taking the max
// rather than the sum avoids double-counting an account's locked funds.
func (t Totals) fold(e AccountEntry) error {
	balance := new(uint256.Int)
	if _, carry := balance.AddOverflow(e.Free, e.Reserved); carry {
		return ErrOverflow
	}
	if err := addChecked(t.Total, balance); err != nil {
		return err
	}
	if err := addChecked(t.LockedUp, maxOf(e.MiscFrozen, e.FeeFrozen)); err != nil {
		return err
	}
	return addChecked(t.Reserved, e.Reserved)
}

// addChecked accumulates x into acc, rejecting overflow.
func addChecked(acc, x *uint256.Int) error {
	if _, carry := acc.AddOverflow(acc, x); carry {
		return ErrOverflow
	}
	return nil
}

func maxOf(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
