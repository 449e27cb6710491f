package audit

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ctcscan/supplyx/pkg/chain"
	"github.com/ctcscan/supplyx/pkg/explorer"
	"github.com/ctcscan/supplyx/pkg/supply"
)

// report prints the on-chain summary beside the explorer's independent
// figures. The numbers are presented, not reconciled: deciding whether a
// mismatch matters is the operator's call.
func (a *App) report(s supply.Summary, info *explorer.TokenInfo, snap *chain.Snapshot) {
	circulating := new(uint256.Int)
	if s.LockedUp.Cmp(s.Total) > 0 {
		// Locked funds are a subset of free+reserved only by accounting
		// convention, not by construction. Saturate rather than underflow.
		a.Logger.Warn("lockedUp exceeds total, circulating saturated to zero",
			zap.String("total", s.Total.Dec()),
			zap.String("lockedUp", s.LockedUp.Dec()))
	} else {
		circulating.Sub(s.Total, s.LockedUp)
	}

	fmt.Printf("Supply audit at block #%d (%s)\n", snap.BlockNumber(), snap.BlockHash())
	fmt.Printf("%-14s %24s %24s\n", "", "on-chain", "explorer")
	fmt.Printf("%-14s %24s %24s\n", "total", a.tokens(s.Total), info.TotalSupply.String())
	fmt.Printf("%-14s %24s %24s\n", "locked", a.tokens(s.LockedUp), info.LockedSupply.String())
	fmt.Printf("%-14s %24s %24s\n", "reserved", a.tokens(s.Reserved), info.ReservedSupply.String())
	fmt.Printf("%-14s %24s %24s\n", "unbonding", a.tokens(s.Unbonding), info.UnbondingSupply.String())
	fmt.Printf("%-14s %24s %24s\n", "circulating", a.tokens(circulating), info.CirculatingSupply.String())
	fmt.Printf("%-14s %24s %24s\n", "staked", "-", info.StakedSupply.String())
}

// tokens converts a raw ledger amount to whole token units for display.
// This is the only place a wide integer narrows into presentation form.
func (a *App) tokens(v *uint256.Int) string {
	return decimal.NewFromBigInt(v.ToBig(), -int32(a.Config.TokenDecimals)).String()
}
