package explorer

import (
	"github.com/shopspring/decimal"
)

// TokenInfo is the explorer's independent view of the token supply, in whole
// token units. The explorer serves these as decimal strings; they are parsed
// strictly and never fed back into the on-chain aggregation.
type TokenInfo struct {
	TotalSupply       decimal.Decimal
	CirculatingSupply decimal.Decimal
	LockedSupply      decimal.Decimal
	ReservedSupply    decimal.Decimal
	StakedSupply      decimal.Decimal
	UnbondingSupply   decimal.Decimal
}

// Block is one entry of the explorer's latest-blocks feed, newest first.
type Block struct {
	BlockNumber uint64
	Hash        string
	Finalized   bool
}

// Wire shapes use pointers so a missing field is distinguishable from a
// zero value; validation happens in the client, not in json tags.

type rawTokenInfoPayload struct {
	CTC *rawTokenInfo `json:"CTC"`
}

type rawTokenInfo struct {
	TotalSupply       *string `json:"totalSupply"`
	CirculatingSupply *string `json:"circulatingSupply"`
	LockedSupply      *string `json:"lockedSupply"`
	ReservedSupply    *string `json:"reservedSupply"`
	StakedSupply      *string `json:"stakedSupply"`
	UnbondingSupply   *string `json:"unbondingSupply"`
}

type rawBlock struct {
	BlockNumber *uint64 `json:"blockNumber"`
	Hash        *string `json:"hash"`
	Finalized   *bool   `json:"finalized"`
}
