package supply

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ctcscan/supplyx/pkg/chain"
	"github.com/ctcscan/supplyx/pkg/scale"
)

// AccountEntry is one decoded account record. Key is opaque; the four
// balances come from the AccountData section of the stored AccountInfo.
type AccountEntry struct {
	Key        chain.StorageKey
	Free       *uint256.Int
	Reserved   *uint256.Int
	MiscFrozen *uint256.Int
	FeeFrozen  *uint256.Int
}

// LedgerEntry is one decoded staking ledger, reduced to the values of its
// pending unlock chunks.
type LedgerEntry struct {
	Key       chain.StorageKey
	Unlocking []*uint256.Int
}

// DecodeAccountEntry decodes a stored AccountInfo value. Layout: nonce,
// consumers, providers, sufficients (u32 each), then free, reserved,
// miscFrozen, feeFrozen (u128 each). Trailing runtime-appended fields are
// ignored; a short value is an error.
func DecodeAccountEntry(key chain.StorageKey, value []byte) (AccountEntry, error) {
	r := scale.NewReader(value)
	if err := r.Skip(16); err != nil {
		return AccountEntry{}, fmt.Errorf("account %s: header: %w", key.Hex(), err)
	}
	e := AccountEntry{Key: key}
	for _, field := range []struct {
		name string
		dst  **uint256.Int
	}{
		{"free", &e.Free},
		{"reserved", &e.Reserved},
		{"miscFrozen", &e.MiscFrozen},
		{"feeFrozen", &e.FeeFrozen},
	} {
		v, err := r.U128()
		if err != nil {
			return AccountEntry{}, fmt.Errorf("account %s: %s: %w", key.Hex(), field.name, err)
		}
		*field.dst = v
	}
	return e, nil
}

// DecodeLedgerEntry decodes a stored StakingLedger value far enough to pull
// out the unlocking chunk values. Layout: 32-byte stash, compact total,
// compact active, then a compact-length sequence of {compact value, compact
// era} chunks. Everything after the chunks is ignored.
func DecodeLedgerEntry(key chain.StorageKey, value []byte) (LedgerEntry, error) {
	r := scale.NewReader(value)
	if err := r.Skip(32); err != nil {
		return LedgerEntry{}, fmt.Errorf("ledger %s: stash: %w", key.Hex(), err)
	}
	if _, err := r.Compact(); err != nil {
		return LedgerEntry{}, fmt.Errorf("ledger %s: total: %w", key.Hex(), err)
	}
	if _, err := r.Compact(); err != nil {
		return LedgerEntry{}, fmt.Errorf("ledger %s: active: %w", key.Hex(), err)
	}
	n, err := r.CompactLen()
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("ledger %s: unlocking length: %w", key.Hex(), err)
	}
	e := LedgerEntry{Key: key, Unlocking: make([]*uint256.Int, 0, n)}
	for i := 0; i < n; i++ {
		v, err := r.Compact()
		if err != nil {
			return LedgerEntry{}, fmt.Errorf("ledger %s: chunk %d value: %w", key.Hex(), i, err)
		}
		if _, err := r.Compact(); err != nil {
			return LedgerEntry{}, fmt.Errorf("ledger %s: chunk %d era: %w", key.Hex(), i, err)
		}
		e.Unlocking = append(e.Unlocking, v)
	}
	return e, nil
}
