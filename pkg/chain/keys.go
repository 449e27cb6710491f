package chain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// StorageKey is an opaque storage-map key. The aggregation engine never
// interprets its contents; keys only round-trip as page cursors.
type StorageKey []byte

// Hex renders the key in the node's 0x-prefixed form.
func (k StorageKey) Hex() string {
	return "0x" + hex.EncodeToString(k)
}

// StorageEntry is one raw (key, value) pair read from a snapshot. A nil
// Value means the entry holds no data at the bound block.
type StorageEntry struct {
	Key   StorageKey
	Value []byte
}

// Well-known storage-map prefixes: twox128(pallet) ++ twox128(item). These
// are content hashes of fixed names and never change across runtimes.
var (
	// System.Account: per-account balance record.
	SystemAccountPrefix = mustHexDecode("26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9")
	// Staking.Ledger: per-controller staking ledger with pending unlocks.
	StakingLedgerPrefix = mustHexDecode("5f3e4907f716ac89b6347d15ececedca422adb579f1dbf4f3886c5cfa3bb8cc4")
)

func mustHexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// DecodeHexBytes parses a 0x-prefixed hex string from the node.
func DecodeHexBytes(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("chain: bad hex %q: %w", s, err)
	}
	return b, nil
}
