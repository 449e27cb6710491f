package chain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Snapshot is a read-only handle bound to one historical block. It is safe
// to share across independent aggregation runs: every read carries the bound
// hash, so the view never moves.
type Snapshot struct {
	c      *Client
	hash   string
	number uint64
}

type header struct {
	Number string `json:"number"`
}

// Snapshot binds a handle to the given block hash. The hash is verified
// against the node first; an unrecognized hash is ErrUnknownBlock.
func (c *Client) Snapshot(ctx context.Context, blockHash string) (*Snapshot, error) {
	var h *header
	if err := c.call(ctx, "chain_getHeader", []any{blockHash}, &h); err != nil {
		return nil, fmt.Errorf("bind snapshot %s: %w", blockHash, err)
	}
	if h == nil {
		return nil, fmt.Errorf("bind snapshot %s: %w", blockHash, ErrUnknownBlock)
	}
	number, err := strconv.ParseUint(strings.TrimPrefix(h.Number, "0x"), 16, 64)
	if err != nil {
		return nil, fmt.Errorf("bind snapshot %s: bad header number %q: %w", blockHash, h.Number, err)
	}
	return &Snapshot{c: c, hash: blockHash, number: number}, nil
}

// BlockHash returns the hash the handle is bound to.
func (s *Snapshot) BlockHash() string { return s.hash }

// BlockNumber returns the height the handle is bound to.
func (s *Snapshot) BlockNumber() uint64 { return s.number }

// KeysPaged returns up to pageSize keys under prefix, starting strictly
// after startKey (nil for the first page), in the node's stable key order.
func (s *Snapshot) KeysPaged(ctx context.Context, prefix []byte, pageSize int, startKey StorageKey) ([]StorageKey, error) {
	params := []any{StorageKey(prefix).Hex(), pageSize}
	if startKey != nil {
		params = append(params, startKey.Hex())
	} else {
		params = append(params, nil)
	}
	params = append(params, s.hash)

	var raw []string
	if err := s.c.call(ctx, "state_getKeysPaged", params, &raw); err != nil {
		return nil, err
	}
	keys := make([]StorageKey, 0, len(raw))
	for _, r := range raw {
		k, err := DecodeHexBytes(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

type storageChangeSet struct {
	Block   string       `json:"block"`
	Changes [][2]*string `json:"changes"`
}

// StorageAt reads the values for the given keys at the bound block. Keys
// with no stored value come back with a nil Value.
func (s *Snapshot) StorageAt(ctx context.Context, keys []StorageKey) ([]StorageEntry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	hexKeys := make([]string, len(keys))
	for i, k := range keys {
		hexKeys[i] = k.Hex()
	}

	var sets []storageChangeSet
	if err := s.c.call(ctx, "state_queryStorageAt", []any{hexKeys, s.hash}, &sets); err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: empty change set for %d keys", ErrTransientIO, len(keys))
	}
	return decodeChanges(sets[0].Changes)
}

// Pairs reads every (key, value) under prefix at the bound block in one
// unpaged call. Acceptable only for small tables; the staking-ledger table
// qualifies today, and this mirrors how the chain's own tooling reads it.
func (s *Snapshot) Pairs(ctx context.Context, prefix []byte) ([]StorageEntry, error) {
	var raw [][2]*string
	if err := s.c.call(ctx, "state_getPairs", []any{StorageKey(prefix).Hex(), s.hash}, &raw); err != nil {
		return nil, err
	}
	return decodeChanges(raw)
}

func decodeChanges(changes [][2]*string) ([]StorageEntry, error) {
	entries := make([]StorageEntry, 0, len(changes))
	for _, ch := range changes {
		if ch[0] == nil {
			return nil, fmt.Errorf("chain: change set entry with no key")
		}
		key, err := DecodeHexBytes(*ch[0])
		if err != nil {
			return nil, err
		}
		entry := StorageEntry{Key: key}
		if ch[1] != nil {
			value, err := DecodeHexBytes(*ch[1])
			if err != nil {
				return nil, err
			}
			entry.Value = value
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
