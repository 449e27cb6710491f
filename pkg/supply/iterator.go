package supply

import (
	"context"

	"github.com/ctcscan/supplyx/pkg/chain"
)

// Snapshot is the read surface the engine needs from a bound snapshot
// handle. *chain.Snapshot implements it; tests substitute an in-memory fake.
type Snapshot interface {
	KeysPaged(ctx context.Context, prefix []byte, pageSize int, startKey chain.StorageKey) ([]chain.StorageKey, error)
	StorageAt(ctx context.Context, keys []chain.StorageKey) ([]chain.StorageEntry, error)
	Pairs(ctx context.Context, prefix []byte) ([]chain.StorageEntry, error)
}

// Page is one bounded batch of decoded account entries. Next is the raw key
// of the last entry served, fed back verbatim as the next call's cursor; a
// nil Next means the walk is complete.
type Page struct {
	Entries []AccountEntry
	Next    chain.StorageKey
}

// NextPage fetches one page of the account table. Chaining each returned
// cursor into the next call until Next is nil visits every account exactly
// once, as of the snapshot's block. The cursor is opaque: it is whatever key
// the node returned last, passed back uninspected.
func NextPage(ctx context.Context, snap Snapshot, pageSize int, cursor chain.StorageKey) (Page, error) {
	keys, err := snap.KeysPaged(ctx, chain.SystemAccountPrefix, pageSize, cursor)
	if err != nil {
		return Page{}, err
	}
	if len(keys) == 0 {
		return Page{}, nil
	}

	raw, err := snap.StorageAt(ctx, keys)
	if err != nil {
		return Page{}, err
	}
	entries := make([]AccountEntry, 0, len(raw))
	for _, se := range raw {
		if se.Value == nil {
			continue
		}
		e, err := DecodeAccountEntry(se.Key, se.Value)
		if err != nil {
			return Page{}, err
		}
		entries = append(entries, e)
	}
	return Page{Entries: entries, Next: keys[len(keys)-1]}, nil
}
