package supply

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctcscan/supplyx/pkg/chain"
)

// fakeSnapshot serves an in-memory account table and ledger table with the
// same paging contract as a real node: keys in stable order, pages starting
// strictly after the cursor.
type fakeSnapshot struct {
	accounts []chain.StorageEntry // sorted by key
	ledgers  []chain.StorageEntry

	keysPagedCalls int
}

func (f *fakeSnapshot) KeysPaged(_ context.Context, prefix []byte, pageSize int, startKey chain.StorageKey) ([]chain.StorageKey, error) {
	f.keysPagedCalls++
	var keys []chain.StorageKey
	for _, e := range f.accounts {
		if !bytes.HasPrefix(e.Key, prefix) {
			continue
		}
		if startKey != nil && bytes.Compare(e.Key, startKey) <= 0 {
			continue
		}
		keys = append(keys, e.Key)
		if len(keys) == pageSize {
			break
		}
	}
	return keys, nil
}

func (f *fakeSnapshot) StorageAt(_ context.Context, keys []chain.StorageKey) ([]chain.StorageEntry, error) {
	var out []chain.StorageEntry
	for _, k := range keys {
		for _, e := range f.accounts {
			if bytes.Equal(e.Key, k) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeSnapshot) Pairs(_ context.Context, prefix []byte) ([]chain.StorageEntry, error) {
	var out []chain.StorageEntry
	for _, e := range f.ledgers {
		if bytes.HasPrefix(e.Key, prefix) {
			out = append(out, e)
		}
	}
	return out, nil
}

func accountKey(i int) chain.StorageKey {
	k := append(chain.StorageKey{}, chain.SystemAccountPrefix...)
	return append(k, []byte(fmt.Sprintf("%08d", i))...)
}

func ledgerKey(i int) chain.StorageKey {
	k := append(chain.StorageKey{}, chain.StakingLedgerPrefix...)
	return append(k, []byte(fmt.Sprintf("%08d", i))...)
}

func u128le(v uint64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// encodeAccount builds a stored AccountInfo value: 4 u32 header fields then
// free, reserved, miscFrozen, feeFrozen as u128.
func encodeAccount(free, reserved, miscFrozen, feeFrozen uint64) []byte {
	v := make([]byte, 16)
	v = append(v, u128le(free)...)
	v = append(v, u128le(reserved)...)
	v = append(v, u128le(miscFrozen)...)
	v = append(v, u128le(feeFrozen)...)
	return v
}

func compact(v uint64) []byte {
	switch {
	case v < 1<<6:
		return []byte{byte(v << 2)}
	case v < 1<<14:
		x := uint16(v<<2 | 0b01)
		return []byte{byte(x), byte(x >> 8)}
	case v < 1<<30:
		x := uint32(v<<2 | 0b10)
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, x)
		return b
	default:
		b := make([]byte, 9)
		b[0] = byte(4<<2 | 0b11)
		binary.LittleEndian.PutUint64(b[1:], v)
		return b
	}
}

// encodeLedger builds a stored StakingLedger value with the given unlocking
// chunk values (eras zero).
func encodeLedger(chunks ...uint64) []byte {
	v := make([]byte, 32) // stash
	v = append(v, compact(0)...)
	v = append(v, compact(0)...)
	v = append(v, compact(uint64(len(chunks)))...)
	for _, c := range chunks {
		v = append(v, compact(c)...)
		v = append(v, compact(0)...)
	}
	return v
}

func newFake(accounts ...chain.StorageEntry) *fakeSnapshot {
	sort.Slice(accounts, func(i, j int) bool {
		return bytes.Compare(accounts[i].Key, accounts[j].Key) < 0
	})
	return &fakeSnapshot{accounts: accounts}
}

func TestAccountAggregator_FoldCorrectness(t *testing.T) {
	snap := newFake(
		chain.StorageEntry{Key: accountKey(0), Value: encodeAccount(10, 5, 3, 7)},
		chain.StorageEntry{Key: accountKey(1), Value: encodeAccount(1, 1, 0, 0)},
	)

	totals, err := AccountAggregator{}.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), totals.Total.Uint64())
	assert.Equal(t, uint64(7), totals.LockedUp.Uint64())
	assert.Equal(t, uint64(6), totals.Reserved.Uint64())
}

func TestAccountAggregator_MaxNotSum(t *testing.T) {
	snap := newFake(
		chain.StorageEntry{Key: accountKey(0), Value: encodeAccount(0, 0, 100, 40)},
	)

	totals, err := AccountAggregator{}.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), totals.LockedUp.Uint64(), "overlapping locks must not double-count")
}

func TestAccountAggregator_CompletenessAcrossPageSizes(t *testing.T) {
	const n = 23
	var entries []chain.StorageEntry
	for i := 0; i < n; i++ {
		entries = append(entries, chain.StorageEntry{Key: accountKey(i), Value: encodeAccount(1, 0, 0, 0)})
	}

	for _, pageSize := range []int{1, 7, 1000} {
		t.Run(fmt.Sprintf("pageSize=%d", pageSize), func(t *testing.T) {
			snap := newFake(entries...)
			totals, err := AccountAggregator{PageSize: pageSize}.Run(context.Background(), snap)
			require.NoError(t, err)
			// Each entry contributes exactly 1 to total, so the total is the
			// visit count: every entry once, none twice.
			assert.Equal(t, uint64(n), totals.Total.Uint64())
		})
	}
}

func TestAccountAggregator_EmptyTableSingleRequest(t *testing.T) {
	snap := newFake()

	totals, err := AccountAggregator{}.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.keysPagedCalls)
	assert.True(t, totals.Total.IsZero())
	assert.True(t, totals.LockedUp.IsZero())
	assert.True(t, totals.Reserved.IsZero())
}

func TestAccountAggregator_Progress(t *testing.T) {
	var entries []chain.StorageEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, chain.StorageEntry{Key: accountKey(i), Value: encodeAccount(1, 0, 0, 0)})
	}
	snap := newFake(entries...)

	var ticks []uint64
	agg := AccountAggregator{
		PageSize:      2,
		ProgressEvery: 4,
		OnProgress: func(processed uint64, _ float64) {
			ticks = append(ticks, processed)
		},
	}
	_, err := agg.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 8}, ticks)
}

func TestAccountAggregator_TruncatedValue(t *testing.T) {
	snap := newFake(
		chain.StorageEntry{Key: accountKey(0), Value: make([]byte, 20)},
	)
	_, err := AccountAggregator{}.Run(context.Background(), snap)
	assert.Error(t, err)
}

func TestTotals_FoldOverflow(t *testing.T) {
	totals := NewTotals()
	entry := AccountEntry{
		Free:       new(uint256.Int).SetAllOne(),
		Reserved:   uint256.NewInt(1),
		MiscFrozen: new(uint256.Int),
		FeeFrozen:  new(uint256.Int),
	}
	assert.ErrorIs(t, totals.fold(entry), ErrOverflow)

	// Overflow in the accumulator itself, not just the per-entry sum.
	totals = NewTotals()
	totals.Total.SetAllOne()
	entry = AccountEntry{
		Free:       uint256.NewInt(1),
		Reserved:   new(uint256.Int),
		MiscFrozen: new(uint256.Int),
		FeeFrozen:  new(uint256.Int),
	}
	assert.ErrorIs(t, totals.fold(entry), ErrOverflow)
}

func TestLedgerAggregator_UnbondingSum(t *testing.T) {
	snap := newFake()
	snap.ledgers = []chain.StorageEntry{
		{Key: ledgerKey(0), Value: encodeLedger(5, 3)},
		{Key: ledgerKey(1), Value: encodeLedger()},
		{Key: ledgerKey(2), Value: nil}, // absent value contributes zero
	}

	unbonding, err := LedgerAggregator{}.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), unbonding.Uint64())
}

func TestLedgerAggregator_EmptyTable(t *testing.T) {
	unbonding, err := LedgerAggregator{}.Run(context.Background(), newFake())
	require.NoError(t, err)
	assert.True(t, unbonding.IsZero())
}

func TestLedgerAggregator_WideChunkValues(t *testing.T) {
	snap := newFake()
	snap.ledgers = []chain.StorageEntry{
		{Key: ledgerKey(0), Value: encodeLedger(1 << 40)},
		{Key: ledgerKey(1), Value: encodeLedger(1<<40, 7)},
	}

	unbonding, err := LedgerAggregator{}.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<41+7), unbonding.Uint64())
}

func TestComposer_Idempotence(t *testing.T) {
	snap := newFake(
		chain.StorageEntry{Key: accountKey(0), Value: encodeAccount(100, 20, 30, 10)},
		chain.StorageEntry{Key: accountKey(1), Value: encodeAccount(50, 0, 0, 5)},
	)
	snap.ledgers = []chain.StorageEntry{
		{Key: ledgerKey(0), Value: encodeLedger(9)},
	}

	composer := Composer{}
	first, err := composer.Compose(context.Background(), snap)
	require.NoError(t, err)
	second, err := composer.Compose(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.LockedUp, second.LockedUp)
	assert.Equal(t, first.Reserved, second.Reserved)
	assert.Equal(t, first.Unbonding, second.Unbonding)

	assert.Equal(t, uint64(170), first.Total.Uint64())
	assert.Equal(t, uint64(35), first.LockedUp.Uint64())
	assert.Equal(t, uint64(20), first.Reserved.Uint64())
	assert.Equal(t, uint64(9), first.Unbonding.Uint64())
}

func TestNextPage_CursorIsLastServedKey(t *testing.T) {
	snap := newFake(
		chain.StorageEntry{Key: accountKey(0), Value: encodeAccount(1, 0, 0, 0)},
		chain.StorageEntry{Key: accountKey(1), Value: encodeAccount(1, 0, 0, 0)},
		chain.StorageEntry{Key: accountKey(2), Value: encodeAccount(1, 0, 0, 0)},
	)

	page, err := NextPage(context.Background(), snap, 2, nil)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, accountKey(1), page.Next)

	page, err = NextPage(context.Background(), snap, 2, page.Next)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, accountKey(2), page.Next)

	page, err = NextPage(context.Background(), snap, 2, page.Next)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Nil(t, page.Next)
}
