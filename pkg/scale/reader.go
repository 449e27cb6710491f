// Package scale reads the subset of SCALE encoding the supply audit needs:
// fixed-width little-endian integers and compact integers. It is a decoder
// only; the module never writes chain state.
package scale

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	// ErrTruncated means the value ended before the expected field.
	ErrTruncated = errors.New("scale: truncated input")
	// ErrMalformed means the bytes cannot be a valid encoding.
	ErrMalformed = errors.New("scale: malformed input")
)

// Reader consumes a SCALE-encoded byte slice front to back. Truncated input
// is always an error, never a partial decode.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining reports how many bytes have not been consumed yet.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U128 reads a 16-byte little-endian unsigned integer.
func (r *Reader) U128() (*uint256.Int, error) {
	b, err := r.take(16)
	if err != nil {
		return nil, err
	}
	var be [16]byte
	for i := range b {
		be[15-i] = b[i]
	}
	return new(uint256.Int).SetBytes(be[:]), nil
}

// Compact reads a compact-encoded unsigned integer. All four modes are
// supported; big-mode payloads up to 32 bytes fit the returned integer.
func (r *Reader) Compact() (*uint256.Int, error) {
	b0, err := r.take(1)
	if err != nil {
		return nil, err
	}
	switch b0[0] & 0b11 {
	case 0b00:
		return uint256.NewInt(uint64(b0[0] >> 2)), nil
	case 0b01:
		b1, err := r.take(1)
		if err != nil {
			return nil, err
		}
		v := (uint64(b0[0]) | uint64(b1[0])<<8) >> 2
		return uint256.NewInt(v), nil
	case 0b10:
		rest, err := r.take(3)
		if err != nil {
			return nil, err
		}
		v := (uint64(b0[0]) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24) >> 2
		return uint256.NewInt(v), nil
	default:
		n := int(b0[0]>>2) + 4
		if n > 32 {
			return nil, fmt.Errorf("%w: compact payload of %d bytes", ErrMalformed, n)
		}
		le, err := r.take(n)
		if err != nil {
			return nil, err
		}
		be := make([]byte, n)
		for i := range le {
			be[n-1-i] = le[i]
		}
		return new(uint256.Int).SetBytes(be), nil
	}
}

// CompactLen reads a compact integer used as a sequence length. Lengths that
// do not fit an int are malformed in this context.
func (r *Reader) CompactLen() (int, error) {
	v, err := r.Compact()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() > uint64(1<<31-1) {
		return 0, fmt.Errorf("%w: absurd sequence length %s", ErrMalformed, v)
	}
	return int(v.Uint64()), nil
}
