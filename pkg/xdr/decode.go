package xdr

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnderflow is returned when a decode would read past the end of the
// buffer. It indicates a malformed or truncated message, never an NFS-level
// error; callers match it with errors.Is.
var ErrUnderflow = errors.New("xdr: decode underflow")

// MaxOpaqueLength bounds a single variable-length opaque. NFS READ replies
// are the largest opaques on the wire and stay well under this.
const MaxOpaqueLength = 16 << 20 // 16 MiB

// Decoder reads XDR values from an immutable byte slice through a cursor.
//
// Every getter returns ErrUnderflow (wrapped) if the remaining bytes cannot
// satisfy the read; the cursor is not advanced past the end in that case.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a Decoder positioned at the start of data.
// The Decoder borrows data and never mutates it.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Uint32 reads a big-endian 32-bit unsigned integer.
func (d *Decoder) Uint32() (uint32, error) {
	if err := d.require(4, "uint32"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.off:])
	d.off += 4
	return v, nil
}

// Uint64 reads a big-endian 64-bit unsigned integer.
func (d *Decoder) Uint64() (uint64, error) {
	if err := d.require(8, "uint64"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(d.data[d.off:])
	d.off += 8
	return v, nil
}

// Bool reads an XDR boolean: any non-zero uint32 is true.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Opaque reads a variable-length opaque: 4-byte length, data, then the
// 0-3 padding bytes which are consumed but not validated.
func (d *Decoder) Opaque() ([]byte, error) {
	length, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("opaque length: %w", err)
	}
	if length > MaxOpaqueLength {
		return nil, fmt.Errorf("xdr: opaque length %d exceeds maximum %d", length, MaxOpaqueLength)
	}
	return d.fixed(int(length), "opaque")
}

// String reads a string; the wire format is identical to Opaque.
func (d *Decoder) String() (string, error) {
	b, err := d.Opaque()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FixedOpaque reads exactly n data bytes plus alignment padding,
// with no length prefix.
func (d *Decoder) FixedOpaque(n int) ([]byte, error) {
	return d.fixed(n, "fixed opaque")
}

func (d *Decoder) fixed(n int, what string) ([]byte, error) {
	padded := n + (4-n%4)%4
	if err := d.require(padded, what); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, d.data[d.off:])
	d.off += padded
	return out, nil
}

// TakeRemaining returns all bytes after the cursor and advances it to the
// end. Used to hand a procedure-specific result body to the next decoder.
func (d *Decoder) TakeRemaining() []byte {
	out := make([]byte, len(d.data)-d.off)
	copy(out, d.data[d.off:])
	d.off = len(d.data)
	return out
}

// Remaining reports the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

func (d *Decoder) require(n int, what string) error {
	if len(d.data)-d.off < n {
		return fmt.Errorf("read %s: need %d bytes, have %d: %w",
			what, n, len(d.data)-d.off, ErrUnderflow)
	}
	return nil
}
