// Package xdr implements External Data Representation (RFC 4506) encoding
// and decoding as used by ONC RPC and NFS.
//
// All quantities are big-endian and aligned to 4-byte boundaries.
// Variable-length opaques and strings carry a 4-byte length prefix followed
// by the data and 0-3 zero padding bytes; fixed-length opaques carry only
// the data and padding.
package xdr

import (
	"bytes"
	"encoding/binary"
)

// Encoder serializes values into an append-only big-endian byte buffer.
//
// The zero value is ready to use. Encoding cannot fail: every Put method
// appends to an in-memory buffer.
type Encoder struct {
	buf bytes.Buffer
}

// PutUint32 appends a 32-bit unsigned integer (RFC 4506 §4.1).
func (e *Encoder) PutUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// PutUint64 appends a 64-bit unsigned integer (RFC 4506 §4.5),
// high 32 bits first.
func (e *Encoder) PutUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// PutBool appends an XDR boolean: uint32 0 or 1 (RFC 4506 §4.4).
func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutUint32(1)
	} else {
		e.PutUint32(0)
	}
}

// PutOpaque appends variable-length opaque data (RFC 4506 §4.10):
// a 4-byte length prefix, the data, then zero padding to a 4-byte boundary.
//
// A 3-byte input produces 8 wire bytes: 4 length + 3 data + 1 pad.
func (e *Encoder) PutOpaque(data []byte) {
	e.PutUint32(uint32(len(data)))
	e.buf.Write(data)
	e.pad(len(data))
}

// PutString appends a string (RFC 4506 §4.11). The wire format is identical
// to a variable-length opaque.
func (e *Encoder) PutString(s string) {
	e.PutUint32(uint32(len(s)))
	e.buf.WriteString(s)
	e.pad(len(s))
}

// PutFixedOpaque appends fixed-length opaque data (RFC 4506 §4.9): the raw
// bytes followed by zero padding to a 4-byte boundary, with no length prefix.
func (e *Encoder) PutFixedOpaque(data []byte) {
	e.buf.Write(data)
	e.pad(len(data))
}

// pad appends (4 - n%4) % 4 zero bytes.
func (e *Encoder) pad(n int) {
	var zero [3]byte
	if p := (4 - n%4) % 4; p > 0 {
		e.buf.Write(zero[:p])
	}
}

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Bytes returns the encoded bytes. The slice is valid until the next Put.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Release returns the encoded bytes and resets the encoder for reuse.
func (e *Encoder) Release() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	e.buf.Reset()
	return out
}
