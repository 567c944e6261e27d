package xdr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/xdr"
)

func TestUint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF} {
		var enc xdr.Encoder
		enc.PutUint32(v)
		dec := xdr.NewDecoder(enc.Bytes())
		got, err := dec.Uint32()
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, 0, dec.Remaining())
	}
}

func TestUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 32, 0xFFFFFFFFFFFFFFFF} {
		var enc xdr.Encoder
		enc.PutUint64(v)
		dec := xdr.NewDecoder(enc.Bytes())
		got, err := dec.Uint64()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

// Encoding 0x01020304 must produce the bytes 01 02 03 04 (big-endian).
func TestUint32BigEndianLayout(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(0x01020304)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, enc.Bytes())
}

func TestUint64WordOrder(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint64(0x0102030405060708)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, enc.Bytes())
}

// A 3-byte opaque occupies 8 wire bytes: 4 length + 3 data + 1 zero pad.
func TestOpaquePadding(t *testing.T) {
	var enc xdr.Encoder
	enc.PutOpaque([]byte{0xAA, 0xBB, 0xCC})
	assert.Equal(t, []byte{0, 0, 0, 3, 0xAA, 0xBB, 0xCC, 0x00}, enc.Bytes())
}

func TestOpaqueRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{1},
		{1, 2},
		{1, 2, 3},
		{1, 2, 3, 4},
		{1, 2, 3, 4, 5},
	}
	for _, data := range cases {
		var enc xdr.Encoder
		enc.PutOpaque(data)
		wantLen := 4 + len(data) + (4-len(data)%4)%4
		require.Equal(t, wantLen, enc.Len(), "wire length for %d data bytes", len(data))

		dec := xdr.NewDecoder(enc.Bytes())
		got, err := dec.Opaque()
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.Equal(t, 0, dec.Remaining())
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "abc", "test", "/export/data"} {
		var enc xdr.Encoder
		enc.PutString(s)
		dec := xdr.NewDecoder(enc.Bytes())
		got, err := dec.String()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestFixedOpaqueRoundTrip(t *testing.T) {
	verf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	var enc xdr.Encoder
	enc.PutFixedOpaque(verf)
	// No length prefix, already aligned.
	assert.Equal(t, verf, enc.Bytes())

	dec := xdr.NewDecoder(enc.Bytes())
	got, err := dec.FixedOpaque(8)
	require.NoError(t, err)
	assert.Equal(t, verf, got)
}

func TestFixedOpaquePadding(t *testing.T) {
	var enc xdr.Encoder
	enc.PutFixedOpaque([]byte{0xFF})
	assert.Equal(t, []byte{0xFF, 0, 0, 0}, enc.Bytes())
}

func TestBoolRoundTrip(t *testing.T) {
	var enc xdr.Encoder
	enc.PutBool(true)
	enc.PutBool(false)
	assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 0}, enc.Bytes())

	dec := xdr.NewDecoder(enc.Bytes())
	v, err := dec.Bool()
	require.NoError(t, err)
	assert.True(t, v)
	v, err = dec.Bool()
	require.NoError(t, err)
	assert.False(t, v)
}

func TestDecodeUnderflow(t *testing.T) {
	dec := xdr.NewDecoder([]byte{0, 0, 0, 0})
	_, err := dec.Uint64()
	require.ErrorIs(t, err, xdr.ErrUnderflow)

	// Opaque whose declared length exceeds the buffer.
	dec = xdr.NewDecoder([]byte{0, 0, 0, 10, 1, 2})
	_, err = dec.Opaque()
	require.ErrorIs(t, err, xdr.ErrUnderflow)

	dec = xdr.NewDecoder(nil)
	_, err = dec.Uint32()
	require.ErrorIs(t, err, xdr.ErrUnderflow)
}

func TestTakeRemaining(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(7)
	enc.PutUint32(0xDEADBEEF)
	dec := xdr.NewDecoder(enc.Bytes())
	_, err := dec.Uint32()
	require.NoError(t, err)
	rest := dec.TakeRemaining()
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, rest)
	assert.Equal(t, 0, dec.Remaining())
}

func TestRelease(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(1)
	out := enc.Release()
	assert.Equal(t, []byte{0, 0, 0, 1}, out)
	assert.Equal(t, 0, enc.Len())
}
