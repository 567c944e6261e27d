package nfs4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/nfs4"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

func TestBitmapKnownWords(t *testing.T) {
	cases := []struct {
		id   uint32
		want []uint32
	}{
		{1, []uint32{0x00000002}},
		{4, []uint32{0x00000010}},
		{20, []uint32{0x00100000}},
		{33, []uint32{0x00000000, 0x00000002}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, nfs4.MakeBitmap(tc.id), "attribute %d", tc.id)
	}
}

func TestBitmapSetTestInverse(t *testing.T) {
	for _, id := range []uint32{0, 1, 4, 20, 31, 32, 33, 55, 64, 65} {
		var bm []uint32
		assert.False(t, nfs4.IsBitSet(bm, id))
		nfs4.SetBit(&bm, id)
		assert.True(t, nfs4.IsBitSet(bm, id), "attribute %d after set", id)
	}

	// A set bit never leaks into neighbors.
	bm := nfs4.MakeBitmap(33)
	assert.False(t, nfs4.IsBitSet(bm, 32))
	assert.False(t, nfs4.IsBitSet(bm, 34))
	assert.False(t, nfs4.IsBitSet(bm, 1))
}

func TestBitmapEncodeDecodeIdentity(t *testing.T) {
	cases := [][]uint32{
		nil,
		nfs4.MakeBitmap(1),
		nfs4.MakeBitmap(1, 3, 4, 20, 33, 55),
		nfs4.MakeBitmap(64, 65),
	}
	for _, bm := range cases {
		var enc xdr.Encoder
		nfs4.EncodeBitmap(&enc, bm)
		dec := xdr.NewDecoder(enc.Bytes())
		got, err := nfs4.DecodeBitmap(dec)
		require.NoError(t, err)
		if len(bm) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, bm, got)
		}
		assert.Zero(t, dec.Remaining())
	}
}

func TestBitmapDecodeRejectsHugeCount(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(1000)
	_, err := nfs4.DecodeBitmap(xdr.NewDecoder(enc.Bytes()))
	require.Error(t, err)
}
