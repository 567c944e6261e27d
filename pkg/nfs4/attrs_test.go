package nfs4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/nfs4"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

func TestDecodeFattr(t *testing.T) {
	// Server returns type, size, fileid, mode.
	var attrlist xdr.Encoder
	attrlist.PutUint32(uint32(nfs4.NF4DIR))
	attrlist.PutUint64(4096)
	attrlist.PutUint64(128)
	attrlist.PutUint32(0o755)

	var enc xdr.Encoder
	nfs4.EncodeBitmap(&enc, nfs4.MakeBitmap(nfs4.AttrType, nfs4.AttrSize, nfs4.AttrFileID, nfs4.AttrMode))
	enc.PutOpaque(attrlist.Bytes())

	attr, err := nfs4.DecodeFattr(xdr.NewDecoder(enc.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, attr.Type)
	assert.Equal(t, nfs4.NF4DIR, *attr.Type)
	require.NotNil(t, attr.Size)
	assert.EqualValues(t, 4096, *attr.Size)
	require.NotNil(t, attr.FileID)
	assert.EqualValues(t, 128, *attr.FileID)
	require.NotNil(t, attr.Mode)
	assert.EqualValues(t, 0o755, *attr.Mode)
	assert.Nil(t, attr.Owner)
	assert.Nil(t, attr.TimeModify)
}

func TestDecodeFattrWithTimesAndOwner(t *testing.T) {
	var attrlist xdr.Encoder
	attrlist.PutString("alice")
	attrlist.PutString("staff")
	attrlist.PutUint64(1_700_000_000) // time_access seconds
	attrlist.PutUint32(500)

	var enc xdr.Encoder
	nfs4.EncodeBitmap(&enc, nfs4.MakeBitmap(nfs4.AttrOwner, nfs4.AttrOwnerGroup, nfs4.AttrTimeAccess))
	enc.PutOpaque(attrlist.Bytes())

	attr, err := nfs4.DecodeFattr(xdr.NewDecoder(enc.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, attr.Owner)
	assert.Equal(t, "alice", *attr.Owner)
	require.NotNil(t, attr.OwnerGroup)
	assert.Equal(t, "staff", *attr.OwnerGroup)
	require.NotNil(t, attr.TimeAccess)
	assert.EqualValues(t, 1_700_000_000, attr.TimeAccess.Seconds)
	assert.EqualValues(t, 500, attr.TimeAccess.Nseconds)
}

func TestEncodeFattrAscendingOrder(t *testing.T) {
	size := uint64(1 << 20)
	mode := uint32(0o600)
	mtime := nfs4.Time{Seconds: 1_650_000_000, Nseconds: 1}
	attrs := nfs4.Sattr{Size: &size, Mode: &mode, TimeModify: &mtime}

	var enc xdr.Encoder
	nfs4.EncodeFattr(&enc, &attrs)

	dec := xdr.NewDecoder(enc.Bytes())
	bm, err := nfs4.DecodeBitmap(dec)
	require.NoError(t, err)
	assert.True(t, nfs4.IsBitSet(bm, nfs4.AttrSize))
	assert.True(t, nfs4.IsBitSet(bm, nfs4.AttrMode))
	assert.True(t, nfs4.IsBitSet(bm, nfs4.AttrTimeModifySet))
	assert.False(t, nfs4.IsBitSet(bm, nfs4.AttrOwner))

	attrlist, err := dec.Opaque()
	require.NoError(t, err)
	ad := xdr.NewDecoder(attrlist)

	gotSize, err := ad.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, size, gotSize)
	gotMode, err := ad.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, mode, gotMode)
	how, err := ad.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, 1, how, "settime4 discriminant is SET_TO_CLIENT_TIME")
	sec, err := ad.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, mtime.Seconds, sec)
	nsec, err := ad.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, mtime.Nseconds, nsec)
	assert.Zero(t, ad.Remaining())
}

// A server appending attribute bits beyond the ones this client knows is
// tolerated as long as the known values come first: decoding stops at the
// end of the attrlist.
func TestDecodeFattrIgnoresTrailingUnknownBits(t *testing.T) {
	var attrlist xdr.Encoder
	attrlist.PutUint32(uint32(nfs4.NF4REG))
	attrlist.PutUint32(0xDEAD) // unknown attr 70's value

	bm := nfs4.MakeBitmap(nfs4.AttrType, 70)
	var enc xdr.Encoder
	nfs4.EncodeBitmap(&enc, bm)
	enc.PutOpaque(attrlist.Bytes())

	attr, err := nfs4.DecodeFattr(xdr.NewDecoder(enc.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, attr.Type)
	assert.Equal(t, nfs4.NF4REG, *attr.Type)
}
