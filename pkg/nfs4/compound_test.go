package nfs4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/nfs4"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// fakeCaller records the request and replies with canned bytes.
type fakeCaller struct {
	prog, vers, proc uint32
	args             []byte
	reply            []byte
	err              error
}

func (f *fakeCaller) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	f.prog, f.vers, f.proc = prog, vers, proc
	f.args = append([]byte(nil), args...)
	return f.reply, f.err
}

// The COMPOUND header for tag="test", minorversion=0, numops=0 has the
// exact layout: tag length, tag bytes, minorversion, numops.
func TestCompoundHeaderWireLayout(t *testing.T) {
	fake := &fakeCaller{reply: []byte{}}
	_, err := nfs4.CallCompound(fake, "test", 0, 0, nil)
	require.NoError(t, err)

	want := []byte{
		0x00, 0x00, 0x00, 0x04,
		't', 'e', 's', 't',
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, fake.args)
	assert.EqualValues(t, nfs4.Program, fake.prog)
	assert.EqualValues(t, nfs4.Version, fake.vers)
	assert.EqualValues(t, nfs4.ProcCompound, fake.proc)
}

func TestCallCompoundMinorversion1(t *testing.T) {
	fake := &fakeCaller{reply: []byte{}}
	_, err := nfs4.CallCompound(fake, "", 1, 2, []byte{0xAB, 0xCD})
	require.NoError(t, err)

	dec := xdr.NewDecoder(fake.args)
	tag, _ := dec.String()
	minor, _ := dec.Uint32()
	numops, _ := dec.Uint32()
	assert.Empty(t, tag)
	assert.EqualValues(t, 1, minor)
	assert.EqualValues(t, 2, numops)
	assert.Equal(t, []byte{0xAB, 0xCD}, dec.TakeRemaining())
}

func TestCheckCompoundStatusOK(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(0)
	enc.PutString("tag")
	enc.PutUint32(2)
	enc.PutUint32(0xFEED) // first op result follows

	dec := xdr.NewDecoder(enc.Bytes())
	require.NoError(t, nfs4.CheckCompoundStatus(dec))

	next, err := dec.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, 0xFEED, next, "decoder positioned at the resarray")
}

// A failed COMPOUND still echoes the client tag; the outer status becomes
// the typed error.
func TestCheckCompoundStatusError(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(uint32(nfs4.NFS4ErrNoEnt))
	enc.PutString("lookup")
	enc.PutUint32(1)

	err := nfs4.CheckCompoundStatus(xdr.NewDecoder(enc.Bytes()))
	require.Error(t, err)
	assert.True(t, nfs4.IsStatus(err, nfs4.NFS4ErrNoEnt))
}

func TestDecodeGetFHResult(t *testing.T) {
	fh := []byte{1, 2, 3, 4}

	var enc xdr.Encoder
	enc.PutUint32(nfs4.OpGetFH)
	enc.PutUint32(0)
	enc.PutOpaque(fh)

	got, err := nfs4.DecodeGetFHResult(xdr.NewDecoder(enc.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, nfs4.FH(fh), got)
}

func TestPerOpStatusError(t *testing.T) {
	var enc xdr.Encoder
	enc.PutUint32(nfs4.OpLookup)
	enc.PutUint32(uint32(nfs4.NFS4ErrNoEnt))

	err := nfs4.DecodeLookupResult(xdr.NewDecoder(enc.Bytes()))
	require.Error(t, err)
	assert.True(t, nfs4.IsStatus(err, nfs4.NFS4ErrNoEnt))
}
