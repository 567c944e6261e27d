package nfs41_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/nfs4"
	"github.com/marmos91/nfsclient/pkg/nfs41"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// fakeServer implements enough of an NFSv4.1 server to drive the client's
// session lifecycle in-process: EXCHANGE_ID, CREATE_SESSION, SEQUENCE,
// RECLAIM_COMPLETE, PUTROOTFH/GETFH, ACCESS and DESTROY_SESSION.
type fakeServer struct {
	t *testing.T

	sessionid        nfs4.SessionID
	clientid         uint64
	seqids           []uint32 // every SEQUENCE sequence id observed
	reclaimDone      bool
	sessionDestroyed bool
	closed           bool
	failDestroy      bool
}

func newFakeServer(t *testing.T) *fakeServer {
	s := &fakeServer{t: t, clientid: 0xC11E47}
	copy(s.sessionid[:], []byte{0xD1, 0x70, 0x0F, 0x5}) // at least one non-zero byte
	return s
}

func (s *fakeServer) Close() error {
	s.closed = true
	return nil
}

func (s *fakeServer) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	require.EqualValues(s.t, nfs4.Program, prog)
	require.EqualValues(s.t, nfs4.Version, vers)
	require.EqualValues(s.t, nfs4.ProcCompound, proc)

	dec := xdr.NewDecoder(args)
	tag, err := dec.String()
	require.NoError(s.t, err)
	minor, err := dec.Uint32()
	require.NoError(s.t, err)
	require.EqualValues(s.t, 1, minor, "every v4.1 COMPOUND carries minorversion=1")
	numops, err := dec.Uint32()
	require.NoError(s.t, err)

	var out xdr.Encoder
	out.PutUint32(0)
	out.PutString(tag)
	out.PutUint32(numops)

	for i := uint32(0); i < numops; i++ {
		opcode, err := dec.Uint32()
		require.NoError(s.t, err)
		s.handleOp(opcode, dec, &out)
	}
	return out.Release(), nil
}

func (s *fakeServer) handleOp(opcode uint32, dec *xdr.Decoder, out *xdr.Encoder) {
	switch opcode {
	case nfs4.OpExchangeID:
		_, err := dec.FixedOpaque(8) // co_verifier
		require.NoError(s.t, err)
		_, err = dec.Opaque() // co_ownerid
		require.NoError(s.t, err)
		_, err = dec.Uint32() // flags
		require.NoError(s.t, err)
		_, err = dec.Uint32() // state_protect (SP4_NONE)
		require.NoError(s.t, err)
		_, err = dec.Uint32() // impl_id count
		require.NoError(s.t, err)

		out.PutUint32(nfs4.OpExchangeID)
		out.PutUint32(0)
		out.PutUint64(s.clientid)
		out.PutUint32(1) // eir_sequenceid
		out.PutUint32(0) // eir_flags
		out.PutUint32(0) // eir_state_protect
		out.PutUint64(0) // so_minor_id
		out.PutOpaque([]byte("srv"))
		out.PutOpaque([]byte("scope"))
		out.PutUint32(0) // impl ids

	case nfs4.OpCreateSession:
		clientid, err := dec.Uint64()
		require.NoError(s.t, err)
		require.Equal(s.t, s.clientid, clientid)
		_, err = dec.Uint32() // sequenceid
		require.NoError(s.t, err)
		_, err = dec.Uint32() // flags
		require.NoError(s.t, err)
		for i := 0; i < 14; i++ { // fore + back channel attrs
			_, err = dec.Uint32()
			require.NoError(s.t, err)
		}
		_, err = dec.Uint32() // cb_program
		require.NoError(s.t, err)
		nparms, err := dec.Uint32()
		require.NoError(s.t, err)
		for i := uint32(0); i < nparms; i++ {
			_, err = dec.Uint32() // AUTH_NONE flavor
			require.NoError(s.t, err)
		}

		out.PutUint32(nfs4.OpCreateSession)
		out.PutUint32(0)
		out.PutFixedOpaque(s.sessionid[:])
		out.PutUint32(1) // csr_sequence
		out.PutUint32(0) // csr_flags
		for i := 0; i < 14; i++ {
			out.PutUint32(0)
		}

	case nfs4.OpSequence:
		sid, err := dec.FixedOpaque(16)
		require.NoError(s.t, err)
		require.Equal(s.t, s.sessionid[:], sid)
		seqid, err := dec.Uint32()
		require.NoError(s.t, err)
		slotid, err := dec.Uint32()
		require.NoError(s.t, err)
		highest, err := dec.Uint32()
		require.NoError(s.t, err)
		_, err = dec.Uint32() // cachethis
		require.NoError(s.t, err)
		require.Zero(s.t, slotid, "single-slot clients always use slot 0")
		require.Zero(s.t, highest)
		s.seqids = append(s.seqids, seqid)

		out.PutUint32(nfs4.OpSequence)
		out.PutUint32(0)
		out.PutFixedOpaque(s.sessionid[:])
		out.PutUint32(seqid)
		out.PutUint32(0)
		out.PutUint32(0)
		out.PutUint32(0)
		out.PutUint32(0)

	case nfs4.OpReclaimComplete:
		_, err := dec.Uint32() // one_fs
		require.NoError(s.t, err)
		s.reclaimDone = true
		out.PutUint32(nfs4.OpReclaimComplete)
		out.PutUint32(0)

	case nfs4.OpPutRootFH:
		out.PutUint32(nfs4.OpPutRootFH)
		out.PutUint32(0)

	case nfs4.OpGetFH:
		out.PutUint32(nfs4.OpGetFH)
		out.PutUint32(0)
		out.PutOpaque([]byte{0xB0, 0x07})

	case nfs4.OpAccess:
		_, err := dec.Uint32()
		require.NoError(s.t, err)
		out.PutUint32(nfs4.OpAccess)
		out.PutUint32(0)
		out.PutUint32(nfs4.AccessRead)
		out.PutUint32(nfs4.AccessRead)

	case nfs4.OpDestroySession:
		sid, err := dec.FixedOpaque(16)
		require.NoError(s.t, err)
		require.Equal(s.t, s.sessionid[:], sid)
		s.sessionDestroyed = true
		out.PutUint32(nfs4.OpDestroySession)
		if s.failDestroy {
			out.PutUint32(uint32(nfs4.NFS4ErrBadSession))
		} else {
			out.PutUint32(0)
		}

	default:
		s.t.Fatalf("fake server: unexpected opcode %d", opcode)
	}
}

func TestBootstrapEstablishesSession(t *testing.T) {
	server := newFakeServer(t)
	client, err := nfs41.DialWithCaller(server)
	require.NoError(t, err)

	assert.Equal(t, server.clientid, client.ClientID())
	assert.Equal(t, server.sessionid, client.SessionID())
	assert.NotEqual(t, nfs4.SessionID{}, client.SessionID(), "session id must have a non-zero byte")
	assert.True(t, server.reclaimDone, "first in-session COMPOUND is RECLAIM_COMPLETE")
	assert.True(t, client.RootFH().IsRoot())

	// First in-session COMPOUND carried seqid 1, and ids are strictly
	// monotonic from there.
	require.NotEmpty(t, server.seqids)
	assert.EqualValues(t, 1, server.seqids[0])
	for i := 1; i < len(server.seqids); i++ {
		assert.Equal(t, server.seqids[i-1]+1, server.seqids[i])
	}
}

func TestSequenceIDMonotonicAcrossVerbs(t *testing.T) {
	server := newFakeServer(t)
	client, err := nfs41.DialWithCaller(server)
	require.NoError(t, err)

	before := len(server.seqids)
	for i := 0; i < 5; i++ {
		_, err := client.Access(client.RootFH(), nfs4.AccessRead)
		require.NoError(t, err)
	}

	seqids := server.seqids[before:]
	require.Len(t, seqids, 5)
	for i := 1; i < len(seqids); i++ {
		assert.Equal(t, seqids[i-1]+1, seqids[i], "a (slot, seq) pair is never reused")
	}
}

func TestCloseDestroysSessionAndSocket(t *testing.T) {
	server := newFakeServer(t)
	client, err := nfs41.DialWithCaller(server)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.True(t, server.sessionDestroyed)
	assert.True(t, server.closed)
}

// DESTROY_SESSION failures are swallowed; the socket still closes and Close
// reports success.
func TestCloseSwallowsDestroyFailure(t *testing.T) {
	server := newFakeServer(t)
	client, err := nfs41.DialWithCaller(server)
	require.NoError(t, err)

	server.failDestroy = true
	require.NoError(t, client.Close())
	assert.True(t, server.closed, "socket closes even when DESTROY_SESSION fails")
}
