package nfs4

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/xdr"
)

// graceServer answers the first graceFails OPEN compounds with
// NFS4ERR_GRACE and then succeeds, recording the seqid of every attempt.
type graceServer struct {
	t          *testing.T
	graceFails int
	seqids     []uint32
}

func (s *graceServer) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	dec := xdr.NewDecoder(args)
	_, err := dec.String() // tag
	require.NoError(s.t, err)
	_, err = dec.Uint32() // minorversion
	require.NoError(s.t, err)
	_, err = dec.Uint32() // numops
	require.NoError(s.t, err)

	// First op: PUTFH or PUTROOTFH.
	opcode, err := dec.Uint32()
	require.NoError(s.t, err)
	if opcode == OpPutFH {
		_, err = dec.Opaque()
		require.NoError(s.t, err)
	}

	// Second op must be OPEN; record its seqid.
	opcode, err = dec.Uint32()
	require.NoError(s.t, err)
	require.EqualValues(s.t, OpOpen, opcode)
	seqid, err := dec.Uint32()
	require.NoError(s.t, err)
	s.seqids = append(s.seqids, seqid)

	var enc xdr.Encoder
	if len(s.seqids) <= s.graceFails {
		enc.PutUint32(uint32(NFS4ErrGrace))
		enc.PutString("")
		enc.PutUint32(1)
		// PUTFH executed before OPEN failed.
		enc.PutUint32(OpPutFH)
		enc.PutUint32(0)
		return enc.Release(), nil
	}

	enc.PutUint32(0)
	enc.PutString("")
	enc.PutUint32(3)
	// PUTFH result
	enc.PutUint32(OpPutFH)
	enc.PutUint32(0)
	// OPEN result: stateid, cinfo, rflags, attrset, delegation none
	enc.PutUint32(OpOpen)
	enc.PutUint32(0)
	enc.PutUint32(1)
	enc.PutFixedOpaque(make([]byte, 12))
	enc.PutBool(true)
	enc.PutUint64(0)
	enc.PutUint64(0)
	enc.PutUint32(0) // rflags: no CONFIRM
	enc.PutUint32(0) // attrset empty
	enc.PutUint32(DelegateNone)
	// GETFH result
	enc.PutUint32(OpGetFH)
	enc.PutUint32(0)
	enc.PutOpaque([]byte{0x42})
	return enc.Release(), nil
}

// An OPEN hitting the server's grace period retries with the SAME seqid
// until the grace period ends.
func TestOpenRetriesGraceWithSameSeqid(t *testing.T) {
	oldWait := graceRetryWait
	graceRetryWait = time.Millisecond
	defer func() { graceRetryWait = oldWait }()

	server := &graceServer{t: t, graceFails: 2}
	client := NewClient(server)

	f, err := client.OpenRead(FH{1, 2}, "file.txt")
	require.NoError(t, err)
	require.Len(t, server.seqids, 3)
	assert.Equal(t, server.seqids[0], server.seqids[1])
	assert.Equal(t, server.seqids[1], server.seqids[2])
	assert.Equal(t, FH{0x42}, f.FH)
	assert.EqualValues(t, 1, f.Stateid.Seqid)
}

// confirmingServer demands OPEN_CONFIRM on every OPEN and records the
// seqids of both ops.
type confirmingServer struct {
	t            *testing.T
	openSeqids   []uint32
	confirmSeqid uint32
}

func (s *confirmingServer) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	dec := xdr.NewDecoder(args)
	_, err := dec.String() // tag
	require.NoError(s.t, err)
	_, err = dec.Uint32() // minorversion
	require.NoError(s.t, err)
	_, err = dec.Uint32() // numops
	require.NoError(s.t, err)

	opcode, err := dec.Uint32() // PUTFH
	require.NoError(s.t, err)
	require.EqualValues(s.t, OpPutFH, opcode)
	_, err = dec.Opaque()
	require.NoError(s.t, err)

	opcode, err = dec.Uint32()
	require.NoError(s.t, err)

	var enc xdr.Encoder
	switch opcode {
	case OpOpen:
		seqid, err := dec.Uint32()
		require.NoError(s.t, err)
		s.openSeqids = append(s.openSeqids, seqid)

		enc.PutUint32(0)
		enc.PutString("")
		enc.PutUint32(3)
		enc.PutUint32(OpPutFH)
		enc.PutUint32(0)
		enc.PutUint32(OpOpen)
		enc.PutUint32(0)
		enc.PutUint32(1) // unconfirmed stateid
		enc.PutFixedOpaque([]byte{0xAA, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
		enc.PutBool(true)
		enc.PutUint64(0)
		enc.PutUint64(0)
		enc.PutUint32(OpenResultConfirm)
		enc.PutUint32(0)
		enc.PutUint32(DelegateNone)
		enc.PutUint32(OpGetFH)
		enc.PutUint32(0)
		enc.PutOpaque([]byte{0x11})

	case OpOpenConfirm:
		_, err := dec.Uint32() // stateid seqid
		require.NoError(s.t, err)
		_, err = dec.FixedOpaque(12)
		require.NoError(s.t, err)
		s.confirmSeqid, err = dec.Uint32()
		require.NoError(s.t, err)

		enc.PutUint32(0)
		enc.PutString("")
		enc.PutUint32(2)
		enc.PutUint32(OpPutFH)
		enc.PutUint32(0)
		enc.PutUint32(OpOpenConfirm)
		enc.PutUint32(0)
		enc.PutUint32(2) // confirmed stateid
		enc.PutFixedOpaque([]byte{0xBB, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	default:
		s.t.Fatalf("unexpected opcode %d", opcode)
	}
	return enc.Release(), nil
}

// When the OPEN reply sets OPEN4_RESULT_CONFIRM, the client issues
// OPEN_CONFIRM with a fresh seqid and adopts the confirmed stateid.
func TestOpenConfirmReplacesStateid(t *testing.T) {
	server := &confirmingServer{t: t}
	client := NewClient(server)

	f, err := client.OpenRead(FH{1}, "file.txt")
	require.NoError(t, err)

	require.Len(t, server.openSeqids, 1)
	assert.Equal(t, server.openSeqids[0]+1, server.confirmSeqid, "OPEN_CONFIRM uses a fresh seqid")
	assert.EqualValues(t, 2, f.Stateid.Seqid, "confirmed stateid replaces the original")
	assert.EqualValues(t, 0xBB, f.Stateid.Other[0])
	assert.Equal(t, server.confirmSeqid, f.Seqid, "CLOSE must use the confirm seqid")
}

// A second open after a completed one advances the open seqid.
func TestOpenSeqidAdvancesPerOpen(t *testing.T) {
	graceRetryWaitBackup := graceRetryWait
	graceRetryWait = time.Millisecond
	defer func() { graceRetryWait = graceRetryWaitBackup }()

	server := &graceServer{t: t}
	client := NewClient(server)

	_, err := client.OpenRead(FH{1}, "a")
	require.NoError(t, err)
	server.graceFails = 0
	_, err = client.OpenRead(FH{1}, "b")
	require.NoError(t, err)

	require.Len(t, server.seqids, 2)
	assert.Equal(t, server.seqids[0]+1, server.seqids[1])
}
