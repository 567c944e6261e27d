package rpc_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/rpc"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

func TestBuildCallMessageNoAuth(t *testing.T) {
	msg, err := rpc.BuildCallMessage(1, 100003, 3, 0, nil, nil)
	require.NoError(t, err)

	// xid + msg_type + rpcvers + prog + vers + proc = 24 bytes,
	// AUTH_NONE cred (flavor + zero length) = 8, AUTH_NONE verf = 8.
	require.Len(t, msg, 40)

	dec := xdr.NewDecoder(msg)
	fields := make([]uint32, 10)
	for i := range fields {
		v, err := dec.Uint32()
		require.NoError(t, err)
		fields[i] = v
	}
	assert.Equal(t, []uint32{
		1,          // xid
		0,          // CALL
		2,          // RPC version
		100003,     // program
		3,          // version
		0,          // procedure
		0, 0, 0, 0, // cred flavor/len, verf flavor/len
	}, fields)
}

func TestBuildCallMessageAuthSys(t *testing.T) {
	auth := rpc.AuthSys{
		Stamp:       42,
		Machinename: "host",
		UID:         1000,
		GID:         1000,
		GIDs:        []uint32{1000, 4},
	}
	msg, err := rpc.BuildCallMessage(7, 100003, 3, 1, []byte{0xAB}, &auth)
	require.NoError(t, err)

	dec := xdr.NewDecoder(msg)
	for i := 0; i < 6; i++ { // fixed header words
		_, err := dec.Uint32()
		require.NoError(t, err)
	}
	flavor, err := dec.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, rpc.AuthFlavorSys, flavor)

	body, err := dec.Opaque()
	require.NoError(t, err)

	bd := xdr.NewDecoder(body)
	stamp, _ := bd.Uint32()
	machine, _ := bd.String()
	uid, _ := bd.Uint32()
	gid, _ := bd.Uint32()
	ngids, _ := bd.Uint32()
	assert.EqualValues(t, 42, stamp)
	assert.Equal(t, "host", machine)
	assert.EqualValues(t, 1000, uid)
	assert.EqualValues(t, 1000, gid)
	assert.EqualValues(t, 2, ngids)

	// Verifier is AUTH_NONE even with AUTH_SYS credentials.
	vflavor, err := dec.Uint32()
	require.NoError(t, err)
	assert.EqualValues(t, rpc.AuthFlavorNone, vflavor)
	vlen, err := dec.Uint32()
	require.NoError(t, err)
	assert.Zero(t, vlen)

	// Arguments follow verbatim.
	assert.Equal(t, []byte{0xAB}, dec.TakeRemaining())
}

func TestAddRecordMark(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	framed := rpc.AddRecordMark(payload)

	require.Len(t, framed, 4+len(payload))
	assert.NotZero(t, framed[0]&0x80, "last-fragment bit must be set")
	mark := binary.BigEndian.Uint32(framed)
	assert.EqualValues(t, len(payload), mark&0x7FFFFFFF)
	assert.Equal(t, payload, framed[4:])
}

// buildReply assembles a reply record with the given envelope fields and body.
func buildReply(msgType, replyStat, acceptStat uint32, body []byte) []byte {
	var enc xdr.Encoder
	enc.PutUint32(1)       // xid
	enc.PutUint32(msgType) // msg_type
	enc.PutUint32(replyStat)
	if replyStat == rpc.ReplyStatAccepted {
		enc.PutUint32(rpc.AuthFlavorNone) // verifier flavor
		enc.PutOpaque(nil)                // verifier body
		enc.PutUint32(acceptStat)
	}
	out := enc.Release()
	return append(out, body...)
}

func TestParseReplySuccess(t *testing.T) {
	body := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	result, err := rpc.ParseReply(buildReply(rpc.MsgTypeReply, rpc.ReplyStatAccepted, rpc.AcceptSuccess, body))
	require.NoError(t, err)
	assert.Equal(t, body, result)
}

func TestParseReplyRejections(t *testing.T) {
	cases := []struct {
		name   string
		record []byte
	}{
		{"wrong msg_type", buildReply(rpc.MsgTypeCall, rpc.ReplyStatAccepted, rpc.AcceptSuccess, nil)},
		{"msg denied", buildReply(rpc.MsgTypeReply, rpc.ReplyStatDenied, 0, nil)},
		{"prog unavail", buildReply(rpc.MsgTypeReply, rpc.ReplyStatAccepted, rpc.AcceptProgUnavail, nil)},
		{"garbage args", buildReply(rpc.MsgTypeReply, rpc.ReplyStatAccepted, rpc.AcceptGarbageArgs, nil)},
		{"system err", buildReply(rpc.MsgTypeReply, rpc.ReplyStatAccepted, rpc.AcceptSystemErr, nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rpc.ParseReply(tc.record)
			var envErr *rpc.EnvelopeError
			require.ErrorAs(t, err, &envErr)
		})
	}
}

func TestReadRecordSingleFragment(t *testing.T) {
	payload := []byte("single fragment record")
	record, err := rpc.ReadRecord(bytes.NewReader(rpc.AddRecordMark(payload)))
	require.NoError(t, err)
	assert.Equal(t, payload, record)
}

func TestReadRecordTwoFragments(t *testing.T) {
	first := []byte("first half ")
	second := []byte("second half")

	var wire bytes.Buffer
	var mark [4]byte
	binary.BigEndian.PutUint32(mark[:], uint32(len(first))) // last bit clear
	wire.Write(mark[:])
	wire.Write(first)
	binary.BigEndian.PutUint32(mark[:], 1<<31|uint32(len(second)))
	wire.Write(mark[:])
	wire.Write(second)

	record, err := rpc.ReadRecord(&wire)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, first...), second...), record)
}

func TestReadRecordShortRead(t *testing.T) {
	// Mark promises 100 bytes but only 3 follow.
	var wire bytes.Buffer
	var mark [4]byte
	binary.BigEndian.PutUint32(mark[:], 1<<31|100)
	wire.Write(mark[:])
	wire.Write([]byte{1, 2, 3})

	_, err := rpc.ReadRecord(&wire)
	require.Error(t, err)
}

func TestReadRecordOversizedFragment(t *testing.T) {
	var mark [4]byte
	binary.BigEndian.PutUint32(mark[:], 1<<31|(rpc.MaxFragmentSize+1))
	_, err := rpc.ReadRecord(bytes.NewReader(mark[:]))
	require.Error(t, err)
}
