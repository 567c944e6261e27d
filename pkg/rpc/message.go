package rpc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	xdr2 "github.com/rasky/go-xdr/xdr2"

	"github.com/marmos91/nfsclient/pkg/xdr"
)

// callHeader is the fixed RPC call header (RFC 5531 §9). It is marshaled
// with go-xdr, which encodes the OpaqueAuth bodies as variable-length
// opaques and produces the canonical wire layout.
type callHeader struct {
	XID        uint32
	MsgType    uint32
	RPCVersion uint32
	Program    uint32
	Version    uint32
	Procedure  uint32
	Cred       OpaqueAuth
	Verf       OpaqueAuth
}

// BuildCallMessage serializes a CALL message: header, credential, verifier,
// then the procedure arguments verbatim.
//
// With a nil auth the credential is AUTH_NONE and the message is exactly
// 40 bytes before the arguments. The verifier is always AUTH_NONE.
func BuildCallMessage(xid, prog, vers, proc uint32, args []byte, auth *AuthSys) ([]byte, error) {
	hdr := callHeader{
		XID:        xid,
		MsgType:    MsgTypeCall,
		RPCVersion: RPCVersion,
		Program:    prog,
		Version:    vers,
		Procedure:  proc,
		Cred:       OpaqueAuth{Flavor: AuthFlavorNone},
		Verf:       OpaqueAuth{Flavor: AuthFlavorNone},
	}

	if auth != nil {
		var body bytes.Buffer
		if _, err := xdr2.Marshal(&body, auth); err != nil {
			return nil, fmt.Errorf("marshal AUTH_SYS credential: %w", err)
		}
		hdr.Cred = OpaqueAuth{Flavor: AuthFlavorSys, Body: body.Bytes()}
	}

	var buf bytes.Buffer
	if _, err := xdr2.Marshal(&buf, &hdr); err != nil {
		return nil, fmt.Errorf("marshal call header: %w", err)
	}
	buf.Write(args)
	return buf.Bytes(), nil
}

// AddRecordMark prepends the 4-byte record mark to payload: bit 31 set
// (last fragment — outbound messages are always single-fragment), bits 30..0
// the payload length.
func AddRecordMark(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out, 1<<31|uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// ReadRecord reads one RPC record from r, reassembling fragments until a
// mark with the last-fragment bit has been consumed (RFC 5531 §11).
// A short read or an oversized fragment is a transport error.
func ReadRecord(r io.Reader) ([]byte, error) {
	var record []byte
	for {
		var markBuf [4]byte
		if _, err := io.ReadFull(r, markBuf[:]); err != nil {
			return nil, fmt.Errorf("read record mark: %w", err)
		}
		mark := binary.BigEndian.Uint32(markBuf[:])
		last := mark&0x80000000 != 0
		length := mark & 0x7FFFFFFF

		if length > MaxFragmentSize {
			return nil, fmt.Errorf("fragment too large: %d bytes", length)
		}

		frag := make([]byte, length)
		if _, err := io.ReadFull(r, frag); err != nil {
			return nil, fmt.Errorf("read record data: %w", err)
		}
		record = append(record, frag...)

		if last {
			return record, nil
		}
	}
}

// ParseReply validates the reply envelope of a reassembled record and
// returns the procedure-specific result body that follows it.
//
// The layout checked is: xid, msg_type=REPLY, reply_stat=MSG_ACCEPTED,
// verifier (consumed and discarded), accept_stat=SUCCESS. Any deviation
// returns an *EnvelopeError; a truncated header returns the decode error.
func ParseReply(record []byte) ([]byte, error) {
	dec := xdr.NewDecoder(record)

	if _, err := dec.Uint32(); err != nil { // xid
		return nil, fmt.Errorf("reply xid: %w", err)
	}

	msgType, err := dec.Uint32()
	if err != nil {
		return nil, fmt.Errorf("reply msg_type: %w", err)
	}
	if msgType != MsgTypeReply {
		return nil, &EnvelopeError{Reason: fmt.Sprintf("expected REPLY, got msg_type=%d", msgType)}
	}

	replyStat, err := dec.Uint32()
	if err != nil {
		return nil, fmt.Errorf("reply_stat: %w", err)
	}
	if replyStat != ReplyStatAccepted {
		return nil, &EnvelopeError{Reason: fmt.Sprintf("message denied (reply_stat=%d)", replyStat)}
	}

	// Verifier: flavor + opaque body, both discarded.
	if _, err := dec.Uint32(); err != nil {
		return nil, fmt.Errorf("verifier flavor: %w", err)
	}
	if _, err := dec.Opaque(); err != nil {
		return nil, fmt.Errorf("verifier body: %w", err)
	}

	acceptStat, err := dec.Uint32()
	if err != nil {
		return nil, fmt.Errorf("accept_stat: %w", err)
	}
	if acceptStat != AcceptSuccess {
		return nil, &EnvelopeError{Reason: fmt.Sprintf("call not accepted (accept_stat=%d)", acceptStat)}
	}

	return dec.TakeRemaining(), nil
}
