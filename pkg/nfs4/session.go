package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// NFSv4.1 session operations (RFC 8881 §18): EXCHANGE_ID, CREATE_SESSION,
// SEQUENCE, RECLAIM_COMPLETE, DESTROY_SESSION. The bootstrap COMPOUNDs
// (EXCHANGE_ID, CREATE_SESSION) run outside any session and carry no
// SEQUENCE op.

// SessionID is the 16-byte session identifier from CREATE_SESSION.
type SessionID [16]byte

// ExchangeIDResult is the part of EXCHANGE_ID4resok the client keeps.
type ExchangeIDResult struct {
	ClientID   uint64
	SequenceID uint32
}

// exchgidFlagUseNonPNFS announces a non-pNFS client.
const exchgidFlagUseNonPNFS = 0x00020000

// EncodeExchangeID appends EXCHANGE_ID: client owner {verifier, ownerID},
// non-pNFS flags, SP4_NONE state protection, and an empty implementation-id
// list.
func EncodeExchangeID(enc *xdr.Encoder, verifier Verifier, ownerID string) {
	enc.PutUint32(OpExchangeID)
	enc.PutFixedOpaque(verifier[:])
	enc.PutString(ownerID)
	enc.PutUint32(exchgidFlagUseNonPNFS)
	enc.PutUint32(0) // eia_state_protect: SP4_NONE, no body
	enc.PutUint32(0) // eia_client_impl_id: empty array
}

// DecodeExchangeIDResult returns the clientid and the sequence id to seed
// CREATE_SESSION with. Server owner, scope and implementation ids are
// consumed and dropped.
func DecodeExchangeIDResult(dec *xdr.Decoder) (*ExchangeIDResult, error) {
	if err := decodeOpHeader(dec, "EXCHANGE_ID"); err != nil {
		return nil, err
	}

	var r ExchangeIDResult
	var err error
	if r.ClientID, err = dec.Uint64(); err != nil {
		return nil, err
	}
	if r.SequenceID, err = dec.Uint32(); err != nil {
		return nil, err
	}

	if _, err := dec.Uint32(); err != nil { // eir_flags
		return nil, err
	}
	if _, err := dec.Uint32(); err != nil { // eir_state_protect (SP4_NONE)
		return nil, err
	}
	if _, err := dec.Uint64(); err != nil { // server_owner.so_minor_id
		return nil, err
	}
	if _, err := dec.Opaque(); err != nil { // server_owner.so_major_id
		return nil, err
	}
	if _, err := dec.Opaque(); err != nil { // eir_server_scope
		return nil, err
	}

	implCount, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < implCount; i++ {
		if _, err := dec.Opaque(); err != nil { // nii_domain
			return nil, err
		}
		if _, err := dec.Opaque(); err != nil { // nii_name
			return nil, err
		}
		if _, err := dec.Uint64(); err != nil { // nii_date.seconds
			return nil, err
		}
		if _, err := dec.Uint32(); err != nil { // nii_date.nseconds
			return nil, err
		}
	}

	return &r, nil
}

// Channel attribute proposal for the fore channel: 64 KiB requests and
// responses, 1 KiB cached, 16 ops per compound, a single slot.
const (
	foreMaxRequest  = 65536
	foreMaxResponse = 65536
	foreMaxCached   = 1024
	backMaxRequest  = 4096
	backMaxResponse = 4096
	backMaxCached   = 256
)

func encodeChannelAttrs(enc *xdr.Encoder, maxRequest, maxResponse, maxCached uint32) {
	enc.PutUint32(0)           // ca_headerpadsize
	enc.PutUint32(maxRequest)  // ca_maxrequestsize
	enc.PutUint32(maxResponse) // ca_maxresponsesize
	enc.PutUint32(maxCached)   // ca_maxresponsesize_cached
	enc.PutUint32(16)          // ca_maxoperations
	enc.PutUint32(1)           // ca_maxrequests (slot count)
	enc.PutUint32(0)           // ca_rdma_ird: empty array
}

// EncodeCreateSession appends CREATE_SESSION for the clientid/sequenceid
// pair EXCHANGE_ID returned. One AUTH_NONE callback security parm is
// proposed; the back channel is never used.
func EncodeCreateSession(enc *xdr.Encoder, clientid uint64, sequenceid uint32) {
	enc.PutUint32(OpCreateSession)
	enc.PutUint64(clientid)
	enc.PutUint32(sequenceid)
	enc.PutUint32(0) // csa_flags

	encodeChannelAttrs(enc, foreMaxRequest, foreMaxResponse, foreMaxCached)
	encodeChannelAttrs(enc, backMaxRequest, backMaxResponse, backMaxCached)

	enc.PutUint32(0) // csa_cb_program

	enc.PutUint32(1) // csa_sec_parms: one entry
	enc.PutUint32(0) // cb_secflavor AUTH_NONE
}

// DecodeCreateSessionResult returns the session id. The echoed sequence,
// flags and negotiated channel attributes are consumed and dropped.
func DecodeCreateSessionResult(dec *xdr.Decoder) (SessionID, error) {
	var sid SessionID
	if err := decodeOpHeader(dec, "CREATE_SESSION"); err != nil {
		return sid, err
	}

	raw, err := dec.FixedOpaque(16)
	if err != nil {
		return sid, err
	}
	copy(sid[:], raw)

	if _, err := dec.Uint32(); err != nil { // csr_sequence
		return sid, err
	}
	if _, err := dec.Uint32(); err != nil { // csr_flags
		return sid, err
	}
	// Fore and back channel attrs: 7 words each (rdma_ird arrays empty).
	for i := 0; i < 14; i++ {
		if _, err := dec.Uint32(); err != nil {
			return sid, err
		}
	}
	return sid, nil
}

// EncodeSequence appends the SEQUENCE op that must lead every in-session
// COMPOUND. Single-slot discipline: slotid and highest_slotid are 0 and the
// per-client sequence id is strictly monotonic from 1.
func EncodeSequence(enc *xdr.Encoder, sessionid SessionID, sequenceid, slotid, highestSlotid uint32, cachethis bool) {
	enc.PutUint32(OpSequence)
	enc.PutFixedOpaque(sessionid[:])
	enc.PutUint32(sequenceid)
	enc.PutUint32(slotid)
	enc.PutUint32(highestSlotid)
	enc.PutBool(cachethis)
}

// DecodeSequenceResult consumes a SEQUENCE result: the echoed session id,
// sequence/slot echoes, target highest slot and status flags.
func DecodeSequenceResult(dec *xdr.Decoder) error {
	if err := decodeOpHeader(dec, "SEQUENCE"); err != nil {
		return err
	}
	if _, err := dec.FixedOpaque(16); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if _, err := dec.Uint32(); err != nil {
			return err
		}
	}
	return nil
}

// EncodeReclaimComplete appends RECLAIM_COMPLETE. With no state to reclaim
// the client reports completion immediately after session creation.
func EncodeReclaimComplete(enc *xdr.Encoder, oneFS bool) {
	enc.PutUint32(OpReclaimComplete)
	enc.PutBool(oneFS)
}

// DecodeReclaimCompleteResult consumes a RECLAIM_COMPLETE result.
func DecodeReclaimCompleteResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "RECLAIM_COMPLETE")
}

// EncodeDestroySession appends DESTROY_SESSION.
func EncodeDestroySession(enc *xdr.Encoder, sessionid SessionID) {
	enc.PutUint32(OpDestroySession)
	enc.PutFixedOpaque(sessionid[:])
}

// DecodeDestroySessionResult consumes a DESTROY_SESSION result.
func DecodeDestroySessionResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "DESTROY_SESSION")
}
