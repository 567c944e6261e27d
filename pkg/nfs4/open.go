package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// encodeOpenPrefix writes the argument prefix shared by every OPEN:
// seqid, share_access, share_deny=NONE, open_owner4{clientid, owner}.
func encodeOpenPrefix(enc *xdr.Encoder, seqid, shareAccess uint32, clientid uint64, owner string) {
	enc.PutUint32(OpOpen)
	enc.PutUint32(seqid)
	enc.PutUint32(shareAccess)
	enc.PutUint32(ShareDenyNone)
	enc.PutUint64(clientid)
	enc.PutString(owner)
}

// EncodeOpenNoCreate appends OPEN of an existing file: openflag4
// OPEN4_NOCREATE and open_claim4 CLAIM_NULL with the file name.
func EncodeOpenNoCreate(enc *xdr.Encoder, seqid, shareAccess uint32, clientid uint64, owner, name string) {
	encodeOpenPrefix(enc, seqid, shareAccess, clientid, owner)
	enc.PutUint32(OpenNoCreate)
	enc.PutUint32(ClaimNull)
	enc.PutString(name)
}

// EncodeOpenCreate appends OPEN with OPEN4_CREATE in UNCHECKED mode and the
// initial attributes.
func EncodeOpenCreate(enc *xdr.Encoder, seqid, shareAccess uint32, clientid uint64, owner, name string, attrs *Sattr) {
	encodeOpenPrefix(enc, seqid, shareAccess, clientid, owner)
	enc.PutUint32(OpenCreate)
	enc.PutUint32(CreateUnchecked)
	EncodeFattr(enc, attrs)
	enc.PutUint32(ClaimNull)
	enc.PutString(name)
}

// DecodeOpenResult parses OPEN4resok, keeping the stateid and rflags.
// change_info, the attrset bitmap and any offered delegation are consumed
// and discarded; without a callback channel this client never accepts a
// delegation, so nothing beyond the wire cursor depends on them.
func DecodeOpenResult(dec *xdr.Decoder) (*OpenResult, error) {
	if err := decodeOpHeader(dec, "OPEN"); err != nil {
		return nil, err
	}

	var r OpenResult
	var err error
	if r.Stateid, err = decodeStateid(dec); err != nil {
		return nil, err
	}
	if err := skipChangeInfo(dec); err != nil {
		return nil, err
	}
	if r.Rflags, err = dec.Uint32(); err != nil {
		return nil, err
	}
	if err := skipBitmap(dec); err != nil { // attrset
		return nil, err
	}
	if err := skipDelegation(dec); err != nil {
		return nil, err
	}
	return &r, nil
}

// skipDelegation consumes an open_delegation4 union.
func skipDelegation(dec *xdr.Decoder) error {
	delegType, err := dec.Uint32()
	if err != nil {
		return err
	}

	switch delegType {
	case DelegateNone:
		return nil
	case DelegateRead:
		if _, err := decodeStateid(dec); err != nil {
			return err
		}
		if _, err := dec.Uint32(); err != nil { // recall
			return err
		}
		return skipAce(dec)
	case DelegateWrite:
		if _, err := decodeStateid(dec); err != nil {
			return err
		}
		if _, err := dec.Uint32(); err != nil { // recall
			return err
		}
		// nfs_space_limit4: limitby + two words (filesize or
		// num_blocks + bytes_per_block).
		for i := 0; i < 3; i++ {
			if _, err := dec.Uint32(); err != nil {
				return err
			}
		}
		return skipAce(dec)
	default:
		return &Error{Status: NFS4ErrBadXDR, Op: "OPEN delegation"}
	}
}

// skipAce consumes an nfsace4: type, flag, access mask, who.
func skipAce(dec *xdr.Decoder) error {
	for i := 0; i < 3; i++ {
		if _, err := dec.Uint32(); err != nil {
			return err
		}
	}
	_, err := dec.String()
	return err
}

// EncodeOpenConfirm appends OPEN_CONFIRM with the stateid from OPEN and a
// fresh seqid. v4.0 only.
func EncodeOpenConfirm(enc *xdr.Encoder, sid Stateid, seqid uint32) {
	enc.PutUint32(OpOpenConfirm)
	encodeStateid(enc, sid)
	enc.PutUint32(seqid)
}

// DecodeOpenConfirmResult returns the confirmed stateid, which replaces the
// one OPEN returned.
func DecodeOpenConfirmResult(dec *xdr.Decoder) (Stateid, error) {
	if err := decodeOpHeader(dec, "OPEN_CONFIRM"); err != nil {
		return Stateid{}, err
	}
	return decodeStateid(dec)
}

// EncodeClose appends CLOSE with the open seqid and stateid.
func EncodeClose(enc *xdr.Encoder, seqid uint32, sid Stateid) {
	enc.PutUint32(OpClose)
	enc.PutUint32(seqid)
	encodeStateid(enc, sid)
}

// DecodeCloseResult consumes a CLOSE result. The returned stateid is dead
// by definition and discarded.
func DecodeCloseResult(dec *xdr.Decoder) error {
	if err := decodeOpHeader(dec, "CLOSE"); err != nil {
		return err
	}
	_, err := decodeStateid(dec)
	return err
}
