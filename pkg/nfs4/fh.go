package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// Current-filehandle operations: PUTFH, PUTROOTFH, GETFH, SAVEFH,
// RESTOREFH, LOOKUPP. All results are a bare {resop, status} except GETFH,
// which returns the current handle.

// EncodePutRootFH appends PUTROOTFH.
func EncodePutRootFH(enc *xdr.Encoder) {
	enc.PutUint32(OpPutRootFH)
}

// EncodePutFH appends PUTFH(fh).
func EncodePutFH(enc *xdr.Encoder, fh FH) {
	enc.PutUint32(OpPutFH)
	enc.PutOpaque(fh)
}

// EncodeCurrentFH appends PUTROOTFH for the root sentinel, PUTFH otherwise.
// Every filesystem-verb compound starts with this.
func EncodeCurrentFH(enc *xdr.Encoder, fh FH) {
	if fh.IsRoot() {
		EncodePutRootFH(enc)
	} else {
		EncodePutFH(enc, fh)
	}
}

// EncodeGetFH appends GETFH.
func EncodeGetFH(enc *xdr.Encoder) {
	enc.PutUint32(OpGetFH)
}

// EncodeSaveFH appends SAVEFH.
func EncodeSaveFH(enc *xdr.Encoder) {
	enc.PutUint32(OpSaveFH)
}

// EncodeRestoreFH appends RESTOREFH.
func EncodeRestoreFH(enc *xdr.Encoder) {
	enc.PutUint32(OpRestoreFH)
}

// EncodeLookupP appends LOOKUPP (move to the parent directory).
func EncodeLookupP(enc *xdr.Encoder) {
	enc.PutUint32(OpLookupP)
}

// DecodePutRootFHResult consumes a PUTROOTFH result.
func DecodePutRootFHResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "PUTROOTFH")
}

// DecodePutFHResult consumes a PUTFH result. It also matches a PUTROOTFH
// result because the resop echo is ignored, so compounds framed with
// EncodeCurrentFH decode uniformly.
func DecodePutFHResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "PUTFH")
}

// DecodeGetFHResult returns the current file handle.
func DecodeGetFHResult(dec *xdr.Decoder) (FH, error) {
	if err := decodeOpHeader(dec, "GETFH"); err != nil {
		return nil, err
	}
	fh, err := dec.Opaque()
	if err != nil {
		return nil, err
	}
	return FH(fh), nil
}

// DecodeSaveFHResult consumes a SAVEFH result.
func DecodeSaveFHResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "SAVEFH")
}

// DecodeRestoreFHResult consumes a RESTOREFH result.
func DecodeRestoreFHResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "RESTOREFH")
}

// DecodeLookupPResult consumes a LOOKUPP result.
func DecodeLookupPResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "LOOKUPP")
}

func encodeStateid(enc *xdr.Encoder, sid Stateid) {
	enc.PutUint32(sid.Seqid)
	enc.PutFixedOpaque(sid.Other[:])
}

func decodeStateid(dec *xdr.Decoder) (Stateid, error) {
	var sid Stateid
	seqid, err := dec.Uint32()
	if err != nil {
		return sid, err
	}
	other, err := dec.FixedOpaque(12)
	if err != nil {
		return sid, err
	}
	sid.Seqid = seqid
	copy(sid.Other[:], other)
	return sid, nil
}

// skipChangeInfo consumes a change_info4: atomic flag + before/after change
// values.
func skipChangeInfo(dec *xdr.Decoder) error {
	if _, err := dec.Uint32(); err != nil {
		return err
	}
	if _, err := dec.Uint64(); err != nil {
		return err
	}
	_, err := dec.Uint64()
	return err
}
