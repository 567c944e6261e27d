package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeLookup appends LOOKUP(name). The resolved handle becomes the
// current FH; pair with GETFH to retrieve it.
func EncodeLookup(enc *xdr.Encoder, name string) {
	enc.PutUint32(OpLookup)
	enc.PutString(name)
}

// DecodeLookupResult consumes a LOOKUP result.
func DecodeLookupResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "LOOKUP")
}

// EncodeGetAttrOp appends GETATTR with a request bitmap for ids.
func EncodeGetAttrOp(enc *xdr.Encoder, ids ...uint32) {
	enc.PutUint32(OpGetAttr)
	EncodeAttrRequest(enc, ids...)
}

// DecodeGetAttrResult returns the decoded fattr4.
func DecodeGetAttrResult(dec *xdr.Decoder) (*Fattr, error) {
	if err := decodeOpHeader(dec, "GETATTR"); err != nil {
		return nil, err
	}
	return DecodeFattr(dec)
}

// EncodeSetAttrOp appends SETATTR. Size changes on an open file pass its
// stateid; pure metadata updates pass the zero (anonymous) stateid.
func EncodeSetAttrOp(enc *xdr.Encoder, sid Stateid, attrs *Sattr) {
	enc.PutUint32(OpSetAttr)
	encodeStateid(enc, sid)
	EncodeFattr(enc, attrs)
}

// DecodeSetAttrResult consumes a SETATTR result including the attrsset
// bitmap.
func DecodeSetAttrResult(dec *xdr.Decoder) error {
	if err := decodeOpHeader(dec, "SETATTR"); err != nil {
		return err
	}
	return skipBitmap(dec)
}

// EncodeAccessOp appends ACCESS(mask).
func EncodeAccessOp(enc *xdr.Encoder, mask uint32) {
	enc.PutUint32(OpAccess)
	enc.PutUint32(mask)
}

// DecodeAccessResult returns the supported and granted masks.
func DecodeAccessResult(dec *xdr.Decoder) (*AccessResult, error) {
	if err := decodeOpHeader(dec, "ACCESS"); err != nil {
		return nil, err
	}
	var r AccessResult
	var err error
	if r.Supported, err = dec.Uint32(); err != nil {
		return nil, err
	}
	if r.Access, err = dec.Uint32(); err != nil {
		return nil, err
	}
	return &r, nil
}

// EncodeReadLinkOp appends READLINK.
func EncodeReadLinkOp(enc *xdr.Encoder) {
	enc.PutUint32(OpReadLink)
}

// DecodeReadLinkResult returns the symlink target.
func DecodeReadLinkResult(dec *xdr.Decoder) (string, error) {
	if err := decodeOpHeader(dec, "READLINK"); err != nil {
		return "", err
	}
	return dec.String()
}

// EncodeRenewOp appends RENEW(clientid). v4.0 only; v4.1 leases renew
// implicitly through SEQUENCE.
func EncodeRenewOp(enc *xdr.Encoder, clientid uint64) {
	enc.PutUint32(OpRenew)
	enc.PutUint64(clientid)
}

// DecodeRenewResult consumes a RENEW result.
func DecodeRenewResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "RENEW")
}
