package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// SetClientIDResult is SETCLIENTID4resok: the clientid and the verifier to
// echo in SETCLIENTID_CONFIRM.
type SetClientIDResult struct {
	ClientID    uint64
	ConfirmVerf Verifier
}

// EncodeSetClientID appends SETCLIENTID. The callback address is a null
// netaddr4: this client never registers a callback channel, so delegations
// are never granted against it.
func EncodeSetClientID(enc *xdr.Encoder, verifier Verifier, ownerID string) {
	enc.PutUint32(OpSetClientID)

	// nfs_client_id4: verifier + opaque id
	enc.PutFixedOpaque(verifier[:])
	enc.PutString(ownerID)

	// cb_client4: cb_program + netaddr4{r_netid, r_addr}
	enc.PutUint32(0)
	enc.PutString("tcp")
	enc.PutString("0.0.0.0.0.0")

	// callback_ident
	enc.PutUint32(0)
}

// DecodeSetClientIDResult returns the clientid/confirm-verifier pair.
func DecodeSetClientIDResult(dec *xdr.Decoder) (*SetClientIDResult, error) {
	if err := decodeOpHeader(dec, "SETCLIENTID"); err != nil {
		return nil, err
	}
	var r SetClientIDResult
	var err error
	if r.ClientID, err = dec.Uint64(); err != nil {
		return nil, err
	}
	cv, err := dec.FixedOpaque(8)
	if err != nil {
		return nil, err
	}
	copy(r.ConfirmVerf[:], cv)
	return &r, nil
}

// EncodeSetClientIDConfirm appends SETCLIENTID_CONFIRM echoing the server's
// verifier.
func EncodeSetClientIDConfirm(enc *xdr.Encoder, clientid uint64, confirmVerf Verifier) {
	enc.PutUint32(OpSetClientIDConfirm)
	enc.PutUint64(clientid)
	enc.PutFixedOpaque(confirmVerf[:])
}

// DecodeSetClientIDConfirmResult consumes a SETCLIENTID_CONFIRM result.
func DecodeSetClientIDConfirmResult(dec *xdr.Decoder) error {
	return decodeOpHeader(dec, "SETCLIENTID_CONFIRM")
}
