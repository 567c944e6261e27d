package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeWriteArgs builds WRITE3args: handle, offset, count, stability mode
// and the data as a variable-length opaque.
func EncodeWriteArgs(fh FH, offset uint64, stable Stable, data []byte) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	enc.PutUint64(offset)
	enc.PutUint32(uint32(len(data)))
	enc.PutUint32(uint32(stable))
	enc.PutOpaque(data)
	return enc.Release()
}

// DecodeWriteReply parses WRITE3res. file_wcc is present in both arms.
// The committed level may be stricter than requested; the verifier changes
// only when the server restarts.
func DecodeWriteReply(reply []byte) (*WriteResult, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipWCCData(dec); err != nil {
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "WRITE"}
	}

	var r WriteResult
	if r.Count, err = dec.Uint32(); err != nil {
		return nil, err
	}
	committed, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	r.Committed = Stable(committed)
	verf, err := dec.FixedOpaque(8)
	if err != nil {
		return nil, err
	}
	copy(r.Verf[:], verf)
	return &r, nil
}

// Write writes data to fh at offset with the requested stability.
func (c *Client) Write(fh FH, offset uint64, stable Stable, data []byte) (*WriteResult, error) {
	reply, err := c.call(ProcWrite, EncodeWriteArgs(fh, offset, stable, data))
	if err != nil {
		return nil, err
	}
	return DecodeWriteReply(reply)
}
