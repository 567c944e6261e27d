package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeRead appends READ(stateid, offset, count).
func EncodeRead(enc *xdr.Encoder, sid Stateid, offset uint64, count uint32) {
	enc.PutUint32(OpRead)
	encodeStateid(enc, sid)
	enc.PutUint64(offset)
	enc.PutUint32(count)
}

// DecodeReadResult returns the data and EOF flag.
func DecodeReadResult(dec *xdr.Decoder) (*ReadResult, error) {
	if err := decodeOpHeader(dec, "READ"); err != nil {
		return nil, err
	}
	var r ReadResult
	var err error
	if r.EOF, err = dec.Bool(); err != nil {
		return nil, err
	}
	if r.Data, err = dec.Opaque(); err != nil {
		return nil, err
	}
	return &r, nil
}

// EncodeWrite appends WRITE(stateid, offset, stable, data).
func EncodeWrite(enc *xdr.Encoder, sid Stateid, offset uint64, stable Stable, data []byte) {
	enc.PutUint32(OpWrite)
	encodeStateid(enc, sid)
	enc.PutUint64(offset)
	enc.PutUint32(uint32(stable))
	enc.PutOpaque(data)
}

// DecodeWriteResult returns the count, applied stability and write
// verifier.
func DecodeWriteResult(dec *xdr.Decoder) (*WriteResult, error) {
	if err := decodeOpHeader(dec, "WRITE"); err != nil {
		return nil, err
	}
	var r WriteResult
	var err error
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

// EncodeCommit appends COMMIT(offset, count); 0/0 commits the whole file.
func EncodeCommit(enc *xdr.Encoder, offset uint64, count uint32) {
	enc.PutUint32(OpCommit)
	enc.PutUint64(offset)
	enc.PutUint32(count)
}

// DecodeCommitResult returns the write verifier.
func DecodeCommitResult(dec *xdr.Decoder) (Verifier, error) {
	var verf Verifier
	if err := decodeOpHeader(dec, "COMMIT"); err != nil {
		return verf, err
	}
	v, err := dec.FixedOpaque(8)
	if err != nil {
		return verf, err
	}
	copy(verf[:], v)
	return verf, nil
}
