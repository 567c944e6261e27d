package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeCommitArgs builds COMMIT3args. offset=0, count=0 commits the entire
// file.
func EncodeCommitArgs(fh FH, offset uint64, count uint32) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	enc.PutUint64(offset)
	enc.PutUint32(count)
	return enc.Release()
}

// DecodeCommitReply parses COMMIT3res and returns the write verifier.
// Compare it against the verifiers of prior unstable WRITEs: a mismatch
// means the server restarted and those writes must be replayed.
func DecodeCommitReply(reply []byte) (Verifier, error) {
	var verf Verifier
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return verf, err
	}
	if err := skipWCCData(dec); err != nil { // file_wcc, both arms
		return verf, err
	}
	if status != 0 {
		return verf, &Error{Status: Status(status), Proc: "COMMIT"}
	}
	v, err := dec.FixedOpaque(8)
	if err != nil {
		return verf, err
	}
	copy(verf[:], v)
	return verf, nil
}

// Commit flushes unstable writes in the given range to stable storage.
func (c *Client) Commit(fh FH, offset uint64, count uint32) (Verifier, error) {
	reply, err := c.call(ProcCommit, EncodeCommitArgs(fh, offset, count))
	if err != nil {
		return Verifier{}, err
	}
	return DecodeCommitReply(reply)
}
