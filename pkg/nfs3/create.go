package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeCreateArgs builds CREATE3args for UNCHECKED or GUARDED mode.
func EncodeCreateArgs(dir FH, name string, mode CreateMode, attrs *Sattr) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	enc.PutUint32(uint32(mode))
	EncodeSattr(&enc, attrs)
	return enc.Release()
}

// EncodeCreateExclusiveArgs builds CREATE3args for EXCLUSIVE mode: the
// createhow3 union carries the 8-byte verifier instead of attributes.
func EncodeCreateExclusiveArgs(dir FH, name string, verf Verifier) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	enc.PutUint32(uint32(CreateExclusive))
	enc.PutFixedOpaque(verf[:])
	return enc.Release()
}

// DecodeCreateReply parses CREATE3res and returns the new file's handle.
// Servers may legally omit the handle from post_op_fh3; that surfaces as
// ErrNoFileHandle.
func DecodeCreateReply(reply []byte) (FH, error) {
	return decodeNewObjectReply(reply, "CREATE")
}

// decodeNewObjectReply handles the shared result shape of CREATE, MKDIR,
// SYMLINK and MKNOD: post_op_fh3 + obj_attributes + dir_wcc on success,
// dir_wcc alone on failure.
func decodeNewObjectReply(reply []byte, proc string) (FH, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if status != 0 {
		if err := skipWCCData(dec); err != nil { // dir_wcc
			return nil, err
		}
		return nil, &Error{Status: Status(status), Proc: proc}
	}

	fhPresent, err := dec.Bool()
	if err != nil {
		return nil, err
	}
	if !fhPresent {
		return nil, ErrNoFileHandle
	}
	fh, err := decodeFH(dec)
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // obj_attributes
		return nil, err
	}
	if err := skipWCCData(dec); err != nil { // dir_wcc
		return nil, err
	}
	return fh, nil
}

// Create creates name in dir with the given mode and attributes and returns
// the new file's handle.
func (c *Client) Create(dir FH, name string, mode CreateMode, attrs *Sattr) (FH, error) {
	reply, err := c.call(ProcCreate, EncodeCreateArgs(dir, name, mode, attrs))
	if err != nil {
		return nil, err
	}
	return DecodeCreateReply(reply)
}

// CreateExclusive creates name in dir in EXCLUSIVE mode. Retrying with the
// same verifier is idempotent; a different verifier on an existing name
// yields NFS3ERR_EXIST.
func (c *Client) CreateExclusive(dir FH, name string, verf Verifier) (FH, error) {
	reply, err := c.call(ProcCreate, EncodeCreateExclusiveArgs(dir, name, verf))
	if err != nil {
		return nil, err
	}
	return DecodeCreateReply(reply)
}
