package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeAccessArgs builds ACCESS3args: handle + requested access mask.
func EncodeAccessArgs(fh FH, mask uint32) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	enc.PutUint32(mask)
	return enc.Release()
}

// DecodeAccessReply parses ACCESS3res and returns the granted mask.
// The granted mask may be a subset or a superset of the requested one.
func DecodeAccessReply(reply []byte) (uint32, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return 0, err
	}
	if err := skipPostOpAttr(dec); err != nil { // obj_attributes, both arms
		return 0, err
	}
	if status != 0 {
		return 0, &Error{Status: Status(status), Proc: "ACCESS"}
	}
	return dec.Uint32()
}

// Access checks which of the requested access bits the server grants the
// caller on fh.
func (c *Client) Access(fh FH, mask uint32) (uint32, error) {
	reply, err := c.call(ProcAccess, EncodeAccessArgs(fh, mask))
	if err != nil {
		return 0, err
	}
	return DecodeAccessReply(reply)
}
