package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeGetAttrArgs builds GETATTR3args: just the file handle.
func EncodeGetAttrArgs(fh FH) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	return enc.Release()
}

// DecodeGetAttrReply parses GETATTR3res. Unlike every other procedure the
// failure arm carries no attributes (RFC 1813 §3.3.1).
func DecodeGetAttrReply(reply []byte) (*Fattr, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "GETATTR"}
	}
	return DecodeFattr(dec)
}

// GetAttr returns the attributes of the object identified by fh.
func (c *Client) GetAttr(fh FH) (*Fattr, error) {
	reply, err := c.call(ProcGetAttr, EncodeGetAttrArgs(fh))
	if err != nil {
		return nil, err
	}
	return DecodeGetAttrReply(reply)
}
