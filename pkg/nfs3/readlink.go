package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeReadLinkArgs builds READLINK3args: the symlink handle.
func EncodeReadLinkArgs(fh FH) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	return enc.Release()
}

// DecodeReadLinkReply parses READLINK3res and returns the target path.
func DecodeReadLinkReply(reply []byte) (string, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return "", err
	}
	if err := skipPostOpAttr(dec); err != nil { // symlink_attributes, both arms
		return "", err
	}
	if status != 0 {
		return "", &Error{Status: Status(status), Proc: "READLINK"}
	}
	return dec.String()
}

// ReadLink returns the target path of the symlink fh.
func (c *Client) ReadLink(fh FH) (string, error) {
	reply, err := c.call(ProcReadLink, EncodeReadLinkArgs(fh))
	if err != nil {
		return "", err
	}
	return DecodeReadLinkReply(reply)
}
