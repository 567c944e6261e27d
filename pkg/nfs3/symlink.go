package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeSymlinkArgs builds SYMLINK3args. symlinkdata3 carries the attributes
// before the target path.
func EncodeSymlinkArgs(dir FH, name, target string, attrs *Sattr) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	EncodeSattr(&enc, attrs)
	enc.PutString(target)
	return enc.Release()
}

// DecodeSymlinkReply parses SYMLINK3res; same result shape as CREATE.
func DecodeSymlinkReply(reply []byte) (FH, error) {
	return decodeNewObjectReply(reply, "SYMLINK")
}

// Symlink creates a symbolic link name in dir pointing at target.
func (c *Client) Symlink(dir FH, name, target string, attrs *Sattr) (FH, error) {
	reply, err := c.call(ProcSymlink, EncodeSymlinkArgs(dir, name, target, attrs))
	if err != nil {
		return nil, err
	}
	return DecodeSymlinkReply(reply)
}
