package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeMkdirArgs builds MKDIR3args: directory handle, name, attributes.
func EncodeMkdirArgs(dir FH, name string, attrs *Sattr) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	EncodeSattr(&enc, attrs)
	return enc.Release()
}

// DecodeMkdirReply parses MKDIR3res; same result shape as CREATE.
func DecodeMkdirReply(reply []byte) (FH, error) {
	return decodeNewObjectReply(reply, "MKDIR")
}

// Mkdir creates the directory name inside dir and returns its handle.
func (c *Client) Mkdir(dir FH, name string, attrs *Sattr) (FH, error) {
	reply, err := c.call(ProcMkdir, EncodeMkdirArgs(dir, name, attrs))
	if err != nil {
		return nil, err
	}
	return DecodeMkdirReply(reply)
}
