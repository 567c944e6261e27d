package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeRmdirArgs builds RMDIR3args: directory handle + name.
func EncodeRmdirArgs(dir FH, name string) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	return enc.Release()
}

// DecodeRmdirReply parses RMDIR3res. dir_wcc is present in both arms.
func DecodeRmdirReply(reply []byte) error {
	return decodeWccOnlyReply(reply, "RMDIR")
}

// Rmdir removes the empty directory name from dir.
func (c *Client) Rmdir(dir FH, name string) error {
	reply, err := c.call(ProcRmdir, EncodeRmdirArgs(dir, name))
	if err != nil {
		return err
	}
	return DecodeRmdirReply(reply)
}
