package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeRemoveArgs builds REMOVE3args: directory handle + name.
func EncodeRemoveArgs(dir FH, name string) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	return enc.Release()
}

// DecodeRemoveReply parses REMOVE3res. dir_wcc is present in both arms.
func DecodeRemoveReply(reply []byte) error {
	return decodeWccOnlyReply(reply, "REMOVE")
}

// decodeWccOnlyReply handles procedures whose result is a bare wcc_data in
// both arms (REMOVE, RMDIR).
func decodeWccOnlyReply(reply []byte, proc string) error {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return err
	}
	if err := skipWCCData(dec); err != nil {
		return err
	}
	if status != 0 {
		return &Error{Status: Status(status), Proc: proc}
	}
	return nil
}

// Remove deletes the file name from dir.
func (c *Client) Remove(dir FH, name string) error {
	reply, err := c.call(ProcRemove, EncodeRemoveArgs(dir, name))
	if err != nil {
		return err
	}
	return DecodeRemoveReply(reply)
}
