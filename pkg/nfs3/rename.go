package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeRenameArgs builds RENAME3args: source diropargs3 + target diropargs3.
func EncodeRenameArgs(fromDir FH, fromName string, toDir FH, toName string) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fromDir)
	enc.PutString(fromName)
	encodeFH(&enc, toDir)
	enc.PutString(toName)
	return enc.Release()
}

// DecodeRenameReply parses RENAME3res. Both arms carry two wcc_data blocks,
// one per directory.
func DecodeRenameReply(reply []byte) error {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return err
	}
	if err := skipWCCData(dec); err != nil { // fromdir_wcc
		return err
	}
	if err := skipWCCData(dec); err != nil { // todir_wcc
		return err
	}
	if status != 0 {
		return &Error{Status: Status(status), Proc: "RENAME"}
	}
	return nil
}

// Rename atomically moves fromDir/fromName to toDir/toName, replacing an
// existing target per POSIX semantics.
func (c *Client) Rename(fromDir FH, fromName string, toDir FH, toName string) error {
	reply, err := c.call(ProcRename, EncodeRenameArgs(fromDir, fromName, toDir, toName))
	if err != nil {
		return err
	}
	return DecodeRenameReply(reply)
}
