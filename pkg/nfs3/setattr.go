package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeSetAttrArgs builds SETATTR3args: handle, new attributes and the
// optional ctime guard.
func EncodeSetAttrArgs(fh FH, attrs *Sattr, guard *SattrGuard) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	EncodeSattr(&enc, attrs)
	if guard != nil && guard.Check {
		enc.PutBool(true)
		enc.PutUint32(guard.Ctime.Seconds)
		enc.PutUint32(guard.Ctime.Nseconds)
	} else {
		enc.PutBool(false)
	}
	return enc.Release()
}

// DecodeSetAttrReply parses SETATTR3res. obj_wcc is present in both arms;
// a failed guard check surfaces as NFS3ERR_NOT_SYNC.
func DecodeSetAttrReply(reply []byte) error {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return err
	}
	if err := skipWCCData(dec); err != nil {
		return err
	}
	if status != 0 {
		return &Error{Status: Status(status), Proc: "SETATTR"}
	}
	return nil
}

// SetAttr updates attributes on fh. A nil guard skips the ctime check.
func (c *Client) SetAttr(fh FH, attrs *Sattr, guard *SattrGuard) error {
	reply, err := c.call(ProcSetAttr, EncodeSetAttrArgs(fh, attrs, guard))
	if err != nil {
		return err
	}
	return DecodeSetAttrReply(reply)
}
