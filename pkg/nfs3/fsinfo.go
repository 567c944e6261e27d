package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeFsinfoArgs builds FSINFO3args: the filesystem root handle.
func EncodeFsinfoArgs(root FH) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, root)
	return enc.Release()
}

// DecodeFsinfoReply parses FSINFO3res.
func DecodeFsinfoReply(reply []byte) (*FsinfoResult, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // obj_attributes, both arms
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "FSINFO"}
	}

	var r FsinfoResult
	fields := []*uint32{&r.Rtmax, &r.Rtpref, &r.Rtmult, &r.Wtmax, &r.Wtpref, &r.Wtmult, &r.Dtpref}
	for _, f := range fields {
		if *f, err = dec.Uint32(); err != nil {
			return nil, err
		}
	}
	if r.MaxFilesize, err = dec.Uint64(); err != nil {
		return nil, err
	}
	if r.TimeDelta.Seconds, err = dec.Uint32(); err != nil {
		return nil, err
	}
	if r.TimeDelta.Nseconds, err = dec.Uint32(); err != nil {
		return nil, err
	}
	if r.Properties, err = dec.Uint32(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Fsinfo returns static server capabilities. Use Rtmax/Wtmax to bound
// READ/WRITE batch sizes.
func (c *Client) Fsinfo(root FH) (*FsinfoResult, error) {
	reply, err := c.call(ProcFsinfo, EncodeFsinfoArgs(root))
	if err != nil {
		return nil, err
	}
	return DecodeFsinfoReply(reply)
}
