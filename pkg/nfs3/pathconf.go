package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodePathconfArgs builds PATHCONF3args: the object handle.
func EncodePathconfArgs(fh FH) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	return enc.Release()
}

// DecodePathconfReply parses PATHCONF3res.
func DecodePathconfReply(reply []byte) (*PathconfResult, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // obj_attributes, both arms
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "PATHCONF"}
	}

	var r PathconfResult
	if r.Linkmax, err = dec.Uint32(); err != nil {
		return nil, err
	}
	if r.NameMax, err = dec.Uint32(); err != nil {
		return nil, err
	}
	bools := []*bool{&r.NoTrunc, &r.ChownRestricted, &r.CaseInsensitive, &r.CasePreserving}
	for _, b := range bools {
		if *b, err = dec.Bool(); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// Pathconf returns the POSIX pathconf limits for fh.
func (c *Client) Pathconf(fh FH) (*PathconfResult, error) {
	reply, err := c.call(ProcPathconf, EncodePathconfArgs(fh))
	if err != nil {
		return nil, err
	}
	return DecodePathconfReply(reply)
}
