package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeLookupArgs builds LOOKUP3args: directory handle + name.
func EncodeLookupArgs(dir FH, name string) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	return enc.Release()
}

// DecodeLookupReply parses LOOKUP3res. The OK arm carries the object handle
// plus object and directory attributes; the failure arm carries directory
// attributes only.
func DecodeLookupReply(reply []byte) (FH, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if status != 0 {
		if err := skipPostOpAttr(dec); err != nil { // dir_attributes
			return nil, err
		}
		return nil, &Error{Status: Status(status), Proc: "LOOKUP"}
	}
	fh, err := decodeFH(dec)
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // obj_attributes
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // dir_attributes
		return nil, err
	}
	return fh, nil
}

// Lookup resolves name inside the directory dir.
func (c *Client) Lookup(dir FH, name string) (FH, error) {
	reply, err := c.call(ProcLookup, EncodeLookupArgs(dir, name))
	if err != nil {
		return nil, err
	}
	return DecodeLookupReply(reply)
}
