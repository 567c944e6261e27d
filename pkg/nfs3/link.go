package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeLinkArgs builds LINK3args: the file to link plus target directory
// and name.
func EncodeLinkArgs(file FH, linkDir FH, linkName string) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, file)
	encodeFH(&enc, linkDir)
	enc.PutString(linkName)
	return enc.Release()
}

// DecodeLinkReply parses LINK3res. file_attributes and linkdir_wcc are
// present in both arms.
func DecodeLinkReply(reply []byte) error {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return err
	}
	if err := skipPostOpAttr(dec); err != nil { // file_attributes
		return err
	}
	if err := skipWCCData(dec); err != nil { // linkdir_wcc
		return err
	}
	if status != 0 {
		return &Error{Status: Status(status), Proc: "LINK"}
	}
	return nil
}

// Link creates a hard link linkDir/linkName to file.
func (c *Client) Link(file FH, linkDir FH, linkName string) error {
	reply, err := c.call(ProcLink, EncodeLinkArgs(file, linkDir, linkName))
	if err != nil {
		return err
	}
	return DecodeLinkReply(reply)
}
