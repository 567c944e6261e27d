package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeFsstatArgs builds FSSTAT3args: the filesystem root handle.
func EncodeFsstatArgs(root FH) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, root)
	return enc.Release()
}

// DecodeFsstatReply parses FSSTAT3res.
func DecodeFsstatReply(reply []byte) (*FsstatResult, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // obj_attributes, both arms
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "FSSTAT"}
	}

	var r FsstatResult
	fields := []*uint64{&r.TotalBytes, &r.FreeBytes, &r.AvailBytes, &r.TotalFiles, &r.FreeFiles, &r.AvailFiles}
	for _, f := range fields {
		if *f, err = dec.Uint64(); err != nil {
			return nil, err
		}
	}
	if r.Invarsec, err = dec.Uint32(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Fsstat returns capacity and usage counters for the filesystem containing
// root.
func (c *Client) Fsstat(root FH) (*FsstatResult, error) {
	reply, err := c.call(ProcFsstat, EncodeFsstatArgs(root))
	if err != nil {
		return nil, err
	}
	return DecodeFsstatReply(reply)
}
