package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeReadArgs builds READ3args: handle, offset, count.
func EncodeReadArgs(fh FH, offset uint64, count uint32) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, fh)
	enc.PutUint64(offset)
	enc.PutUint32(count)
	return enc.Release()
}

// ReadResult carries one READ reply: the data, whether end-of-file was
// reached, and the count the server reports (which may be shorter than the
// data request).
type ReadResult struct {
	Data  []byte
	EOF   bool
	Count uint32
}

// DecodeReadReply parses READ3res.
func DecodeReadReply(reply []byte) (*ReadResult, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // file_attributes, both arms
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "READ"}
	}

	var r ReadResult
	if r.Count, err = dec.Uint32(); err != nil {
		return nil, err
	}
	if r.EOF, err = dec.Bool(); err != nil {
		return nil, err
	}
	if r.Data, err = dec.Opaque(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Read reads up to count bytes from fh starting at offset. A short result
// does not imply EOF; check the result's EOF flag.
func (c *Client) Read(fh FH, offset uint64, count uint32) (*ReadResult, error) {
	reply, err := c.call(ProcRead, EncodeReadArgs(fh, offset, count))
	if err != nil {
		return nil, err
	}
	return DecodeReadReply(reply)
}
