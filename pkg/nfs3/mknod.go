package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeMknodArgs builds MKNOD3args for NF3FIFO and NF3SOCK, whose
// mknoddata3 arm carries only the attributes.
func EncodeMknodArgs(dir FH, name string, ftype Ftype, attrs *Sattr) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	enc.PutUint32(uint32(ftype))
	EncodeSattr(&enc, attrs)
	return enc.Release()
}

// EncodeMknodDeviceArgs builds MKNOD3args for NF3CHR and NF3BLK, whose
// devicedata3 arm carries attributes followed by the device numbers.
func EncodeMknodDeviceArgs(dir FH, name string, ftype Ftype, attrs *Sattr, spec Specdata) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutString(name)
	enc.PutUint32(uint32(ftype))
	EncodeSattr(&enc, attrs)
	enc.PutUint32(spec.Major)
	enc.PutUint32(spec.Minor)
	return enc.Release()
}

// DecodeMknodReply parses MKNOD3res; same result shape as CREATE.
func DecodeMknodReply(reply []byte) (FH, error) {
	return decodeNewObjectReply(reply, "MKNOD")
}

// MknodFifo creates a named pipe.
func (c *Client) MknodFifo(dir FH, name string, attrs *Sattr) (FH, error) {
	reply, err := c.call(ProcMknod, EncodeMknodArgs(dir, name, NF3FIFO, attrs))
	if err != nil {
		return nil, err
	}
	return DecodeMknodReply(reply)
}

// MknodSocket creates a unix-domain socket node.
func (c *Client) MknodSocket(dir FH, name string, attrs *Sattr) (FH, error) {
	reply, err := c.call(ProcMknod, EncodeMknodArgs(dir, name, NF3SOCK, attrs))
	if err != nil {
		return nil, err
	}
	return DecodeMknodReply(reply)
}

// MknodChar creates a character device node.
func (c *Client) MknodChar(dir FH, name string, attrs *Sattr, spec Specdata) (FH, error) {
	reply, err := c.call(ProcMknod, EncodeMknodDeviceArgs(dir, name, NF3CHR, attrs, spec))
	if err != nil {
		return nil, err
	}
	return DecodeMknodReply(reply)
}

// MknodBlock creates a block device node.
func (c *Client) MknodBlock(dir FH, name string, attrs *Sattr, spec Specdata) (FH, error) {
	reply, err := c.call(ProcMknod, EncodeMknodDeviceArgs(dir, name, NF3BLK, attrs, spec))
	if err != nil {
		return nil, err
	}
	return DecodeMknodReply(reply)
}
