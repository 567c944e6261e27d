package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeReadDirArgs builds READDIR3args: handle, cookie, cookieverf, count.
func EncodeReadDirArgs(dir FH, cookie uint64, cookieverf Verifier, count uint32) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutUint64(cookie)
	enc.PutFixedOpaque(cookieverf[:])
	enc.PutUint32(count)
	return enc.Release()
}

// DecodeReadDirReply parses READDIR3res. Entries arrive as an XDR linked
// list: a value_follows discriminant before each entry, terminated by zero,
// then the eof flag.
func DecodeReadDirReply(reply []byte) (*ReadDirPage, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // dir_attributes, both arms
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "READDIR"}
	}

	var page ReadDirPage
	cv, err := dec.FixedOpaque(8)
	if err != nil {
		return nil, err
	}
	copy(page.Cookieverf[:], cv)

	for {
		follows, err := dec.Bool()
		if err != nil {
			return nil, err
		}
		if !follows {
			break
		}
		var e DirEntry
		if e.FileID, err = dec.Uint64(); err != nil {
			return nil, err
		}
		if e.Name, err = dec.String(); err != nil {
			return nil, err
		}
		if e.Cookie, err = dec.Uint64(); err != nil {
			return nil, err
		}
		page.Entries = append(page.Entries, e)
	}

	if page.EOF, err = dec.Bool(); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReadDirPage reads one page of directory entries. Callers propagate the
// last entry's cookie and the returned cookieverf to the next call; the
// first page uses cookie 0 and a zero verifier.
func (c *Client) ReadDirPage(dir FH, cookie uint64, cookieverf Verifier, count uint32) (*ReadDirPage, error) {
	reply, err := c.call(ProcReadDir, EncodeReadDirArgs(dir, cookie, cookieverf, count))
	if err != nil {
		return nil, err
	}
	return DecodeReadDirReply(reply)
}

// ReadDir lists the whole directory, paginating to EOF. If the server
// invalidates the cursor with NFS3ERR_BAD_COOKIE mid-listing, the iteration
// restarts once from the beginning.
func (c *Client) ReadDir(dir FH, count uint32) ([]DirEntry, error) {
	var all []DirEntry
	var cookie uint64
	var cookieverf Verifier
	restarted := false

	for {
		page, err := c.ReadDirPage(dir, cookie, cookieverf, count)
		if err != nil {
			if IsStatus(err, NFS3ErrBadCookie) && !restarted {
				restarted = true
				all = all[:0]
				cookie = 0
				cookieverf = Verifier{}
				continue
			}
			return nil, err
		}
		for _, e := range page.Entries {
			cookie = e.Cookie
			all = append(all, e)
		}
		cookieverf = page.Cookieverf
		if page.EOF {
			return all, nil
		}
	}
}
