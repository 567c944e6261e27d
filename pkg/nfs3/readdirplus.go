package nfs3

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeReadDirPlusArgs builds READDIRPLUS3args. dircount bounds the entry
// list, maxcount the whole reply; server interpretations vary.
func EncodeReadDirPlusArgs(dir FH, cookie uint64, cookieverf Verifier, dircount, maxcount uint32) []byte {
	var enc xdr.Encoder
	encodeFH(&enc, dir)
	enc.PutUint64(cookie)
	enc.PutFixedOpaque(cookieverf[:])
	enc.PutUint32(dircount)
	enc.PutUint32(maxcount)
	return enc.Release()
}

// DecodeReadDirPlusReply parses READDIRPLUS3res. Each entry optionally
// carries inline attributes and a file handle, saving per-entry
// GETATTR/LOOKUP round trips.
func DecodeReadDirPlusReply(reply []byte) (*ReadDirPlusPage, error) {
	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if err := skipPostOpAttr(dec); err != nil { // dir_attributes, both arms
		return nil, err
	}
	if status != 0 {
		return nil, &Error{Status: Status(status), Proc: "READDIRPLUS"}
	}

	var page ReadDirPlusPage
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
		var e DirEntryPlus
		if e.FileID, err = dec.Uint64(); err != nil {
			return nil, err
		}
		if e.Name, err = dec.String(); err != nil {
			return nil, err
		}
		if e.Cookie, err = dec.Uint64(); err != nil {
			return nil, err
		}
		if e.Attr, err = decodePostOpAttr(dec); err != nil { // name_attributes
			return nil, err
		}
		fhPresent, err := dec.Bool() // name_handle
		if err != nil {
			return nil, err
		}
		if fhPresent {
			if e.FH, err = decodeFH(dec); err != nil {
				return nil, err
			}
		}
		page.Entries = append(page.Entries, e)
	}

	if page.EOF, err = dec.Bool(); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReadDirPlusPage reads one page of extended directory entries.
func (c *Client) ReadDirPlusPage(dir FH, cookie uint64, cookieverf Verifier, dircount, maxcount uint32) (*ReadDirPlusPage, error) {
	reply, err := c.call(ProcReadDirPlus, EncodeReadDirPlusArgs(dir, cookie, cookieverf, dircount, maxcount))
	if err != nil {
		return nil, err
	}
	return DecodeReadDirPlusReply(reply)
}

// ReadDirPlus lists the whole directory with attributes and handles,
// paginating to EOF with the same cookie discipline as ReadDir.
func (c *Client) ReadDirPlus(dir FH, dircount, maxcount uint32) ([]DirEntryPlus, error) {
	var all []DirEntryPlus
	var cookie uint64
	var cookieverf Verifier
	restarted := false

	for {
		page, err := c.ReadDirPlusPage(dir, cookie, cookieverf, dircount, maxcount)
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
