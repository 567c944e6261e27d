package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// EncodeCreateDir appends CREATE of a directory: the createtype4
// discriminant NF4DIR carries no extra data.
func EncodeCreateDir(enc *xdr.Encoder, name string, attrs *Sattr) {
	enc.PutUint32(OpCreate)
	enc.PutUint32(uint32(NF4DIR))
	enc.PutString(name)
	EncodeFattr(enc, attrs)
}

// EncodeCreateSymlink appends CREATE of a symlink; the NF4LNK arm carries
// the target path before the new name.
func EncodeCreateSymlink(enc *xdr.Encoder, name, target string, attrs *Sattr) {
	enc.PutUint32(OpCreate)
	enc.PutUint32(uint32(NF4LNK))
	enc.PutString(target)
	enc.PutString(name)
	EncodeFattr(enc, attrs)
}

// DecodeCreateResult consumes a CREATE result: change_info plus the attrset
// bitmap.
func DecodeCreateResult(dec *xdr.Decoder) error {
	if err := decodeOpHeader(dec, "CREATE"); err != nil {
		return err
	}
	if err := skipChangeInfo(dec); err != nil {
		return err
	}
	return skipBitmap(dec)
}

// EncodeRemove appends REMOVE(name) against the current directory.
func EncodeRemove(enc *xdr.Encoder, name string) {
	enc.PutUint32(OpRemove)
	enc.PutString(name)
}

// DecodeRemoveResult consumes a REMOVE result.
func DecodeRemoveResult(dec *xdr.Decoder) error {
	if err := decodeOpHeader(dec, "REMOVE"); err != nil {
		return err
	}
	return skipChangeInfo(dec)
}

// EncodeRename appends RENAME(oldname, newname). The saved FH is the source
// directory, the current FH the target; frame with
// PUTFH(src) + SAVEFH + PUTFH(dst) + RENAME.
func EncodeRename(enc *xdr.Encoder, oldname, newname string) {
	enc.PutUint32(OpRename)
	enc.PutString(oldname)
	enc.PutString(newname)
}

// DecodeRenameResult consumes a RENAME result: change_info for both
// directories.
func DecodeRenameResult(dec *xdr.Decoder) error {
	if err := decodeOpHeader(dec, "RENAME"); err != nil {
		return err
	}
	if err := skipChangeInfo(dec); err != nil { // source
		return err
	}
	return skipChangeInfo(dec) // target
}

// EncodeReadDir appends READDIR with the cookie/verifier cursor, the
// dircount/maxcount bounds, and the per-entry attribute request.
func EncodeReadDir(enc *xdr.Encoder, cookie uint64, cookieverf Verifier, dircount, maxcount uint32, attrIDs ...uint32) {
	enc.PutUint32(OpReadDir)
	enc.PutUint64(cookie)
	enc.PutFixedOpaque(cookieverf[:])
	enc.PutUint32(dircount)
	enc.PutUint32(maxcount)
	EncodeAttrRequest(enc, attrIDs...)
}

// DecodeReadDirResult parses one READDIR page: the cookieverf, the entry
// linked list (each entry carrying cookie, name and fattr4), and eof.
func DecodeReadDirResult(dec *xdr.Decoder) (*ReadDirPage, error) {
	if err := decodeOpHeader(dec, "READDIR"); err != nil {
		return nil, err
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
		if e.Cookie, err = dec.Uint64(); err != nil {
			return nil, err
		}
		if e.Name, err = dec.String(); err != nil {
			return nil, err
		}
		attrs, err := DecodeFattr(dec)
		if err != nil {
			return nil, err
		}
		e.Attrs = *attrs
		page.Entries = append(page.Entries, e)
	}

	if page.EOF, err = dec.Bool(); err != nil {
		return nil, err
	}
	return &page, nil
}
