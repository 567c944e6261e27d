package nfs3

import (
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// DecodeFattr reads a fattr3: 21 32-bit words in fixed positions
// (RFC 1813 §2.6).
func DecodeFattr(dec *xdr.Decoder) (*Fattr, error) {
	var a Fattr
	var err error

	read32 := func(dst *uint32) {
		if err != nil {
			return
		}
		var v uint32
		v, err = dec.Uint32()
		*dst = v
	}
	read64 := func(dst *uint64) {
		if err != nil {
			return
		}
		var v uint64
		v, err = dec.Uint64()
		*dst = v
	}

	var ftype uint32
	read32(&ftype)
	a.Type = Ftype(ftype)
	read32(&a.Mode)
	read32(&a.Nlink)
	read32(&a.UID)
	read32(&a.GID)
	read64(&a.Size)
	read64(&a.Used)
	read32(&a.Rdev.Major)
	read32(&a.Rdev.Minor)
	read64(&a.FSID)
	read64(&a.FileID)
	read32(&a.Atime.Seconds)
	read32(&a.Atime.Nseconds)
	read32(&a.Mtime.Seconds)
	read32(&a.Mtime.Nseconds)
	read32(&a.Ctime.Seconds)
	read32(&a.Ctime.Nseconds)

	if err != nil {
		return nil, err
	}
	return &a, nil
}

// EncodeSattr writes a sattr3. Every optional field carries a presence
// discriminant; absent fields contribute only the zero discriminant.
func EncodeSattr(enc *xdr.Encoder, s *Sattr) {
	if s.Mode != nil {
		enc.PutBool(true)
		enc.PutUint32(*s.Mode)
	} else {
		enc.PutBool(false)
	}

	if s.UID != nil {
		enc.PutBool(true)
		enc.PutUint32(*s.UID)
	} else {
		enc.PutBool(false)
	}

	if s.GID != nil {
		enc.PutBool(true)
		enc.PutUint32(*s.GID)
	} else {
		enc.PutBool(false)
	}

	if s.Size != nil {
		enc.PutBool(true)
		enc.PutUint64(*s.Size)
	} else {
		enc.PutBool(false)
	}

	enc.PutUint32(uint32(s.Atime.How))
	if s.Atime.How == SetToClientTime {
		enc.PutUint32(s.Atime.Time.Seconds)
		enc.PutUint32(s.Atime.Time.Nseconds)
	}

	enc.PutUint32(uint32(s.Mtime.How))
	if s.Mtime.How == SetToClientTime {
		enc.PutUint32(s.Mtime.Time.Seconds)
		enc.PutUint32(s.Mtime.Time.Nseconds)
	}
}

// skipPostOpAttr consumes a post_op_attr: a presence discriminant followed
// by an optional fattr3. Replies carry it in both the OK and the failure
// arms, so decoders call this before branching on status.
func skipPostOpAttr(dec *xdr.Decoder) error {
	present, err := dec.Bool()
	if err != nil {
		return err
	}
	if present {
		_, err = DecodeFattr(dec)
	}
	return err
}

// decodePostOpAttr reads a post_op_attr, returning nil when absent.
func decodePostOpAttr(dec *xdr.Decoder) (*Fattr, error) {
	present, err := dec.Bool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return DecodeFattr(dec)
}

// skipPreOpAttr consumes a pre_op_attr: a presence discriminant followed by
// an optional wcc_attr (size + mtime + ctime, 6 words).
func skipPreOpAttr(dec *xdr.Decoder) error {
	present, err := dec.Bool()
	if err != nil {
		return err
	}
	if present {
		for i := 0; i < 6; i++ {
			if _, err := dec.Uint32(); err != nil {
				return err
			}
		}
	}
	return nil
}

// skipWCCData consumes a wcc_data block: pre_op_attr then post_op_attr.
func skipWCCData(dec *xdr.Decoder) error {
	if err := skipPreOpAttr(dec); err != nil {
		return err
	}
	return skipPostOpAttr(dec)
}

func encodeFH(enc *xdr.Encoder, fh FH) {
	enc.PutOpaque(fh)
}

func decodeFH(dec *xdr.Decoder) (FH, error) {
	b, err := dec.Opaque()
	if err != nil {
		return nil, err
	}
	return FH(b), nil
}
