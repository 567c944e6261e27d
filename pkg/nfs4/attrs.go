package nfs4

import (
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// Attribute IDs (RFC 7530 §5.8). Only the attributes this client requests
// and decodes are listed; GETATTR requests never mention others.
const (
	AttrType            = 1
	AttrChange          = 3
	AttrSize            = 4
	AttrFSID            = 8
	AttrFileID          = 20
	AttrMode            = 33
	AttrNumlinks        = 35
	AttrOwner           = 36
	AttrOwnerGroup      = 37
	AttrSpaceUsed       = 45
	AttrTimeAccess      = 47
	AttrTimeAccessSet   = 64
	AttrTimeMetadata    = 52
	AttrTimeModify      = 53
	AttrTimeModifySet   = 65
	AttrMountedOnFileID = 55
)

// DefaultGetAttrIDs is the attribute set the clients request on GetAttr.
var DefaultGetAttrIDs = []uint32{
	AttrType, AttrChange, AttrSize, AttrFileID, AttrMode, AttrNumlinks,
	AttrOwner, AttrOwnerGroup, AttrTimeAccess, AttrTimeMetadata, AttrTimeModify,
}

// EncodeAttrRequest writes a GETATTR/READDIR request bitmap for ids.
func EncodeAttrRequest(enc *xdr.Encoder, ids ...uint32) {
	EncodeBitmap(enc, MakeBitmap(ids...))
}

func decodeTime(dec *xdr.Decoder) (*Time, error) {
	sec, err := dec.Uint64()
	if err != nil {
		return nil, err
	}
	nsec, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	return &Time{Seconds: int64(sec), Nseconds: nsec}, nil
}

// DecodeFattr reads a server fattr4: the bitmap and the opaque attrlist,
// whose values appear in ascending attribute-ID order. A nested decoder
// walks the attrlist; decoding stops when it is exhausted, so trailing
// attribute bits this client does not know are tolerated, while unknown
// bits *before* a known one misalign the walk: later values are read from
// the wrong offsets, and a decode error results only when a read runs past
// the end of the attrlist.
func DecodeFattr(dec *xdr.Decoder) (*Fattr, error) {
	bitmap, err := DecodeBitmap(dec)
	if err != nil {
		return nil, err
	}
	attrlist, err := dec.Opaque()
	if err != nil {
		return nil, err
	}

	ad := xdr.NewDecoder(attrlist)
	var a Fattr

	if IsBitSet(bitmap, AttrType) {
		v, err := ad.Uint32()
		if err != nil {
			return nil, err
		}
		t := Ftype(v)
		a.Type = &t
	}
	if IsBitSet(bitmap, AttrChange) {
		v, err := ad.Uint64()
		if err != nil {
			return nil, err
		}
		a.Change = &v
	}
	if IsBitSet(bitmap, AttrSize) {
		v, err := ad.Uint64()
		if err != nil {
			return nil, err
		}
		a.Size = &v
	}
	if IsBitSet(bitmap, AttrFSID) {
		// fsid4: major + minor, not surfaced.
		if _, err := ad.Uint64(); err != nil {
			return nil, err
		}
		if _, err := ad.Uint64(); err != nil {
			return nil, err
		}
	}
	if IsBitSet(bitmap, AttrFileID) {
		v, err := ad.Uint64()
		if err != nil {
			return nil, err
		}
		a.FileID = &v
	}
	if IsBitSet(bitmap, AttrMode) {
		v, err := ad.Uint32()
		if err != nil {
			return nil, err
		}
		a.Mode = &v
	}
	if IsBitSet(bitmap, AttrNumlinks) {
		v, err := ad.Uint32()
		if err != nil {
			return nil, err
		}
		a.Numlinks = &v
	}
	if IsBitSet(bitmap, AttrOwner) {
		v, err := ad.String()
		if err != nil {
			return nil, err
		}
		a.Owner = &v
	}
	if IsBitSet(bitmap, AttrOwnerGroup) {
		v, err := ad.String()
		if err != nil {
			return nil, err
		}
		a.OwnerGroup = &v
	}
	if IsBitSet(bitmap, AttrSpaceUsed) {
		v, err := ad.Uint64()
		if err != nil {
			return nil, err
		}
		a.SpaceUsed = &v
	}
	if IsBitSet(bitmap, AttrTimeAccess) {
		if a.TimeAccess, err = decodeTime(ad); err != nil {
			return nil, err
		}
	}
	if IsBitSet(bitmap, AttrTimeMetadata) {
		if a.TimeMetadata, err = decodeTime(ad); err != nil {
			return nil, err
		}
	}
	if IsBitSet(bitmap, AttrTimeModify) {
		if a.TimeModify, err = decodeTime(ad); err != nil {
			return nil, err
		}
	}
	if IsBitSet(bitmap, AttrMountedOnFileID) {
		v, err := ad.Uint64()
		if err != nil {
			return nil, err
		}
		a.MountedOnFileID = &v
	}

	return &a, nil
}

// EncodeFattr writes a fattr4 for SETATTR/CREATE from the present fields of
// attrs: a bitmap computed from the set fields, then the values in
// ascending attribute-ID order inside an opaque. Time fields carry the
// settime4 discriminant SET_TO_CLIENT_TIME.
func EncodeFattr(enc *xdr.Encoder, attrs *Sattr) {
	var bm []uint32
	if attrs.Size != nil {
		SetBit(&bm, AttrSize)
	}
	if attrs.Mode != nil {
		SetBit(&bm, AttrMode)
	}
	if attrs.Owner != nil {
		SetBit(&bm, AttrOwner)
	}
	if attrs.OwnerGroup != nil {
		SetBit(&bm, AttrOwnerGroup)
	}
	if attrs.TimeAccess != nil {
		SetBit(&bm, AttrTimeAccessSet)
	}
	if attrs.TimeModify != nil {
		SetBit(&bm, AttrTimeModifySet)
	}

	var ae xdr.Encoder
	if attrs.Size != nil {
		ae.PutUint64(*attrs.Size)
	}
	if attrs.Mode != nil {
		ae.PutUint32(*attrs.Mode)
	}
	if attrs.Owner != nil {
		ae.PutString(*attrs.Owner)
	}
	if attrs.OwnerGroup != nil {
		ae.PutString(*attrs.OwnerGroup)
	}
	if attrs.TimeAccess != nil {
		ae.PutUint32(1) // SET_TO_CLIENT_TIME
		ae.PutUint64(uint64(attrs.TimeAccess.Seconds))
		ae.PutUint32(attrs.TimeAccess.Nseconds)
	}
	if attrs.TimeModify != nil {
		ae.PutUint32(1)
		ae.PutUint64(uint64(attrs.TimeModify.Seconds))
		ae.PutUint32(attrs.TimeModify.Nseconds)
	}

	EncodeBitmap(enc, bm)
	enc.PutOpaque(ae.Bytes())
}
