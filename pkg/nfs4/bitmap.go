package nfs4

import "github.com/marmos91/nfsclient/pkg/xdr"

// bitmap4 (RFC 7531): a variable-length vector of 32-bit words where
// attribute N occupies word N/32, bit 1<<(N%32).

// SetBit sets attribute id in the bitmap, growing the word vector as
// needed.
func SetBit(bitmap *[]uint32, id uint32) {
	word := id / 32
	for uint32(len(*bitmap)) <= word {
		*bitmap = append(*bitmap, 0)
	}
	(*bitmap)[word] |= 1 << (id % 32)
}

// IsBitSet reports whether attribute id is present. Words beyond the vector
// are implicitly zero.
func IsBitSet(bitmap []uint32, id uint32) bool {
	word := id / 32
	if word >= uint32(len(bitmap)) {
		return false
	}
	return bitmap[word]&(1<<(id%32)) != 0
}

// MakeBitmap builds a bitmap from a list of attribute ids.
func MakeBitmap(ids ...uint32) []uint32 {
	var bm []uint32
	for _, id := range ids {
		SetBit(&bm, id)
	}
	return bm
}

// EncodeBitmap writes the word count followed by the words.
func EncodeBitmap(enc *xdr.Encoder, bitmap []uint32) {
	enc.PutUint32(uint32(len(bitmap)))
	for _, word := range bitmap {
		enc.PutUint32(word)
	}
}

// DecodeBitmap reads a bitmap4. Bounded at 8 words; larger counts indicate
// a corrupt reply rather than a real attribute set.
func DecodeBitmap(dec *xdr.Decoder) ([]uint32, error) {
	count, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if count > 8 {
		return nil, &Error{Status: NFS4ErrBadXDR, Op: "bitmap4"}
	}
	bitmap := make([]uint32, count)
	for i := range bitmap {
		if bitmap[i], err = dec.Uint32(); err != nil {
			return nil, err
		}
	}
	return bitmap, nil
}

// skipBitmap consumes a bitmap4 without keeping it (attrset results).
func skipBitmap(dec *xdr.Decoder) error {
	_, err := DecodeBitmap(dec)
	return err
}
