package nfs4

import (
	"github.com/marmos91/nfsclient/pkg/rpc"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// CallCompound sends one COMPOUND RPC: the header {tag, minorversion,
// numOps} followed by the already-encoded operations, and returns the raw
// reply body starting at COMPOUND4res.status.
func CallCompound(caller rpc.Caller, tag string, minorversion, numOps uint32, opsBytes []byte) ([]byte, error) {
	var hdr xdr.Encoder
	hdr.PutString(tag)
	hdr.PutUint32(minorversion)
	hdr.PutUint32(numOps)

	args := append(hdr.Release(), opsBytes...)
	return caller.Call(Program, Version, ProcCompound, args)
}

// CheckCompoundStatus consumes the COMPOUND4res header — status, echoed
// tag, numops — leaving dec positioned at the first per-op result. A
// non-zero outer status is returned as *Error; the results of the ops that
// did execute are still behind dec for callers that want them.
func CheckCompoundStatus(dec *xdr.Decoder) error {
	status, err := dec.Uint32()
	if err != nil {
		return err
	}
	if _, err := dec.String(); err != nil { // tag
		return err
	}
	if _, err := dec.Uint32(); err != nil { // numops
		return err
	}
	if status != 0 {
		return &Error{Status: Status(status), Op: "COMPOUND"}
	}
	return nil
}

// decodeOpHeader consumes the {resop, status} prefix every per-op result
// begins with. The resop echo is ignored; a non-zero status becomes *Error.
func decodeOpHeader(dec *xdr.Decoder, opName string) error {
	if _, err := dec.Uint32(); err != nil { // resop
		return err
	}
	status, err := dec.Uint32()
	if err != nil {
		return err
	}
	if status != 0 {
		return &Error{Status: Status(status), Op: opName}
	}
	return nil
}
