package nfs4

import (
	"errors"
	"fmt"
)

// Status is nfsstat4 (RFC 7530 §13, RFC 8881 §15).
type Status uint32

const (
	NFS4OK                   Status = 0
	NFS4ErrPerm              Status = 1
	NFS4ErrNoEnt             Status = 2
	NFS4ErrIO                Status = 5
	NFS4ErrNxIO              Status = 6
	NFS4ErrAccess            Status = 13
	NFS4ErrExist             Status = 17
	NFS4ErrXDev              Status = 18
	NFS4ErrNotDir            Status = 20
	NFS4ErrIsDir             Status = 21
	NFS4ErrInval             Status = 22
	NFS4ErrFBig              Status = 27
	NFS4ErrNoSpc             Status = 28
	NFS4ErrROFS              Status = 30
	NFS4ErrMLink             Status = 31
	NFS4ErrNameTooLong       Status = 63
	NFS4ErrNotEmpty          Status = 66
	NFS4ErrDQuot             Status = 69
	NFS4ErrStale             Status = 70
	NFS4ErrBadHandle         Status = 10001
	NFS4ErrBadCookie         Status = 10003
	NFS4ErrNotSupp           Status = 10004
	NFS4ErrTooSmall          Status = 10005
	NFS4ErrServerFault       Status = 10006
	NFS4ErrBadType           Status = 10007
	NFS4ErrDelay             Status = 10008
	NFS4ErrSame              Status = 10009
	NFS4ErrDenied            Status = 10010
	NFS4ErrExpired           Status = 10011
	NFS4ErrLocked            Status = 10012
	NFS4ErrGrace             Status = 10013
	NFS4ErrFHExpired         Status = 10014
	NFS4ErrShareDenied       Status = 10015
	NFS4ErrWrongSec          Status = 10016
	NFS4ErrClidInUse         Status = 10017
	NFS4ErrResource          Status = 10018
	NFS4ErrMoved             Status = 10019
	NFS4ErrNoFilehandle      Status = 10020
	NFS4ErrMinorVersMismatch Status = 10021
	NFS4ErrStaleClientID     Status = 10022
	NFS4ErrStaleStateid      Status = 10023
	NFS4ErrOldStateid        Status = 10024
	NFS4ErrBadStateid        Status = 10025
	NFS4ErrBadSeqid          Status = 10026
	NFS4ErrNotSame           Status = 10027
	NFS4ErrLockRange         Status = 10028
	NFS4ErrSymlink           Status = 10029
	NFS4ErrRestoreFH         Status = 10030
	NFS4ErrLeaseMoved        Status = 10031
	NFS4ErrAttrNotSupp       Status = 10032
	NFS4ErrNoGrace           Status = 10033
	NFS4ErrReclaimBad        Status = 10034
	NFS4ErrReclaimConflict   Status = 10035
	NFS4ErrBadXDR            Status = 10036
	NFS4ErrLocksHeld         Status = 10037
	NFS4ErrOpenMode          Status = 10038
	NFS4ErrBadOwner          Status = 10039
	NFS4ErrBadChar           Status = 10040
	NFS4ErrBadName           Status = 10041
	NFS4ErrBadRange          Status = 10042
	NFS4ErrLockNotSupp       Status = 10043
	NFS4ErrOpIllegal         Status = 10044
	NFS4ErrDeadlock          Status = 10045
	NFS4ErrFileOpen          Status = 10046
	NFS4ErrAdminRevoked      Status = 10047
	NFS4ErrCBPathDown        Status = 10048

	// NFSv4.1 session errors (RFC 8881 §15.1.9).
	NFS4ErrBadSession            Status = 10052
	NFS4ErrBadSlot               Status = 10053
	NFS4ErrBadHighSlot           Status = 10054
	NFS4ErrConnNotBoundToSession Status = 10055
	NFS4ErrDeadSession           Status = 10056
	NFS4ErrSeqFalseRetry         Status = 10060
	NFS4ErrSeqMisordered         Status = 10063
)

func (s Status) String() string {
	if s == NFS4OK {
		return "NFS4_OK"
	}
	return fmt.Sprintf("nfsstat4(%d)", uint32(s))
}

// Error is returned when the server answers an operation (or the outer
// COMPOUND) with a non-zero nfsstat4.
type Error struct {
	Status Status
	Op     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("nfs4: %s failed: %s", e.Op, e.Status)
}

// IsStatus reports whether err is an *Error carrying the given status.
func IsStatus(err error, status Status) bool {
	var nfsErr *Error
	return errors.As(err, &nfsErr) && nfsErr.Status == status
}

// ErrOpenConfirmRequired is returned by the v4.1 client when an OPEN reply
// sets OPEN4_RESULT_CONFIRM, which RFC 8881 §18.16.3 forbids.
var ErrOpenConfirmRequired = errors.New("nfs4: server demanded OPEN_CONFIRM on a v4.1 open")
