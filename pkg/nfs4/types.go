// Package nfs4 implements the NFSv4 operation codec shared by the v4.0 and
// v4.1 clients, plus the v4.0 client itself (RFC 7530).
//
// NFSv4 replaces one-RPC-per-verb with COMPOUND: a single RPC carrying an
// ordered operation array the server executes in order, short-circuiting on
// the first failure. Each operation here is a pure encoder that appends
// opcode + arguments to a shared buffer, and a pure result decoder. The
// COMPOUND helpers concatenate op encodings behind the
// {tag, minorversion, numops} header and validate the outer reply envelope.
package nfs4

// FH is an NFSv4 file handle: an opaque vector of at most 128 bytes
// (RFC 7530 §4.2.1).
//
// An empty FH is the root sentinel: operations on it are framed with
// PUTROOTFH instead of PUTFH, because Linux servers gate PUTFH of the
// pseudo-root behind export checks that PUTROOTFH bypasses.
type FH []byte

// IsRoot reports whether fh is the root sentinel.
func (fh FH) IsRoot() bool { return len(fh) == 0 }

// FHMaxSize is the largest file handle NFSv4 permits.
const FHMaxSize = 128

// Stateid is stateid4 (RFC 7530 §9.1.2): a sequence number plus a 12-byte
// server-opaque token binding data operations to an open.
type Stateid struct {
	Seqid uint32
	Other [12]byte
}

// Time is nfstime4 (RFC 7530 §6.2.5).
type Time struct {
	Seconds  int64
	Nseconds uint32
}

// Ftype is ftype4 (RFC 7530 §5.3).
type Ftype uint32

const (
	NF4REG       Ftype = 1
	NF4DIR       Ftype = 2
	NF4BLK       Ftype = 3
	NF4CHR       Ftype = 4
	NF4LNK       Ftype = 5
	NF4SOCK      Ftype = 6
	NF4FIFO      Ftype = 7
	NF4ATTRDIR   Ftype = 8
	NF4NAMEDATTR Ftype = 9
)

// Stable is stable_how4 for WRITE (RFC 7530 §16.36).
type Stable uint32

const (
	Unstable Stable = 0
	DataSync Stable = 1
	FileSync Stable = 2
)

// ACCESS request/result bits (RFC 7530 §16.1).
const (
	AccessRead    = 0x0001
	AccessLookup  = 0x0002
	AccessModify  = 0x0004
	AccessExtend  = 0x0008
	AccessDelete  = 0x0010
	AccessExecute = 0x0020
)

// OPEN constants (RFC 7530 §16.16).
const (
	ShareAccessRead  = 1
	ShareAccessWrite = 2
	ShareAccessBoth  = 3
	ShareDenyNone    = 0

	OpenNoCreate = 0
	OpenCreate   = 1

	CreateUnchecked = 0
	CreateGuarded   = 1
	CreateExclusive = 2

	ClaimNull = 0

	// OPEN result rflags.
	OpenResultConfirm       = 2
	OpenResultLocktypePosix = 4
)

// Delegation types in an OPEN reply. This client parses and discards
// delegations: with no callback channel it can never honor a recall.
const (
	DelegateNone  = 0
	DelegateRead  = 1
	DelegateWrite = 2
)

// Verifier is the 8-byte opaque used for client identity (SETCLIENTID /
// EXCHANGE_ID) and write/commit restart detection.
type Verifier [8]byte

// Fattr carries the attributes decoded from a server fattr4. Fields are nil
// unless the server's bitmap included them.
type Fattr struct {
	Type            *Ftype
	Change          *uint64
	Size            *uint64
	FileID          *uint64
	Mode            *uint32
	Numlinks        *uint32
	Owner           *string
	OwnerGroup      *string
	SpaceUsed       *uint64
	TimeAccess      *Time
	TimeMetadata    *Time
	TimeModify      *Time
	MountedOnFileID *uint64
}

// Sattr is the settable attribute subset for SETATTR and CREATE. Nil fields
// are left out of the encoded bitmap. Times are sent as SET_TO_CLIENT_TIME.
type Sattr struct {
	Size       *uint64
	Mode       *uint32
	Owner      *string
	OwnerGroup *string
	TimeAccess *Time
	TimeModify *Time
}

// File is an open NFSv4 file: the handle, the stateid from OPEN (or
// OPEN_CONFIRM), and the open seqid needed for CLOSE.
type File struct {
	FH      FH
	Stateid Stateid
	Seqid   uint32
}

// WriteResult is WRITE4resok.
type WriteResult struct {
	Count     uint32
	Committed Stable
	Verf      Verifier
}

// OpenResult is the subset of OPEN4resok the client keeps: the stateid and
// the result flags. Delegations and change info are consumed off the wire
// and dropped.
type OpenResult struct {
	Stateid Stateid
	Rflags  uint32
}

// DirEntry is one READDIR entry with its requested attributes.
type DirEntry struct {
	Cookie uint64
	Name   string
	Attrs  Fattr
}

// ReadDirPage is one page of READDIR4 results.
type ReadDirPage struct {
	Entries    []DirEntry
	EOF        bool
	Cookieverf Verifier
}

// AccessResult is ACCESS4resok: the bits the server evaluated and the bits
// it granted.
type AccessResult struct {
	Supported uint32
	Access    uint32
}

// ReadResult is READ4resok.
type ReadResult struct {
	EOF  bool
	Data []byte
}
