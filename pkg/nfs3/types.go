// Package nfs3 implements an NFS version 3 client (RFC 1813).
//
// Each procedure is three pure functions plus one Client method: an argument
// encoder, a reply decoder, and glue that calls the RPC transport with
// (program 100003, version 3, procedure N). The pure functions are exported
// so the wire codec can be unit tested without a server.
package nfs3

// FH is an NFSv3 file handle: an opaque byte vector of at most 64 bytes
// (RFC 1813 §2.5), sent on the wire as a variable-length opaque.
type FH []byte

// FHMaxSize is the largest file handle NFSv3 permits.
const FHMaxSize = 64

// Ftype is the file type enumeration ftype3 (RFC 1813 §2.6).
type Ftype uint32

const (
	NF3REG  Ftype = 1
	NF3DIR  Ftype = 2
	NF3BLK  Ftype = 3
	NF3CHR  Ftype = 4
	NF3LNK  Ftype = 5
	NF3SOCK Ftype = 6
	NF3FIFO Ftype = 7
)

// Stable is the stable_how enumeration for WRITE (RFC 1813 §3.3.7).
// The server may commit more strictly than requested, never less.
type Stable uint32

const (
	Unstable Stable = 0
	DataSync Stable = 1
	FileSync Stable = 2
)

// CreateMode is the createmode3 enumeration for CREATE (RFC 1813 §3.3.8).
type CreateMode uint32

const (
	CreateUnchecked CreateMode = 0
	CreateGuarded   CreateMode = 1
	CreateExclusive CreateMode = 2
)

// ACCESS request/result bits (RFC 1813 §3.3.4).
const (
	AccessRead    = 0x0001
	AccessLookup  = 0x0002
	AccessModify  = 0x0004
	AccessExtend  = 0x0008
	AccessDelete  = 0x0010
	AccessExecute = 0x0020
)

// Verifier is the 8-byte opaque used by WRITE/COMMIT to detect server
// restart and by EXCLUSIVE CREATE for idempotency.
type Verifier [8]byte

// Time is nfstime3: seconds and nanoseconds (RFC 1813 §2.6).
type Time struct {
	Seconds  uint32
	Nseconds uint32
}

// Specdata holds the major/minor device numbers of specdata3.
type Specdata struct {
	Major uint32
	Minor uint32
}

// Fattr is fattr3 (RFC 1813 §2.6): 21 32-bit words on the wire.
type Fattr struct {
	Type   Ftype
	Mode   uint32
	Nlink  uint32
	UID    uint32
	GID    uint32
	Size   uint64
	Used   uint64
	Rdev   Specdata
	FSID   uint64
	FileID uint64
	Atime  Time
	Mtime  Time
	Ctime  Time
}

// SetTimeHow selects how SETATTR/CREATE handle a time field (RFC 1813 §2.6).
type SetTimeHow uint32

const (
	DontChange      SetTimeHow = 0
	SetToServerTime SetTimeHow = 1
	SetToClientTime SetTimeHow = 2
)

// SetTime is a time field of Sattr. The Time value is sent only when How is
// SetToClientTime.
type SetTime struct {
	How  SetTimeHow
	Time Time
}

// Sattr is sattr3: the settable attribute subset for SETATTR, CREATE, MKDIR,
// SYMLINK and MKNOD. Nil pointer fields and DontChange times are omitted
// from the wire.
type Sattr struct {
	Mode  *uint32
	UID   *uint32
	GID   *uint32
	Size  *uint64
	Atime SetTime
	Mtime SetTime
}

// SattrGuard is sattrguard3 for SETATTR: when Check is set the server
// rejects the update with NFS3ERR_NOT_SYNC unless the object's ctime equals
// Ctime.
type SattrGuard struct {
	Check bool
	Ctime Time
}

// WriteResult is WRITE3resok: bytes written, the commitment level the server
// actually applied, and the write verifier for server-restart detection.
type WriteResult struct {
	Count     uint32
	Committed Stable
	Verf      Verifier
}

// DirEntry is one entry3 from READDIR. Cookie is the resume position to pass
// on the next page.
type DirEntry struct {
	FileID uint64
	Name   string
	Cookie uint64
}

// DirEntryPlus is one entryplus3 from READDIRPLUS; attributes and file
// handle are optional on a per-entry basis.
type DirEntryPlus struct {
	DirEntry
	Attr *Fattr
	FH   FH
}

// ReadDirPage is one page of READDIR results. Cookieverf must be echoed
// unchanged on the following page.
type ReadDirPage struct {
	Entries    []DirEntry
	EOF        bool
	Cookieverf Verifier
}

// ReadDirPlusPage is one page of READDIRPLUS results.
type ReadDirPlusPage struct {
	Entries    []DirEntryPlus
	EOF        bool
	Cookieverf Verifier
}

// FsstatResult is FSSTAT3resok (RFC 1813 §3.3.18).
type FsstatResult struct {
	TotalBytes uint64
	FreeBytes  uint64
	AvailBytes uint64
	TotalFiles uint64
	FreeFiles  uint64
	AvailFiles uint64
	Invarsec   uint32
}

// FsinfoResult is FSINFO3resok (RFC 1813 §3.3.19). Rtmax/Wtmax bound
// READ/WRITE transfer sizes; the preferred values size efficient batches.
type FsinfoResult struct {
	Rtmax       uint32
	Rtpref      uint32
	Rtmult      uint32
	Wtmax       uint32
	Wtpref      uint32
	Wtmult      uint32
	Dtpref      uint32
	MaxFilesize uint64
	TimeDelta   Time
	Properties  uint32
}

// PathconfResult is PATHCONF3resok (RFC 1813 §3.3.20).
type PathconfResult struct {
	Linkmax         uint32
	NameMax         uint32
	NoTrunc         bool
	ChownRestricted bool
	CaseInsensitive bool
	CasePreserving  bool
}
