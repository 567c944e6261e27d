package nfs4

// NFS program identification. v4 keeps program 100003 with version 4; the
// minorversion in the COMPOUND arguments selects 4.0 or 4.1.
const (
	Program = 100003
	Version = 4

	// ProcCompound is the single NFSv4 procedure besides NULL.
	ProcCompound = 1
)

// NFSv4 operation codes (RFC 7530 §16, RFC 8881 §18).
const (
	OpAccess             = 3
	OpClose              = 4
	OpCommit             = 5
	OpCreate             = 6
	OpGetAttr            = 9
	OpGetFH              = 10
	OpLookup             = 15
	OpLookupP            = 16
	OpOpen               = 18
	OpOpenConfirm        = 20
	OpPutFH              = 22
	OpPutRootFH          = 24
	OpRead               = 25
	OpReadDir            = 26
	OpReadLink           = 27
	OpRemove             = 28
	OpRename             = 29
	OpRenew              = 30
	OpRestoreFH          = 31
	OpSaveFH             = 32
	OpSetAttr            = 34
	OpSetClientID        = 35
	OpSetClientIDConfirm = 36
	OpWrite              = 38

	// NFSv4.1 additions.
	OpExchangeID      = 42
	OpCreateSession   = 43
	OpDestroySession  = 44
	OpSequence        = 53
	OpReclaimComplete = 58
)
