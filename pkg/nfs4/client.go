package nfs4

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/nfsclient/pkg/portmap"
	"github.com/marmos91/nfsclient/pkg/rpc"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// graceRetryWait is how long OPEN waits before retrying while the server is
// in its post-restart grace period.
var graceRetryWait = 5 * time.Second

// Client is a high-level NFSv4.0 client.
//
// Construction resolves the NFS port via the portmapper, performs the
// SETCLIENTID / SETCLIENTID_CONFIRM handshake, and verifies the server root
// is reachable. Data operations need a File from OpenRead/OpenWrite and
// must be paired with CloseFile.
type Client struct {
	caller    rpc.Caller
	clientid  uint64
	openSeqid uint32
	rootFH    FH
	owner     string
}

// Dial connects to host with AUTH_NONE and registers this client instance.
func Dial(host string) (*Client, error) {
	return dial(host, nil)
}

// DialWithAuth connects with AUTH_SYS credentials. The credential is set
// before SETCLIENTID so the clientid is bound to the right security flavor.
func DialWithAuth(host string, auth rpc.AuthSys) (*Client, error) {
	return dial(host, &auth)
}

func dial(host string, auth *rpc.AuthSys) (*Client, error) {
	port, err := portmap.GetPort(host, Program, Version)
	if err != nil {
		return nil, fmt.Errorf("resolve NFSv4 port: %w", err)
	}
	transport, err := rpc.Dial(host, port)
	if err != nil {
		return nil, err
	}
	if auth != nil {
		transport.SetAuthSys(*auth)
	}

	c := &Client{
		caller: transport,
		owner:  "nfsclient-v4/" + uuid.NewString(),
	}
	if err := c.setClientID(); err != nil {
		transport.Close()
		return nil, err
	}
	if err := c.checkRoot(); err != nil {
		transport.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an existing transport without performing the handshake.
// Used by tests that drive the codec against a fake server.
func NewClient(caller rpc.Caller) *Client {
	return &Client{caller: caller, owner: "nfsclient-v4/test"}
}

// Close releases the transport.
func (c *Client) Close() error {
	if closer, ok := c.caller.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetAuthSys switches the transport to AUTH_SYS for subsequent calls.
func (c *Client) SetAuthSys(auth rpc.AuthSys) {
	if s, ok := c.caller.(interface{ SetAuthSys(rpc.AuthSys) }); ok {
		s.SetAuthSys(auth)
	}
}

// ClearAuth reverts the transport to AUTH_NONE.
func (c *Client) ClearAuth() {
	if s, ok := c.caller.(interface{ ClearAuth() }); ok {
		s.ClearAuth()
	}
}

// RootFH returns the root sentinel. Operations against it are framed with
// PUTROOTFH.
func (c *Client) RootFH() FH {
	return c.rootFH
}

// verifierFromClock derives the 8-byte client verifier from the wall clock
// in nanoseconds (not from a monotonic clock reading), so every process
// registers as a fresh client instance.
func verifierFromClock() Verifier {
	var v Verifier
	binary.BigEndian.PutUint64(v[:], uint64(time.Now().UnixNano()))
	return v
}

// compound sends one v4.0 COMPOUND and returns a decoder positioned at the
// first per-op result.
func (c *Client) compound(tag string, numOps uint32, ops *xdr.Encoder) (*xdr.Decoder, error) {
	reply, err := CallCompound(c.caller, tag, 0, numOps, ops.Bytes())
	if err != nil {
		return nil, err
	}
	dec := xdr.NewDecoder(reply)
	if err := CheckCompoundStatus(dec); err != nil {
		return nil, err
	}
	return dec, nil
}

// setClientID performs SETCLIENTID followed by SETCLIENTID_CONFIRM.
func (c *Client) setClientID() error {
	var ops xdr.Encoder
	EncodeSetClientID(&ops, verifierFromClock(), c.owner)
	dec, err := c.compound("init", 1, &ops)
	if err != nil {
		return err
	}
	r, err := DecodeSetClientIDResult(dec)
	if err != nil {
		return err
	}

	var confirm xdr.Encoder
	EncodeSetClientIDConfirm(&confirm, r.ClientID, r.ConfirmVerf)
	dec, err = c.compound("init", 1, &confirm)
	if err != nil {
		return err
	}
	if err := DecodeSetClientIDConfirmResult(dec); err != nil {
		return err
	}

	c.clientid = r.ClientID
	return nil
}

// checkRoot verifies PUTROOTFH+GETFH succeeds and records the root
// sentinel. The returned handle is deliberately discarded: root operations
// keep using PUTROOTFH.
func (c *Client) checkRoot() error {
	var ops xdr.Encoder
	EncodePutRootFH(&ops)
	EncodeGetFH(&ops)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return err
	}
	if err := DecodePutRootFHResult(dec); err != nil {
		return err
	}
	if _, err := DecodeGetFHResult(dec); err != nil {
		return err
	}
	c.rootFH = FH{}
	return nil
}

// Lookup resolves name in dir: PUTFH + LOOKUP + GETFH.
func (c *Client) Lookup(dir FH, name string) (FH, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, dir)
	EncodeLookup(&ops, name)
	EncodeGetFH(&ops)
	dec, err := c.compound("", 3, &ops)
	if err != nil {
		return nil, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	if err := DecodeLookupResult(dec); err != nil {
		return nil, err
	}
	return DecodeGetFHResult(dec)
}

// GetAttr fetches the default attribute set of fh: PUTFH + GETATTR.
func (c *Client) GetAttr(fh FH) (*Fattr, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, fh)
	EncodeGetAttrOp(&ops, DefaultGetAttrIDs...)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return nil, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	return DecodeGetAttrResult(dec)
}

// Access returns the access bits granted on fh: PUTFH + ACCESS.
func (c *Client) Access(fh FH, mask uint32) (uint32, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, fh)
	EncodeAccessOp(&ops, mask)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return 0, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return 0, err
	}
	r, err := DecodeAccessResult(dec)
	if err != nil {
		return 0, err
	}
	return r.Access, nil
}

// doOpen runs the OPEN compound with the GRACE retry loop and the v4.0
// OPEN_CONFIRM handling.
func (c *Client) doOpen(dir FH, name string, shareAccess uint32, create bool) (*File, error) {
	c.openSeqid++
	seqid := c.openSeqid

	var dec *xdr.Decoder
	for {
		var ops xdr.Encoder
		EncodeCurrentFH(&ops, dir)
		if create {
			EncodeOpenCreate(&ops, seqid, shareAccess, c.clientid, c.owner, name, &Sattr{})
		} else {
			EncodeOpenNoCreate(&ops, seqid, shareAccess, c.clientid, c.owner, name)
		}
		EncodeGetFH(&ops)

		var err error
		dec, err = c.compound("", 3, &ops)
		if err != nil {
			// RFC 7530 §9.6.3.1: retry with the SAME seqid while the
			// server is in its grace period; advancing would desynchronize
			// the open-owner sequence.
			if IsStatus(err, NFS4ErrGrace) {
				time.Sleep(graceRetryWait)
				continue
			}
			return nil, err
		}
		break
	}

	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	openRes, err := DecodeOpenResult(dec)
	if err != nil {
		return nil, err
	}
	fh, err := DecodeGetFHResult(dec)
	if err != nil {
		return nil, err
	}

	f := &File{FH: fh, Stateid: openRes.Stateid, Seqid: seqid}

	if openRes.Rflags&OpenResultConfirm != 0 {
		c.openSeqid++
		confirmSeqid := c.openSeqid

		var ops xdr.Encoder
		EncodeCurrentFH(&ops, fh)
		EncodeOpenConfirm(&ops, f.Stateid, confirmSeqid)
		dec, err := c.compound("", 2, &ops)
		if err != nil {
			return nil, err
		}
		if err := DecodePutFHResult(dec); err != nil {
			return nil, err
		}
		confirmed, err := DecodeOpenConfirmResult(dec)
		if err != nil {
			return nil, err
		}
		f.Stateid = confirmed
		f.Seqid = confirmSeqid
	}

	return f, nil
}

// OpenRead opens an existing file for reading.
func (c *Client) OpenRead(dir FH, name string) (*File, error) {
	return c.doOpen(dir, name, ShareAccessRead, false)
}

// OpenWrite opens a file for writing, creating it (UNCHECKED) when create
// is set.
func (c *Client) OpenWrite(dir FH, name string, create bool) (*File, error) {
	return c.doOpen(dir, name, ShareAccessWrite, create)
}

// CloseFile closes an open file: PUTFH + CLOSE. The stateid is dead
// afterwards and must not be reused.
func (c *Client) CloseFile(f *File) error {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, f.FH)
	EncodeClose(&ops, f.Seqid, f.Stateid)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return err
	}
	return DecodeCloseResult(dec)
}

// Read reads up to count bytes from f at offset: PUTFH + READ.
func (c *Client) Read(f *File, offset uint64, count uint32) ([]byte, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, f.FH)
	EncodeRead(&ops, f.Stateid, offset, count)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return nil, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	r, err := DecodeReadResult(dec)
	if err != nil {
		return nil, err
	}
	return r.Data, nil
}

// Write writes data to f at offset: PUTFH + WRITE.
func (c *Client) Write(f *File, offset uint64, stable Stable, data []byte) (*WriteResult, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, f.FH)
	EncodeWrite(&ops, f.Stateid, offset, stable, data)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return nil, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	return DecodeWriteResult(dec)
}

// Commit flushes unstable writes on f: PUTFH + COMMIT.
func (c *Client) Commit(f *File, offset uint64, count uint32) (Verifier, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, f.FH)
	EncodeCommit(&ops, offset, count)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return Verifier{}, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return Verifier{}, err
	}
	return DecodeCommitResult(dec)
}

// Mkdir creates a directory: PUTFH + CREATE(NF4DIR) + GETFH.
func (c *Client) Mkdir(dir FH, name string, attrs *Sattr) (FH, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, dir)
	EncodeCreateDir(&ops, name, attrs)
	EncodeGetFH(&ops)
	dec, err := c.compound("", 3, &ops)
	if err != nil {
		return nil, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	if err := DecodeCreateResult(dec); err != nil {
		return nil, err
	}
	return DecodeGetFHResult(dec)
}

// Remove deletes a file or empty directory: PUTFH + REMOVE.
func (c *Client) Remove(dir FH, name string) error {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, dir)
	EncodeRemove(&ops, name)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return err
	}
	return DecodeRemoveResult(dec)
}

// Rename moves srcDir/srcName to dstDir/dstName:
// PUTFH(src) + SAVEFH + PUTFH(dst) + RENAME.
func (c *Client) Rename(srcDir FH, srcName string, dstDir FH, dstName string) error {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, srcDir)
	EncodeSaveFH(&ops)
	EncodeCurrentFH(&ops, dstDir)
	EncodeRename(&ops, srcName, dstName)
	dec, err := c.compound("", 4, &ops)
	if err != nil {
		return err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return err
	}
	if err := DecodeSaveFHResult(dec); err != nil {
		return err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return err
	}
	return DecodeRenameResult(dec)
}

// Symlink creates a symbolic link: PUTFH + CREATE(NF4LNK) + GETFH.
func (c *Client) Symlink(dir FH, name, target string, attrs *Sattr) (FH, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, dir)
	EncodeCreateSymlink(&ops, name, target, attrs)
	EncodeGetFH(&ops)
	dec, err := c.compound("", 3, &ops)
	if err != nil {
		return nil, err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return nil, err
	}
	if err := DecodeCreateResult(dec); err != nil {
		return nil, err
	}
	return DecodeGetFHResult(dec)
}

// ReadLink returns the target of the symlink fh: PUTFH + READLINK.
func (c *Client) ReadLink(fh FH) (string, error) {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, fh)
	EncodeReadLinkOp(&ops)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return "", err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return "", err
	}
	return DecodeReadLinkResult(dec)
}

// SetAttr updates attributes on fh with the anonymous stateid:
// PUTFH + SETATTR.
func (c *Client) SetAttr(fh FH, attrs *Sattr) error {
	var ops xdr.Encoder
	EncodeCurrentFH(&ops, fh)
	EncodeSetAttrOp(&ops, Stateid{}, attrs)
	dec, err := c.compound("", 2, &ops)
	if err != nil {
		return err
	}
	if err := DecodePutFHResult(dec); err != nil {
		return err
	}
	return DecodeSetAttrResult(dec)
}

// readDirAttrIDs is the per-entry attribute set requested while listing.
var readDirAttrIDs = []uint32{AttrType, AttrSize, AttrFileID, AttrMode, AttrTimeModify}

// ReadDir lists dir completely, one PUTFH + READDIR compound per page with
// the v3-style cookie/cookieverf discipline.
func (c *Client) ReadDir(dir FH) ([]DirEntry, error) {
	var all []DirEntry
	var cookie uint64
	var cookieverf Verifier

	for {
		var ops xdr.Encoder
		EncodeCurrentFH(&ops, dir)
		EncodeReadDir(&ops, cookie, cookieverf, 4096, 32768, readDirAttrIDs...)
		dec, err := c.compound("", 2, &ops)
		if err != nil {
			return nil, err
		}
		if err := DecodePutFHResult(dec); err != nil {
			return nil, err
		}
		page, err := DecodeReadDirResult(dec)
		if err != nil {
			return nil, err
		}

		cookieverf = page.Cookieverf
		for _, e := range page.Entries {
			cookie = e.Cookie
			all = append(all, e)
		}
		if page.EOF {
			return all, nil
		}
	}
}

// Renew issues a bare RENEW to refresh the lease. There is no background
// timer; callers decide when to renew.
func (c *Client) Renew() error {
	var ops xdr.Encoder
	EncodeRenewOp(&ops, c.clientid)
	dec, err := c.compound("", 1, &ops)
	if err != nil {
		return err
	}
	return DecodeRenewResult(dec)
}
