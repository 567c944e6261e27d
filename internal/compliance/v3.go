package compliance

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// V3Checks probes RFC 1813 behavior: namespace round trips, EXCLUSIVE create
// idempotency, stale handles, guards, pagination and commit verifiers.
func V3Checks() []Check {
	return []Check{
		{Name: "v3/mount-and-fsinfo", Fn: checkMountAndFsinfo},
		{Name: "v3/write-read-roundtrip", Fn: checkWriteReadRoundtrip},
		{Name: "v3/exclusive-create-idempotent", Fn: checkExclusiveCreate},
		{Name: "v3/stale-handle", Fn: checkStaleHandle},
		{Name: "v3/setattr-guard", Fn: checkSetattrGuard},
		{Name: "v3/rename-semantics", Fn: checkRenameSemantics},
		{Name: "v3/readdir-pagination", Fn: checkReaddirPagination},
		{Name: "v3/commit-verifier", Fn: checkCommitVerifier},
	}
}

func checkMountAndFsinfo(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	if len(root) == 0 || len(root) > nfs3.FHMaxSize {
		return fmt.Errorf("mount returned a %d-byte handle", len(root))
	}

	info, err := client.Fsinfo(root)
	if err != nil {
		return err
	}
	if info.Rtmax == 0 || info.Wtmax == 0 {
		return fmt.Errorf("fsinfo reports zero transfer limits: rtmax=%d wtmax=%d", info.Rtmax, info.Wtmax)
	}
	return nil
}

func checkWriteReadRoundtrip(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	name := ScratchName("roundtrip")
	fh, err := client.Create(root, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	payload := []byte("nfsclient integration test")
	wr, err := client.Write(fh, 0, nfs3.FileSync, payload)
	if err != nil {
		return err
	}
	if wr.Count != uint32(len(payload)) {
		return fmt.Errorf("wrote %d of %d bytes", wr.Count, len(payload))
	}

	rr, err := client.Read(fh, 0, uint32(len(payload)))
	if err != nil {
		return err
	}
	if !bytes.Equal(rr.Data, payload) {
		return fmt.Errorf("read back %q, wrote %q", rr.Data, payload)
	}
	return nil
}

func checkExclusiveCreate(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	name := ScratchName("excl")
	verf := nfs3.Verifier{1, 2, 3, 4, 5, 6, 7, 8}

	fh1, err := client.CreateExclusive(root, name, verf)
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	fh2, err := client.CreateExclusive(root, name, verf)
	if err != nil {
		return fmt.Errorf("retry with same verifier must succeed: %w", err)
	}

	a1, err := client.GetAttr(fh1)
	if err != nil {
		return err
	}
	a2, err := client.GetAttr(fh2)
	if err != nil {
		return err
	}
	if a1.FileID != a2.FileID {
		return fmt.Errorf("same-verifier retry produced a different file: %d vs %d", a1.FileID, a2.FileID)
	}

	if _, err := client.CreateExclusive(root, name, nfs3.Verifier{9, 9, 9, 9, 9, 9, 9, 9}); !nfs3.IsStatus(err, nfs3.NFS3ErrExist) {
		return fmt.Errorf("different verifier must yield NFS3ERR_EXIST, got %v", err)
	}
	return nil
}

func checkStaleHandle(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	name := ScratchName("stale")
	fh, err := client.Create(root, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
	if err != nil {
		return err
	}
	if err := client.Remove(root, name); err != nil {
		return err
	}

	_, err = client.GetAttr(fh)
	if nfs3.IsStatus(err, nfs3.NFS3ErrStale) || nfs3.IsStatus(err, nfs3.NFS3ErrNoEnt) || nfs3.IsStatus(err, nfs3.NFS3ErrBadHandle) {
		return nil
	}
	return fmt.Errorf("GETATTR on a removed file's handle must fail, got %v", err)
}

func checkSetattrGuard(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	name := ScratchName("guard")
	fh, err := client.Create(root, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	attr, err := client.GetAttr(fh)
	if err != nil {
		return err
	}

	// Guard with the object's real ctime must pass.
	mode := uint32(0o600)
	guard := &nfs3.SattrGuard{Check: true, Ctime: attr.Ctime}
	if err := client.SetAttr(fh, &nfs3.Sattr{Mode: &mode}, guard); err != nil {
		return fmt.Errorf("guarded SETATTR with matching ctime: %w", err)
	}

	// The first SETATTR changed ctime, so the stale guard must now fail.
	err = client.SetAttr(fh, &nfs3.Sattr{Mode: &mode}, guard)
	if !nfs3.IsStatus(err, nfs3.NFS3ErrNotSync) {
		return fmt.Errorf("stale guard must yield NFS3ERR_NOT_SYNC, got %v", err)
	}
	return nil
}

func checkRenameSemantics(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	oldName := ScratchName("rename-src")
	newName := ScratchName("rename-dst")
	if _, err := client.Create(root, oldName, nfs3.CreateUnchecked, &nfs3.Sattr{}); err != nil {
		return err
	}
	defer client.Remove(root, newName)
	defer client.Remove(root, oldName)

	if err := client.Rename(root, oldName, root, newName); err != nil {
		return err
	}

	if _, err := client.Lookup(root, newName); err != nil {
		return fmt.Errorf("target missing after rename: %w", err)
	}
	if _, err := client.Lookup(root, oldName); !nfs3.IsStatus(err, nfs3.NFS3ErrNoEnt) {
		return fmt.Errorf("source must vanish after rename, got %v", err)
	}
	return nil
}

func checkReaddirPagination(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	dirName := ScratchName("lsdir")
	dir, err := client.Mkdir(root, dirName, &nfs3.Sattr{})
	if err != nil {
		return err
	}
	defer client.Rmdir(root, dirName)

	created := map[string]bool{}
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("entry-%03d", i)
		if _, err := client.Create(dir, name, nfs3.CreateUnchecked, &nfs3.Sattr{}); err != nil {
			return err
		}
		created[name] = true
		defer client.Remove(dir, name)
	}

	// Small count forces several pages.
	entries, err := client.ReadDir(dir, 512)
	if err != nil {
		return err
	}

	seen := map[string]int{}
	for _, e := range entries {
		seen[e.Name]++
	}
	for name := range created {
		if seen[name] != 1 {
			return fmt.Errorf("entry %s appeared %d times", name, seen[name])
		}
	}
	for name, n := range seen {
		if n != 1 {
			return fmt.Errorf("entry %s duplicated %d times across pages", name, n)
		}
	}
	return nil
}

func checkCommitVerifier(env *Env) error {
	client, root, err := env.V3()
	if err != nil {
		return err
	}
	defer client.Close()

	name := ScratchName("commit")
	fh, err := client.Create(root, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	wr, err := client.Write(fh, 0, nfs3.Unstable, []byte("unstable data"))
	if err != nil {
		return err
	}

	verf, err := client.Commit(fh, 0, 0)
	if err != nil {
		return err
	}
	if verf != wr.Verf {
		return fmt.Errorf("commit verifier changed without a server restart")
	}
	return nil
}
