package compliance

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/marmos91/nfsclient/pkg/nfs4"
)

// V4Checks probes the NFSv4.0 client: clientid registration, root sentinel
// framing, open-state lifecycle and namespace semantics.
func V4Checks() []Check {
	return []Check{
		{Name: "v4/bootstrap-root-getattr", Fn: checkV4Bootstrap},
		{Name: "v4/open-write-read-close", Fn: checkV4OpenRoundtrip},
		{Name: "v4/stateid-dead-after-close", Fn: checkV4StateidAfterClose},
		{Name: "v4/rename-semantics", Fn: checkV4Rename},
		{Name: "v4/lease-renew", Fn: checkV4Renew},
	}
}

func checkV4Bootstrap(env *Env) error {
	client, err := nfs4.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()

	attr, err := client.GetAttr(client.RootFH())
	if err != nil {
		return err
	}
	if attr.Type == nil || *attr.Type != nfs4.NF4DIR {
		return fmt.Errorf("root must be a directory, got %v", attr.Type)
	}
	return nil
}

func checkV4OpenRoundtrip(env *Env) error {
	client, err := nfs4.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()
	root := client.RootFH()

	name := ScratchName("v4-roundtrip")
	f, err := client.OpenWrite(root, name, true)
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	payload := []byte("v4 round trip payload")
	wr, err := client.Write(f, 0, nfs4.FileSync, payload)
	if err != nil {
		return err
	}
	if wr.Count != uint32(len(payload)) {
		return fmt.Errorf("wrote %d of %d bytes", wr.Count, len(payload))
	}
	if err := client.CloseFile(f); err != nil {
		return err
	}

	rf, err := client.OpenRead(root, name)
	if err != nil {
		return err
	}
	data, err := client.Read(rf, 0, uint32(len(payload)))
	if err != nil {
		return err
	}
	if !bytes.Equal(data, payload) {
		return fmt.Errorf("read back %q, wrote %q", data, payload)
	}
	return client.CloseFile(rf)
}

func checkV4StateidAfterClose(env *Env) error {
	client, err := nfs4.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()
	root := client.RootFH()

	name := ScratchName("v4-stateid")
	f, err := client.OpenWrite(root, name, true)
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	if _, err := client.Write(f, 0, nfs4.FileSync, []byte("x")); err != nil {
		return err
	}
	if err := client.CloseFile(f); err != nil {
		return err
	}

	// The stateid died with CLOSE; the server must reject its reuse.
	_, err = client.Read(f, 0, 1)
	var nfsErr *nfs4.Error
	if !errors.As(err, &nfsErr) {
		return fmt.Errorf("READ with a closed stateid must fail with an NFS status, got %v", err)
	}
	switch nfsErr.Status {
	case nfs4.NFS4ErrBadStateid, nfs4.NFS4ErrOldStateid, nfs4.NFS4ErrStaleStateid:
		return nil
	default:
		return fmt.Errorf("unexpected status for closed stateid: %v", nfsErr.Status)
	}
}

func checkV4Rename(env *Env) error {
	client, err := nfs4.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()
	root := client.RootFH()

	oldName := ScratchName("v4-rename-src")
	newName := ScratchName("v4-rename-dst")
	f, err := client.OpenWrite(root, oldName, true)
	if err != nil {
		return err
	}
	if err := client.CloseFile(f); err != nil {
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
	if _, err := client.Lookup(root, oldName); !nfs4.IsStatus(err, nfs4.NFS4ErrNoEnt) {
		return fmt.Errorf("source must vanish after rename, got %v", err)
	}
	return nil
}

func checkV4Renew(env *Env) error {
	client, err := nfs4.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Renew()
}
