package compliance

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfsclient/pkg/nfs4"
	"github.com/marmos91/nfsclient/pkg/nfs41"
)

// V41Checks probes the NFSv4.1 session machinery on top of the shared verb
// behavior: EXCHANGE_ID/CREATE_SESSION bootstrap, SEQUENCE-framed verbs,
// and clean teardown.
func V41Checks() []Check {
	return []Check{
		{Name: "v41/session-bootstrap", Fn: checkV41Bootstrap},
		{Name: "v41/open-write-read-close", Fn: checkV41OpenRoundtrip},
		{Name: "v41/readdir-listing", Fn: checkV41ReadDir},
		{Name: "v41/session-teardown", Fn: checkV41Teardown},
	}
}

func checkV41Bootstrap(env *Env) error {
	client, err := nfs41.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()

	if client.SessionID() == (nfs4.SessionID{}) {
		return fmt.Errorf("session id is all zero")
	}

	attr, err := client.GetAttr(client.RootFH())
	if err != nil {
		return err
	}
	if attr.Type == nil || *attr.Type != nfs4.NF4DIR {
		return fmt.Errorf("root must be a directory, got %v", attr.Type)
	}
	return nil
}

func checkV41OpenRoundtrip(env *Env) error {
	client, err := nfs41.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()
	root := client.RootFH()

	name := ScratchName("v41-roundtrip")
	f, err := client.OpenWrite(root, name, true)
	if err != nil {
		return err
	}
	defer client.Remove(root, name)

	payload := []byte("v41 round trip payload")
	if _, err := client.Write(f, 0, nfs4.FileSync, payload); err != nil {
		return err
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

func checkV41ReadDir(env *Env) error {
	client, err := nfs41.Dial(env.Server)
	if err != nil {
		return err
	}
	defer client.Close()
	root := client.RootFH()

	dirName := ScratchName("v41-lsdir")
	dir, err := client.Mkdir(root, dirName, &nfs4.Sattr{})
	if err != nil {
		return err
	}
	defer client.Remove(root, dirName)

	created := map[string]bool{}
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("entry-%02d", i)
		f, err := client.OpenWrite(dir, name, true)
		if err != nil {
			return err
		}
		if err := client.CloseFile(f); err != nil {
			return err
		}
		created[name] = true
		defer client.Remove(dir, name)
	}

	entries, err := client.ReadDir(dir)
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
	return nil
}

func checkV41Teardown(env *Env) error {
	client, err := nfs41.Dial(env.Server)
	if err != nil {
		return err
	}
	// Close runs DESTROY_SESSION best-effort and must not error even when
	// the session is already gone.
	if err := client.Close(); err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	return nil
}
