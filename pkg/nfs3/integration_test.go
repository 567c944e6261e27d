package nfs3_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/mount"
	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// integrationSetup mounts the export on $NFS_SERVER and returns a connected
// client plus the export root. Tests skip when NFS_SERVER is unset.
func integrationSetup(t *testing.T) (*nfs3.Client, nfs3.FH) {
	t.Helper()
	server := os.Getenv("NFS_SERVER")
	if server == "" {
		t.Skip("NFS_SERVER not set; skipping integration test")
	}

	root, err := mount.Mnt(server, "/")
	require.NoError(t, err)

	client, err := nfs3.Dial(server)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, root
}

func TestIntegrationWriteThenRead(t *testing.T) {
	client, root := integrationSetup(t)

	name := fmt.Sprintf("nfsclient-it-%d.txt", time.Now().UnixNano())
	fh, err := client.Create(root, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Remove(root, name) })

	payload := []byte("nfsclient integration test")
	wr, err := client.Write(fh, 0, nfs3.FileSync, payload)
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), wr.Count)

	rr, err := client.Read(fh, 0, uint32(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, payload, rr.Data)
}

func TestIntegrationExclusiveCreateIdempotency(t *testing.T) {
	client, root := integrationSetup(t)

	name := fmt.Sprintf("nfsclient-excl-%d", time.Now().UnixNano())
	verf := nfs3.Verifier{1, 2, 3, 4, 5, 6, 7, 8}

	fh1, err := client.CreateExclusive(root, name, verf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Remove(root, name) })

	// Same verifier: idempotent retry, same file.
	fh2, err := client.CreateExclusive(root, name, verf)
	require.NoError(t, err)

	a1, err := client.GetAttr(fh1)
	require.NoError(t, err)
	a2, err := client.GetAttr(fh2)
	require.NoError(t, err)
	assert.Equal(t, a1.FileID, a2.FileID)

	// Different verifier on the same name must conflict.
	_, err = client.CreateExclusive(root, name, nfs3.Verifier{9, 9, 9, 9, 9, 9, 9, 9})
	assert.True(t, nfs3.IsStatus(err, nfs3.NFS3ErrExist))
}

func TestIntegrationReadDirFidelity(t *testing.T) {
	client, root := integrationSetup(t)

	dirName := fmt.Sprintf("nfsclient-dir-%d", time.Now().UnixNano())
	dir, err := client.Mkdir(root, dirName, &nfs3.Sattr{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Rmdir(root, dirName) })

	created := make(map[string]bool)
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("f%02d", i)
		_, err := client.Create(dir, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
		require.NoError(t, err)
		created[name] = true
		t.Cleanup(func() { _ = client.Remove(dir, name) })
	}

	// Small count forces pagination.
	entries, err := client.ReadDir(dir, 512)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, e := range entries {
		seen[e.Name]++
	}
	for name := range created {
		assert.Equal(t, 1, seen[name], "entry %s must appear exactly once", name)
	}
	for name, n := range seen {
		assert.Equal(t, 1, n, "no duplicates, got %d of %s", n, name)
	}
}
