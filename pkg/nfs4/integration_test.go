package nfs4_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/nfs4"
)

func integrationClient(t *testing.T) *nfs4.Client {
	t.Helper()
	server := os.Getenv("NFS_SERVER")
	if server == "" {
		t.Skip("NFS_SERVER not set; skipping integration test")
	}
	client, err := nfs4.Dial(server)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIntegrationRootGetAttr(t *testing.T) {
	client := integrationClient(t)

	attr, err := client.GetAttr(client.RootFH())
	require.NoError(t, err)
	require.NotNil(t, attr.Type)
	assert.Equal(t, nfs4.NF4DIR, *attr.Type)
}

func TestIntegrationOpenWriteReadClose(t *testing.T) {
	client := integrationClient(t)
	root := client.RootFH()

	name := fmt.Sprintf("nfsclient-v4-%d.txt", time.Now().UnixNano())
	f, err := client.OpenWrite(root, name, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Remove(root, name) })

	payload := []byte("v4 open/write/read round trip")
	wr, err := client.Write(f, 0, nfs4.FileSync, payload)
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), wr.Count)
	require.NoError(t, client.CloseFile(f))

	rf, err := client.OpenRead(root, name)
	require.NoError(t, err)
	data, err := client.Read(rf, 0, uint32(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	require.NoError(t, client.CloseFile(rf))
}
