package nfs3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/pkg/nfs3"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

// pagingServer fakes the READDIR side of a server: it serves fixed pages
// keyed by the cookie the client sends and records the cookieverf echoed
// back.
type pagingServer struct {
	t         *testing.T
	pages     map[uint64][]nfs3.DirEntry
	eofCookie uint64
	verf      nfs3.Verifier
	calls     int
}

func (s *pagingServer) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	s.calls++
	require.EqualValues(s.t, nfs3.Program, prog)
	require.EqualValues(s.t, nfs3.ProcReadDir, proc)

	dec := xdr.NewDecoder(args)
	_, err := dec.Opaque() // dir fh
	require.NoError(s.t, err)
	cookie, err := dec.Uint64()
	require.NoError(s.t, err)
	verf, err := dec.FixedOpaque(8)
	require.NoError(s.t, err)

	// After the first page the client must echo our verifier.
	if cookie != 0 {
		require.Equal(s.t, s.verf[:], verf)
	}

	var enc xdr.Encoder
	enc.PutUint32(0)
	enc.PutBool(false) // dir_attributes absent
	enc.PutFixedOpaque(s.verf[:])
	for _, e := range s.pages[cookie] {
		enc.PutBool(true)
		enc.PutUint64(e.FileID)
		enc.PutString(e.Name)
		enc.PutUint64(e.Cookie)
	}
	enc.PutBool(false)                      // end of entries
	enc.PutBool(cookie == s.eofCookie)      // eof on the final page
	return enc.Release(), nil
}

func TestReadDirPaginates(t *testing.T) {
	server := &pagingServer{
		t:    t,
		verf: nfs3.Verifier{0xDE, 0xAD, 0, 0, 0, 0, 0, 1},
		pages: map[uint64][]nfs3.DirEntry{
			0: {
				{FileID: 1, Name: ".", Cookie: 1},
				{FileID: 2, Name: "..", Cookie: 2},
				{FileID: 3, Name: "a.txt", Cookie: 3},
			},
			3: {
				{FileID: 4, Name: "b.txt", Cookie: 4},
				{FileID: 5, Name: "c.txt", Cookie: 5},
			},
			5: {},
		},
		eofCookie: 5,
	}
	client := nfs3.NewClient(server)

	entries, err := client.ReadDir(nfs3.FH{1}, 4096)
	require.NoError(t, err)
	require.Equal(t, 3, server.calls)

	names := make(map[string]int)
	for _, e := range entries {
		names[e.Name]++
	}
	assert.Equal(t, map[string]int{".": 1, "..": 1, "a.txt": 1, "b.txt": 1, "c.txt": 1}, names,
		"every entry exactly once across pages")
}

// badCookieServer rejects the second page once with NFS3ERR_BAD_COOKIE;
// after the client restarts from cookie 0 it serves the full listing.
type badCookieServer struct {
	t      *testing.T
	failed bool
}

func (s *badCookieServer) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	dec := xdr.NewDecoder(args)
	_, err := dec.Opaque()
	require.NoError(s.t, err)
	cookie, err := dec.Uint64()
	require.NoError(s.t, err)

	var enc xdr.Encoder
	switch {
	case cookie == 0:
		// First page: one entry, more to come.
		enc.PutUint32(0)
		enc.PutBool(false) // dir_attributes
		enc.PutFixedOpaque(make([]byte, 8))
		enc.PutBool(true)
		enc.PutUint64(10)
		enc.PutString("a.txt")
		enc.PutUint64(7)
		enc.PutBool(false)
		enc.PutBool(false) // not eof
	case !s.failed:
		// Reject the continuation once.
		s.failed = true
		enc.PutUint32(uint32(nfs3.NFS3ErrBadCookie))
		enc.PutBool(false) // dir_attributes, mandatory in the failure arm
	default:
		// Continuation after the restart: final entry, eof.
		enc.PutUint32(0)
		enc.PutBool(false)
		enc.PutFixedOpaque(make([]byte, 8))
		enc.PutBool(true)
		enc.PutUint64(11)
		enc.PutString("b.txt")
		enc.PutUint64(8)
		enc.PutBool(false)
		enc.PutBool(true)
	}
	return enc.Release(), nil
}

func TestReadDirRestartsOnBadCookie(t *testing.T) {
	server := &badCookieServer{t: t}
	client := nfs3.NewClient(server)

	entries, err := client.ReadDir(nfs3.FH{1}, 4096)
	require.NoError(t, err)
	require.True(t, server.failed, "server must have rejected the stale cookie once")

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, names,
		"restart must discard entries accumulated before the rejection")
}

func TestDecodeReadDirPlusReply(t *testing.T) {
	fh := []byte{9, 9, 9, 9}

	var enc xdr.Encoder
	enc.PutUint32(0)
	putPostOpAttr(&enc) // dir_attributes
	enc.PutFixedOpaque(make([]byte, 8))
	// entry with attributes and handle
	enc.PutBool(true)
	enc.PutUint64(11)
	enc.PutString("data.bin")
	enc.PutUint64(21)
	enc.PutBool(true)
	putFattr(&enc, 2048, 11)
	enc.PutBool(true)
	enc.PutOpaque(fh)
	// entry with neither
	enc.PutBool(true)
	enc.PutUint64(12)
	enc.PutString("ghost")
	enc.PutUint64(22)
	enc.PutBool(false)
	enc.PutBool(false)
	// terminator + eof
	enc.PutBool(false)
	enc.PutBool(true)

	page, err := nfs3.DecodeReadDirPlusReply(enc.Bytes())
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.True(t, page.EOF)

	first := page.Entries[0]
	assert.Equal(t, "data.bin", first.Name)
	require.NotNil(t, first.Attr)
	assert.EqualValues(t, 2048, first.Attr.Size)
	assert.Equal(t, nfs3.FH(fh), first.FH)

	second := page.Entries[1]
	assert.Nil(t, second.Attr)
	assert.Nil(t, second.FH)
}
