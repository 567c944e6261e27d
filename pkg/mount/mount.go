// Package mount implements the MOUNT version 3 protocol (RFC 1813
// Appendix I, program 100005) used to obtain the root file handle of an
// NFSv3 export. Each call opens a short-lived connection to mountd, whose
// port is discovered via the portmapper.
package mount

import (
	"fmt"

	"github.com/marmos91/nfsclient/pkg/nfs3"
	"github.com/marmos91/nfsclient/pkg/portmap"
	"github.com/marmos91/nfsclient/pkg/rpc"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

const (
	Program = 100005
	Version = 3

	procMnt    = 1
	procUmnt   = 3
	procExport = 5
)

// ExportEntry is one exported path and the client groups allowed to mount
// it.
type ExportEntry struct {
	Path   string
	Groups []string
}

func dialMountd(host string) (*rpc.Client, error) {
	port, err := portmap.GetPort(host, Program, Version)
	if err != nil {
		return nil, fmt.Errorf("resolve mountd port: %w", err)
	}
	return rpc.Dial(host, port)
}

// Mnt asks mountd for the root file handle of exportPath. The auth flavor
// list in the reply is consumed and discarded.
func Mnt(host, exportPath string) (nfs3.FH, error) {
	client, err := dialMountd(host)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var enc xdr.Encoder
	enc.PutString(exportPath)

	reply, err := client.Call(Program, Version, procMnt, enc.Bytes())
	if err != nil {
		return nil, fmt.Errorf("MNT %s: %w", exportPath, err)
	}

	dec := xdr.NewDecoder(reply)
	status, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	if status != 0 {
		return nil, &nfs3.Error{Status: nfs3.Status(status), Proc: "MNT"}
	}

	fh, err := dec.Opaque()
	if err != nil {
		return nil, fmt.Errorf("MNT file handle: %w", err)
	}
	nflavors, err := dec.Uint32()
	if err != nil {
		return nil, fmt.Errorf("MNT auth flavors: %w", err)
	}
	for i := uint32(0); i < nflavors; i++ {
		if _, err := dec.Uint32(); err != nil {
			return nil, fmt.Errorf("MNT auth flavors: %w", err)
		}
	}
	return nfs3.FH(fh), nil
}

// Umnt tells mountd the client no longer uses exportPath. Advisory: servers
// do not enforce it and the reply body is empty.
func Umnt(host, exportPath string) error {
	client, err := dialMountd(host)
	if err != nil {
		return err
	}
	defer client.Close()

	var enc xdr.Encoder
	enc.PutString(exportPath)

	if _, err := client.Call(Program, Version, procUmnt, enc.Bytes()); err != nil {
		return fmt.Errorf("UMNT %s: %w", exportPath, err)
	}
	return nil
}

// Export lists the server's exports. Both the export list and each entry's
// group list arrive as XDR linked lists.
func Export(host string) ([]ExportEntry, error) {
	client, err := dialMountd(host)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	reply, err := client.Call(Program, Version, procExport, nil)
	if err != nil {
		return nil, fmt.Errorf("EXPORT: %w", err)
	}
	return DecodeExportReply(reply)
}

// DecodeExportReply parses the EXPORT result body.
func DecodeExportReply(reply []byte) ([]ExportEntry, error) {
	dec := xdr.NewDecoder(reply)
	var entries []ExportEntry

	for {
		follows, err := dec.Bool()
		if err != nil {
			return nil, err
		}
		if !follows {
			return entries, nil
		}

		var entry ExportEntry
		if entry.Path, err = dec.String(); err != nil {
			return nil, err
		}
		for {
			groupFollows, err := dec.Bool()
			if err != nil {
				return nil, err
			}
			if !groupFollows {
				break
			}
			group, err := dec.String()
			if err != nil {
				return nil, err
			}
			entry.Groups = append(entry.Groups, group)
		}
		entries = append(entries, entry)
	}
}
