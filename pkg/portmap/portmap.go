// Package portmap implements a GETPORT client for the portmapper service
// (RFC 1833, program 100000 version 2).
package portmap

import (
	"errors"
	"fmt"

	"github.com/marmos91/nfsclient/pkg/rpc"
	"github.com/marmos91/nfsclient/pkg/xdr"
)

const (
	// Program and Version identify the portmap service itself.
	Program = 100000
	Version = 2

	// Port is the well-known portmapper TCP port.
	Port = 111

	procGetPort = 3
	protoTCP    = 6 // IPPROTO_TCP in the mapping struct
)

// ErrNotRegistered is returned when the portmapper reports port 0 for the
// requested program/version pair.
var ErrNotRegistered = errors.New("portmap: program not registered")

// GetPort asks the portmapper on host for the TCP port of (prog, vers).
// It opens a short-lived connection for the single GETPORT call.
func GetPort(host string, prog, vers uint32) (uint16, error) {
	client, err := rpc.Dial(host, Port)
	if err != nil {
		return 0, err
	}
	defer client.Close()
	return GetPortWith(client, prog, vers)
}

// GetPortWith issues GETPORT on an existing transport. Exposed separately so
// several lookups can share one portmapper connection.
func GetPortWith(caller rpc.Caller, prog, vers uint32) (uint16, error) {
	var enc xdr.Encoder
	enc.PutUint32(prog)
	enc.PutUint32(vers)
	enc.PutUint32(protoTCP)
	enc.PutUint32(0) // port: ignored in a GETPORT request

	reply, err := caller.Call(Program, Version, procGetPort, enc.Bytes())
	if err != nil {
		return 0, fmt.Errorf("GETPORT(%d, %d): %w", prog, vers, err)
	}

	dec := xdr.NewDecoder(reply)
	port, err := dec.Uint32()
	if err != nil {
		return 0, fmt.Errorf("GETPORT reply: %w", err)
	}
	if port == 0 {
		return 0, fmt.Errorf("program %d version %d: %w", prog, vers, ErrNotRegistered)
	}
	return uint16(port), nil
}
