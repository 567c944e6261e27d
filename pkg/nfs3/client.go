package nfs3

import (
	"fmt"
	"io"

	"github.com/marmos91/nfsclient/pkg/portmap"
	"github.com/marmos91/nfsclient/pkg/rpc"
)

// Client is a high-level NFSv3 client bound to one persistent transport.
//
// All procedures are independent one-shot RPCs; the client holds no
// protocol state beyond the connection itself.
type Client struct {
	caller rpc.Caller
}

// Dial discovers the NFS port on host via the portmapper and opens a
// persistent TCP connection to the NFS daemon.
func Dial(host string) (*Client, error) {
	port, err := portmap.GetPort(host, Program, Version)
	if err != nil {
		return nil, fmt.Errorf("resolve NFS port: %w", err)
	}
	transport, err := rpc.Dial(host, port)
	if err != nil {
		return nil, err
	}
	return &Client{caller: transport}, nil
}

// NewClient wraps an existing transport. Used by tests and by callers that
// manage connections themselves.
func NewClient(caller rpc.Caller) *Client {
	return &Client{caller: caller}
}

// Close releases the underlying transport if it is closeable.
func (c *Client) Close() error {
	if closer, ok := c.caller.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetAuthSys switches the transport to AUTH_SYS credentials for all
// subsequent calls.
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

func (c *Client) call(proc uint32, args []byte) ([]byte, error) {
	return c.caller.Call(Program, Version, proc, args)
}

// Null issues the NULL procedure: a no-op round trip used as a liveness
// probe.
func (c *Client) Null() error {
	_, err := c.call(ProcNull, nil)
	return err
}
