package rpc

import (
	"fmt"
	"net"
	"strconv"

	"github.com/marmos91/nfsclient/internal/logger"
)

// Client is a persistent RPC transport bound to one TCP connection.
//
// Client is not safe for concurrent use: calls on a single transport are
// strictly serialized by construction, and callers that need parallelism
// open one Client per goroutine.
type Client struct {
	conn net.Conn
	addr string
	xid  uint32
	auth *AuthSys
}

// Dial resolves host and opens a TCP connection to port.
// The connection is held until Close.
func Dial(host string, port uint16) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{conn: conn, addr: addr}, nil
}

// Close releases the transport's socket.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// SetAuthSys switches the credential to AUTH_SYS. Takes effect on the next
// call, not a call already in flight.
func (c *Client) SetAuthSys(auth AuthSys) {
	a := auth
	c.auth = &a
}

// ClearAuth reverts to AUTH_NONE (the default).
func (c *Client) ClearAuth() {
	c.auth = nil
}

// Call issues one RPC: it frames and sends the CALL message as a single
// last-fragment record, reads and reassembles the reply record, validates
// the reply envelope, and returns the procedure-specific result body.
//
// The XID is a monotonic counter starting at 1. Transport and envelope
// failures are returned as-is and are never retried.
func (c *Client) Call(prog, vers, proc uint32, args []byte) ([]byte, error) {
	c.xid++
	msg, err := BuildCallMessage(c.xid, prog, vers, proc, args, c.auth)
	if err != nil {
		return nil, err
	}

	framed := AddRecordMark(msg)
	if err := c.sendAll(framed); err != nil {
		callErrors.WithLabelValues(strconv.Itoa(int(prog))).Inc()
		return nil, err
	}
	bytesSent.Add(float64(len(framed)))

	record, err := ReadRecord(c.conn)
	if err != nil {
		callErrors.WithLabelValues(strconv.Itoa(int(prog))).Inc()
		logger.Warn("RPC receive failed", "address", c.addr, "xid", c.xid, "error", err)
		return nil, err
	}
	bytesReceived.Add(float64(len(record)))

	result, err := ParseReply(record)
	if err != nil {
		callErrors.WithLabelValues(strconv.Itoa(int(prog))).Inc()
		return nil, err
	}
	callsTotal.WithLabelValues(strconv.Itoa(int(prog))).Inc()
	return result, nil
}

// sendAll writes data fully, looping over short writes.
func (c *Client) sendAll(data []byte) error {
	for len(data) > 0 {
		n, err := c.conn.Write(data)
		if err != nil {
			return fmt.Errorf("send to %s: %w", c.addr, err)
		}
		data = data[n:]
	}
	return nil
}
