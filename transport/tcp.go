package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/nerrad567/graylogging/gelf"
)

// frameTerminator ends every GELF message on a TCP stream.
const frameTerminator = 0x00

// TCPClient sends NUL-terminated GELF frames over a new TCP connection per call.
type TCPClient struct {
	addr string
	bestEffort
}

// NewTCP returns a client for host:port. No connection is opened until Send.
func NewTCP(host string, port int, opts Options) *TCPClient {
	addr := joinHostPort(host, port)
	return &TCPClient{
		addr:       addr,
		bestEffort: newBestEffort(KindTCP, addr, opts),
	}
}

// Addr returns the host:port the client dials.
func (c *TCPClient) Addr() string {
	return c.addr
}

// Send validates p and writes it as one frame.
//
// Connection and write failures are logged and reported to the Observer but
// not returned; the result is always nil.
func (c *TCPClient) Send(ctx context.Context, p gelf.Payload) (Result, error) {
	if err := gelf.Validate(p); err != nil {
		return nil, err
	}
	data, err := encodePayload(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = c.push(ctx, append(data, frameTerminator))
	c.report(err, time.Since(start), data)

	return nil, nil
}

func (c *TCPClient) push(ctx context.Context, frame []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	// Half-close so the collector sees EOF after the frame.
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	return nil
}
