package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/nerrad567/graylogging/gelf"
)

// UDPOptions configures NewUDP.
type UDPOptions struct {
	Options

	// Compression is applied to the whole datagram. Empty means none.
	// GELF chunking is not implemented, so payloads must fit one datagram.
	Compression Compression
}

// UDPClient sends each GELF payload as one datagram from a new socket.
type UDPClient struct {
	addr        string
	compression Compression
	bestEffort
}

// NewUDP returns a client for host:port.
func NewUDP(host string, port int, opts UDPOptions) *UDPClient {
	addr := joinHostPort(host, port)
	return &UDPClient{
		addr:        addr,
		compression: opts.Compression,
		bestEffort:  newBestEffort(KindUDP, addr, opts.Options),
	}
}

// Addr returns the host:port datagrams are sent to.
func (c *UDPClient) Addr() string {
	return c.addr
}

// Send validates p and writes it as a single datagram.
//
// Socket failures are logged and reported to the Observer but not returned.
// Validation, encoding and compression errors are returned.
func (c *UDPClient) Send(ctx context.Context, p gelf.Payload) (Result, error) {
	if err := gelf.Validate(p); err != nil {
		return nil, err
	}
	data, err := encodePayload(p)
	if err != nil {
		return nil, err
	}
	datagram, err := c.compression.compress(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = c.push(ctx, datagram)
	c.report(err, time.Since(start), data)

	return nil, nil
}

func (c *UDPClient) push(ctx context.Context, datagram []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer conn.Close()

	if _, err := conn.Write(datagram); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}
