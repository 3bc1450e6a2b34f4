package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrTransmission wraps every failed datagram send.
var ErrTransmission = errors.New("transmission failure")

// DefaultWriteTimeout bounds a single send so a stuck socket cannot stall a tick.
const DefaultWriteTimeout = 100 * time.Millisecond

// UDP sends fire-and-forget datagrams to one remote address.
type UDP struct {
	conn    net.PacketConn
	remote  *net.UDPAddr
	timeout time.Duration
}

// NewUDP opens an unconnected local socket for sending to host:port.
func NewUDP(host string, port int) (*UDP, error) {
	remote, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stream address: %w", err)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}

	return &UDP{conn: conn, remote: remote, timeout: DefaultWriteTimeout}, nil
}

// Send writes p as one datagram. Delivery is not acknowledged.
func (u *UDP) Send(p []byte) error {
	if err := u.conn.SetWriteDeadline(time.Now().Add(u.timeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}
	n, err := u.conn.WriteTo(p, u.remote)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: short write %d of %d bytes", ErrTransmission, n, len(p))
	}
	return nil
}

// Remote returns the destination address.
func (u *UDP) Remote() string {
	return u.remote.String()
}

// Close releases the socket. Sends after Close fail.
func (u *UDP) Close() error {
	return u.conn.Close()
}
