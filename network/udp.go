package network

import (
	"net"
	"sync"

	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
)

// udpGroup is the reserved broadcast destination for all nodes of a mesh.
const udpGroup = "239.192.111.222"

// UDPTransport carries frames over a multicast UDP group on the local
// network segment. It approximates the radio driver's semantics: unordered,
// unacknowledged, fire-and-forget delivery to everyone in range.
type UDPTransport struct {
	mu     sync.Mutex
	closed bool
	fn     func(frame []byte)
	group  *net.UDPAddr
	recv   *net.UDPConn
	send   *net.UDPConn
}

// NewUDP opens a multicast transport on the given port.
func NewUDP(port int) (*UDPTransport, error) {
	group := &net.UDPAddr{IP: net.ParseIP(udpGroup), Port: port}
	recv, err := net.ListenMulticastUDP("udp4", nil, group)
	if err != nil {
		return nil, err
	}
	t := &UDPTransport{
		group: group,
		recv:  recv,
	}
	go t.listen()
	return t, nil
}

func (t *UDPTransport) listen() {
	buf := make([]byte, 512)
	for {
		n, _, err := t.recv.ReadFromUDP(buf)
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed {
				log.Error("Could not read from the multicast socket", fld.Err(err))
			}
			return
		}
		t.mu.Lock()
		fn := t.fn
		t.mu.Unlock()
		if fn == nil {
			continue
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		fn(frame)
	}
}

// EnsureBroadcastPeer implements the Transport interface. The send socket
// is opened lazily; an already-open socket is success.
func (t *UDPTransport) EnsureBroadcastPeer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	if t.send != nil {
		return nil
	}
	conn, err := net.DialUDP("udp4", nil, t.group)
	if err != nil {
		return err
	}
	t.send = conn
	return nil
}

// Broadcast implements the Transport interface.
func (t *UDPTransport) Broadcast(frame []byte) error {
	if err := t.EnsureBroadcastPeer(); err != nil {
		return err
	}
	t.mu.Lock()
	conn := t.send
	t.mu.Unlock()
	if _, err := conn.Write(frame); err != nil {
		return ErrSendFailed
	}
	return nil
}

// OnReceive implements the Transport interface.
func (t *UDPTransport) OnReceive(fn func(frame []byte)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

// Close implements the Transport interface.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	err := t.recv.Close()
	if t.send != nil {
		t.send.Close()
	}
	return err
}
