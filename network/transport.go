package network

import (
	"errors"
)

// Transport errors.
var (
	ErrSendFailed      = errors.New("network: broadcast send failed")
	ErrTransportClosed = errors.New("network: transport is closed")
)

// Transport abstracts the unreliable, unordered broadcast medium. Delivery,
// ordering and duplication are not guaranteed; sends are fire-and-forget.
type Transport interface {
	// EnsureBroadcastPeer idempotently registers the reserved broadcast
	// destination. An already-registered destination is success.
	EnsureBroadcastPeer() error
	// Broadcast queues the frame for delivery to all reachable nodes.
	Broadcast(frame []byte) error
	// OnReceive registers the inbound frame callback. The callback may be
	// invoked from a transport-owned goroutine and must not block.
	OnReceive(fn func(frame []byte))
	// Close shuts the transport down.
	Close() error
}
