package network

import (
	"sync/atomic"

	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"
)

// Config for the broadcast service.
type Config struct {
	MaxPeers    int
	QueueSize   int
	SelfAddress string
	Transport   Transport
}

// Service drives the broadcast protocol. Inbound frames are decoded on the
// transport's receive path and pushed onto a bounded queue; the node loop
// drains the queue, so all ledger, pool and peer-set mutation stays on a
// single logical thread of control.
type Service struct {
	dropped   uint64
	peers     *PeerSet
	queue     chan Event
	self      string
	transport Transport
}

// New returns a running broadcast service wired to the given transport.
func New(cfg *Config) *Service {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &Service{
		peers:     NewPeerSet(cfg.MaxPeers),
		queue:     make(chan Event, queueSize),
		self:      cfg.SelfAddress,
		transport: cfg.Transport,
	}
	cfg.Transport.OnReceive(s.receive)
	return s
}

// Events returns the queue of decoded inbound messages.
func (s *Service) Events() <-chan Event {
	return s.queue
}

// Peers returns the known-peer set.
func (s *Service) Peers() *PeerSet {
	return s.peers
}

// Dropped returns the number of inbound messages discarded due to queue
// overflow.
func (s *Service) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

// BroadcastTransaction announces a telemetry transaction to the mesh.
func (s *Service) BroadcastTransaction(tx *telemetry.Transaction) error {
	return s.send(MsgNewTelemetry, telemetry.MarshalTransaction(*tx))
}

// BroadcastHeader announces a freshly appended block. Only the compact
// header goes on the wire, never the full block.
func (s *Service) BroadcastHeader(h *ledger.Header) error {
	return s.send(MsgNewBlock, h.Marshal())
}

// Announce broadcasts an empty peer announcement. This is the only active
// discovery mechanism.
func (s *Service) Announce() error {
	return s.send(MsgPeerAnnounce, nil)
}

func (s *Service) send(t MsgType, payload []byte) error {
	pkt := &Packet{
		Type:    t,
		Payload: payload,
		Sender:  s.self,
	}
	frame, err := pkt.Marshal()
	if err != nil {
		return err
	}
	if err := s.transport.Broadcast(frame); err != nil {
		if s.peers.Count() == 0 {
			// Expected right after boot, before anyone has been
			// discovered.
			log.Debug("Broadcast failed with no known peers", fld.MessageType(t), fld.Err(err))
			return nil
		}
		log.Error("Broadcast failed", fld.MessageType(t), fld.Err(err))
		return err
	}
	return nil
}

// receive runs on the transport's delivery path. It only decodes and
// enqueues; it never touches the ledger or the pool.
func (s *Service) receive(frame []byte) {
	pkt, err := UnmarshalPacket(frame)
	if err != nil {
		log.Debug("Discarding malformed frame", fld.Size(len(frame)), fld.Err(err))
		return
	}
	if pkt.Sender == s.self {
		return
	}
	ev, err := parseEvent(pkt)
	if err != nil {
		log.Debug("Discarding malformed payload", fld.MessageType(pkt.Type), fld.Err(err))
		return
	}
	select {
	case s.queue <- ev:
	default:
		atomic.AddUint64(&s.dropped, 1)
		log.Warn("Inbound queue overflow, dropping message", fld.MessageType(pkt.Type), fld.Sender(pkt.Sender))
	}
}
