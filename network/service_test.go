package network

import (
	"testing"

	"telemesh.io/prototype/ledger"
)

func newTestService(hub *Hub, addr string, queueSize int) *Service {
	return New(&Config{
		MaxPeers:    10,
		QueueSize:   queueSize,
		SelfAddress: addr,
		Transport:   hub.Transport(addr),
	})
}

func TestServiceBroadcast(t *testing.T) {
	hub := NewHub()
	a := newTestService(hub, "AA:BB:CC:DD:EE:01", 8)
	b := newTestService(hub, "AA:BB:CC:DD:EE:02", 8)

	tx := makeTx()
	if err := a.BroadcastTransaction(&tx); err != nil {
		t.Fatalf("expected broadcast to succeed, got %s", err)
	}
	select {
	case ev := <-b.Events():
		if ev.Type != MsgNewTelemetry {
			t.Fatalf("expected a telemetry event, got %s", ev.Type)
		}
		if ev.Sender != "AA:BB:CC:DD:EE:01" {
			t.Fatalf("expected the sender address, got %q", ev.Sender)
		}
		if ev.Tx == nil || *ev.Tx != tx {
			t.Fatal("expected the transaction to survive the wire")
		}
	default:
		t.Fatal("expected an event on the receiving service")
	}
	// The sender never hears its own frames.
	select {
	case ev := <-a.Events():
		t.Fatalf("expected no event on the sender, got %s", ev.Type)
	default:
	}
}

func TestServiceHeaderBroadcast(t *testing.T) {
	hub := NewHub()
	a := newTestService(hub, "AA:BB:CC:DD:EE:01", 8)
	b := newTestService(hub, "AA:BB:CC:DD:EE:02", 8)

	header := ledger.Header{Index: 9, Timestamp: 1700000300, TxCount: 4, Validator: "AA:BB:CC:DD:EE:01"}
	if err := a.BroadcastHeader(&header); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-b.Events():
		if ev.Type != MsgNewBlock {
			t.Fatalf("expected a block event, got %s", ev.Type)
		}
		if ev.Header == nil || *ev.Header != header {
			t.Fatal("expected the header to survive the wire")
		}
	default:
		t.Fatal("expected an event on the receiving service")
	}
}

func TestServiceAnnounce(t *testing.T) {
	hub := NewHub()
	a := newTestService(hub, "AA:BB:CC:DD:EE:01", 8)
	b := newTestService(hub, "AA:BB:CC:DD:EE:02", 8)

	if err := a.Announce(); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-b.Events():
		if ev.Type != MsgPeerAnnounce {
			t.Fatalf("expected a peer announcement, got %s", ev.Type)
		}
		if ev.Sender != "AA:BB:CC:DD:EE:01" {
			t.Fatalf("expected the announcing address, got %q", ev.Sender)
		}
	default:
		t.Fatal("expected an announcement on the receiving service")
	}
}

func TestServiceQueueOverflow(t *testing.T) {
	hub := NewHub()
	b := newTestService(hub, "AA:BB:CC:DD:EE:02", 2)

	sender := hub.Transport("AA:BB:CC:DD:EE:03")
	pkt := &Packet{Type: MsgPeerAnnounce, Sender: "AA:BB:CC:DD:EE:03"}
	frame, err := pkt.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := sender.Broadcast(frame); err != nil {
			t.Fatal(err)
		}
	}
	if b.Dropped() != 3 {
		t.Fatalf("expected 3 dropped messages past the queue bound, got %d", b.Dropped())
	}
	delivered := 0
	for {
		select {
		case <-b.Events():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != 2 {
		t.Fatalf("expected 2 queued messages, got %d", delivered)
	}
}

func TestServiceLossyHub(t *testing.T) {
	hub := NewHub()
	hub.SetLoss(1.0, 7)
	a := newTestService(hub, "AA:BB:CC:DD:EE:01", 8)
	b := newTestService(hub, "AA:BB:CC:DD:EE:02", 8)

	tx := makeTx()
	// Loss is silent: the broadcaster cannot tell.
	if err := a.BroadcastTransaction(&tx); err != nil {
		t.Fatalf("expected the send to report success, got %s", err)
	}
	select {
	case ev := <-b.Events():
		t.Fatalf("expected the frame to be lost, got %s", ev.Type)
	default:
	}
}

func TestServiceMalformedFrames(t *testing.T) {
	hub := NewHub()
	b := newTestService(hub, "AA:BB:CC:DD:EE:02", 8)
	sender := hub.Transport("AA:BB:CC:DD:EE:03")

	// Truncated frame.
	if err := sender.Broadcast(make([]byte, FrameSize-1)); err != nil {
		t.Fatal(err)
	}
	// Transaction message with a bad payload length.
	pkt := &Packet{Type: MsgNewTelemetry, Payload: []byte{1, 2, 3}, Sender: "AA:BB:CC:DD:EE:03"}
	frame, err := pkt.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if err := sender.Broadcast(frame); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-b.Events():
		t.Fatalf("expected malformed frames to be discarded, got %s", ev.Type)
	default:
	}
	if b.Dropped() != 0 {
		t.Fatalf("expected malformed frames to not count as queue drops, got %d", b.Dropped())
	}
}
