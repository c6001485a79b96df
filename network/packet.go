// Package network implements the broadcast wire protocol: packet framing,
// the known-peer set and the broadcast service.
package network // import "telemesh.io/prototype/network"

import (
	"encoding/binary"
	"errors"
	"fmt"

	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"
)

// Frame layout constants. The gross frame must fit the transport's MTU of
// roughly 250 bytes, which is why full blocks are never broadcast.
const (
	PayloadSize = 200
	FrameSize   = 1 + PayloadSize + 2 + telemetry.AddressSize
)

// MsgType tags the payload interpretation of a packet.
type MsgType uint8

// Message types.
const (
	MsgNewTelemetry MsgType = iota
	MsgNewBlock
	MsgRequestChain
	MsgChainData
	MsgPeerAnnounce
	MsgValidatorHeartbeat
)

func (t MsgType) String() string {
	switch t {
	case MsgNewTelemetry:
		return "new-telemetry"
	case MsgNewBlock:
		return "new-block"
	case MsgRequestChain:
		return "request-chain"
	case MsgChainData:
		return "chain-data"
	case MsgPeerAnnounce:
		return "peer-announce"
	case MsgValidatorHeartbeat:
		return "validator-heartbeat"
	default:
		return fmt.Sprintf("msgtype(%d)", uint8(t))
	}
}

// Framing errors.
var (
	ErrPayloadTooLarge = errors.New("network: payload exceeds frame capacity")
	ErrShortFrame      = errors.New("network: short frame")
	ErrBadLength       = errors.New("network: declared payload length is invalid")
)

// Packet is one fixed-size wire frame.
type Packet struct {
	Type    MsgType
	Payload []byte
	Sender  string
}

// Marshal encodes the packet into its fixed 220-byte frame.
func (p *Packet) Marshal() ([]byte, error) {
	if len(p.Payload) > PayloadSize {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, FrameSize)
	buf[0] = byte(p.Type)
	copy(buf[1:1+PayloadSize], p.Payload)
	binary.LittleEndian.PutUint16(buf[1+PayloadSize:], uint16(len(p.Payload)))
	telemetry.PutString(buf[3+PayloadSize:], p.Sender)
	return buf, nil
}

// UnmarshalPacket decodes a frame, validating the declared payload length
// before any payload bytes are interpreted.
func UnmarshalPacket(data []byte) (*Packet, error) {
	if len(data) < FrameSize {
		return nil, ErrShortFrame
	}
	n := int(binary.LittleEndian.Uint16(data[1+PayloadSize:]))
	if n > PayloadSize {
		return nil, ErrBadLength
	}
	payload := make([]byte, n)
	copy(payload, data[1:1+n])
	return &Packet{
		Type:    MsgType(data[0]),
		Payload: payload,
		Sender:  telemetry.GetString(data[3+PayloadSize : FrameSize]),
	}, nil
}

// Event is a decoded, validated inbound message as delivered to the node
// loop. Exactly one of Tx and Header is set, depending on Type.
type Event struct {
	Sender string
	Type   MsgType
	Tx     *telemetry.Transaction
	Header *ledger.Header
}

// parseEvent interprets the packet payload according to its message type,
// checking the payload length against the expected record size.
func parseEvent(p *Packet) (Event, error) {
	ev := Event{Sender: p.Sender, Type: p.Type}
	switch p.Type {
	case MsgNewTelemetry:
		if len(p.Payload) != telemetry.TransactionSize {
			return ev, ErrBadLength
		}
		tx, err := telemetry.UnmarshalTransaction(p.Payload)
		if err != nil {
			return ev, err
		}
		ev.Tx = &tx
	case MsgNewBlock:
		if len(p.Payload) != ledger.HeaderSize {
			return ev, ErrBadLength
		}
		h, err := ledger.UnmarshalHeader(p.Payload)
		if err != nil {
			return ev, err
		}
		ev.Header = &h
	case MsgPeerAnnounce, MsgRequestChain, MsgChainData, MsgValidatorHeartbeat:
		// Reserved or payload-free types pass through untyped.
	default:
		return ev, fmt.Errorf("network: unknown message type: %d", p.Type)
	}
	return ev, nil
}
