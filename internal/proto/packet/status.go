package packet

import (
	"io"

	"limbo/internal/proto"
)

const (
	StatusRequestID = 0x00 // serverbound
	StatusPingID    = 0x01 // serverbound

	StatusResponseID = 0x00 // clientbound
	StatusPongID     = 0x01 // clientbound
)

// RequestPacket asks for the server status JSON blob. It carries no
// fields.
type RequestPacket struct{}

func (p *RequestPacket) ID() int32               { return StatusRequestID }
func (p *RequestPacket) Encode(w io.Writer) error { return nil }

func DecodeRequest(r *proto.Reader) (*RequestPacket, error) {
	return &RequestPacket{}, nil
}

// PingPacket is an echo probe; the server must return the same payload
// in a PongPacket.
type PingPacket struct {
	Payload int64
}

func (p *PingPacket) ID() int32 { return StatusPingID }

func (p *PingPacket) Encode(w io.Writer) error {
	return proto.WriteInt64(w, p.Payload)
}

func DecodePing(r *proto.Reader) (*PingPacket, error) {
	v, err := proto.ReadInt64(r)
	if err != nil {
		return nil, proto.WithField("payload", err)
	}
	return &PingPacket{Payload: v}, nil
}

// ResponsePacket carries the JSON server-list-ping payload; Info is
// opaque to the codec (the embedder supplies and parses its shape).
type ResponsePacket struct {
	Info any
}

func (p *ResponsePacket) ID() int32 { return StatusResponseID }

func (p *ResponsePacket) Encode(w io.Writer) error {
	return proto.WriteJSON(w, p.Info)
}

// PongPacket echoes a PingPacket's payload back to the client.
type PongPacket struct {
	Payload int64
}

func (p *PongPacket) ID() int32 { return StatusPongID }

func (p *PongPacket) Encode(w io.Writer) error {
	return proto.WriteInt64(w, p.Payload)
}
