package packet

import (
	"io"

	"limbo/internal/proto"
)

// NextState is the phase a Handshake packet asks the connection to move
// into. It travels on the wire as a VarInt (1 or 2); any other value is
// rejected by DecodeHandshake.
type NextState int32

const (
	NextStateStatus NextState = 1
	NextStateLogin  NextState = 2
)

// HandshakeID is the sole Handshake-phase, serverbound packet id.
const HandshakeID = 0x00

// HandshakePacket is the single packet every connection starts with: it
// carries the client's claimed protocol version and which phase to enter
// next.
type HandshakePacket struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       NextState
}

func (p *HandshakePacket) ID() int32 { return HandshakeID }

func (p *HandshakePacket) Encode(w io.Writer) error {
	if err := proto.WriteVarInt(w, p.ProtocolVersion); err != nil {
		return err
	}
	if err := proto.WriteString(w, p.ServerAddress); err != nil {
		return err
	}
	if err := proto.WriteUint16(w, p.ServerPort); err != nil {
		return err
	}
	return proto.WriteVarInt(w, int32(p.NextState))
}

// DecodeHandshake reads a HandshakePacket body from r. NextState values
// other than Status (1) and Login (2) fail with proto.InvalidEnumVariant.
func DecodeHandshake(r *proto.Reader) (*HandshakePacket, error) {
	version, err := proto.ReadVarInt(r)
	if err != nil {
		return nil, proto.WithField("protocol_version", err)
	}
	addr, err := proto.ReadString(r)
	if err != nil {
		return nil, proto.WithField("server_address", err)
	}
	port, err := proto.ReadUint16(r)
	if err != nil {
		return nil, proto.WithField("server_port", err)
	}
	next, err := proto.ReadVarInt(r)
	if err != nil {
		return nil, proto.WithField("next_state", err)
	}
	switch NextState(next) {
	case NextStateStatus, NextStateLogin:
	default:
		return nil, proto.WithField("next_state", proto.NewError(proto.InvalidEnumVariant))
	}
	return &HandshakePacket{
		ProtocolVersion: version,
		ServerAddress:   addr,
		ServerPort:      port,
		NextState:       NextState(next),
	}, nil
}
