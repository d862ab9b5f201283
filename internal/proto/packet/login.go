package packet

import (
	"io"

	"github.com/google/uuid"

	"limbo/internal/proto"
)

const (
	LoginStartID         = 0x00 // serverbound
	EncryptionResponseID = 0x01 // serverbound

	LoginDisconnectID   = 0x00 // clientbound
	EncryptionRequestID = 0x01 // clientbound
	LoginSuccessID      = 0x02 // clientbound
	SetCompressionID    = 0x03 // clientbound
)

// LoginStartPacket begins the Login phase with the client's claimed
// username. In online mode the final identity is whatever the session
// service returns, not necessarily this value.
type LoginStartPacket struct {
	Name string
}

func (p *LoginStartPacket) ID() int32 { return LoginStartID }

func (p *LoginStartPacket) Encode(w io.Writer) error {
	return proto.WriteString(w, p.Name)
}

func DecodeLoginStart(r *proto.Reader) (*LoginStartPacket, error) {
	name, err := proto.ReadString(r)
	if err != nil {
		return nil, proto.WithField("name", err)
	}
	return &LoginStartPacket{Name: name}, nil
}

// EncryptionResponsePacket answers an EncryptionRequestPacket with the
// client's RSA-encrypted shared secret and verify token.
type EncryptionResponsePacket struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (p *EncryptionResponsePacket) ID() int32 { return EncryptionResponseID }

func (p *EncryptionResponsePacket) Encode(w io.Writer) error {
	if err := proto.WriteBytes(w, p.SharedSecret); err != nil {
		return err
	}
	return proto.WriteBytes(w, p.VerifyToken)
}

func DecodeEncryptionResponse(r *proto.Reader) (*EncryptionResponsePacket, error) {
	secret, err := proto.ReadBytes(r)
	if err != nil {
		return nil, proto.WithField("shared_secret", err)
	}
	token, err := proto.ReadBytes(r)
	if err != nil {
		return nil, proto.WithField("verify_token", err)
	}
	return &EncryptionResponsePacket{SharedSecret: secret, VerifyToken: token}, nil
}

// LoginDisconnectPacket ends the Login phase with a reason shown to the
// client before the connection is closed.
type LoginDisconnectPacket struct {
	Reason any
}

func (p *LoginDisconnectPacket) ID() int32 { return LoginDisconnectID }

func (p *LoginDisconnectPacket) Encode(w io.Writer) error {
	return proto.WriteJSON(w, p.Reason)
}

// EncryptionRequestPacket starts the online-mode handshake: the client is
// asked to encrypt a shared secret and the verify token under PublicKey.
type EncryptionRequestPacket struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func (p *EncryptionRequestPacket) ID() int32 { return EncryptionRequestID }

func (p *EncryptionRequestPacket) Encode(w io.Writer) error {
	if err := proto.WriteString(w, p.ServerID); err != nil {
		return err
	}
	if err := proto.WriteBytes(w, p.PublicKey); err != nil {
		return err
	}
	return proto.WriteBytes(w, p.VerifyToken)
}

// LoginSuccessPacket confirms the client's identity and ends the Login
// phase; the next packet exchanged is in the Play phase.
type LoginSuccessPacket struct {
	UUID uuid.UUID
	Name string
}

func (p *LoginSuccessPacket) ID() int32 { return LoginSuccessID }

func (p *LoginSuccessPacket) Encode(w io.Writer) error {
	if err := proto.WriteUUID(w, p.UUID); err != nil {
		return err
	}
	return proto.WriteString(w, p.Name)
}

// SetCompressionPacket switches the connection into compressed framing
// for every packet after this one, in both directions.
type SetCompressionPacket struct {
	Threshold int32
}

func (p *SetCompressionPacket) ID() int32 { return SetCompressionID }

func (p *SetCompressionPacket) Encode(w io.Writer) error {
	return proto.WriteVarInt(w, p.Threshold)
}
