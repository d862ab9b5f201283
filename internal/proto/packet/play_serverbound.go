package packet

import (
	"io"

	"limbo/internal/proto"
)

const (
	TeleportConfirmID           = 0x00
	ClientSettingsID            = 0x05
	ServerboundPluginMessageID  = 0x0a
	ServerboundKeepAliveID      = 0x0f
	PlayerPositionID            = 0x11
	PlayerPositionAndRotationID = 0x12
)

// TeleportConfirmPacket acknowledges a PlayerPositionAndLookPacket by
// echoing its teleport id.
type TeleportConfirmPacket struct {
	TeleportID int32
}

func (p *TeleportConfirmPacket) ID() int32 { return TeleportConfirmID }

func (p *TeleportConfirmPacket) Encode(w io.Writer) error {
	return proto.WriteVarInt(w, p.TeleportID)
}

func DecodeTeleportConfirm(r *proto.Reader) (*TeleportConfirmPacket, error) {
	id, err := proto.ReadVarInt(r)
	if err != nil {
		return nil, proto.WithField("teleport_id", err)
	}
	return &TeleportConfirmPacket{TeleportID: id}, nil
}

// ClientSettingsPacket reports the client's locale and display
// preferences; SkinParts and MainHand feed the supplemented
// EntityMetadata follow-up packet.
type ClientSettingsPacket struct {
	Locale              string
	ViewDistance        int8
	ChatMode            int32
	ChatColors          bool
	DisplayedSkinParts  uint8
	MainHand            int32
	TextFiltering       bool
	AllowServerListings bool
}

func (p *ClientSettingsPacket) ID() int32 { return ClientSettingsID }

func (p *ClientSettingsPacket) Encode(w io.Writer) error {
	if err := proto.WriteString(w, p.Locale); err != nil {
		return err
	}
	if err := proto.WriteInt8(w, p.ViewDistance); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, p.ChatMode); err != nil {
		return err
	}
	if err := proto.WriteBool(w, p.ChatColors); err != nil {
		return err
	}
	if err := proto.WriteUint8(w, p.DisplayedSkinParts); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, p.MainHand); err != nil {
		return err
	}
	if err := proto.WriteBool(w, p.TextFiltering); err != nil {
		return err
	}
	return proto.WriteBool(w, p.AllowServerListings)
}

func DecodeClientSettings(r *proto.Reader) (*ClientSettingsPacket, error) {
	var p ClientSettingsPacket
	var err error
	if p.Locale, err = proto.ReadString(r); err != nil {
		return nil, proto.WithField("locale", err)
	}
	if p.ViewDistance, err = proto.ReadInt8(r); err != nil {
		return nil, proto.WithField("view_distance", err)
	}
	if p.ChatMode, err = proto.ReadVarInt(r); err != nil {
		return nil, proto.WithField("chat_mode", err)
	}
	if p.ChatColors, err = proto.ReadBool(r); err != nil {
		return nil, proto.WithField("chat_colors", err)
	}
	if p.DisplayedSkinParts, err = proto.ReadUint8(r); err != nil {
		return nil, proto.WithField("displayed_skin_parts", err)
	}
	if p.MainHand, err = proto.ReadVarInt(r); err != nil {
		return nil, proto.WithField("main_hand", err)
	}
	if p.TextFiltering, err = proto.ReadBool(r); err != nil {
		return nil, proto.WithField("text_filtering", err)
	}
	if p.AllowServerListings, err = proto.ReadBool(r); err != nil {
		return nil, proto.WithField("allow_server_listings", err)
	}
	return &p, nil
}

// ServerboundPluginMessagePacket carries an opaque payload on a named
// channel; the core engine inspects only the channel string (e.g.
// "minecraft:brand") and leaves Data untouched.
type ServerboundPluginMessagePacket struct {
	Channel string
	Data    []byte
}

func (p *ServerboundPluginMessagePacket) ID() int32 { return ServerboundPluginMessageID }

func (p *ServerboundPluginMessagePacket) Encode(w io.Writer) error {
	if err := proto.WriteString(w, p.Channel); err != nil {
		return err
	}
	return proto.WriteRaw(w, p.Data)
}

func DecodeServerboundPluginMessage(r *proto.Reader) (*ServerboundPluginMessagePacket, error) {
	channel, err := proto.ReadString(r)
	if err != nil {
		return nil, proto.WithField("channel", err)
	}
	return &ServerboundPluginMessagePacket{Channel: channel, Data: proto.RawTail(r)}, nil
}

// ServerboundKeepAlivePacket echoes the id from a ClientboundKeepAlivePacket.
// The session accepts it without comparing the id and applies no timeout.
type ServerboundKeepAlivePacket struct {
	ID64 uint64
}

func (p *ServerboundKeepAlivePacket) ID() int32 { return ServerboundKeepAliveID }

func (p *ServerboundKeepAlivePacket) Encode(w io.Writer) error {
	return proto.WriteUint64(w, p.ID64)
}

func DecodeServerboundKeepAlive(r *proto.Reader) (*ServerboundKeepAlivePacket, error) {
	id, err := proto.ReadUint64(r)
	if err != nil {
		return nil, proto.WithField("id", err)
	}
	return &ServerboundKeepAlivePacket{ID64: id}, nil
}

// PlayerPositionPacket reports a movement with unchanged look.
type PlayerPositionPacket struct {
	X, Y, Z  float64
	OnGround bool
}

func (p *PlayerPositionPacket) ID() int32 { return PlayerPositionID }

func (p *PlayerPositionPacket) Encode(w io.Writer) error {
	if err := proto.WriteFloat64(w, p.X); err != nil {
		return err
	}
	if err := proto.WriteFloat64(w, p.Y); err != nil {
		return err
	}
	if err := proto.WriteFloat64(w, p.Z); err != nil {
		return err
	}
	return proto.WriteBool(w, p.OnGround)
}

func DecodePlayerPosition(r *proto.Reader) (*PlayerPositionPacket, error) {
	var p PlayerPositionPacket
	var err error
	if p.X, err = proto.ReadFloat64(r); err != nil {
		return nil, proto.WithField("x", err)
	}
	if p.Y, err = proto.ReadFloat64(r); err != nil {
		return nil, proto.WithField("y", err)
	}
	if p.Z, err = proto.ReadFloat64(r); err != nil {
		return nil, proto.WithField("z", err)
	}
	if p.OnGround, err = proto.ReadBool(r); err != nil {
		return nil, proto.WithField("on_ground", err)
	}
	return &p, nil
}

// PlayerPositionAndRotationPacket reports a movement that also changes
// look direction.
type PlayerPositionAndRotationPacket struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	OnGround   bool
}

func (p *PlayerPositionAndRotationPacket) ID() int32 { return PlayerPositionAndRotationID }

func (p *PlayerPositionAndRotationPacket) Encode(w io.Writer) error {
	if err := proto.WriteFloat64(w, p.X); err != nil {
		return err
	}
	if err := proto.WriteFloat64(w, p.Y); err != nil {
		return err
	}
	if err := proto.WriteFloat64(w, p.Z); err != nil {
		return err
	}
	if err := proto.WriteFloat32(w, p.Yaw); err != nil {
		return err
	}
	if err := proto.WriteFloat32(w, p.Pitch); err != nil {
		return err
	}
	return proto.WriteBool(w, p.OnGround)
}

func DecodePlayerPositionAndRotation(r *proto.Reader) (*PlayerPositionAndRotationPacket, error) {
	var p PlayerPositionAndRotationPacket
	var err error
	if p.X, err = proto.ReadFloat64(r); err != nil {
		return nil, proto.WithField("x", err)
	}
	if p.Y, err = proto.ReadFloat64(r); err != nil {
		return nil, proto.WithField("y", err)
	}
	if p.Z, err = proto.ReadFloat64(r); err != nil {
		return nil, proto.WithField("z", err)
	}
	if p.Yaw, err = proto.ReadFloat32(r); err != nil {
		return nil, proto.WithField("yaw", err)
	}
	if p.Pitch, err = proto.ReadFloat32(r); err != nil {
		return nil, proto.WithField("pitch", err)
	}
	if p.OnGround, err = proto.ReadBool(r); err != nil {
		return nil, proto.WithField("on_ground", err)
	}
	return &p, nil
}
