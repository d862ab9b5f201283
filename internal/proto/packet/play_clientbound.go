package packet

import (
	"io"

	"limbo/internal/proto"
)

const (
	ClientboundPluginMessageID = 0x18
	PlayDisconnectID           = 0x1a
	ClientboundKeepAliveID     = 0x21
	JoinGameID                 = 0x26
	PlayerPositionAndLookID    = 0x38
	EntityMetadataID           = 0x44
	SpawnPositionID            = 0x4b
)

// ClientboundPluginMessagePacket carries an opaque payload to the client
// on a named channel (e.g. "minecraft:brand").
type ClientboundPluginMessagePacket struct {
	Channel string
	Data    []byte
}

func (p *ClientboundPluginMessagePacket) ID() int32 { return ClientboundPluginMessageID }

func (p *ClientboundPluginMessagePacket) Encode(w io.Writer) error {
	if err := proto.WriteString(w, p.Channel); err != nil {
		return err
	}
	return proto.WriteRaw(w, p.Data)
}

// PlayDisconnectPacket ends a Play-phase connection with a reason shown
// to the client before the socket is closed.
type PlayDisconnectPacket struct {
	Reason any
}

func (p *PlayDisconnectPacket) ID() int32 { return PlayDisconnectID }

func (p *PlayDisconnectPacket) Encode(w io.Writer) error {
	return proto.WriteJSON(w, p.Reason)
}

// ClientboundKeepAlivePacket is sent on a fixed interval; the client
// answers with a ServerboundKeepAlivePacket. The session does not check
// the echoed id and does not time out a client that fails to answer.
type ClientboundKeepAlivePacket struct {
	ID64 uint64
}

func (p *ClientboundKeepAlivePacket) ID() int32 { return ClientboundKeepAliveID }

func (p *ClientboundKeepAlivePacket) Encode(w io.Writer) error {
	return proto.WriteUint64(w, p.ID64)
}

// JoinGamePacket finalizes the Login -> Play transition. DimensionCodec
// and Dimension are opaque NBT blobs supplied by the embedder; the core
// engine never parses them.
type JoinGamePacket struct {
	EntityID            int32
	Hardcore            bool
	Gamemode            int8
	PreviousGamemode    *int8 // nil means absent (wire value -1)
	WorldNames          []string
	DimensionCodec      []byte
	Dimension           []byte
	WorldName           string
	HashedSeed          int64
	MaxPlayers          int32
	ViewDistance        int32
	SimulationDistance  int32
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	Debug               bool
	Flat                bool
}

func (p *JoinGamePacket) ID() int32 { return JoinGameID }

func (p *JoinGamePacket) Encode(w io.Writer) error {
	if err := proto.WriteInt32(w, p.EntityID); err != nil {
		return err
	}
	if err := proto.WriteBool(w, p.Hardcore); err != nil {
		return err
	}
	if err := proto.WriteInt8(w, p.Gamemode); err != nil {
		return err
	}
	prev := p.PreviousGamemode
	var wire int8 = -1
	if prev != nil {
		wire = *prev
	}
	if err := proto.WriteInt8(w, wire); err != nil {
		return err
	}
	if err := proto.WriteSeq(w, p.WorldNames, proto.WriteString); err != nil {
		return err
	}
	if err := proto.WriteRaw(w, p.DimensionCodec); err != nil {
		return err
	}
	if err := proto.WriteRaw(w, p.Dimension); err != nil {
		return err
	}
	if err := proto.WriteString(w, p.WorldName); err != nil {
		return err
	}
	if err := proto.WriteInt64(w, p.HashedSeed); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, p.MaxPlayers); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, p.ViewDistance); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, p.SimulationDistance); err != nil {
		return err
	}
	if err := proto.WriteBool(w, p.ReducedDebugInfo); err != nil {
		return err
	}
	if err := proto.WriteBool(w, p.EnableRespawnScreen); err != nil {
		return err
	}
	if err := proto.WriteBool(w, p.Debug); err != nil {
		return err
	}
	return proto.WriteBool(w, p.Flat)
}

// PlayerPositionAndLookPacket teleports the client to an absolute (or
// relative, per Flags) position. TeleportID must be echoed back by a
// TeleportConfirmPacket.
type PlayerPositionAndLookPacket struct {
	X, Y, Z         float64
	Yaw, Pitch      float32
	Flags           uint8
	TeleportID      int32
	DismountVehicle bool
}

func (p *PlayerPositionAndLookPacket) ID() int32 { return PlayerPositionAndLookID }

func (p *PlayerPositionAndLookPacket) Encode(w io.Writer) error {
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
	if err := proto.WriteUint8(w, p.Flags); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, p.TeleportID); err != nil {
		return err
	}
	return proto.WriteBool(w, p.DismountVehicle)
}

// SpawnPositionPacket sets the client's compass/respawn anchor.
type SpawnPositionPacket struct {
	Location proto.Position
	Angle    float32
}

func (p *SpawnPositionPacket) ID() int32 { return SpawnPositionID }

func (p *SpawnPositionPacket) Encode(w io.Writer) error {
	if err := proto.WritePosition(w, p.Location); err != nil {
		return err
	}
	return proto.WriteFloat32(w, p.Angle)
}

// EntityMetadataPacket is a supplemented follow-up to JoinGame, not part
// of the minimal distilled set: it echoes the skin-parts/main-hand byte
// pair a client reported in ClientSettingsPacket back onto its own
// entity, so clients that render their own model from tracked entity
// metadata (rather than purely local state) see a consistent skin.
// EntityID must be the id assigned in JoinGamePacket, not a constant —
// see the "Open Question (iii)" resolution in SPEC_FULL.md §4.2.
type EntityMetadataPacket struct {
	EntityID         int32
	SkinPartsBitmask uint8
	MainHand         uint8
}

func (p *EntityMetadataPacket) ID() int32 { return EntityMetadataID }

// metadataEnd is the marker byte that terminates an entity metadata list.
const metadataEnd = 0xff

func (p *EntityMetadataPacket) Encode(w io.Writer) error {
	if err := proto.WriteVarInt(w, p.EntityID); err != nil {
		return err
	}
	// Index 17 (DISPLAYED_SKIN_PARTS), type Byte (0).
	if err := proto.WriteUint8(w, 17); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, 0); err != nil {
		return err
	}
	if err := proto.WriteUint8(w, p.SkinPartsBitmask); err != nil {
		return err
	}
	// Index 18 (MAIN_HAND), type Byte (0).
	if err := proto.WriteUint8(w, 18); err != nil {
		return err
	}
	if err := proto.WriteVarInt(w, 0); err != nil {
		return err
	}
	if err := proto.WriteUint8(w, p.MainHand); err != nil {
		return err
	}
	return proto.WriteUint8(w, metadataEnd)
}
