package packet

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limbo/internal/proto"
)

func TestHandshakeRoundTrip(t *testing.T) {
	p := &HandshakePacket{
		ProtocolVersion: 757,
		ServerAddress:   "play.example.com",
		ServerPort:      25565,
		NextState:       NextStateLogin,
	}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	got, err := DecodeHandshake(proto.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestHandshakeRejectsBadNextState(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, proto.WriteVarInt(&buf, 757))
	require.NoError(t, proto.WriteString(&buf, "x"))
	require.NoError(t, proto.WriteUint16(&buf, 1))
	require.NoError(t, proto.WriteVarInt(&buf, 99))

	_, err := DecodeHandshake(proto.NewReader(buf.Bytes()))
	require.Error(t, err)
	perr, ok := err.(*proto.Error)
	require.True(t, ok)
	assert.Equal(t, proto.InvalidEnumVariant, perr.Kind)
}

func TestLoginStartRoundTrip(t *testing.T) {
	p := &LoginStartPacket{Name: "Dinnerbone"}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	got, err := DecodeLoginStart(proto.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestEncryptionResponseRoundTrip(t *testing.T) {
	p := &EncryptionResponsePacket{
		SharedSecret: []byte{1, 2, 3, 4},
		VerifyToken:  []byte{5, 6, 7, 8},
	}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	got, err := DecodeEncryptionResponse(proto.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestLoginSuccessEncode(t *testing.T) {
	id := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	p := &LoginSuccessPacket{UUID: id, Name: "Notch"}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	r := proto.NewReader(buf.Bytes())
	gotID, err := proto.ReadUUID(r)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	gotName, err := proto.ReadString(r)
	require.NoError(t, err)
	assert.Equal(t, "Notch", gotName)
}

func TestClientSettingsRoundTrip(t *testing.T) {
	p := &ClientSettingsPacket{
		Locale:              "en_US",
		ViewDistance:        10,
		ChatMode:            0,
		ChatColors:          true,
		DisplayedSkinParts:  0x7f,
		MainHand:            1,
		TextFiltering:       false,
		AllowServerListings: true,
	}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	got, err := DecodeClientSettings(proto.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestJoinGameEncodeDoesNotError(t *testing.T) {
	prev := int8(-1)
	p := &JoinGamePacket{
		EntityID:            42,
		Hardcore:            false,
		Gamemode:            0,
		PreviousGamemode:    &prev,
		WorldNames:          []string{"minecraft:overworld"},
		DimensionCodec:      []byte{0x0a, 0x00},
		Dimension:           []byte{0x0a, 0x00},
		WorldName:           "minecraft:overworld",
		HashedSeed:          0,
		MaxPlayers:          20,
		ViewDistance:        10,
		SimulationDistance:  10,
		ReducedDebugInfo:    false,
		EnableRespawnScreen: true,
		Debug:               false,
		Flat:                false,
	}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	assert.NotEmpty(t, buf.Bytes())
}

func TestEntityMetadataEncodesEndMarker(t *testing.T) {
	p := &EntityMetadataPacket{EntityID: 42, SkinPartsBitmask: 0x7f, MainHand: 1}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	b := buf.Bytes()
	assert.Equal(t, byte(0xff), b[len(b)-1])
}

func TestDecodeServerboundUnknownID(t *testing.T) {
	_, err := DecodeServerbound(Play, 0x7f, proto.NewReader(nil))
	require.Error(t, err)
	var unk *ErrUnknownPacketID
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, int32(0x7f), unk.ID)
}
