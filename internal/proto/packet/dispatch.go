package packet

import "limbo/internal/proto"

// DecodeServerbound decodes the body of a serverbound packet given its
// phase and id. Returns *ErrUnknownPacketID (not necessarily fatal, see
// spec §4.2) when id has no known variant in phase.
func DecodeServerbound(phase Phase, id int32, r *proto.Reader) (Packet, error) {
	switch phase {
	case Handshake:
		if id == HandshakeID {
			return DecodeHandshake(r)
		}
	case Status:
		switch id {
		case StatusRequestID:
			return DecodeRequest(r)
		case StatusPingID:
			return DecodePing(r)
		}
	case Login:
		switch id {
		case LoginStartID:
			return DecodeLoginStart(r)
		case EncryptionResponseID:
			return DecodeEncryptionResponse(r)
		}
	case Play:
		switch id {
		case TeleportConfirmID:
			return DecodeTeleportConfirm(r)
		case ClientSettingsID:
			return DecodeClientSettings(r)
		case ServerboundPluginMessageID:
			return DecodeServerboundPluginMessage(r)
		case ServerboundKeepAliveID:
			return DecodeServerboundKeepAlive(r)
		case PlayerPositionID:
			return DecodePlayerPosition(r)
		case PlayerPositionAndRotationID:
			return DecodePlayerPositionAndRotation(r)
		}
	}
	return nil, &ErrUnknownPacketID{Phase: phase, Bound: Serverbound, ID: id}
}
