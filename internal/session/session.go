// Package session drives the per-connection conversation state machine:
// Handshake -> Status (terminal) or Handshake -> Login -> Play, including
// the online-mode encryption handshake and the keep-alive loop. Grounded
// in the original chrrs/limbo server/src/client.rs Client::run /
// process_packet structure, adapted from its tokio per-task model to a
// goroutine-per-connection model with an explicit writer goroutine.
package session

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"limbo/internal/auth"
	"limbo/internal/connio"
	"limbo/internal/limbo"
	"limbo/internal/proto/packet"
	"limbo/internal/world"
)

// keepAliveInterval is the fixed tick at which KeepAlive packets are sent
// while a session is in Play (spec §4.5).
const keepAliveInterval = 5 * time.Second

// outboundQueueSize bounds the per-connection writer queue; producers
// (the keep-alive ticker, handler responses) block once it's full rather
// than growing without limit.
const outboundQueueSize = 64

var errDisconnected = errors.New("session: disconnected")

// textComponent is the minimal JSON shape written for chat/disconnect
// reasons (spec §3 "text component").
type textComponent struct {
	Text string `json:"text"`
}

func reason(s string) textComponent { return textComponent{Text: s} }

// outboundPacket pairs a packet id with its pre-encoded body for the
// writer goroutine to frame and send.
type outboundPacket struct {
	id   int32
	body []byte
}

// Session owns one accepted connection for its entire lifetime: decode
// and dispatch of inbound packets, the single writer goroutine, and the
// keep-alive ticker. Per spec §5, no state here is shared with any other
// connection, except the two process-wide items reached through srv.
type Session struct {
	srv  *limbo.Server
	conn *connio.Conn

	// phase is only ever mutated from the Run goroutine; inPlay mirrors
	// it for the writer goroutine to read without a data race.
	phase  packet.Phase
	inPlay atomic.Bool

	name     string
	id       uuid.UUID
	entityID int32

	verifyToken []byte

	out    chan outboundPacket
	closed chan struct{}
}

// New creates a Session around an already-accepted connection.
func New(srv *limbo.Server, conn *connio.Conn) *Session {
	return &Session{
		srv:    srv,
		conn:   conn,
		phase:  packet.Handshake,
		out:    make(chan outboundPacket, outboundQueueSize),
		closed: make(chan struct{}),
	}
}

// Run drives the session until the connection ends or ctx is cancelled.
// It starts the writer goroutine, then loops decoding and dispatching
// inbound packets; on return the connection is always closed and, if the
// session had joined Play, it is removed from the player registry.
func (s *Session) Run(ctx context.Context) {
	defer s.conn.Close()
	defer close(s.closed)
	defer func() {
		if s.inPlay.Load() {
			s.srv.World.Leave(s.entityID)
		}
	}()

	go s.writer()

	for {
		select {
		case <-ctx.Done():
			s.disconnect("Server shutting down")
			return
		default:
		}

		id, r, err := s.conn.ReadPacket()
		if err != nil {
			log.Printf("session: read: %v", err)
			return
		}

		pkt, err := packet.DecodeServerbound(s.phase, id, r)
		if err != nil {
			var unk *packet.ErrUnknownPacketID
			if errors.As(err, &unk) {
				log.Printf("session: %v", unk)
				continue
			}
			log.Printf("session: decode: %v", err)
			s.disconnect(fmt.Sprintf("Invalid packet: %v", err))
			return
		}

		if err := s.dispatch(ctx, pkt); err != nil {
			if !errors.Is(err, errDisconnected) {
				log.Printf("session: dispatch: %v", err)
			}
			return
		}
	}
}

func (s *Session) dispatch(ctx context.Context, pkt packet.Packet) error {
	switch p := pkt.(type) {
	case *packet.HandshakePacket:
		return s.handleHandshake(p)
	case *packet.RequestPacket:
		return s.handleStatusRequest()
	case *packet.PingPacket:
		return s.send(&packet.PongPacket{Payload: p.Payload})
	case *packet.LoginStartPacket:
		return s.handleLoginStart(ctx, p)
	case *packet.EncryptionResponsePacket:
		return s.handleEncryptionResponse(ctx, p)
	case *packet.ClientSettingsPacket:
		return s.handleClientSettings(p)
	default:
		// TeleportConfirm, PluginMessage, KeepAlive and movement packets
		// carry no required server-side reaction in a static world.
		return nil
	}
}

func (s *Session) handleHandshake(p *packet.HandshakePacket) error {
	switch p.NextState {
	case packet.NextStateStatus:
		s.phase = packet.Status
	case packet.NextStateLogin:
		s.phase = packet.Login
		if p.ProtocolVersion != s.srv.ProtocolVersion {
			s.disconnect(fmt.Sprintf("Version mismatch between client and server. Please connect using protocol %d.", s.srv.ProtocolVersion))
			return errDisconnected
		}
	}
	return nil
}

func (s *Session) handleStatusRequest() error {
	cfg := s.srv.Config.Snapshot()
	if cfg.Hidden {
		return errDisconnected
	}

	info := map[string]any{
		"version": map[string]any{
			"name":     cfg.ServerName,
			"protocol": s.srv.ProtocolVersion,
		},
		"description": reason(cfg.MOTD),
	}
	if !cfg.HidePlayerCount {
		info["players"] = map[string]any{
			"max":    cfg.MaxPlayers,
			"online": s.srv.World.Online(),
		}
	}
	if favicon := s.srv.Favicon(cfg.FaviconPath); favicon != "" {
		info["favicon"] = favicon
	}
	return s.send(&packet.ResponsePacket{Info: info})
}

// send encodes p and enqueues it onto the writer's bounded channel.
func (s *Session) send(p packet.Packet) error {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return fmt.Errorf("session: encoding packet 0x%02x: %w", p.ID(), err)
	}
	select {
	case s.out <- outboundPacket{id: p.ID(), body: buf.Bytes()}:
		return nil
	case <-s.closed:
		return errDisconnected
	}
}

// disconnect best-effort sends a Disconnect in the current phase before
// the caller tears the connection down. Per spec §7, disconnect reasons
// are always conveyed as a text component.
func (s *Session) disconnect(msg string) {
	switch s.phase {
	case packet.Login:
		_ = s.send(&packet.LoginDisconnectPacket{Reason: reason(msg)})
	case packet.Play:
		_ = s.send(&packet.PlayDisconnectPacket{Reason: reason(msg)})
	}
}

// writer drains the outbound queue and is the only goroutine that ever
// calls conn.WritePacket, serializing all sends per spec §4.3/§4.6/§9.
func (s *Session) writer() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case pkt, ok := <-s.out:
			if !ok {
				return
			}
			if err := s.conn.WritePacket(pkt.id, pkt.body); err != nil {
				log.Printf("session: write: %v", err)
				return
			}
		case <-ticker.C:
			if s.inPlay.Load() {
				_ = s.send(&packet.ClientboundKeepAlivePacket{ID64: 0})
			}
		}
	}
}

// handleLoginStart validates the username and either proceeds directly
// to Play (offline mode) or starts the encryption handshake (online
// mode), per spec §4.4.
func (s *Session) handleLoginStart(ctx context.Context, p *packet.LoginStartPacket) error {
	if n := utf8.RuneCountInString(p.Name); n < 1 || n > 16 {
		s.disconnect("Usernames should be between 1-16 characters long.")
		return errDisconnected
	}
	s.name = p.Name

	cfg := s.srv.Config.Snapshot()
	if !cfg.OnlineMode {
		s.id = uuid.New()
		return s.finishLogin()
	}

	pub, err := s.srv.PublicKeyDER()
	if err != nil {
		return err
	}
	token, err := limbo.NewVerifyToken()
	if err != nil {
		return err
	}
	s.verifyToken = token

	return s.send(&packet.EncryptionRequestPacket{
		ServerID:    "",
		PublicKey:   pub,
		VerifyToken: token,
	})
}

// handleEncryptionResponse completes the online-mode handshake: decrypts
// the shared secret and verify token, installs the connection cipher,
// and dispatches the session-service check onto the bounded auth pool.
func (s *Session) handleEncryptionResponse(ctx context.Context, p *packet.EncryptionResponsePacket) error {
	priv, err := s.srv.PrivateKey()
	if err != nil {
		return err
	}

	token, err := rsa.DecryptPKCS1v15(rand.Reader, priv, p.VerifyToken)
	if err != nil || !bytes.Equal(token, s.verifyToken) {
		s.disconnect("Invalid encryption challenge response")
		return errDisconnected
	}

	secret, err := rsa.DecryptPKCS1v15(rand.Reader, priv, p.SharedSecret)
	if err != nil || len(secret) != 16 {
		s.disconnect("Invalid encryption challenge response")
		return errDisconnected
	}

	if err := s.conn.SetCipher(secret); err != nil {
		return err
	}

	cfg := s.srv.Config.Snapshot()
	if cfg.CompressionThreshold >= 0 {
		if err := s.send(&packet.SetCompressionPacket{Threshold: cfg.CompressionThreshold}); err != nil {
			return err
		}
		s.conn.SetCompression(cfg.CompressionThreshold)
	}

	pub, err := s.srv.PublicKeyDER()
	if err != nil {
		return err
	}
	serverHash := auth.ServerHash("", secret, pub)

	var profile *auth.Profile
	var authCallErr error
	if err := s.srv.RunAuth(ctx, func() {
		profile, authCallErr = s.srv.Auth.HasJoined(ctx, s.name, serverHash)
	}); err != nil {
		s.disconnect("Could not validate session")
		return errDisconnected
	}
	if authCallErr != nil || profile == nil {
		s.disconnect("Could not validate session")
		return errDisconnected
	}

	s.name = profile.Name
	s.id = profile.ID
	return s.finishLogin()
}

// finishLogin sends Login/Success and the Play-phase join sequence:
// JoinGame, the minecraft:brand plugin message, SpawnPosition, and
// PlayerPositionAndLook (spec §4.4).
func (s *Session) finishLogin() error {
	if err := s.send(&packet.LoginSuccessPacket{UUID: s.id, Name: s.name}); err != nil {
		return err
	}
	s.phase = packet.Play
	s.inPlay.Store(true)

	s.entityID = s.srv.World.NextEntityID()
	s.srv.World.Join(&world.Player{EntityID: s.entityID, Name: s.name})

	prevGamemode := int8(-1)
	if err := s.send(&packet.JoinGamePacket{
		EntityID:            s.entityID,
		Hardcore:            false,
		Gamemode:            0,
		PreviousGamemode:    &prevGamemode,
		WorldNames:          []string{world.Name},
		DimensionCodec:      []byte{},
		Dimension:           []byte{},
		WorldName:           world.Name,
		HashedSeed:          0,
		MaxPlayers:          int32(s.srv.Config.Snapshot().MaxPlayers),
		ViewDistance:        10,
		SimulationDistance:  10,
		ReducedDebugInfo:    false,
		EnableRespawnScreen: true,
		Debug:               false,
		Flat:                false,
	}); err != nil {
		return err
	}

	if err := s.send(&packet.ClientboundPluginMessagePacket{
		Channel: "minecraft:brand",
		Data:    []byte(limbo.ServerBrand),
	}); err != nil {
		return err
	}

	if err := s.send(&packet.SpawnPositionPacket{Location: world.SpawnPosition, Angle: 0}); err != nil {
		return err
	}

	return s.send(&packet.PlayerPositionAndLookPacket{
		X:               float64(world.SpawnPosition.X),
		Y:               float64(world.SpawnPosition.Y),
		Z:               float64(world.SpawnPosition.Z),
		Yaw:             0,
		Pitch:           0,
		Flags:           0,
		TeleportID:      0,
		DismountVehicle: false,
	})
}

func (s *Session) handleClientSettings(p *packet.ClientSettingsPacket) error {
	return s.send(&packet.EntityMetadataPacket{
		EntityID:         s.entityID,
		SkinPartsBitmask: p.DisplayedSkinParts,
		MainHand:         uint8(p.MainHand),
	})
}
