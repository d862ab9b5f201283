package session

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limbo/internal/config"
	"limbo/internal/connio"
	"limbo/internal/limbo"
	"limbo/internal/proto"
	"limbo/internal/proto/packet"

	"golang.org/x/time/rate"
)

// testProtocolVersion stands in for a deployment's configured
// protocol_version; tests thread it through config the same way
// cmd/limbo does, rather than relying on any package-level default.
const testProtocolVersion int32 = 757

func newTestServer(t *testing.T, onlineMode bool) *limbo.Server {
	t.Helper()
	cfg := &config.Config{
		Host:                 "0.0.0.0",
		Port:                 25565,
		LogLevel:             "info",
		MaxPlayers:           20,
		ServerName:           "limbo",
		MOTD:                 "Hello",
		ProtocolVersion:      testProtocolVersion,
		CompressionThreshold: -1,
		OnlineMode:           onlineMode,
	}
	return limbo.New(config.NewHandle(cfg), rate.Inf)
}

func writeFrame(t *testing.T, w net.Conn, id int32, fields func(*bytes.Buffer)) {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, proto.WriteVarInt(&body, id))
	if fields != nil {
		fields(&body)
	}
	var frame bytes.Buffer
	require.NoError(t, proto.WriteVarInt(&frame, int32(body.Len())))
	frame.Write(body.Bytes())
	_, err := w.Write(frame.Bytes())
	require.NoError(t, err)
}

// TestStatusRoundTrip drives a Handshake(status)+Request through a real
// Session over a net.Pipe and checks a Response comes back, mirroring
// the teacher's style of exercising the conversation over an in-memory
// connection rather than a real socket.
func TestStatusRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	srv := newTestServer(t, false)
	s := New(srv, connio.New(server))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	writeFrame(t, client, packet.HandshakeID, func(b *bytes.Buffer) {
		require.NoError(t, proto.WriteVarInt(b, testProtocolVersion))
		require.NoError(t, proto.WriteString(b, "localhost"))
		require.NoError(t, proto.WriteUint16(b, 25565))
		require.NoError(t, proto.WriteVarInt(b, int32(packet.NextStateStatus)))
	})
	writeFrame(t, client, packet.StatusRequestID, nil)

	clientConn := connio.New(client)
	id, _, err := clientConn.ReadPacket()
	require.NoError(t, err)
	assert.EqualValues(t, packet.StatusResponseID, id)

	cancel()
	client.Close()
	<-done
}

// TestOfflineLoginJoinsPlay drives a full offline-mode login and checks
// the session reaches Play and registers the player in the world.
func TestOfflineLoginJoinsPlay(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	srv := newTestServer(t, false)
	s := New(srv, connio.New(server))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	writeFrame(t, client, packet.HandshakeID, func(b *bytes.Buffer) {
		require.NoError(t, proto.WriteVarInt(b, testProtocolVersion))
		require.NoError(t, proto.WriteString(b, "localhost"))
		require.NoError(t, proto.WriteUint16(b, 25565))
		require.NoError(t, proto.WriteVarInt(b, int32(packet.NextStateLogin)))
	})
	writeFrame(t, client, packet.LoginStartID, func(b *bytes.Buffer) {
		require.NoError(t, proto.WriteString(b, "Steve"))
	})

	clientConn := connio.New(client)
	id, _, err := clientConn.ReadPacket()
	require.NoError(t, err)
	assert.EqualValues(t, packet.LoginSuccessID, id)

	id, _, err = clientConn.ReadPacket()
	require.NoError(t, err)
	assert.EqualValues(t, packet.JoinGameID, id)

	assert.Eventually(t, func() bool { return srv.World.Online() == 1 }, time.Second, time.Millisecond)

	// Closing the client's end must drop the player back out of the
	// registry, not just stop responding to it.
	client.Close()
	<-done
	assert.EqualValues(t, 0, srv.World.Online())

	cancel()
}
