package connio

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limbo/internal/proto"
)

func pipe(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	return New(a), New(b)
}

func TestWriteReadPacketUncompressed(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		id, r, err := server.ReadPacket()
		require.NoError(t, err)
		assert.EqualValues(t, 0x01, id)
		s, err := proto.ReadString(r)
		require.NoError(t, err)
		assert.Equal(t, "hello", s)
	}()

	var buf bytes.Buffer
	require.NoError(t, proto.WriteString(&buf, "hello"))
	require.NoError(t, client.WritePacket(0x01, buf.Bytes()))
	<-done
}

func TestWriteReadPacketCompressed(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	client.SetCompression(8)
	server.SetCompression(8)

	done := make(chan struct{})
	go func() {
		defer close(done)
		id, r, err := server.ReadPacket()
		require.NoError(t, err)
		assert.EqualValues(t, 0x02, id)
		s, err := proto.ReadString(r)
		require.NoError(t, err)
		assert.Equal(t, "a string long enough to pass the compression threshold", s)
	}()

	var buf bytes.Buffer
	require.NoError(t, proto.WriteString(&buf, "a string long enough to pass the compression threshold"))
	require.NoError(t, client.WritePacket(0x02, buf.Bytes()))
	<-done
}

func TestWriteReadPacketBelowCompressionThresholdStaysUncompressed(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	client.SetCompression(1024)
	server.SetCompression(1024)

	done := make(chan struct{})
	go func() {
		defer close(done)
		id, r, err := server.ReadPacket()
		require.NoError(t, err)
		assert.EqualValues(t, 0x02, id)
		s, err := proto.ReadString(r)
		require.NoError(t, err)
		assert.Equal(t, "short", s)
	}()

	var buf bytes.Buffer
	require.NoError(t, proto.WriteString(&buf, "short"))
	require.NoError(t, client.WritePacket(0x02, buf.Bytes()))
	<-done
}

func TestWriteReadPacketEncrypted(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	secret := make([]byte, 16)
	for i := range secret {
		secret[i] = byte(i)
	}
	require.NoError(t, client.SetCipher(secret))
	require.NoError(t, server.SetCipher(secret))

	done := make(chan struct{})
	go func() {
		defer close(done)
		id, r, err := server.ReadPacket()
		require.NoError(t, err)
		assert.EqualValues(t, 0x03, id)
		v, err := proto.ReadVarInt(r)
		require.NoError(t, err)
		assert.EqualValues(t, 12345, v)
	}()

	var buf bytes.Buffer
	require.NoError(t, proto.WriteVarInt(&buf, 12345))
	require.NoError(t, client.WritePacket(0x03, buf.Bytes()))
	<-done
}

func TestOversizedPacketRejected(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	go func() {
		var header bytes.Buffer
		_ = proto.WriteVarInt(&header, int32(MaxPacketLength+1))
		_, _ = client.nc.Write(header.Bytes())
	}()

	_, _, err := server.ReadPacket()
	require.Error(t, err)
	perr, ok := err.(*proto.Error)
	require.True(t, ok)
	assert.Equal(t, proto.OversizedPacket, perr.Kind)
}
