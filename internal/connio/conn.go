// Package connio implements the framed connection: length-delimited
// packet framing over a TCP byte stream, with optional zlib compression
// above the frame and optional AES-128/CFB8 encryption below it.
package connio

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"net"

	"github.com/klauspost/compress/zlib"

	"limbo/internal/proto"
)

// MaxPacketLength bounds the declared length of an inbound frame before
// any allocation happens. Clients that declare more are disconnected
// with an OversizedPacket error.
const MaxPacketLength = 2 * 1024 * 1024

// Conn owns one TCP stream plus the framing state layered on top of it:
// a growable receive buffer, an optional compression threshold, and an
// optional pair of CFB8 stream ciphers. A Conn is driven by exactly one
// reader and, via WritePacket, exactly one writer at a time — see the session
// package for how the writer side is serialized onto a single goroutine.
type Conn struct {
	nc  net.Conn
	buf []byte // unconsumed bytes read from nc, FIFO via recvPos

	recvPos int

	compression int32 // -1 disables compression

	encIn  cipher.Stream
	encOut cipher.Stream
}

// New wraps nc with framing state. Compression and encryption start
// disabled; enable them with SetCompression and SetCipher once the login
// handshake calls for it.
func New(nc net.Conn) *Conn {
	return &Conn{nc: nc, compression: -1}
}

// SetCompression enables (or, with a negative threshold, leaves
// disabled) zlib compression for every packet framed after this call in
// both directions. Per spec, compression is never turned back off once
// enabled with a non-negative threshold.
func (c *Conn) SetCompression(threshold int32) {
	if threshold < 0 && c.compression >= 0 {
		return
	}
	c.compression = threshold
}

// SetCipher installs AES-128/CFB8 encryption using sharedSecret as both
// key and IV, matching vanilla's reuse of the secret for the IV. Once
// set, every byte read from or written to the socket passes through the
// respective stream cipher.
func (c *Conn) SetCipher(sharedSecret []byte) error {
	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return fmt.Errorf("connio: building AES cipher: %w", err)
	}
	c.encIn = newCFB8Decrypter(block, sharedSecret)
	c.encOut = newCFB8Encrypter(block, sharedSecret)
	return nil
}

// RemoteAddr returns the underlying connection's remote address.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.nc.Close() }

// ReadPacket blocks until one full frame has arrived, then returns its
// decoded packet id and a Reader positioned at the start of the body
// (after the id). It performs at most one underlying socket Read per
// call when the buffer already holds a full frame, and as many as needed
// otherwise.
func (c *Conn) ReadPacket() (int32, *proto.Reader, error) {
	for {
		if body, ok, err := c.tryParseFrame(); err != nil {
			return 0, nil, err
		} else if ok {
			r := proto.NewReader(body)
			id, err := proto.ReadVarInt(r)
			if err != nil {
				return 0, nil, fmt.Errorf("connio: reading packet id: %w", err)
			}
			return id, r, nil
		}

		if err := c.fill(); err != nil {
			return 0, nil, err
		}
	}
}

// tryParseFrame attempts to carve one frame's {id, body} payload out of
// the buffered bytes without blocking. ok is false when more bytes are
// needed.
func (c *Conn) tryParseFrame() (body []byte, ok bool, err error) {
	pending := c.buf[c.recvPos:]
	br := bytes.NewReader(pending)

	length, err := proto.ReadVarInt(br)
	if err != nil {
		if perr, ok := err.(*proto.Error); ok && perr.Kind == proto.VariableTooLarge {
			return nil, false, err
		}
		return nil, false, nil // not enough bytes yet for the length VarInt
	}
	if length < 0 || int(length) > MaxPacketLength {
		return nil, false, proto.NewError(proto.OversizedPacket)
	}

	lenSize := len(pending) - br.Len()
	total := lenSize + int(length)
	if len(pending) < total {
		return nil, false, nil
	}

	frame := pending[lenSize:total]
	c.recvPos += total
	c.compact()

	if c.compression < 0 {
		return frame, true, nil
	}

	fr := bytes.NewReader(frame)
	dataLength, err := proto.ReadVarInt(fr)
	if err != nil {
		return nil, false, fmt.Errorf("connio: reading data length: %w", err)
	}
	rest := frame[len(frame)-fr.Len():]
	if dataLength == 0 {
		return rest, true, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, false, proto.NewError(proto.InvalidReportedLength)
	}
	defer zr.Close()
	inflated, err := io.ReadAll(io.LimitReader(zr, int64(dataLength)+1))
	if err != nil {
		return nil, false, proto.NewError(proto.InvalidReportedLength)
	}
	if int32(len(inflated)) != dataLength {
		return nil, false, proto.NewError(proto.InvalidReportedLength)
	}
	return inflated, true, nil
}

// compact discards already-consumed leading bytes once the buffer grows
// past a reuse threshold, keeping memory bounded across a long-lived
// connection without copying on every single read.
func (c *Conn) compact() {
	if c.recvPos > 0 && (c.recvPos == len(c.buf) || c.recvPos > 64*1024) {
		c.buf = append(c.buf[:0], c.buf[c.recvPos:]...)
		c.recvPos = 0
	}
}

// fill reads at least one more chunk from the socket into the buffer,
// decrypting in place if a cipher is installed. Returns io.EOF verbatim
// when the peer closed cleanly with nothing left to parse.
func (c *Conn) fill() error {
	chunk := make([]byte, 4096)
	n, err := c.nc.Read(chunk)
	if n > 0 {
		chunk = chunk[:n]
		if c.encIn != nil {
			c.encIn.XORKeyStream(chunk, chunk)
		}
		c.buf = append(c.buf, chunk...)
	}
	if err != nil {
		if err == io.EOF && len(c.buf[c.recvPos:]) > 0 {
			return fmt.Errorf("connio: connection reset: %w", io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}

// WritePacket frames and sends a packet with id id and pre-encoded body.
// Compression and encryption are applied per the rules in spec §4.3. At
// most one WritePacket may be in flight on a Conn at a time; callers are
// responsible for serializing sends (see session.writer).
func (c *Conn) WritePacket(id int32, body []byte) error {
	var payload bytes.Buffer
	if err := proto.WriteVarInt(&payload, id); err != nil {
		return err
	}
	payload.Write(body)

	staged, err := c.stage(payload.Bytes())
	if err != nil {
		return err
	}

	if c.encOut != nil {
		c.encOut.XORKeyStream(staged, staged)
	}

	_, err = c.nc.Write(staged)
	return err
}

// stage produces the full on-wire frame (length prefix included) for an
// uncompressed {id, body} payload, applying compression if enabled.
func (c *Conn) stage(payload []byte) ([]byte, error) {
	if c.compression < 0 {
		var frame bytes.Buffer
		if err := proto.WriteVarInt(&frame, int32(len(payload))); err != nil {
			return nil, err
		}
		frame.Write(payload)
		return frame.Bytes(), nil
	}

	var inner bytes.Buffer
	if int32(len(payload)) >= c.compression {
		if err := proto.WriteVarInt(&inner, int32(len(payload))); err != nil {
			return nil, err
		}
		zw := zlib.NewWriter(&inner)
		if _, err := zw.Write(payload); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	} else {
		if err := proto.WriteVarInt(&inner, 0); err != nil {
			return nil, err
		}
		inner.Write(payload)
	}

	var frame bytes.Buffer
	if err := proto.WriteVarInt(&frame, int32(inner.Len())); err != nil {
		return nil, err
	}
	frame.Write(inner.Bytes())
	return frame.Bytes(), nil
}
