package proto

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"unicode/utf8"
)

// MaxStringBytes bounds the byte length of a decoded string or byte string.
// The protocol itself doesn't encode an in-band limit (spec §4.1); the
// value (2 MiB) equals the packet-level cap in connio, so it rejects a
// declared length that could not fit in any frame before slicing, without
// having to thread that cap through every string field.
const MaxStringBytes = 1 << 21

// ReadBool decodes the one-byte boolean encoding: 0 is false, anything
// else is true.
func ReadBool(r *Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, newErr(UnexpectedEnd, err)
	}
	return b != 0, nil
}

// WriteBool encodes b as 1 or 0.
func WriteBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint8 / WriteUint8 and friends: fixed-width big-endian integers.

func ReadUint8(r *Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, newErr(UnexpectedEnd, err)
	}
	return b, nil
}

func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func ReadInt8(r *Reader) (int8, error) {
	v, err := ReadUint8(r)
	return int8(v), err
}

func WriteInt8(w io.Writer, v int8) error {
	return WriteUint8(w, uint8(v))
}

func ReadUint16(r *Reader) (uint16, error) {
	b, err := r.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadInt16(r *Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

func WriteInt16(w io.Writer, v int16) error {
	return WriteUint16(w, uint16(v))
}

func ReadUint32(r *Reader) (uint32, error) {
	b, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadInt32(r *Reader) (int32, error) {
	v, err := ReadUint32(r)
	return int32(v), err
}

func WriteInt32(w io.Writer, v int32) error {
	return WriteUint32(w, uint32(v))
}

func ReadUint64(r *Reader) (uint64, error) {
	b, err := r.Next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadInt64(r *Reader) (int64, error) {
	v, err := ReadUint64(r)
	return int64(v), err
}

func WriteInt64(w io.Writer, v int64) error {
	return WriteUint64(w, uint64(v))
}

func ReadFloat32(r *Reader) (float32, error) {
	v, err := ReadUint32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func WriteFloat32(w io.Writer, v float32) error {
	return WriteUint32(w, math.Float32bits(v))
}

func ReadFloat64(r *Reader) (float64, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func WriteFloat64(w io.Writer, v float64) error {
	return WriteUint64(w, math.Float64bits(v))
}

// ReadString decodes a VarInt byte length followed by that many UTF-8
// bytes.
func ReadString(r *Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > MaxStringBytes {
		return "", newErr(UnexpectedEnd, io.ErrUnexpectedEOF)
	}
	b, err := r.Next(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newErr(InvalidUtf8, nil)
	}
	// Copy out: b aliases the Reader's backing array.
	s := make([]byte, len(b))
	copy(s, b)
	return string(s), nil
}

// WriteString encodes s as a VarInt byte length followed by its UTF-8
// bytes.
func WriteString(w io.Writer, s string) error {
	if err := WriteVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadBytes decodes a VarInt-prefixed raw byte string (used for the
// shared secret and verify token during the encryption handshake, which
// are length-prefixed but not UTF-8).
func ReadBytes(r *Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 || int(n) > MaxStringBytes {
		return nil, newErr(UnexpectedEnd, io.ErrUnexpectedEOF)
	}
	b, err := r.Next(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// WriteBytes encodes b as a VarInt byte length followed by the raw bytes.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// RawTail returns every remaining byte of the frame, uninterpreted. Used
// for plugin-message payloads and opaque NBT blobs the core does not
// parse (spec §3, §6).
func RawTail(r *Reader) []byte {
	b := r.Remaining()
	out := make([]byte, len(b))
	copy(out, b)
	r.Next(len(b))
	return out
}

// WriteRaw writes b verbatim with no length prefix.
func WriteRaw(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// ReadJSON decodes a String-encoded JSON value into v.
func ReadJSON(r *Reader, v any) error {
	s, err := ReadString(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return newErr(JsonDecode, err)
	}
	return nil
}

// WriteJSON marshals v to JSON and encodes it as a String.
func WriteJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return newErr(JsonDecode, err)
	}
	return WriteString(w, string(b))
}
