package proto

import (
	"io"

	"github.com/google/uuid"
)

// ReadUUID decodes a UUID as two big-endian u64s, most-significant first.
func ReadUUID(r *Reader) (uuid.UUID, error) {
	hi, err := ReadUint64(r)
	if err != nil {
		return uuid.Nil, err
	}
	lo, err := ReadUint64(r)
	if err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	putUint64(u[0:8], hi)
	putUint64(u[8:16], lo)
	return u, nil
}

// WriteUUID encodes u as two big-endian u64s, most-significant first.
func WriteUUID(w io.Writer, u uuid.UUID) error {
	if err := WriteUint64(w, getUint64(u[0:8])); err != nil {
		return err
	}
	return WriteUint64(w, getUint64(u[8:16]))
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func getUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
