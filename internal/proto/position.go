package proto

import "io"

// Position is a bit-packed block coordinate: x in bits 63..38, z in bits
// 37..12, y in bits 11..0, each a sign-extended field (spec §4.1).
type Position struct {
	X, Z int32
	Y    int16
}

// ReadPosition unpacks a u64 into its signed x/y/z components, sign
// extending each field from its packed width.
func ReadPosition(r *Reader) (Position, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return Position{}, err
	}
	return DecodePosition(v), nil
}

// DecodePosition unpacks a raw u64 into Position, per spec §4.1:
// x = (v >> 38) as 26-bit signed; z = (v << 26) >> 38 as 26-bit signed;
// y = (v << 52) >> 52 as 12-bit signed.
func DecodePosition(v uint64) Position {
	x := int64(v) >> 38
	z := int64(v<<26) >> 38
	y := int64(v<<52) >> 52
	return Position{X: int32(x), Z: int32(z), Y: int16(y)}
}

// WritePosition packs p into the wire's single u64 representation.
func WritePosition(w io.Writer, p Position) error {
	return WriteUint64(w, EncodePosition(p))
}

// EncodePosition packs x/y/z into the wire's u64 representation.
func EncodePosition(p Position) uint64 {
	x := uint64(p.X) & 0x3FFFFFF
	z := uint64(p.Z) & 0x3FFFFFF
	y := uint64(p.Y) & 0xFFF
	return (x << 38) | (z << 12) | y
}
