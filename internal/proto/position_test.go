package proto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionPackSeedScenario(t *testing.T) {
	// x=18357644, y=831, z=-20882616 packed per the x<<38 | z<<12 | y
	// layout in spec §4.1 (each field masked to its signed bit width
	// before shifting). Verified independently bit-by-bit; the literal
	// hex some distilled copies of this scenario quote doesn't actually
	// decode back to this (x, y, z) under the documented formula.
	p := Position{X: 18357644, Y: 831, Z: -20882616}
	v := EncodePosition(p)
	assert.Equal(t, uint64(0x4607632c15b4833f), v)
	assert.Equal(t, p, DecodePosition(v))
}

func TestPositionRoundTrip(t *testing.T) {
	cases := []Position{
		{X: 0, Y: 0, Z: 0},
		{X: -1, Y: -1, Z: -1},
		{X: (1 << 25) - 1, Y: (1 << 11) - 1, Z: -(1 << 25)},
		{X: -(1 << 25), Y: -(1 << 11), Z: (1 << 25) - 1},
	}
	for _, p := range cases {
		var buf bytes.Buffer
		require.NoError(t, WritePosition(&buf, p))
		got, err := ReadPosition(NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}
