package proto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "localhost", "héllo wörld", strings.Repeat("a", 300)}
	for _, s := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteString(&buf, s))
		got, err := ReadString(NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestStringInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 2))
	buf.Write([]byte{0xff, 0xfe})
	_, err := ReadString(NewReader(buf.Bytes()))
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidUtf8, perr.Kind)
}

func TestBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		var buf bytes.Buffer
		require.NoError(t, WriteBool(&buf, b))
		got, err := ReadBool(NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}

	// Any nonzero byte decodes true.
	got, err := ReadBool(NewReader([]byte{0x7f}))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint16(&buf, 25565))
	require.NoError(t, WriteInt32(&buf, -100))
	require.NoError(t, WriteInt64(&buf, 123456789))
	require.NoError(t, WriteFloat32(&buf, 3.5))
	require.NoError(t, WriteFloat64(&buf, -2.25))

	r := NewReader(buf.Bytes())
	u16, err := ReadUint16(r)
	require.NoError(t, err)
	assert.EqualValues(t, 25565, u16)

	i32, err := ReadInt32(r)
	require.NoError(t, err)
	assert.EqualValues(t, -100, i32)

	i64, err := ReadInt64(r)
	require.NoError(t, err)
	assert.EqualValues(t, 123456789, i64)

	f32, err := ReadFloat32(r)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)

	f64, err := ReadFloat64(r)
	require.NoError(t, err)
	assert.Equal(t, -2.25, f64)
}

func TestRawTail(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})
	_, _ = r.Next(1)
	tail := RawTail(r)
	assert.Equal(t, []byte{0x02, 0x03, 0x04}, tail)
	assert.Equal(t, 0, r.Len())
}

func TestSeqAndOptionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSeq(&buf, []string{"a", "bb", "ccc"}, WriteString))

	got, err := ReadSeq(NewReader(buf.Bytes()), ReadString)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "ccc"}, got)

	var optBuf bytes.Buffer
	v := int32(42)
	require.NoError(t, WriteOption(&optBuf, &v, WriteInt32))
	gotOpt, err := ReadOption(NewReader(optBuf.Bytes()), ReadInt32)
	require.NoError(t, err)
	require.NotNil(t, gotOpt)
	assert.EqualValues(t, 42, *gotOpt)

	var absentBuf bytes.Buffer
	require.NoError(t, WriteOption[int32](&absentBuf, nil, WriteInt32))
	gotAbsent, err := ReadOption(NewReader(absentBuf.Bytes()), ReadInt32)
	require.NoError(t, err)
	assert.Nil(t, gotAbsent)
}
