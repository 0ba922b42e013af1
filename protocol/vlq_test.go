package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVLQEncodeDecodeInt(t *testing.T) {
	values := []int32{
		0, 1, -1, 95, -32, 96, -33,
		127, -127, 128, -128, 1000, -1000,
		65535, -65535, 1000000, -1000000,
		1<<31 - 1, -1 << 31,
	}

	for _, want := range values {
		out := NewScratchOutput()
		EncodeVLQInt(out, want)
		data := append([]byte(nil), out.Result()...)

		got, err := DecodeVLQInt(&data)
		require.NoError(t, err, "value %d", want)
		assert.Equal(t, want, got)
		assert.Empty(t, data, "value %d left bytes behind", want)
	}
}

func TestVLQEncodeDecodeUint(t *testing.T) {
	for _, want := range []uint32{0, 1, 127, 128, 255, 1000, 65535, 1000000, 1<<32 - 1} {
		out := NewScratchOutput()
		EncodeVLQUint(out, want)
		data := append([]byte(nil), out.Result()...)

		got, err := DecodeVLQUint(&data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestVLQEncodedLength(t *testing.T) {
	tests := []struct {
		v    int32
		size int
	}{
		{0, 1},
		{95, 1},
		{-32, 1},
		{96, 2},
		{-33, 2},
		{12287, 2},
		{12288, 3},
	}

	for _, tt := range tests {
		out := NewScratchOutput()
		EncodeVLQInt(out, tt.v)
		assert.Len(t, out.Result(), tt.size, "value %d", tt.v)
	}
}

func TestVLQBytes(t *testing.T) {
	for _, want := range [][]byte{{}, {0x01}, {0xFF, 0xFE, 0xFD}, make([]byte, 40)} {
		out := NewScratchOutput()
		EncodeVLQBytes(out, want)
		EncodeVLQUint(out, 7)
		data := append([]byte(nil), out.Result()...)

		got, err := DecodeVLQBytes(&data)
		require.NoError(t, err)
		assert.Equal(t, want, append([]byte{}, got...))

		next, err := DecodeVLQUint(&data)
		require.NoError(t, err)
		assert.Equal(t, uint32(7), next, "decoding stops after the string")
	}

	short := []byte{0x05, 0x01, 0x02}
	_, err := DecodeVLQBytes(&short)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestVLQBufferTooSmall(t *testing.T) {
	data := []byte{0x80} // continuation bit with nothing after it
	_, err := DecodeVLQInt(&data)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	empty := []byte{}
	_, err = DecodeVLQUint(&empty)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}
