package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(s *Scanner, data []byte) ([]Frame, int) {
	var frames []Frame
	n := s.Scan(data, func(f Frame) {
		f.Payload = append([]byte(nil), f.Payload...)
		frames = append(frames, f)
	})
	return frames, n
}

func TestScannerRoundTrip(t *testing.T) {
	var stream []byte
	stream = AppendFrame(stream, 0x10, []byte{0x10})
	stream = AppendFrame(stream, 0x11, nil)
	stream = AppendFrame(stream, 0x12, []byte{0x01, 0x02, 0x03})

	var s Scanner
	frames, n := scanAll(&s, stream)

	assert.Equal(t, len(stream), n)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{0x10}, frames[0].Payload)
	assert.True(t, frames[1].IsAck())
	assert.Equal(t, uint8(0x11), frames[1].Sequence)
	assert.Equal(t, uint8(8), frames[2].Length)
	assert.True(t, s.Synchronized())
}

func TestScannerKeepsPartialFrame(t *testing.T) {
	frame := AppendFrame(nil, 0x10, []byte{0x05, 0x06})

	var s Scanner
	frames, n := scanAll(&s, frame[:4])
	assert.Empty(t, frames)
	assert.Zero(t, n)

	frames, n = scanAll(&s, frame)
	assert.Len(t, frames, 1)
	assert.Equal(t, len(frame), n)
}

func TestScannerResyncsAfterCorruption(t *testing.T) {
	bad := AppendFrame(nil, 0x10, []byte{0x01})
	bad[2] ^= 0x40
	good := AppendFrame(nil, 0x11, []byte{0x02})

	resyncs := 0
	s := Scanner{OnResync: func() { resyncs++ }}
	frames, n := scanAll(&s, append(bad, good...))

	assert.Equal(t, len(bad)+len(good), n)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x02}, frames[0].Payload)
	assert.Equal(t, 1, resyncs)
	assert.Equal(t, uint32(1), s.Dropped)
}

func TestScannerRejectsBadLength(t *testing.T) {
	var s Scanner
	frames, n := scanAll(&s, []byte{0x02, 0x10, 0x00, 0x00, 0x00, 0x00})

	assert.Empty(t, frames)
	assert.Equal(t, 6, n, "input without a sync byte is discarded")
	assert.False(t, s.Synchronized())
}
