// Package tinycompress writes zlib streams made of stored DEFLATE blocks.
// It never allocates while encoding beyond the caller's buffer, which keeps
// it usable on TinyGo where compress/flate is too large.
package tinycompress

import (
	"errors"
	"hash/adler32"
	"io"
)

// maxStored is the largest payload of one stored DEFLATE block.
const maxStored = 0xFFFF

// zlib header: deflate, 32K window, default level, FCHECK so the header is a
// multiple of 31.
var zlibHeader = [2]byte{0x78, 0x9C}

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("tinycompress: write after close")

// Writer buffers everything written to it and emits the zlib stream on
// Close.
type Writer struct {
	output io.Writer
	input  []byte
	closed bool
}

// NewWriter returns a Writer that writes the stream to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{output: w}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	w.input = append(w.input, p...)
	return len(p), nil
}

// Close writes the header, the stored blocks and the Adler-32 trailer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.output.Write(Compress(w.input))
	return err
}

// Size returns the length of the stream Compress produces for n input bytes.
func Size(n int) int {
	blocks := (n + maxStored - 1) / maxStored
	if blocks == 0 {
		blocks = 1
	}
	return len(zlibHeader) + blocks*5 + n + 4
}

// Compress returns input wrapped as a complete zlib stream.
func Compress(input []byte) []byte {
	out := make([]byte, 0, Size(len(input)))
	out = append(out, zlibHeader[:]...)

	rest := input
	for {
		n := len(rest)
		final := byte(1)
		if n > maxStored {
			n = maxStored
			final = 0
		}

		length := uint16(n)
		out = append(out, final,
			byte(length), byte(length>>8),
			byte(^length), byte(^length>>8))
		out = append(out, rest[:n]...)
		rest = rest[n:]

		if final == 1 {
			break
		}
	}

	checksum := adler32.Checksum(input)
	return append(out,
		byte(checksum>>24), byte(checksum>>16), byte(checksum>>8), byte(checksum))
}
