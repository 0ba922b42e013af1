package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScratchOutput(t *testing.T) {
	scratch := NewScratchOutput()

	scratch.Output([]byte{1, 2, 3})
	assert.Equal(t, 3, scratch.CurPosition())

	scratch.Output([]byte{4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, scratch.Result())

	scratch.Update(0, 99)
	scratch.Update(10, 99) // past the end, ignored
	assert.Equal(t, byte(99), scratch.Result()[0])

	assert.Equal(t, []byte{3, 4, 5}, scratch.DataSince(2))
	assert.Nil(t, scratch.DataSince(6))

	scratch.Reset()
	assert.Zero(t, scratch.CurPosition())
	assert.Empty(t, scratch.Result())
}

func TestScratchOutputTruncates(t *testing.T) {
	scratch := NewScratchOutput()
	scratch.Output(make([]byte, MessageMax*4+10))
	assert.Equal(t, MessageMax*4, scratch.CurPosition())
}

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)
	assert.Zero(t, fifo.Available())

	assert.Equal(t, 5, fifo.Write([]byte{1, 2, 3, 4, 5}))
	assert.Equal(t, 5, fifo.Available())
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, fifo.Data())

	fifo.Pop(3)
	assert.Equal(t, []byte{4, 5}, fifo.Data())

	fifo.Pop(10)
	assert.Zero(t, fifo.Available())

	// one slot stays free
	fifo.Reset()
	assert.Equal(t, 9, fifo.Write(make([]byte, 12)))
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	fifo.Write([]byte{1, 2, 3, 4})
	fifo.Pop(2)

	assert.Equal(t, 2, fifo.Write([]byte{5, 6}))
	assert.Equal(t, 4, fifo.Available())
	assert.Equal(t, []byte{3, 4, 5, 6}, fifo.Data())
}
