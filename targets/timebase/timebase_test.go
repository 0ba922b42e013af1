package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayouts(t *testing.T) {
	assert.Equal(t, uintptr(0x40054024), RP2040.RawH)
	assert.Equal(t, uintptr(0x40054028), RP2040.RawL)

	assert.Equal(t, uintptr(0x400B0000), RP2350.Base)
	assert.Equal(t, uintptr(0x400B0024), RP2350.RawH)
	assert.Equal(t, uintptr(0x400B0028), RP2350.RawL)
}

func TestMicrosRetriesOnCarry(t *testing.T) {
	// the low word wraps between the first and second high read
	highs := []uint32{1, 2, 2, 2}
	lows := []uint32{0xFFFFFFFF, 3}
	var hi, lo int
	readH := func() uint32 { v := highs[hi]; hi++; return v }
	readL := func() uint32 { v := lows[lo]; lo++; return v }

	assert.Equal(t, uint64(2)<<32|3, Micros(readH, readL))
	assert.Equal(t, 4, hi)
	assert.Equal(t, 2, lo)
}

func TestMillisWraps(t *testing.T) {
	assert.Equal(t, uint32(50), Millis(50_999))
	assert.Equal(t, uint32(0), Millis(uint64(1)<<32*1000))
	assert.Equal(t, uint32(7), Millis((uint64(1)<<32+7)*1000))
}
