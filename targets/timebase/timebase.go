// Package timebase describes the 64-bit microsecond timer of the RP2040 and
// RP2350 and assembles consistent readings from its two raw halves.
package timebase

// Layout locates the raw (non-latching) timer words of one chip.
type Layout struct {
	Base uintptr
	RawH uintptr // upper 32 bits
	RawL uintptr // lower 32 bits
}

var (
	// RP2040 TIMER block.
	RP2040 = Layout{Base: 0x40054000, RawH: 0x40054000 + 0x24, RawL: 0x40054000 + 0x28}

	// RP2350 TIMER0 sits at a different base with the same register order.
	RP2350 = Layout{Base: 0x400B0000, RawH: 0x400B0000 + 0x24, RawL: 0x400B0000 + 0x28}
)

// Micros reads high, low, then high again, retrying while the low word
// carried into the high word between the reads.
func Micros(readH, readL func() uint32) uint64 {
	for {
		high1 := readH()
		low := readL()
		high2 := readH()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

// Millis truncates a microsecond reading to the 32-bit millisecond clock
// the scheduler runs on. It wraps after ~49 days.
func Millis(us uint64) uint32 {
	return uint32(us / 1000)
}
