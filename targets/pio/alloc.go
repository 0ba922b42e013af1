package pio

const (
	pioBlocks     = 2
	machinesPerIO = 4
)

// slot names one state machine: block is PIO0 or PIO1, sm its index.
type slot struct {
	block, sm uint8
}

// slotPool hands out state machines round-robin across both PIO blocks, so
// a second pulser lands on the other block when one is free.
type slotPool struct {
	taken [pioBlocks][machinesPerIO]bool
	next  slot
}

var machines slotPool

// claim takes the next free state machine.
func (p *slotPool) claim() (slot, bool) {
	for i := 0; i < pioBlocks*machinesPerIO; i++ {
		s := p.next

		p.next.sm++
		if p.next.sm == machinesPerIO {
			p.next.sm = 0
			p.next.block = (p.next.block + 1) % pioBlocks
		}

		if !p.taken[s.block][s.sm] {
			p.taken[s.block][s.sm] = true
			return s, true
		}
	}
	return slot{}, false
}

// release returns s to the pool.
func (p *slotPool) release(s slot) {
	p.taken[s.block][s.sm] = false
}

// inUse reports whether s is claimed.
func (p *slotPool) inUse(s slot) bool {
	return p.taken[s.block][s.sm]
}
