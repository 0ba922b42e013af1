package core

// Counters is a fixed table of signal counters. It implements SignalStore and
// remembers which counters changed since the last Flush, so a task can
// forward only the updated totals.
type Counters struct {
	values [maxSignals]uint32
	dirty  [maxSignals]bool
}

// Increment implements SignalStore. Unknown ids are ignored.
func (c *Counters) Increment(id SignalID, n uint32) {
	if int(id) >= maxSignals || n == 0 {
		return
	}
	state := disableInterrupts()
	c.values[id] += n
	c.dirty[id] = true
	restoreInterrupts(state)
}

// Get returns the current total for id.
func (c *Counters) Get(id SignalID) uint32 {
	if int(id) >= maxSignals {
		return 0
	}
	state := disableInterrupts()
	v := c.values[id]
	restoreInterrupts(state)
	return v
}

// Flush calls fn with the total of every counter changed since the previous
// Flush, in id order.
func (c *Counters) Flush(fn func(id SignalID, total uint32)) {
	for i := range c.values {
		state := disableInterrupts()
		changed := c.dirty[i]
		v := c.values[i]
		c.dirty[i] = false
		restoreInterrupts(state)

		if changed {
			fn(SignalID(i), v)
		}
	}
}
