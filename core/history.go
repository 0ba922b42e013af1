package core

// HistoryLen is the number of monitoring samples kept for slope detection.
const HistoryLen = 10

// Window offsets into the history: the recent window spans the last three
// samples and the prior window the three before it.
const (
	windowLen = 3
	priorLag  = 2 * windowLen
)

// History is a fixed-capacity ring of the most recent monitoring samples.
type History struct {
	vals   [HistoryLen]int32
	cursor uint8
}

// Reset zeroes every slot and rewinds the cursor.
func (h *History) Reset() {
	h.vals = [HistoryLen]int32{}
	h.cursor = 0
}

// Put stores s in the current slot. The cursor does not move until Advance.
func (h *History) Put(s int32) {
	h.vals[h.cursor] = s
}

// Back returns the sample written n ticks before the current slot.
func (h *History) Back(n uint8) int32 {
	return h.vals[(h.cursor+HistoryLen-n)%HistoryLen]
}

// Advance moves the cursor to the next slot.
func (h *History) Advance() {
	h.cursor = (h.cursor + 1) % HistoryLen
}

// Cursor returns the slot the next sample will be written to.
func (h *History) Cursor() int {
	return int(h.cursor)
}
