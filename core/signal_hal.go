package core

// SignalID identifies a counter in the firmware-wide signal store.
type SignalID uint8

const (
	// SignalSoundDetected accumulates confirmed acoustic peaks.
	SignalSoundDetected SignalID = iota + 1
	// SignalSensorFault accumulates ticks lost to a stuck ADC.
	SignalSensorFault

	maxSignals = 4
)

// SignalStore is the shared counter store the rest of the firmware reads.
type SignalStore interface {
	// Increment adds n to the counter for id.
	Increment(id SignalID, n uint32)
}
