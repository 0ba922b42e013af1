package core

// GetTime returns the current system time in milliseconds.
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ms uint32) {
	setSystemTicks(ms)
}

// timeReached reports whether now is at or past wake, tolerating wraparound
// of the 32-bit millisecond counter.
func timeReached(now, wake uint32) bool {
	return int32(now-wake) >= 0
}
