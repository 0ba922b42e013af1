//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"audiopeak/core"
	"audiopeak/targets/timebase"
)

var (
	timerRawH = (*volatile.Register32)(unsafe.Pointer(timerLayout.RawH))
	timerRawL = (*volatile.Register32)(unsafe.Pointer(timerLayout.RawL))
)

// GetHardwareUptime reads the full 64-bit microsecond timer.
func GetHardwareUptime() uint64 {
	return timebase.Micros(timerRawH.Get, timerRawL.Get)
}

// UpdateSystemTime publishes the hardware clock to core in milliseconds and
// returns it. The scheduler compares wake times wrap-safely.
func UpdateSystemTime() uint32 {
	ms := timebase.Millis(GetHardwareUptime())
	core.SetTime(ms)
	return ms
}
