package core

// TimerID names one of the hardware timers the detector drives.
type TimerID uint8

const (
	// TimerCalibration paces noise calibration ticks.
	TimerCalibration TimerID = iota + 1
	// TimerMonitoring paces peak monitoring ticks.
	TimerMonitoring
	// TimerDrain is the one-shot timer that ends a drain pulse.
	TimerDrain

	maxTimers = 4
)

// TimerHandler is called from timer (interrupt) context when a timer fires.
type TimerHandler func(id TimerID)

// TimerDriver provides periodic and one-shot millisecond timers.
type TimerDriver interface {
	// StartPeriodic (re)arms timer id to call handler every intervalMS.
	StartPeriodic(id TimerID, intervalMS uint32, handler TimerHandler) error

	// StopPeriodic disarms timer id. Stopping an idle timer is a no-op.
	StopPeriodic(id TimerID)

	// StartOneShot (re)arms timer id to call handler once after intervalMS.
	StartOneShot(id TimerID, intervalMS uint32, handler TimerHandler) error
}
