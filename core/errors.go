package core

import "errors"

var (
	// ErrSensorFault is returned when the ADC does not finish a conversion
	// within the configured number of polls.
	ErrSensorFault = errors.New("sensor fault: ADC conversion did not complete")

	// ErrInvalidConfig reports a Config or timer request that cannot run.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotConfigured reports a missing hardware driver.
	ErrNotConfigured = errors.New("hardware driver not configured")

	// ErrUnknownTimer reports a TimerID outside the supported set.
	ErrUnknownTimer = errors.New("unknown timer")

	// ErrUnknownCommand reports a command id with no handler.
	ErrUnknownCommand = errors.New("unknown command")
)
