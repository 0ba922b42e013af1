package core

// Calibrator learns the noise floor from the loudest sample seen over a
// fixed number of calibration ticks.
type Calibrator struct {
	limit uint32
	ticks uint32
	max   int32
}

// NewCalibrator returns a calibrator that finishes on the tick whose count
// exceeds limit.
func NewCalibrator(limit uint32) Calibrator {
	return Calibrator{limit: limit}
}

// Reset clears the tick count and the observed maximum.
func (c *Calibrator) Reset() {
	c.ticks = 0
	c.max = 0
}

// Observe records one calibration sample and reports whether calibration is
// complete.
func (c *Calibrator) Observe(s ADCValue) bool {
	if v := int32(s); v > c.max {
		c.max = v
	}
	c.ticks++
	return c.ticks > c.limit
}

// Floor returns the noise floor: the maximum plus a 1/16 margin.
func (c *Calibrator) Floor() int32 {
	return c.max + c.max>>4
}

// Max returns the loudest sample observed so far.
func (c *Calibrator) Max() int32 {
	return c.max
}

// Ticks returns the number of samples observed since Reset.
func (c *Calibrator) Ticks() uint32 {
	return c.ticks
}
