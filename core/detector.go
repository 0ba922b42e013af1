package core

// Detector flags rapid rises in amplitude. It compares two running sums
// over adjacent three-sample windows of the history ring and applies a
// cooldown so one acoustic event is counted once.
type Detector struct {
	history History

	// recentSum covers the last three samples, priorSum the three before.
	// Both are maintained incrementally, one addition each per tick.
	recentSum int32
	priorSum  int32

	floor         int32
	threshold     int32
	cooldownTicks uint32
	warmupTicks   uint32

	// cooldown counts ticks since the last peak; fresh counts ticks since
	// Reset, saturating at warmupTicks.
	cooldown uint32
	fresh    uint32

	peaks uint32
}

// NewDetector returns a detector using the thresholds from cfg.
func NewDetector(cfg Config) Detector {
	return Detector{
		threshold:     cfg.SlopeThreshold,
		cooldownTicks: cfg.CooldownTicks,
		warmupTicks:   cfg.WarmupTicks,
	}
}

// Reset zeroes the history, both sums and the cooldown counter. The peak
// counter and noise floor are left alone.
func (d *Detector) Reset() {
	d.history.Reset()
	d.recentSum = 0
	d.priorSum = 0
	d.cooldown = 0
	d.fresh = 0
}

// SetFloor sets the level a sample must exceed to count as a peak.
func (d *Detector) SetFloor(floor int32) {
	d.floor = floor
}

// Floor returns the current noise floor.
func (d *Detector) Floor() int32 {
	return d.floor
}

// Observe feeds one monitoring sample and reports whether it completed a
// peak.
func (d *Detector) Observe(s ADCValue) bool {
	v := int32(s)
	d.history.Put(v)

	mid := d.history.Back(windowLen)
	far := d.history.Back(priorLag)
	d.recentSum += v - mid
	d.priorSum += mid - far

	warm := d.fresh >= d.warmupTicks
	if !warm {
		d.fresh++
	}

	peak := warm &&
		d.recentSum > d.priorSum+d.threshold &&
		d.cooldown > d.cooldownTicks &&
		v > d.floor
	if peak {
		d.peaks++
		d.cooldown = 0
	} else {
		d.cooldown++
	}

	d.history.Advance()
	return peak
}

// Take returns the peak count and resets it. Callers outside the monitoring
// tick must hold the interrupt guard.
func (d *Detector) Take() uint32 {
	n := d.peaks
	d.peaks = 0
	return n
}

// Peaks returns the peak count without resetting it.
func (d *Detector) Peaks() uint32 {
	return d.peaks
}

// Sums returns the recent and prior window sums.
func (d *Detector) Sums() (recent, prior int32) {
	return d.recentSum, d.priorSum
}

// Cooldown returns the number of ticks since the last peak (or Reset).
func (d *Detector) Cooldown() uint32 {
	return d.cooldown
}

// History exposes the sample ring for inspection.
func (d *Detector) History() *History {
	return &d.history
}
