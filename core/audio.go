// Acoustic peak detection
// Samples an analog microphone stage at a fixed cadence, learns the ambient
// noise floor, then counts sharp rises in amplitude as sound events.
package core

// Phase is the detector's operating phase.
type Phase uint8

const (
	PhaseCalibrating Phase = iota
	PhaseMonitoring
)

func (p Phase) String() string {
	switch p {
	case PhaseCalibrating:
		return "calibrating"
	case PhaseMonitoring:
		return "monitoring"
	default:
		return "unknown"
	}
}

// timer returns the cadence timer that drives p.
func (p Phase) timer() TimerID {
	if p == PhaseMonitoring {
		return TimerMonitoring
	}
	return TimerCalibration
}

// Hardware bundles the drivers the detector needs. Pulser is optional; when
// nil a GPIO DrainPulse on Config.DrainPin is used.
type Hardware struct {
	ADC     ADCDriver
	GPIO    GPIODriver
	Timers  TimerDriver
	Signals SignalStore
	Pulser  Pulser
}

// Status is a snapshot of the detector for reporting.
type Status struct {
	Phase        Phase
	NoiseFloor   int32
	PendingPeaks uint32
	Faults       uint32
}

// Audio owns all detector state. Both cadence timers call the same tick
// handler, which dispatches on the current phase; only the timer belonging
// to that phase is ever armed.
type Audio struct {
	cfg Config
	hw  Hardware

	source   *SampleSource
	drain    *DrainPulse
	pulse    Pulser
	reporter *Reporter

	phase    Phase
	calib    Calibrator
	detector Detector
	faults   uint32
}

// NewAudio validates cfg and hw and builds the detector. Nothing touches the
// hardware until Setup.
func NewAudio(cfg Config, hw Hardware) (*Audio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hw.ADC == nil || hw.Timers == nil || hw.Signals == nil {
		return nil, ErrNotConfigured
	}
	if hw.Pulser == nil && hw.GPIO == nil {
		return nil, ErrNotConfigured
	}

	a := &Audio{
		cfg:      cfg,
		hw:       hw,
		source:   NewSampleSource(hw.ADC, cfg.Channel, cfg.ConversionPolls),
		calib:    NewCalibrator(cfg.CalibrationTicks),
		detector: NewDetector(cfg),
		pulse:    hw.Pulser,
	}
	if a.pulse == nil {
		a.drain = NewDrainPulse(hw.GPIO, hw.Timers, cfg.DrainPin, cfg.DrainPulseMS)
		a.pulse = a.drain
	}
	a.reporter = NewReporter(a, hw.Signals)
	return a, nil
}

// Setup wires the drain output, selects the ADC channel and starts noise
// calibration.
func (a *Audio) Setup() error {
	if a.drain != nil {
		if err := a.drain.Init(); err != nil {
			return err
		}
	}
	if err := a.source.Select(); err != nil {
		return err
	}
	return a.CalibBackground()
}

// CalibBackground restarts noise calibration. Monitoring stops, and the
// history, sums, cooldown and pending peaks are discarded.
func (a *Audio) CalibBackground() error {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	a.hw.Timers.StopPeriodic(TimerMonitoring)
	RecordEvent(EvtCalibrationStart, uint32(a.detector.Floor()), 0)

	a.calib.Reset()
	a.detector.Reset()
	a.detector.Take()
	a.phase = PhaseCalibrating

	return a.hw.Timers.StartPeriodic(TimerCalibration, a.cfg.CalibrationIntervalMS, a.tick)
}

// tick is the single cadence handler: sample, fire the drain pulse, then
// hand the value to the active phase.
func (a *Audio) tick(id TimerID) {
	if id != a.phase.timer() {
		return
	}

	v, err := a.source.Sample()
	if err != nil {
		a.sensorFault()
		return
	}

	if err := a.pulse.Fire(); err != nil {
		RecordEvent(EvtDrainFault, uint32(a.cfg.DrainPin), 0)
	}

	switch a.phase {
	case PhaseCalibrating:
		if a.calib.Observe(v) {
			a.enterMonitoring()
		}
	case PhaseMonitoring:
		if a.detector.Observe(v) {
			recent, prior := a.detector.Sums()
			RecordEvent(EvtPeak, uint32(v), uint32(recent-prior))
		}
	}
}

// enterMonitoring fixes the noise floor and switches cadence timers.
func (a *Audio) enterMonitoring() {
	floor := a.calib.Floor()
	a.hw.Timers.StopPeriodic(TimerCalibration)

	a.detector.SetFloor(floor)
	a.detector.Reset()
	a.detector.Take()
	a.phase = PhaseMonitoring
	RecordEvent(EvtCalibrated, uint32(floor), uint32(a.calib.Max()))
	DebugAsync("[AUDIO] noise floor " + utoa(uint32(floor)))

	if err := a.hw.Timers.StartPeriodic(TimerMonitoring, a.cfg.MonitorIntervalMS, a.tick); err != nil {
		RecordEvent(EvtTimerFault, uint32(TimerMonitoring), 0)
	}
}

// sensorFault drops the tick and raises the sensor fault signal.
func (a *Audio) sensorFault() {
	a.faults++
	RecordEvent(EvtSensorFault, uint32(a.phase), a.faults)
	a.hw.Signals.Increment(SignalSensorFault, 1)
}

// CheckPeak returns the number of peaks since the previous call and resets
// the count.
func (a *Audio) CheckPeak() uint32 {
	state := disableInterrupts()
	n := a.detector.Take()
	restoreInterrupts(state)
	return n
}

// Run is the periodic top-level call from the firmware main loop; it
// forwards new peaks to the signal store.
func (a *Audio) Run() {
	a.reporter.DrainAndReport()
}

// Config returns the configuration the detector was built with.
func (a *Audio) Config() Config {
	return a.cfg
}

// Phase returns the current phase.
func (a *Audio) Phase() Phase {
	return a.phase
}

// NoiseFloor returns the floor fixed by the last completed calibration.
func (a *Audio) NoiseFloor() int32 {
	return a.detector.Floor()
}

// Status returns a consistent snapshot for reporting.
func (a *Audio) Status() Status {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	return Status{
		Phase:        a.phase,
		NoiseFloor:   a.detector.Floor(),
		PendingPeaks: a.detector.Peaks(),
		Faults:       a.faults,
	}
}
