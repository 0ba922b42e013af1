package core

// Fixed detector parameters.
const (
	DefaultMonitorIntervalMS     = 50
	DefaultCalibrationIntervalMS = 50
	DefaultDrainPulseMS          = 5

	// DefaultCalibrationTicks is N_CALIB: calibration ends on the first tick
	// whose count exceeds it.
	DefaultCalibrationTicks = 100
	// DefaultCooldownTicks is the number of ticks that must pass after a
	// peak before another one may be counted.
	DefaultCooldownTicks = 4
	// DefaultSlopeThreshold is how far the recent window must rise above
	// the prior window.
	DefaultSlopeThreshold = 200

	// DefaultConversionPolls bounds the wait for an ADC conversion.
	DefaultConversionPolls = 10000

	DefaultADCChannel ADCChannelID = 10
	DefaultDrainPin   GPIOPin      = 10
)

// Config holds the detector parameters. The cadences are fixed by the
// hardware design; they live here so targets and tests can name them.
type Config struct {
	Channel  ADCChannelID
	DrainPin GPIOPin

	MonitorIntervalMS     uint32
	CalibrationIntervalMS uint32
	DrainPulseMS          uint32

	CalibrationTicks uint32
	CooldownTicks    uint32
	SlopeThreshold   int32

	// ConversionPolls is how many times the ADC ready flag is checked
	// before a tick gives up with ErrSensorFault.
	ConversionPolls uint32

	// WarmupTicks suppresses peak reports for that many ticks after
	// monitoring (re)starts. Zero reports from the first tick.
	WarmupTicks uint32
}

// DefaultConfig returns the configuration of the reference hardware.
func DefaultConfig() Config {
	return Config{
		Channel:               DefaultADCChannel,
		DrainPin:              DefaultDrainPin,
		MonitorIntervalMS:     DefaultMonitorIntervalMS,
		CalibrationIntervalMS: DefaultCalibrationIntervalMS,
		DrainPulseMS:          DefaultDrainPulseMS,
		CalibrationTicks:      DefaultCalibrationTicks,
		CooldownTicks:         DefaultCooldownTicks,
		SlopeThreshold:        DefaultSlopeThreshold,
		ConversionPolls:       DefaultConversionPolls,
	}
}

// ConfigError names the Config field that failed validation. It matches
// ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Field + " " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate reports the first parameter that would stall or break detection.
func (c Config) Validate() error {
	switch {
	case c.MonitorIntervalMS == 0:
		return &ConfigError{"MonitorIntervalMS", "must be positive"}
	case c.CalibrationIntervalMS == 0:
		return &ConfigError{"CalibrationIntervalMS", "must be positive"}
	case c.DrainPulseMS == 0:
		return &ConfigError{"DrainPulseMS", "must be positive"}
	case c.DrainPulseMS >= c.MonitorIntervalMS || c.DrainPulseMS >= c.CalibrationIntervalMS:
		return &ConfigError{"DrainPulseMS", "must end before the next tick"}
	case c.SlopeThreshold < 0:
		return &ConfigError{"SlopeThreshold", "is negative"}
	case c.ConversionPolls == 0:
		return &ConfigError{"ConversionPolls", "must be positive"}
	}
	return nil
}
