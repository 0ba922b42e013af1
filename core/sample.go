package core

// SampleSource keeps one ADC conversion in flight between cadence ticks.
// Each Sample call collects the conversion started by the previous call and
// immediately starts the next one, so the ADC converts while the firmware
// waits for the next tick.
type SampleSource struct {
	adc     ADCDriver
	channel ADCChannelID
	polls   uint32

	// inFlight is set while a started conversion has not been collected.
	inFlight bool
}

// NewSampleSource returns a source for one channel. polls bounds how many
// times the ready flag is checked before a sample is abandoned.
func NewSampleSource(adc ADCDriver, ch ADCChannelID, polls uint32) *SampleSource {
	return &SampleSource{
		adc:     adc,
		channel: ch,
		polls:   polls,
	}
}

// Select configures and selects the source channel. The next Sample starts
// a fresh conversion and waits for it.
func (s *SampleSource) Select() error {
	if err := s.adc.ConfigureChannel(s.channel); err != nil {
		return err
	}
	s.inFlight = false
	return nil
}

// Sample returns the pending conversion result and starts the next one.
// When the ADC never reports ready it returns ErrSensorFault; the following
// call then restarts the conversion instead of waiting on the stuck one.
func (s *SampleSource) Sample() (ADCValue, error) {
	if !s.inFlight {
		s.adc.StartConversion()
		s.inFlight = true
	}

	if !s.wait() {
		s.inFlight = false
		return 0, ErrSensorFault
	}

	v := s.adc.ReadConversion()
	s.adc.StartConversion()
	return v, nil
}

func (s *SampleSource) wait() bool {
	for i := uint32(0); i < s.polls; i++ {
		if s.adc.ConversionDone() {
			return true
		}
	}
	return false
}
