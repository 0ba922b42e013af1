package core

// ADCChannelID identifies a logical ADC channel.
type ADCChannelID uint8

// ADCValue is the raw ADC reading as seen by the rest of the firmware.
// Supported targets deliver 12-bit results (0-4095).
type ADCValue uint16

// ADCDriver is the abstract ADC interface that core code uses.
// Conversions are started and collected separately so one conversion can be
// left in flight between cadence ticks.
type ADCDriver interface {
	// ConfigureChannel puts the channel's pin in analog mode and selects it
	// as the only conversion channel.
	ConfigureChannel(ch ADCChannelID) error

	// StartConversion starts a single conversion on the selected channel.
	StartConversion()

	// ConversionDone reports whether the last started conversion completed.
	ConversionDone() bool

	// ReadConversion returns the result of the last completed conversion.
	ReadConversion() ADCValue
}
