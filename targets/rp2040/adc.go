//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"errors"
	"machine"

	"audiopeak/core"
)

var errADCChannel = errors.New("unsupported ADC channel")

// RpAdcDriver implements core.ADCDriver on the RP2040 SAR ADC. It drives the
// CS register directly so a conversion can run between cadence ticks;
// machine.ADC.Get would block for the whole conversion.
type RpAdcDriver struct {
	channel core.ADCChannelID
}

// NewRPAdcDriver constructs the driver and powers up the ADC.
func NewRPAdcDriver() *RpAdcDriver {
	machine.InitADC()
	return &RpAdcDriver{}
}

// ConfigureChannel puts the channel's pin in analog mode and selects it.
// Channels 0-3 are GPIO26-GPIO29.
func (d *RpAdcDriver) ConfigureChannel(ch core.ADCChannelID) error {
	var pin machine.Pin
	switch ch {
	case 0:
		pin = machine.ADC0
	case 1:
		pin = machine.ADC1
	case 2:
		pin = machine.ADC2
	case 3:
		pin = machine.ADC3
	default:
		return errADCChannel
	}

	adc := machine.ADC{Pin: pin}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}

	rp.ADC.CS.ReplaceBits(uint32(ch)<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
	d.channel = ch
	return nil
}

// StartConversion starts a single conversion on the selected channel.
func (d *RpAdcDriver) StartConversion() {
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
}

// ConversionDone reports whether the last conversion finished.
func (d *RpAdcDriver) ConversionDone() bool {
	return rp.ADC.CS.HasBits(rp.ADC_CS_READY)
}

// ReadConversion returns the raw 12-bit result (0-4095).
func (d *RpAdcDriver) ReadConversion() core.ADCValue {
	return core.ADCValue(rp.ADC.RESULT.Get() & 0xFFF)
}
