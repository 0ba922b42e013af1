package core

// Pulser emits the per-sample drain pulse that resets the analog front end.
type Pulser interface {
	Fire() error
}

// DrainPulse drives the drain transistor from a GPIO: Fire raises the pin
// and arms a one-shot timer whose handler lowers it again, so the tick
// handler never waits out the pulse width.
type DrainPulse struct {
	gpio    GPIODriver
	timers  TimerDriver
	pin     GPIOPin
	widthMS uint32
	end     TimerHandler
}

// NewDrainPulse returns a GPIO pulser of widthMS on pin.
func NewDrainPulse(gpio GPIODriver, timers TimerDriver, pin GPIOPin, widthMS uint32) *DrainPulse {
	d := &DrainPulse{
		gpio:    gpio,
		timers:  timers,
		pin:     pin,
		widthMS: widthMS,
	}
	d.end = d.clear
	return d
}

// Init configures the drain pin as an output and drives it low.
func (d *DrainPulse) Init() error {
	if err := d.gpio.ConfigureOutput(d.pin); err != nil {
		return err
	}
	return d.gpio.SetPin(d.pin, false)
}

// Fire implements Pulser.
func (d *DrainPulse) Fire() error {
	if err := d.gpio.SetPin(d.pin, true); err != nil {
		return err
	}
	return d.timers.StartOneShot(TimerDrain, d.widthMS, d.end)
}

// clear runs when the one-shot expires and lowers the pin unconditionally.
func (d *DrainPulse) clear(TimerID) {
	if err := d.gpio.SetPin(d.pin, false); err != nil {
		RecordEvent(EvtDrainFault, uint32(d.pin), 0)
	}
}
