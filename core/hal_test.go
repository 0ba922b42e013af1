package core

import "errors"

var errPinBusy = errors.New("pin busy")

// fakeADC converts the values in samples in order, then repeats idle.
type fakeADC struct {
	samples []ADCValue
	idle    ADCValue
	next    int

	stuck      bool
	configErr  error
	configured []ADCChannelID

	started int
	pending bool
	current ADCValue
}

func (f *fakeADC) ConfigureChannel(ch ADCChannelID) error {
	f.configured = append(f.configured, ch)
	return f.configErr
}

func (f *fakeADC) StartConversion() {
	f.started++
	f.pending = true
	f.current = f.idle
	if f.next < len(f.samples) {
		f.current = f.samples[f.next]
		f.next++
	}
}

func (f *fakeADC) ConversionDone() bool {
	return f.pending && !f.stuck
}

func (f *fakeADC) ReadConversion() ADCValue {
	f.pending = false
	return f.current
}

// fakeGPIO records pin levels and every write.
type fakeGPIO struct {
	levels    map[GPIOPin]bool
	outputs   map[GPIOPin]bool
	rises     int
	falls     int
	setErr    error
	configErr error
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		levels:  make(map[GPIOPin]bool),
		outputs: make(map[GPIOPin]bool),
	}
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	if g.configErr != nil {
		return g.configErr
	}
	g.outputs[pin] = true
	return nil
}

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	if g.setErr != nil {
		return g.setErr
	}
	if value {
		g.rises++
	} else {
		g.falls++
	}
	g.levels[pin] = value
	return nil
}

// recordingStore is a SignalStore that remembers each call.
type recordingStore struct {
	totals map[SignalID]uint32
	calls  int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{totals: make(map[SignalID]uint32)}
}

func (s *recordingStore) Increment(id SignalID, n uint32) {
	s.calls++
	s.totals[id] += n
}

func repeat(v ADCValue, n int) []ADCValue {
	out := make([]ADCValue, n)
	for i := range out {
		out[i] = v
	}
	return out
}
