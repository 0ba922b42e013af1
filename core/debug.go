package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a detector event for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Clock  uint32 // System time (ms) at event
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtCalibrationStart = 1 // calibration (re)started; v1=previous floor
	EvtCalibrated       = 2 // noise floor fixed; v1=floor v2=max sample
	EvtPeak             = 3 // peak counted; v1=sample v2=recent-prior
	EvtSensorFault      = 4 // ADC never became ready; v1=phase
	EvtDrainFault       = 5 // drain pin write failed; v1=pin
	EvtTimerFault       = 6 // timer could not be armed; v1=timer id
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool

	eventRing     [EventRingSize]Event
	eventRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message without blocking; it is safe to call
// from timer handlers. Messages are dropped when the queue is full.
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordEvent captures an event in the ring buffer. It never blocks.
func RecordEvent(eventType uint8, value1, value2 uint32) {
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:   eventType,
		Clock:  GetTime(),
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first.
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func eventName(t uint8) string {
	switch t {
	case EvtCalibrationStart:
		return "CALIB_START"
	case EvtCalibrated:
		return "CALIBRATED"
	case EvtPeak:
		return "PEAK"
	case EvtSensorFault:
		return "SENSOR_FAULT!"
	case EvtDrainFault:
		return "DRAIN_FAULT!"
	case EvtTimerFault:
		return "TIMER_FAULT!"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing writes the event ring through the debug writer
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[AUDIO] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[AUDIO] " + eventName(evt.Type) +
			" t=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[AUDIO] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	eventRing = [EventRingSize]Event{}
	eventRingHead = 0
}
