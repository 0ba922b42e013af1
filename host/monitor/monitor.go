// Package monitor talks to the detector firmware over its serial link and
// turns signal_state and audio_status messages into events. Identify
// fetches the firmware's data dictionary.
package monitor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/inconshreveable/log15"

	"audiopeak/core"
	"audiopeak/host/serial"
	"audiopeak/protocol"
)

// EventKind identifies what an Event reports.
type EventKind string

const (
	EventSound       EventKind = "sound"
	EventSensorFault EventKind = "sensor_fault"
	EventStatus      EventKind = "status"
)

// Event is one decoded detector report.
type Event struct {
	Kind EventKind `json:"kind"`
	Time time.Time `json:"time"`

	// Total is the firmware's running counter; Delta is the increase since
	// the previous report of the same signal.
	Total uint32 `json:"total,omitempty"`
	Delta uint32 `json:"delta,omitempty"`

	Phase      string `json:"phase,omitempty"`
	NoiseFloor int32  `json:"noise_floor,omitempty"`
	Pending    uint32 `json:"pending,omitempty"`
	Faults     uint32 `json:"faults,omitempty"`
}

// Monitor is a connection to one detector.
type Monitor struct {
	transport *protocol.HostTransport
	log       log.Logger
	now       func() time.Time

	mu     sync.Mutex
	totals map[core.SignalID]uint32

	events   chan Event
	identify chan identifyResponse
}

// New starts a monitor on an open port.
func New(port io.ReadWriteCloser, logger log.Logger) *Monitor {
	m := &Monitor{
		transport: protocol.NewHostTransport(port),
		log:       logger,
		now:       time.Now,
		totals:    make(map[core.SignalID]uint32),
		events:    make(chan Event, 64),
		identify:  make(chan identifyResponse, 1),
	}
	m.transport.SetResponseHandler(m.handleResponse)
	return m
}

// Connect opens the serial port described by cfg and starts a monitor on it.
func Connect(cfg *serial.Config, logger log.Logger) (*Monitor, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		logger.Warn("Could not flush serial input", "device", cfg.Device, "error", err)
	}
	logger.Info("Connected to detector", "device", cfg.Device)
	return New(port, logger), nil
}

// Events delivers decoded reports. It is never closed; select on Done as
// well.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Done is closed when the link goes down.
func (m *Monitor) Done() <-chan struct{} {
	return m.transport.Done()
}

// Err returns the error that ended the link, if any.
func (m *Monitor) Err() error {
	return m.transport.Err()
}

// Recalibrate asks the detector to learn the noise floor again.
func (m *Monitor) Recalibrate(ctx context.Context) error {
	if err := m.transport.SendCommand(ctx, core.CmdCalibBackground, nil); err != nil {
		return fmt.Errorf("calib_background: %w", err)
	}
	m.log.Info("Requested recalibration")
	return nil
}

// RequestStatus asks for an audio_status report; it arrives on Events.
func (m *Monitor) RequestStatus(ctx context.Context) error {
	if err := m.transport.SendCommand(ctx, core.CmdGetStatus, nil); err != nil {
		return fmt.Errorf("get_status: %w", err)
	}
	return nil
}

// Close closes the link.
func (m *Monitor) Close() error {
	return m.transport.Close()
}

func (m *Monitor) handleResponse(msgID uint16, data *[]byte) {
	switch msgID {
	case core.MsgIdentifyResponse:
		m.handleIdentify(data)

	case core.MsgSignalState:
		id, total, err := core.DecodeSignalState(data)
		if err != nil {
			m.log.Warn("Malformed signal_state", "error", err)
			return
		}
		m.signal(id, total)

	case core.MsgAudioStatus:
		st, err := core.DecodeStatus(data)
		if err != nil {
			m.log.Warn("Malformed audio_status", "error", err)
			return
		}
		m.log.Debug("Detector status", "phase", st.Phase, "floor", st.NoiseFloor,
			"pending", st.PendingPeaks, "faults", st.Faults)
		m.emit(Event{
			Kind:       EventStatus,
			Phase:      st.Phase.String(),
			NoiseFloor: st.NoiseFloor,
			Pending:    st.PendingPeaks,
			Faults:     st.Faults,
		})

	default:
		m.log.Debug("Ignoring unknown message", "id", msgID)
	}
}

func (m *Monitor) signal(id core.SignalID, total uint32) {
	var kind EventKind
	switch id {
	case core.SignalSoundDetected:
		kind = EventSound
	case core.SignalSensorFault:
		kind = EventSensorFault
	default:
		m.log.Debug("Ignoring unknown signal", "signal", id, "total", total)
		return
	}

	m.mu.Lock()
	last, seen := m.totals[id]
	m.totals[id] = total
	m.mu.Unlock()

	delta := total - last
	if !seen || total < last {
		// first report, or the firmware restarted and its counters with it
		delta = total
	}
	if delta == 0 {
		return
	}

	if kind == EventSensorFault {
		m.log.Warn("Detector sensor fault", "total", total)
	} else {
		m.log.Info("Sound detected", "count", delta, "total", total)
	}
	m.emit(Event{Kind: kind, Total: total, Delta: delta})
}

// emit stamps ev and queues it, dropping it when the consumer lags.
func (m *Monitor) emit(ev Event) {
	ev.Time = m.now()
	select {
	case m.events <- ev:
	default:
		m.log.Warn("Event queue full, dropping event", "kind", ev.Kind)
	}
}
