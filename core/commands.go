package core

import (
	"audiopeak/protocol"
)

// Message ids, firmware to host.
const (
	// MsgIdentifyResponse carries one dictionary chunk.
	MsgIdentifyResponse uint16 = 0
	// MsgSignalState reports a signal counter total.
	MsgSignalState uint16 = 2
	// MsgAudioStatus answers get_status.
	MsgAudioStatus uint16 = 3
)

// Command ids, host to firmware.
const (
	// CmdIdentify requests a dictionary chunk.
	CmdIdentify uint16 = 1
	// CmdCalibBackground restarts noise calibration.
	CmdCalibBackground uint16 = 16
	// CmdGetStatus asks for an audio_status message.
	CmdGetStatus uint16 = 17
)

// Responder queues a message for the host; protocol.Transport.SendCommand
// satisfies it.
type Responder func(msgID uint16, args func(output protocol.OutputBuffer))

// EncodeSignalState writes the arguments of a signal_state message.
func EncodeSignalState(output protocol.OutputBuffer, id SignalID, total uint32) {
	protocol.EncodeVLQUint(output, uint32(id))
	protocol.EncodeVLQUint(output, total)
}

// DecodeSignalState reads the arguments of a signal_state message.
func DecodeSignalState(data *[]byte) (SignalID, uint32, error) {
	id, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return 0, 0, err
	}
	total, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return 0, 0, err
	}
	return SignalID(id), total, nil
}

// EncodeStatus writes the arguments of an audio_status message.
func EncodeStatus(output protocol.OutputBuffer, st Status) {
	protocol.EncodeVLQUint(output, uint32(st.Phase))
	protocol.EncodeVLQInt(output, st.NoiseFloor)
	protocol.EncodeVLQUint(output, st.PendingPeaks)
	protocol.EncodeVLQUint(output, st.Faults)
}

// DecodeStatus reads the arguments of an audio_status message.
func DecodeStatus(data *[]byte) (Status, error) {
	var st Status

	phase, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return st, err
	}
	floor, err := protocol.DecodeVLQInt(data)
	if err != nil {
		return st, err
	}
	pending, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return st, err
	}
	faults, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return st, err
	}

	st.Phase = Phase(phase)
	st.NoiseFloor = floor
	st.PendingPeaks = pending
	st.Faults = faults
	return st, nil
}

// NewCommands builds the message table for a; responses are queued
// through respond.
func NewCommands(a *Audio, respond Responder) *CommandRegistry {
	r := NewCommandRegistry()
	r.Register(MsgIdentifyResponse, "identify_response", "offset=%u data=%.*s", nil)
	r.Register(MsgSignalState, "signal_state", "signal=%c total=%u", nil)
	r.Register(MsgAudioStatus, "audio_status", "phase=%c floor=%i pending=%u faults=%u", nil)

	r.Register(CmdCalibBackground, "calib_background", "", func(*[]byte) error {
		return a.CalibBackground()
	})
	r.Register(CmdGetStatus, "get_status", "", func(*[]byte) error {
		st := a.Status()
		respond(MsgAudioStatus, func(output protocol.OutputBuffer) {
			EncodeStatus(output, st)
		})
		return nil
	})

	dict := NewDictionary(r, a.Config())
	r.Register(CmdIdentify, "identify", "offset=%u count=%c", dict.identifyHandler(respond))
	return r
}

// NewCommandHandler returns the handler the firmware transport dispatches
// host commands to.
func NewCommandHandler(a *Audio, respond Responder) protocol.CommandHandler {
	return NewCommands(a, respond).Dispatch
}

// ReportSignals sends a signal_state message for every counter that
// changed since the last call.
func ReportSignals(c *Counters, respond Responder) {
	c.Flush(func(id SignalID, total uint32) {
		respond(MsgSignalState, func(output protocol.OutputBuffer) {
			EncodeSignalState(output, id, total)
		})
	})
}
