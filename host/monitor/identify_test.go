package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiopeak/core"
	"audiopeak/protocol"
)

type idleADC struct{}

func (idleADC) ConfigureChannel(core.ADCChannelID) error { return nil }
func (idleADC) StartConversion()                         {}
func (idleADC) ConversionDone() bool                     { return true }
func (idleADC) ReadConversion() core.ADCValue            { return 0 }

type nopPulser struct{}

func (nopPulser) Fire() error { return nil }

// withFirmware answers commands with the real firmware message table.
func withFirmware(t *testing.T) func(d *device) {
	return func(d *device) {
		audio, err := core.NewAudio(core.DefaultConfig(), core.Hardware{
			ADC:     idleADC{},
			Timers:  core.NewSoftTimers(0),
			Signals: &core.Counters{},
			Pulser:  nopPulser{},
		})
		require.NoError(t, err)
		require.NoError(t, audio.Setup())

		// handlers run with d.mu held by the read loop
		d.registry = core.NewCommands(audio, d.tr.SendCommand)
	}
}

func TestMonitorIdentify(t *testing.T) {
	m, _ := connect(t, withFirmware(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dict, err := m.Identify(ctx)
	require.NoError(t, err)

	assert.Equal(t, "audiopeak-"+protocol.Version, dict.Version)
	assert.Equal(t, "go-tinygo", dict.BuildVersions)
	assert.Equal(t, "100", dict.Config["CALIBRATION_TICKS"])

	id, ok := dict.ID("identify")
	assert.True(t, ok)
	assert.Equal(t, core.CmdIdentify, id)
	id, ok = dict.ID("audio_status")
	assert.True(t, ok)
	assert.Equal(t, core.MsgAudioStatus, id)

	// the link stays usable after the transfer
	require.NoError(t, m.RequestStatus(ctx))
	ev := nextEvent(t, m)
	assert.Equal(t, EventStatus, ev.Kind)
	assert.Equal(t, "calibrating", ev.Phase)
}

func TestDictionaryCheck(t *testing.T) {
	dict := &Dictionary{
		Commands: map[string]int{
			"calib_background": int(core.CmdCalibBackground),
			"get_status":       int(core.CmdGetStatus),
		},
		Responses: map[string]int{
			"signal_state signal=%c total=%u":                     int(core.MsgSignalState),
			"audio_status phase=%c floor=%i pending=%u faults=%u": int(core.MsgAudioStatus),
		},
	}
	require.NoError(t, dict.check())

	dict.Commands["get_status"] = 30
	assert.ErrorIs(t, dict.check(), ErrDictionaryMismatch)

	delete(dict.Commands, "get_status")
	assert.ErrorIs(t, dict.check(), ErrDictionaryMismatch)
}

func TestIdentifyAbortsWhenLinkCloses(t *testing.T) {
	m, _ := connect(t, func(d *device) {})

	// the canned device acks identify but never answers it
	go func() {
		time.Sleep(50 * time.Millisecond)
		m.Close()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.Identify(ctx)
	assert.ErrorIs(t, err, protocol.ErrClosed)
}
