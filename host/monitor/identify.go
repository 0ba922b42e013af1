package monitor

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"audiopeak/core"
	"audiopeak/protocol"
)

// identifyChunk is the number of dictionary bytes requested per identify.
const identifyChunk = 40

// ErrDictionaryMismatch is returned by Identify when the firmware's message
// ids differ from the ones this host was built with.
var ErrDictionaryMismatch = errors.New("firmware dictionary does not match host")

// Dictionary is the firmware's data dictionary.
type Dictionary struct {
	Version       string            `json:"version"`
	BuildVersions string            `json:"build_versions"`
	Config        map[string]string `json:"config"`
	Commands      map[string]int    `json:"commands"`
	Responses     map[string]int    `json:"responses"`
}

// ID returns the id of the command or response called name.
func (d *Dictionary) ID(name string) (uint16, bool) {
	for _, table := range []map[string]int{d.Commands, d.Responses} {
		for sig, id := range table {
			if n, _, _ := strings.Cut(sig, " "); n == name {
				return uint16(id), true
			}
		}
	}
	return 0, false
}

// check compares the firmware's ids with the ones the monitor uses.
func (d *Dictionary) check() error {
	want := map[string]uint16{
		"calib_background": core.CmdCalibBackground,
		"get_status":       core.CmdGetStatus,
		"signal_state":     core.MsgSignalState,
		"audio_status":     core.MsgAudioStatus,
	}
	for name, id := range want {
		got, ok := d.ID(name)
		if !ok {
			return fmt.Errorf("%w: %s missing", ErrDictionaryMismatch, name)
		}
		if got != id {
			return fmt.Errorf("%w: %s has id %d, expected %d", ErrDictionaryMismatch, name, got, id)
		}
	}
	return nil
}

type identifyResponse struct {
	offset uint32
	data   []byte
}

// Identify downloads the firmware's data dictionary and checks that its
// message ids match.
func (m *Monitor) Identify(ctx context.Context) (*Dictionary, error) {
	var compressed []byte
	for {
		offset := uint32(len(compressed))
		err := m.transport.SendCommand(ctx, core.CmdIdentify, func(output protocol.OutputBuffer) {
			protocol.EncodeVLQUint(output, offset)
			protocol.EncodeVLQUint(output, identifyChunk)
		})
		if err != nil {
			return nil, fmt.Errorf("identify at offset %d: %w", offset, err)
		}

		chunk, err := m.awaitChunk(ctx, offset)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		compressed = append(compressed, chunk...)
	}

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("inflate dictionary: %w", err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate dictionary: %w", err)
	}

	dict := &Dictionary{}
	if err := json.Unmarshal(raw, dict); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	if err := dict.check(); err != nil {
		return dict, err
	}

	m.log.Info("Identified detector", "version", dict.Version, "build", dict.BuildVersions,
		"commands", len(dict.Commands), "responses", len(dict.Responses))
	return dict, nil
}

// awaitChunk waits for the identify_response for offset. Stale responses
// from an earlier, abandoned transfer are skipped.
func (m *Monitor) awaitChunk(ctx context.Context, offset uint32) ([]byte, error) {
	for {
		select {
		case resp := <-m.identify:
			if resp.offset == offset {
				return resp.data, nil
			}
			m.log.Debug("Skipping stale identify_response", "offset", resp.offset, "want", offset)
		case <-ctx.Done():
			return nil, fmt.Errorf("identify_response at offset %d: %w", offset, ctx.Err())
		case <-m.transport.Done():
			return nil, protocol.ErrClosed
		}
	}
}

func (m *Monitor) handleIdentify(data *[]byte) {
	offset, err := protocol.DecodeVLQUint(data)
	if err != nil {
		m.log.Warn("Malformed identify_response", "error", err)
		return
	}
	chunk, err := protocol.DecodeVLQBytes(data)
	if err != nil {
		m.log.Warn("Malformed identify_response", "error", err)
		return
	}
	select {
	case m.identify <- identifyResponse{offset: offset, data: chunk}:
	default:
		m.log.Warn("Unexpected identify_response", "offset", offset)
	}
}
