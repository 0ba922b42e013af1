package core

import (
	"audiopeak/protocol"
	"audiopeak/tinycompress"
)

// identifyChunkMax keeps an identify_response inside one frame.
const identifyChunkMax = 40

// Constant is a firmware constant exposed to the host.
type Constant struct {
	Name  string
	Value string
}

// Dictionary is the data dictionary the host retrieves with identify: the
// message table plus firmware constants, as zlib-compressed JSON.
type Dictionary struct {
	registry      *CommandRegistry
	constants     []Constant
	version       string
	buildVersions string
	cached        []byte
}

// NewDictionary describes the commands in reg and the constants of cfg.
func NewDictionary(reg *CommandRegistry, cfg Config) *Dictionary {
	return &Dictionary{
		registry:      reg,
		version:       "audiopeak-" + protocol.Version,
		buildVersions: "go-tinygo",
		constants: []Constant{
			{"ADC_CHANNEL", utoa(uint32(cfg.Channel))},
			{"ADC_MAX", "4095"},
			{"CALIBRATION_INTERVAL_MS", utoa(cfg.CalibrationIntervalMS)},
			{"CALIBRATION_TICKS", utoa(cfg.CalibrationTicks)},
			{"COOLDOWN_TICKS", utoa(cfg.CooldownTicks)},
			{"DRAIN_PIN", utoa(uint32(cfg.DrainPin))},
			{"DRAIN_PULSE_MS", utoa(cfg.DrainPulseMS)},
			{"HISTORY_LEN", utoa(HistoryLen)},
			{"MONITOR_INTERVAL_MS", utoa(cfg.MonitorIntervalMS)},
			{"SLOPE_THRESHOLD", utoa(uint32(cfg.SlopeThreshold))},
		},
	}
}

// Generate returns the compressed dictionary, building it on first use so
// every command registered before the first identify is included.
func (d *Dictionary) Generate() []byte {
	if d.cached == nil {
		d.cached = tinycompress.Compress(d.buildJSON())
	}
	return d.cached
}

// buildJSON writes the dictionary by hand; encoding/json is too heavy for
// the firmware.
func (d *Dictionary) buildJSON() []byte {
	result := make([]byte, 0, 1024)

	result = append(result, `{"version":"`...)
	result = append(result, d.version...)
	result = append(result, `","build_versions":"`...)
	result = append(result, d.buildVersions...)
	result = append(result, `","config":{`...)
	for i, c := range d.constants {
		if i > 0 {
			result = append(result, ',')
		}
		result = appendKey(result, c.Name)
		result = append(result, '"')
		result = append(result, c.Value...)
		result = append(result, '"')
	}

	result = append(result, `},"commands":{`...)
	result = d.appendTable(result, false)
	result = append(result, `},"responses":{`...)
	result = d.appendTable(result, true)
	return append(result, "}}"...)
}

func (d *Dictionary) appendTable(result []byte, responses bool) []byte {
	first := true
	for _, cmd := range d.registry.Commands() {
		if cmd.IsResponse() != responses {
			continue
		}
		if !first {
			result = append(result, ',')
		}
		result = appendKey(result, cmd.Signature())
		result = append(result, utoa(uint32(cmd.ID))...)
		first = false
	}
	return result
}

func appendKey(result []byte, key string) []byte {
	result = append(result, '"')
	result = append(result, key...)
	return append(result, `":`...)
}

// Chunk returns up to count bytes of the dictionary starting at offset.
// Past the end it returns an empty chunk, which ends the host's transfer.
func (d *Dictionary) Chunk(offset uint32, count uint8) []byte {
	data := d.Generate()
	if offset >= uint32(len(data)) {
		return nil
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	return data[offset:end]
}

// identifyHandler answers identify offset=%u count=%c.
func (d *Dictionary) identifyHandler(respond Responder) CommandFunc {
	return func(data *[]byte) error {
		offset, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return err
		}
		count, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return err
		}
		if count > identifyChunkMax {
			count = identifyChunkMax
		}

		chunk := d.Chunk(offset, uint8(count))
		respond(MsgIdentifyResponse, func(output protocol.OutputBuffer) {
			protocol.EncodeVLQUint(output, offset)
			protocol.EncodeVLQBytes(output, chunk)
		})
		return nil
	}
}
