package protocol

import "bytes"

// Scanner splits a byte stream into validated frames. After a length, CRC
// or trailer error it discards input up to the next sync byte.
type Scanner struct {
	desynced bool

	// OnResync, if set, runs when a sync byte ends a discarded stretch.
	OnResync func()

	// Dropped counts frames rejected since the scanner was created.
	Dropped uint32
}

// Synchronized reports whether the scanner is aligned on frame boundaries.
func (s *Scanner) Synchronized() bool {
	return !s.desynced
}

// Desync forces the scanner to skip input until the next sync byte.
func (s *Scanner) Desync() {
	s.desynced = true
	s.Dropped++
}

// Reset returns the scanner to the synchronized state.
func (s *Scanner) Reset() {
	s.desynced = false
}

// Scan calls fn for each complete frame in data and returns the number of
// bytes consumed. A trailing partial frame is left for the next call.
func (s *Scanner) Scan(data []byte, fn func(Frame)) int {
	total := len(data)

	for len(data) > 0 {
		if s.desynced {
			pos := bytes.IndexByte(data, MessageValueSync)
			if pos < 0 {
				data = nil
				break
			}
			data = data[pos+1:]
			s.desynced = false
			if s.OnResync != nil {
				s.OnResync()
			}
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			s.Desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			s.Desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			s.Desync()
			continue
		}

		fn(Frame{
			Length:   uint8(msgLen),
			Sequence: data[MessagePositionSeq],
			Payload:  data[MessageHeaderSize : msgLen-MessageTrailerSize],
			CRC:      frameCRC,
		})
		data = data[msgLen:]
	}

	return total - len(data)
}

// AppendFrame appends a complete frame carrying payload to dst.
func AppendFrame(dst []byte, seq uint8, payload []byte) []byte {
	start := len(dst)
	dst = append(dst, uint8(MessageHeaderSize+len(payload)+MessageTrailerSize), seq)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, uint8(crc>>8), uint8(crc), MessageValueSync)
}
