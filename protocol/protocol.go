// Package protocol implements the framed serial link between the detector
// firmware and the host bridge.
//
// A frame is: length, sequence, payload, CRC16 (big endian), sync byte.
// Payloads are a VLQ message id followed by VLQ-encoded arguments.
package protocol

// Version is the link protocol version reported by the firmware.
const Version = "0.1.0"

// Frame layout
const (
	MessageMax = 64 // Scratch buffer size; one frame never exceeds it

	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Host sequence numbers live in 0x10-0x1F.
	MessageDest     = 0x10
	MessageSeqMask  = 0x0F
	MessageSeqShift = 4
)

// Frame is one validated frame. Payload aliases the receive buffer.
type Frame struct {
	Length   uint8
	Sequence uint8
	Payload  []byte
	CRC      uint16
}

// IsAck reports whether f carries no payload (an ACK/NAK).
func (f Frame) IsAck() bool {
	return len(f.Payload) == 0
}

// nextSequence returns the host sequence number following seq.
func nextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
