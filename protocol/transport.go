package protocol

import "errors"

// CommandHandler handles one decoded command. data is advanced past the
// arguments the handler consumed.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the firmware side of the link: it validates host frames,
// acknowledges them and dispatches their commands, and encodes responses
// into an OutputBuffer that the main loop writes to USB.
type Transport struct {
	scanner      Scanner
	nextSequence uint8

	output        OutputBuffer
	handler       CommandHandler
	resetCallback func()
	flushCallback func()
}

// NewTransport creates a new Transport instance
func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	t := &Transport{
		nextSequence: MessageDest,
		output:       output,
		handler:      handler,
	}
	t.scanner.OnResync = t.encodeAckNak
	return t
}

// Receive processes host bytes and returns how many were consumed.
func (t *Transport) Receive(data []byte) int {
	return t.scanner.Scan(data, t.handleFrame)
}

func (t *Transport) handleFrame(f Frame) {
	if f.Sequence&^MessageSeqMask != MessageDest {
		t.scanner.Desync()
		return
	}

	// A sequence back at MessageDest means the host restarted.
	if f.Sequence == MessageDest && t.nextSequence != MessageDest {
		t.nextSequence = MessageDest
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}

	if f.Sequence == t.nextSequence {
		t.nextSequence = nextSequence(f.Sequence)
		if err := t.parseFrame(f.Payload); errors.Is(err, ErrBufferTooSmall) {
			t.scanner.Desync()
		}
	}
	// A mismatched sequence is answered too; the ACK then acts as a NAK
	// carrying the expected sequence.
	t.encodeAckNak()
}

// parseFrame dispatches every command in a frame payload.
func (t *Transport) parseFrame(frame []byte) error {
	for len(frame) > 0 {
		cmdID, err := DecodeVLQUint(&frame)
		if err != nil {
			return err
		}
		if t.handler == nil {
			return nil
		}
		if err := t.handler(uint16(cmdID), &frame); err != nil {
			// the rest of the frame cannot be parsed reliably
			return err
		}
	}
	return nil
}

// encodeAckNak writes an empty frame carrying the next expected sequence
// and flushes it immediately.
func (t *Transport) encodeAckNak() {
	t.output.Output(AppendFrame(make([]byte, 0, MessageLengthMin), t.nextSequence, nil))
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// EncodeFrame encodes one frame whose payload is written by frameData.
func (t *Transport) EncodeFrame(frameData func(output OutputBuffer)) {
	cursor := t.output.CurPosition()

	t.output.Output([]byte{0, t.nextSequence})
	frameData(t.output)

	length := len(t.output.DataSince(cursor)) + MessageTrailerSize
	t.output.Update(cursor, uint8(length))

	crc := CRC16(t.output.DataSince(cursor))
	t.output.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
}

// SendCommand encodes a message with its id and arguments as one frame.
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) {
	t.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
}

// Reset returns the transport to its power-on state (after a USB reconnect).
func (t *Transport) Reset() {
	t.scanner.Reset()
	t.nextSequence = MessageDest
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// SetResetCallback sets a callback to be called when host reset is detected
func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetFlushCallback sets a callback that pushes ACKs to USB right away.
func (t *Transport) SetFlushCallback(callback func()) {
	t.flushCallback = callback
}
