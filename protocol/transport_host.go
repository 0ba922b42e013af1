package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClosed is returned by HostTransport calls after Close.
var ErrClosed = errors.New("transport closed")

// ResponseHandler is called from the read loop for every message frame
// received from the firmware. data starts after the message id.
type ResponseHandler func(msgID uint16, data *[]byte)

// HostTransport is the host side of the link. It sends commands, waits for
// their ACK and hands firmware messages to a ResponseHandler.
type HostTransport struct {
	port io.ReadWriteCloser

	writeMu    sync.Mutex
	currentSeq uint8

	scanner Scanner
	input   *FifoBuffer

	handlerMu sync.RWMutex
	handler   ResponseHandler

	ackChan  chan Frame
	stopChan chan struct{}
	doneChan chan struct{}
	closeErr error
	once     sync.Once
}

// NewHostTransport starts reading from port in the background.
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:       port,
		currentSeq: MessageDest,
		input:      NewFifoBuffer(1024),
		ackChan:    make(chan Frame, 1),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// SetResponseHandler sets the callback for firmware messages.
func (t *HostTransport) SetResponseHandler(handler ResponseHandler) {
	t.handlerMu.Lock()
	t.handler = handler
	t.handlerMu.Unlock()
}

// SendCommand sends one command frame and waits until the firmware
// acknowledges it or ctx ends.
func (t *HostTransport) SendCommand(ctx context.Context, cmdID uint16, args func(output OutputBuffer)) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	scratch := NewScratchOutput()
	EncodeVLQUint(scratch, uint32(cmdID))
	if args != nil {
		args(scratch)
	}
	payload := scratch.Result()
	if n := MessageLengthMin + len(payload); n > MessageLengthMax {
		return fmt.Errorf("message too long: %d bytes (max %d)", n, MessageLengthMax)
	}

	// drop a stale ACK left by an unsolicited resync
	select {
	case <-t.ackChan:
	default:
	}

	msg := AppendFrame(make([]byte, 0, MessageLengthMax), t.currentSeq, payload)
	if _, err := t.port.Write(msg); err != nil {
		return fmt.Errorf("write command %d: %w", cmdID, err)
	}

	select {
	case ack := <-t.ackChan:
		want := nextSequence(t.currentSeq)
		if ack.Sequence != want {
			return fmt.Errorf("sequence mismatch: expected 0x%02x, got 0x%02x", want, ack.Sequence)
		}
		t.currentSeq = want
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for ACK of command %d: %w", cmdID, ctx.Err())
	case <-t.stopChan:
		return ErrClosed
	}
}

// Done is closed when the read loop exits.
func (t *HostTransport) Done() <-chan struct{} {
	return t.doneChan
}

// Err returns the error that ended the read loop, if any.
func (t *HostTransport) Err() error {
	select {
	case <-t.doneChan:
		return t.closeErr
	default:
		return nil
	}
}

func (t *HostTransport) readLoop() {
	defer close(t.doneChan)

	buffer := make([]byte, 256)
	for {
		select {
		case <-t.stopChan:
			return
		default:
		}

		n, err := t.port.Read(buffer)
		if n > 0 {
			t.input.Write(buffer[:n])
			t.input.Pop(t.scanner.Scan(t.input.Data(), t.dispatch))
		}
		if err != nil {
			select {
			case <-t.stopChan:
				return
			default:
			}
			// tarm/serial reports a read timeout as io.EOF
			if errors.Is(err, io.EOF) {
				continue
			}
			t.closeErr = err
			return
		}
	}
}

// dispatch routes ACKs to the waiting sender and messages to the handler.
func (t *HostTransport) dispatch(f Frame) {
	if f.IsAck() {
		select {
		case t.ackChan <- f:
		default:
		}
		return
	}

	t.handlerMu.RLock()
	handler := t.handler
	t.handlerMu.RUnlock()
	if handler == nil {
		return
	}

	payload := append([]byte(nil), f.Payload...)
	msgID, err := DecodeVLQUint(&payload)
	if err != nil {
		return
	}
	handler(uint16(msgID), &payload)
}

// Close stops the read loop and closes the port.
func (t *HostTransport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.stopChan)
		err = t.port.Close()
		<-t.doneChan
	})
	return err
}
