package protocol

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFirmware runs a firmware Transport on one end of a pipe. Command 17
// answers with message 2 carrying the command argument.
type fakeFirmware struct {
	conn     net.Conn
	handled  chan handledCommand
	tr       *Transport
	out      *ScratchOutput
	silent   bool
	finished chan struct{}
}

func startFirmware(t *testing.T, conn net.Conn, silent bool) *fakeFirmware {
	t.Helper()
	fw := &fakeFirmware{
		conn:     conn,
		handled:  make(chan handledCommand, 16),
		out:      NewScratchOutput(),
		silent:   silent,
		finished: make(chan struct{}),
	}
	fw.tr = NewTransport(fw.out, func(cmdID uint16, data *[]byte) error {
		arg, err := DecodeVLQUint(data)
		if err != nil {
			return err
		}
		fw.handled <- handledCommand{cmdID, arg}
		if cmdID == 17 {
			fw.tr.SendCommand(2, func(output OutputBuffer) {
				EncodeVLQUint(output, arg)
			})
		}
		return nil
	})
	go fw.run()
	return fw
}

func (fw *fakeFirmware) run() {
	defer close(fw.finished)

	var pending []byte
	buf := make([]byte, 256)
	for {
		n, err := fw.conn.Read(buf)
		if err != nil {
			return
		}
		pending = append(pending, buf[:n]...)
		pending = pending[fw.tr.Receive(pending):]

		if fw.silent {
			fw.out.Reset()
			continue
		}
		if fw.out.CurPosition() > 0 {
			if _, err := fw.conn.Write(fw.out.Result()); err != nil {
				return
			}
			fw.out.Reset()
		}
	}
}

func newHostPair(t *testing.T, silent bool) (*HostTransport, *fakeFirmware) {
	t.Helper()
	hostEnd, fwEnd := net.Pipe()
	fw := startFirmware(t, fwEnd, silent)
	host := NewHostTransport(hostEnd)
	t.Cleanup(func() {
		host.Close()
		fwEnd.Close()
		<-fw.finished
	})
	return host, fw
}

func TestHostTransportSendCommand(t *testing.T) {
	host, fw := newHostPair(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := uint32(0); i < 20; i++ {
		require.NoError(t, host.SendCommand(ctx, 16, func(output OutputBuffer) {
			EncodeVLQUint(output, i)
		}))
		assert.Equal(t, handledCommand{16, i}, <-fw.handled)
	}
}

func TestHostTransportDeliversMessages(t *testing.T) {
	host, _ := newHostPair(t, false)

	type message struct {
		id  uint16
		arg uint32
	}
	received := make(chan message, 1)
	host.SetResponseHandler(func(msgID uint16, data *[]byte) {
		arg, err := DecodeVLQUint(data)
		if err == nil {
			received <- message{msgID, arg}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, host.SendCommand(ctx, 17, func(output OutputBuffer) {
		EncodeVLQUint(output, 4242)
	}))

	select {
	case msg := <-received:
		assert.Equal(t, message{2, 4242}, msg)
	case <-ctx.Done():
		t.Fatal("no message from firmware")
	}
}

func TestHostTransportAckTimeout(t *testing.T) {
	host, _ := newHostPair(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := host.SendCommand(ctx, 16, func(output OutputBuffer) {
		EncodeVLQUint(output, 1)
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHostTransportRejectsOversizedCommand(t *testing.T) {
	host, _ := newHostPair(t, false)

	err := host.SendCommand(context.Background(), 16, func(output OutputBuffer) {
		output.Output(make([]byte, MessageLengthMax))
	})
	assert.Error(t, err)
}

func TestHostTransportClose(t *testing.T) {
	host, _ := newHostPair(t, false)

	require.NoError(t, host.Close())
	select {
	case <-host.Done():
	case <-time.After(time.Second):
		t.Fatal("read loop still running")
	}
	assert.NoError(t, host.Err())
	assert.NoError(t, host.Close(), "second Close is a no-op")
}
