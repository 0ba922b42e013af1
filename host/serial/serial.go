// Package serial opens the detector's USB CDC port on the host.
package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// ReadTimeout bounds each Read; zero blocks. A timed out read returns
	// io.EOF, which the transport treats as "no data yet".
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration used for the detector board
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100 * time.Millisecond,
	}
}
