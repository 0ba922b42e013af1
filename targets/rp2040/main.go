//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"audiopeak/core"
	"audiopeak/protocol"
	"audiopeak/targets/pio"
)

// Board wiring: microphone stage on ADC0 (GPIO26), drain transistor on
// GPIO15.
const (
	micChannel core.ADCChannelID = 0
	drainPin   core.GPIOPin      = 15
)

// drainBackend selects the drain pulse generator: "pio" or "gpio".
// Override with -ldflags "-X main.drainBackend=gpio".
var drainBackend = "pio"

var (
	// Buffers for communication
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	transport    *protocol.Transport

	timers  *core.SoftTimers
	signals core.Counters
	audio   *core.Audio

	// Debug counters
	msgerrors uint32

	// USB connection state tracking
	usbWasDisconnected       bool
	consecutiveWriteFailures uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()

	now := UpdateSystemTime()
	timers = core.NewSoftTimers(now)

	cfg := core.DefaultConfig()
	cfg.Channel = micChannel
	cfg.DrainPin = drainPin

	hw := core.Hardware{
		ADC:     NewRPAdcDriver(),
		GPIO:    NewRPGPIODriver(),
		Timers:  timers,
		Signals: &signals,
	}
	if drainBackend == "pio" {
		pulser, err := pio.NewDrainPulser(machine.Pin(drainPin), cfg.DrainPulseMS)
		if err != nil {
			core.DebugPrintln("[MAIN] PIO drain unavailable, using GPIO: " + err.Error())
		} else {
			hw.Pulser = pulser
		}
	}

	audio, err = core.NewAudio(cfg, hw)
	if err != nil {
		halt("[MAIN] " + err.Error())
	}

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()
	transport = protocol.NewTransport(outputBuffer, core.NewCommandHandler(audio, respond))
	transport.SetResetCallback(func() {
		inputBuffer.Reset()
		outputBuffer.Reset()
	})
	// ACKs go out before any response the command queued
	transport.SetFlushCallback(writeUSB)

	if err := audio.Setup(); err != nil {
		halt("[MAIN] setup: " + err.Error())
	}

	go usbReaderLoop()

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			now := UpdateSystemTime()

			if inputBuffer.Available() > 0 {
				inputBuffer.Pop(transport.Receive(inputBuffer.Data()))
			}

			timers.Dispatch(now)

			audio.Run()
			core.ReportSignals(&signals, respond)

			writeUSB()
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

// respond queues a firmware message for the host.
func respond(msgID uint16, args func(output protocol.OutputBuffer)) {
	transport.SendCommand(msgID, args)
}

// halt leaves a message on the debug UART and parks the firmware.
func halt(msg string) {
	core.DebugPrintln(msg)
	core.DumpEventRing()
	for {
		time.Sleep(time.Second)
	}
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				continue
			}

			// First byte after a disconnect starts a fresh session
			if usbWasDisconnected {
				usbWasDisconnected = false
				inputBuffer.Reset()
				outputBuffer.Reset()
				transport.Reset()
				consecutiveWriteFailures = 0
			}

			if inputBuffer.Write([]byte{data}) == 0 {
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB writes available data from output buffer to USB
func writeUSB() {
	result := outputBuffer.Result()
	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			// likely a disconnect; drop stale data after repeated failures
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
				outputBuffer.Reset()
				inputBuffer.Reset()
			}
			return
		}
		written += n
	}
	if written > 0 {
		consecutiveWriteFailures = 0
		outputBuffer.Reset()
	}
}
