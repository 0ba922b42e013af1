//go:build rp2040 || rp2350

// Package pio generates the drain pulse on an RP2040 PIO state machine, so
// the pulse width is timed in hardware and the CPU only pushes one word per
// sample.
package pio

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

var (
	// ErrNoStateMachine is returned when every PIO state machine is taken.
	ErrNoStateMachine = errors.New("no free PIO state machine")

	// ErrPulseBusy is returned by Fire while earlier pulses are still queued.
	ErrPulseBusy = errors.New("drain pulse still queued")
)

// buildDrainProgram creates the pulse program using AssemblerV0.
// Each 32-bit word pulled from the TX FIFO is a pulse width in state machine
// loop iterations.
func buildDrainProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(),   // 1: out x, 32 (width)
		asm.Set(rp2pio.SetDestPins, 1).Encode(), // 2: set pins, 1
		// hold:
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(), // 3: jmp x--, 3
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 4: set pins, 0
		// .wrap
	}
}

const drainPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// DrainPulser implements core.Pulser on a PIO state machine.
type DrainPulser struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	slot   slot
	pin    machine.Pin
	width  uint32
	offset uint8
}

// NewDrainPulser claims a free state machine and starts the pulse program
// on pin. Pulses last widthMS milliseconds.
func NewDrainPulser(pin machine.Pin, widthMS uint32) (*DrainPulser, error) {
	s, ok := machines.claim()
	if !ok {
		return nil, ErrNoStateMachine
	}

	pioHW := rp2pio.PIO0
	if s.block == 1 {
		pioHW = rp2pio.PIO1
	}

	p := &DrainPulser{
		pio:   pioHW,
		sm:    pioHW.StateMachine(s.sm),
		slot:  s,
		pin:   pin,
		width: holdCycles(widthMS),
	}
	if err := p.init(); err != nil {
		machines.release(s)
		return nil, err
	}
	return p, nil
}

func (p *DrainPulser) init() error {
	p.sm.TryClaim()

	program := buildDrainProgram()
	offset, err := p.pio.AddProgram(program, drainPIOOrigin)
	if err != nil {
		return err
	}
	p.offset = offset

	p.pin.Configure(machine.PinConfig{Mode: p.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(p.pin, 1)
	// explicit PULL, shift right, 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(clockDivider(machine.CPUFrequency()), 0)

	// Pin direction must be set after Init
	p.sm.Init(offset, cfg)
	p.sm.SetPindirsConsecutive(p.pin, 1, true)
	p.sm.SetPinsConsecutive(p.pin, 1, false)
	p.sm.SetEnabled(true)
	return nil
}

// Fire implements core.Pulser. It never waits on the FIFO.
func (p *DrainPulser) Fire() error {
	if p.sm.IsTxFIFOFull() {
		return ErrPulseBusy
	}
	p.sm.TxPut(p.width)
	return nil
}

// Stop halts the state machine, leaves the pin low and frees the machine.
func (p *DrainPulser) Stop() {
	p.sm.SetEnabled(false)
	p.sm.ClearFIFOs()
	p.sm.Restart()
	p.sm.SetPinsConsecutive(p.pin, 1, false)
	machines.release(p.slot)
}
