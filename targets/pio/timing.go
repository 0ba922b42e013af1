package pio

// holdRateHz is the state machine rate the drain program is written for:
// one hold loop iteration per microsecond.
const holdRateHz = 1_000_000

// clockDivider returns the integer divider that brings a sysHz system clock
// down to holdRateHz. The RP2040 runs at 125 MHz and the RP2350 at 150 MHz
// under TinyGo; both divide exactly.
func clockDivider(sysHz uint32) uint16 {
	div := sysHz / holdRateHz
	if div == 0 {
		return 1
	}
	if div > 0xFFFF {
		return 0xFFFF
	}
	return uint16(div)
}

// holdCycles converts a pulse width to hold loop iterations.
func holdCycles(widthMS uint32) uint32 {
	return widthMS * (holdRateHz / 1000)
}
