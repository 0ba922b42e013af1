//go:build rp2350

package main

import "audiopeak/targets/timebase"

// TIMER0; the RP2040 address is unmapped here.
var timerLayout = timebase.RP2350
