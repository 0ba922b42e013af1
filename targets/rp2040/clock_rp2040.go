//go:build rp2040

package main

import "audiopeak/targets/timebase"

var timerLayout = timebase.RP2040
