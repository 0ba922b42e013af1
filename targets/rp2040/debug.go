//go:build rp2040 || rp2350

package main

import (
	"machine"

	"audiopeak/core"
)

var debugUART *machine.UART

// InitDebugUART routes core debug output to UART0 (GPIO0 TX, GPIO1 RX) at
// 115200 baud, keeping it off the USB link.
func InitDebugUART() {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		return
	}

	core.SetDebugWriter(debugWrite)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()
	core.DebugPrintln("=== audiopeak debug UART ===")
}

func debugWrite(s string) {
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
