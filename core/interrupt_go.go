//go:build !tinygo

package core

// State stands in for the saved interrupt mask on host builds.
type State uintptr

// disableInterrupts is a no-op outside TinyGo; host tests run the tick
// handlers and the main loop on a single goroutine.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op outside TinyGo.
func restoreInterrupts(state State) {}
