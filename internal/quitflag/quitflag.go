// Package quitflag implements the single process-wide cancellation flag
// described in spec.md §5: a signal handler or UI sets it, and every
// blocking loop in the program polls it at bounded intervals.
//
// Go delivers signals to a dedicated goroutine via os/signal, not to
// arbitrary interrupted code as C's signal() does, so unlike the
// original engine's quit.cpp this flag needs no more than ordinary
// atomicity (see SPEC_FULL.md, resolved Open Question 5).
package quitflag

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/digistring/digistring/internal/logging"
)

var quit atomic.Bool
var forceExiting atomic.Bool

// Poll reports whether the process should stop at the next opportunity.
func Poll() bool {
	return quit.Load()
}

// Set requests the process stop at the next opportunity.
func Set() {
	if !quit.CompareAndSwap(false, true) {
		return
	}
	logging.Info("quitting application on next cycle...")
}

// Reset clears the flag. Used by tests that run the loop repeatedly.
func Reset() {
	quit.Store(false)
	forceExiting.Store(false)
}

// WatchSignals installs SIGINT/SIGTERM handling: the first signal sets
// the quit flag, a second one force-exits with status -2 (encoded as
// 254 since os.Exit truncates to a byte), matching spec.md §7.
func WatchSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range ch {
			if quit.Load() {
				if forceExiting.CompareAndSwap(false, true) {
					logging.Info("received signal while quitting; forcing exit", "signal", sig)
					os.Exit(254)
				}
				continue
			}
			logging.Info("signal received", "signal", sig)
			Set()
		}
	}()
}
