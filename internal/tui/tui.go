// Package tui implements the headless-mode keyboard control collaborator:
// a non-blocking raw-terminal reader that the program loop polls once per
// iteration for pitch-shift and quit key presses, repurposing
// doismellburning-samoyed's serial_port.go use of github.com/pkg/term for
// raw-mode line discipline (SPEC_FULL.md §4.H "drain UI/OS events").
package tui

import (
	"github.com/pkg/term"

	"github.com/digistring/digistring/internal/logging"
	"github.com/digistring/digistring/internal/quitflag"
)

// Key is a recognised headless control keystroke.
type Key int

const (
	KeyNone Key = iota
	KeyPitchUp
	KeyPitchDown
	KeyQuit
)

// Keyboard wraps a raw-mode terminal for non-blocking single-key reads.
type Keyboard struct {
	t *term.Term
}

// Open puts the controlling terminal into raw, non-blocking mode. Returns
// nil, nil when no terminal is available (e.g. stdin is a pipe); headless
// control then simply has no effect, which is not fatal per spec.md §7.
func Open() (*Keyboard, error) {
	t, err := term.Open("/dev/tty", term.RawMode, term.ReadTimeout(0))
	if err != nil {
		logging.Warning("tui: no controlling terminal available, keyboard control disabled", "err", err)
		return nil, nil
	}
	return &Keyboard{t: t}, nil
}

// Close restores normal terminal mode.
func (k *Keyboard) Close() error {
	if k == nil || k.t == nil {
		return nil
	}
	if err := k.t.Restore(); err != nil {
		logging.Warning("tui: failed to restore terminal mode", "err", err)
	}
	return k.t.Close()
}

// Poll performs one non-blocking read and returns the recognised key, if
// any, translating 'q'/Ctrl-C into KeyQuit (and setting the quit flag
// directly, matching spec.md §4.H's "drain UI/OS events" step).
func (k *Keyboard) Poll() Key {
	if k == nil || k.t == nil {
		return KeyNone
	}

	buf := make([]byte, 1)
	n, err := k.t.Read(buf)
	if err != nil || n == 0 {
		return KeyNone
	}

	switch buf[0] {
	case 'q', 3: // 'q' or Ctrl-C
		quitflag.Set()
		return KeyQuit
	case '+', '=':
		return KeyPitchUp
	case '-', '_':
		return KeyPitchDown
	default:
		return KeyNone
	}
}
