// Package estimator implements the pitch-estimation algorithms of spec.md
// §4.E/§4.F: HighRes (the central algorithm), Tuned, and the supplemented
// BasicFourier, grounded on original_source/src/estimators/*.cpp.
package estimator

import (
	"github.com/digistring/digistring/internal/note"
)

// Tunables mirror original_source/src/config/transcription.h's compile-time
// constants.
const (
	ZeroPadFactor        = 4
	PowerThreshold       = 1e-6
	EnvelopeMin          = 1e-4
	PeakThreshold        = 1e-6
	SNRThreshold         = 0.0 // 0 disables the SNR gate
	MinPeakDy            = 1e-5
	OvertoneErrorCents   = 10.0
	TransientFilterPower = 4.0
	LowestNoteMIDI       = 40 // E2, typical guitar low string
	HighestNoteMIDI      = 88 // E6
	DefaultAttenuationDB = 50.0
)

// HighResFrameSize is N for the HighRes estimator: the sole authoritative
// FRAME_SIZE in this rewrite (SPEC_FULL.md resolved Open Question 1).
const HighResFrameSize = 16384

// Selector chooses the note-selection policy of spec.md §4.E step 7.
type Selector int

const (
	LikeliestNote Selector = iota
	LoudestPeak
	LowestPeak
	MostOvertonePower
)

// Filters toggles the optional post-selection filters of spec.md §4.E
// step 8.
type Filters struct {
	LowHigh       bool
	LowestNote    int
	HighestNote   int
	Transient     bool
	prevPower     float64
	havePrevPower bool
}

// Apply returns false if n should be dropped by the configured filters,
// and records totalPower for the next call's transient check.
func (f *Filters) Apply(n note.Note, totalPower float64) bool {
	keep := true

	if f.LowHigh && (n.MIDINumber < f.LowestNote || n.MIDINumber > f.HighestNote) {
		keep = false
	}

	if f.Transient && f.havePrevPower && totalPower > f.prevPower+TransientFilterPower {
		keep = false
	}

	f.prevPower = totalPower
	f.havePrevPower = true

	return keep
}

// Snapshot is the immutable per-frame output spec.md §9 describes as
// replacing the original's backpointer-to-graphics-state pattern: the
// estimator returns this alongside events, and graphics/TUI consume it
// read-only instead of reaching back into estimator internals.
type Snapshot struct {
	Spectrum   []float64 // norms, length M/2+1
	Envelope   []float64 // same length as Spectrum
	Peaks      []note.Note
	Waveform   []float32 // copy of the analyzed window
	BinSpacing float64   // FS/M
}

// Estimator is the common operation every algorithm variant exposes:
// spec.md §9's "tagged variants dispatching over a small operation set".
type Estimator interface {
	FrameSize() int
	Perform(buf []float32) ([]note.Event, Snapshot, error)
}
