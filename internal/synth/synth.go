// Package synth implements the synthesis collaborators of spec.md §4.G,
// grounded on original_source/src/synth/{sine,sine_amped,square,sine_poly}.cpp.
package synth

import (
	"errors"
	"math"

	"github.com/digistring/digistring/internal/note"
)

// Synth generates an output audio buffer from note events.
type Synth interface {
	// Synthesize writes len(buf) mono samples in [-1,1]. events describes
	// zero or one note active during this call (monophonic synths ignore
	// any beyond the first); volume scales the output linearly.
	Synthesize(events []note.Event, buf []float32, volume float64)
}

// monoState is the phase/silence bookkeeping shared by Sine, SineAmped and
// Square: spec.md §4.G's "maintain last_phase across frames; reset to 0 on
// silence-to-tone; ride out to the next zero-crossing on tone-to-silence".
type monoState struct {
	phase      float64 // radians, [0, 2*pi)
	active     bool
	lastFreq   float64
	lastTarget float64 // previous frame's target amplitude, for SineAmped
}

func (m *monoState) noteFor(events []note.Event) (note.Note, bool) {
	if len(events) == 0 {
		return note.Note{}, false
	}
	return events[0].Note, true
}

// ridePhaseStep advances phase by step and reports whether this sample
// lands on or just crossed a zero crossing (sin(phase) changing sign),
// used to know when a tone-to-silence transition may stop emitting.
func ridePhaseStep(phase, step float64) (next float64, crossedZero bool) {
	prevSin := math.Sin(phase)
	next = phase + step
	if next >= 2*math.Pi {
		next -= 2 * math.Pi
	}
	crossedZero = (prevSin < 0) != (math.Sin(next) < 0)
	return next, crossedZero
}

// Sine is the plain monophonic sine synth.
type Sine struct {
	monoState
	fs float64
}

// NewSine constructs a Sine synth at sample rate fs.
func NewSine(fs float64) *Sine {
	return &Sine{fs: fs}
}

func (s *Sine) Synthesize(events []note.Event, buf []float32, volume float64) {
	n, hasNote := s.noteFor(events)

	if !hasNote {
		if s.active {
			s.rideOutToSilence(buf, volume)
		} else {
			zero(buf)
		}
		s.active = false
		return
	}

	if !s.active {
		s.phase = 0
	}
	s.active = true
	s.lastFreq = n.Freq

	step := 2 * math.Pi * n.Freq / s.fs
	for i := range buf {
		buf[i] = float32(volume * math.Sin(s.phase))
		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

// rideOutToSilence continues the previous tone until its next zero
// crossing, then fills the remainder with zeros, per spec.md §4.G.
func (s *Sine) rideOutToSilence(buf []float32, volume float64) {
	step := 2 * math.Pi * s.lastFreq / s.fs
	i := 0
	for ; i < len(buf); i++ {
		var crossed bool
		buf[i] = float32(volume * math.Sin(s.phase))
		s.phase, crossed = ridePhaseStep(s.phase, step)
		if crossed {
			i++
			break
		}
	}
	for ; i < len(buf); i++ {
		buf[i] = 0
	}
}

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// SineAmped is Sine plus linear amplitude interpolation across the event
// length, avoiding clicks per spec.md §4.G.
type SineAmped struct {
	monoState
	fs float64
}

// NewSineAmped constructs a SineAmped synth at sample rate fs.
func NewSineAmped(fs float64) *SineAmped {
	return &SineAmped{fs: fs}
}

func (s *SineAmped) Synthesize(events []note.Event, buf []float32, volume float64) {
	n, hasNote := s.noteFor(events)

	target := 0.0
	if hasNote {
		target = volume
	}

	if !hasNote && !s.active {
		zero(buf)
		s.lastTarget = 0
		return
	}

	if hasNote && !s.active {
		s.phase = 0
	}
	s.active = hasNote
	if hasNote {
		s.lastFreq = n.Freq
	}

	step := 2 * math.Pi * s.lastFreq / s.fs
	length := float64(len(buf))
	for i := range buf {
		amp := s.lastTarget + (target-s.lastTarget)*(float64(i)/length)
		buf[i] = float32(amp * math.Sin(s.phase))
		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
	s.lastTarget = target
}

// Square is the monophonic square-wave synth, same phase/silence
// bookkeeping as Sine but with a hard-edged waveform.
type Square struct {
	monoState
	fs float64
}

// NewSquare constructs a Square synth at sample rate fs.
func NewSquare(fs float64) *Square {
	return &Square{fs: fs}
}

func (s *Square) Synthesize(events []note.Event, buf []float32, volume float64) {
	n, hasNote := s.noteFor(events)

	if !hasNote {
		if s.active {
			s.rideOutToSilence(buf, volume)
		} else {
			zero(buf)
		}
		s.active = false
		return
	}

	if !s.active {
		s.phase = 0
	}
	s.active = true
	s.lastFreq = n.Freq

	step := 2 * math.Pi * n.Freq / s.fs
	for i := range buf {
		if math.Sin(s.phase) >= 0 {
			buf[i] = float32(volume)
		} else {
			buf[i] = float32(-volume)
		}
		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

func (s *Square) rideOutToSilence(buf []float32, volume float64) {
	step := 2 * math.Pi * s.lastFreq / s.fs
	i := 0
	for ; i < len(buf); i++ {
		var crossed bool
		if math.Sin(s.phase) >= 0 {
			buf[i] = float32(volume)
		} else {
			buf[i] = float32(-volume)
		}
		s.phase, crossed = ridePhaseStep(s.phase, step)
		if crossed {
			i++
			break
		}
	}
	for ; i < len(buf); i++ {
		buf[i] = 0
	}
}

// ErrNotImplemented is returned by SinePoly.Synthesize: the polyphonic
// sine synth is flagged work-in-progress in spec.md §9 and may be
// omitted; it is kept as a structurally complete menu entry
// (SPEC_FULL.md resolved Open Question 3) rather than deleted outright.
var ErrNotImplemented = errors.New("synth: sine_poly is not implemented")

// SinePoly is the experimental polyphonic sine synth stub.
type SinePoly struct{}

// NewSinePoly constructs the SinePoly stub.
func NewSinePoly(fs float64) *SinePoly {
	return &SinePoly{}
}

func (s *SinePoly) Synthesize(events []note.Event, buf []float32, volume float64) {
	zero(buf)
}

// SynthesizeErr exposes the WIP error for callers that need to refuse
// selecting SinePoly up front (the CLI layer), since Synth.Synthesize
// itself cannot return an error per the shared interface.
func (s *SinePoly) SynthesizeErr() error {
	return ErrNotImplemented
}
