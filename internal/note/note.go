// Package note implements the pitch data model shared by every estimator,
// synth and sink: the Note/NoteEvent types and the exact frequency <-> MIDI
// derivation formulas, grounded on original_source/src/note.cpp and note.h.
package note

import (
	"fmt"
	"math"
)

// A4 is the reference pitch in Hz, MIDI number 69 by definition.
const A4 = 440.0

// MIDIA4 is the MIDI number of A4.
const MIDIA4 = 69

// C0 is the frequency of the theoretical note C in octave 0.
var C0 = A4 * math.Pow(2, -57.0/12.0)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is a single pitch estimate: frequency, linear amplitude and the
// derived MIDI/pitch-class/octave/cent-error quadruple.
type Note struct {
	Freq        float64
	Amp         float64
	PitchClass  int // 0-11, 0 = C
	Octave      int
	ErrorCents  float64
	MIDINumber  int
}

// FromFreqAmp derives the full Note from a frequency and amplitude, using
// the formulas of spec.md §3:
//
//	d = round(12*log2(freq/C0))
//	note = ((d mod 12) + 12) mod 12
//	octave = floor(d/12)
//	midi_number = 12 + d
//	error_cents = 1200*log2(freq / (C0*2^(octave + note/12)))
func FromFreqAmp(freq, amp float64) Note {
	d := int(math.Round(12 * math.Log2(freq/C0)))
	pitchClass := ((d % 12) + 12) % 12
	octave := int(math.Floor(float64(d) / 12.0))
	midi := 12 + d
	refFreq := C0 * math.Pow(2, float64(octave)+float64(pitchClass)/12.0)
	errorCents := 1200 * math.Log2(freq/refFreq)

	return Note{
		Freq:       freq,
		Amp:        amp,
		PitchClass: pitchClass,
		Octave:     octave,
		ErrorCents: errorCents,
		MIDINumber: midi,
	}
}

// FreqFromMIDI is the inverse direction: the frequency of a given MIDI
// number, used by NoteGenerator and the round-trip test in spec.md §8.4.
func FreqFromMIDI(midi int) float64 {
	return A4 * math.Pow(2, float64(midi-MIDIA4)/12.0)
}

// String renders the ASCII form, e.g. "A#4".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", pitchClassNames[n.PitchClass], n.Octave)
}

// SubscriptString renders the octave as a Unicode subscript, e.g. "A#₄",
// matching the alternate display form original_source's note.cpp offers
// for terminal output.
func (n Note) SubscriptString() string {
	const subscriptDigits = "₀₁₂₃₄₅₆₇₈₉"
	octave := n.Octave
	neg := octave < 0
	if neg {
		octave = -octave
	}
	digits := fmt.Sprintf("%d", octave)
	sub := make([]rune, 0, len(digits))
	for _, d := range digits {
		sub = append(sub, []rune(subscriptDigits)[d-'0'])
	}
	sign := ""
	if neg {
		sign = "₋"
	}
	return pitchClassNames[n.PitchClass] + sign + string(sub)
}

// Event is a single note occurrence within an analysis frame: a Note plus
// its position and duration in samples, and an optional confidence.
type Event struct {
	Note       Note
	Offset     int // start of the note within the frame, 0 <= offset < N
	Length     int // duration in samples, offset+length <= N
	Confidence float64 // unset sentinel: < 0
}

// NoConfidence is the sentinel value for an unset Event.Confidence.
const NoConfidence = -1.0

// Overtones returns the first n overtone frequencies above the note's
// fundamental (n=0 excluded; overtone 1 is the fundamental itself), for the
// `--over` CLI collaborator.
func (n Note) Overtones(count int) []float64 {
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = n.Freq * float64(i+1)
	}
	return out
}

// ParseName parses an ASCII note name like "A#4" or "Bb3" into a Note with
// Amp left at 0. Used by the `--over` and `-n` CLI collaborators.
func ParseName(s string) (Note, error) {
	if len(s) < 2 {
		return Note{}, fmt.Errorf("note: invalid note name %q", s)
	}

	letter := s[0]
	rest := s[1:]

	base := map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
	pitchClass, ok := base[letter]
	if !ok {
		return Note{}, fmt.Errorf("note: unknown pitch letter %q in %q", letter, s)
	}

	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 's') {
		pitchClass = (pitchClass + 1) % 12
		rest = rest[1:]
	} else if len(rest) > 0 && (rest[0] == 'b' || rest[0] == 'f') {
		pitchClass = (pitchClass + 11) % 12
		rest = rest[1:]
	}

	var octave int
	if _, err := fmt.Sscanf(rest, "%d", &octave); err != nil {
		return Note{}, fmt.Errorf("note: invalid octave in %q: %w", s, err)
	}

	// Inverting octave = floor(d/12), pitchClass = d mod 12.
	d := octave*12 + pitchClass
	midi := 12 + d
	freq := FreqFromMIDI(midi)
	return FromFreqAmp(freq, 0), nil
}
