package note

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFromFreqAmpA4(t *testing.T) {
	n := FromFreqAmp(440.0, 1.0)
	assert.Equal(t, MIDIA4, n.MIDINumber)
	assert.Equal(t, 9, n.PitchClass) // A
	assert.Equal(t, 4, n.Octave)
	assert.InDelta(t, 0, n.ErrorCents, 1e-6)
}

func TestFreqFromMIDIRoundTrip(t *testing.T) {
	// spec.md §8 invariant 4: Note(freq) -> freq(midi_number) round-trips
	// to within +-50 cents and exactly reproduces the MIDI number.
	rapid.Check(t, func(rt *rapid.T) {
		midi := rapid.IntRange(21, 108).Draw(rt, "midi")
		freq := FreqFromMIDI(midi)
		n := FromFreqAmp(freq, 1.0)

		require.Equal(rt, midi, n.MIDINumber)
		assert.LessOrEqual(rt, math.Abs(n.ErrorCents), 50.0)
	})
}

func TestStringFormsKnownNotes(t *testing.T) {
	n := FromFreqAmp(FreqFromMIDI(70), 1.0) // A#4
	assert.Equal(t, "A#4", n.String())
}

func TestParseNameRoundTrip(t *testing.T) {
	n, err := ParseName("A4")
	require.NoError(t, err)
	assert.Equal(t, MIDIA4, n.MIDINumber)

	n2, err := ParseName("C0")
	require.NoError(t, err)
	assert.InDelta(t, C0, n2.Freq, 1e-6)
}
