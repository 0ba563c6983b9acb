package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digistring/digistring/internal/note"
)

func TestSelectNoteLikeliestHarmonicSeries(t *testing.T) {
	// spec.md §8 S6: candidate set {100,200,301,400,517}Hz with amplitudes
	// {1.0,0.8,0.2,0.7,0.3} selects 100Hz (harmonic count 3: 200,400 match
	// within 10 cents, 301 and 517 do not).
	candidates := []note.Note{
		note.FromFreqAmp(100, 1.0),
		note.FromFreqAmp(200, 0.8),
		note.FromFreqAmp(301, 0.2),
		note.FromFreqAmp(400, 0.7),
		note.FromFreqAmp(517, 0.3),
	}

	selected, ok := selectNote(candidates, LikeliestNote)
	assert.True(t, ok)
	assert.InDelta(t, 100, selected.Freq, 1e-6)
}

func TestSelectNoteSingleCandidate(t *testing.T) {
	c := []note.Note{note.FromFreqAmp(440, 0.5)}
	selected, ok := selectNote(c, LikeliestNote)
	assert.True(t, ok)
	assert.Equal(t, c[0], selected)
}

func TestSelectNoteRejectsNonPositiveAmplitudeSingleCandidate(t *testing.T) {
	c := []note.Note{note.FromFreqAmp(440, 0)}
	_, ok := selectNote(c, LikeliestNote)
	assert.False(t, ok)
}

func TestHarmonicCountMatchesS6(t *testing.T) {
	candidates := []note.Note{
		note.FromFreqAmp(100, 1.0),
		note.FromFreqAmp(200, 0.8),
		note.FromFreqAmp(301, 0.2),
		note.FromFreqAmp(400, 0.7),
		note.FromFreqAmp(517, 0.3),
	}
	// 200 and 400 match exactly; 301 is within OvertoneErrorCents of 3x100
	// (~5.8 cents) and also counts; 517 does not match any multiple.
	assert.Equal(t, 3, harmonicCount(candidates, 0))
}
