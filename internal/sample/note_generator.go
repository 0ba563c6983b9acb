package sample

import (
	"math"

	"github.com/digistring/digistring/internal/note"
)

// NoteGenerator is WaveGenerator with frequency derived from a MIDI number
// that moves +-1 per pitch shift, grounded on
// original_source/src/sample_getter/note_generator.cpp.
type NoteGenerator struct {
	overlapState
	fs    float64
	midi  int
	phase float64
}

// NewNoteGenerator constructs a source at the given starting MIDI number.
func NewNoteGenerator(fs float64, midi int, cfg PolicyConfig) *NoteGenerator {
	return &NoteGenerator{
		overlapState: newOverlapState(cfg),
		fs:           fs,
		midi:         midi,
	}
}

func (g *NoteGenerator) freq() float64 {
	return note.FreqFromMIDI(g.midi)
}

func (g *NoteGenerator) GetFrame(buf []float32) (int, error) {
	n := len(buf)
	k := g.nextK(n)
	old := n - k

	shiftBuffer(buf, old)

	step := 2 * math.Pi * g.freq() / g.fs
	for i := old; i < n; i++ {
		buf[i] = float32(math.Sin(g.phase))
		g.phase += step
		if g.phase >= 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
	}

	g.advance(k)
	return k, nil
}

func (g *NoteGenerator) PitchUp() {
	g.midi++
}

func (g *NoteGenerator) PitchDown() {
	g.midi--
}
