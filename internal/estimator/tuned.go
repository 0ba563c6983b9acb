package estimator

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/digistring/digistring/internal/note"
	"github.com/digistring/digistring/internal/spectrum"
	"github.com/digistring/digistring/internal/window"
)

// Tuned runs twelve parallel short-frame transforms, one per pitch class
// of the lowest octave, and reports the loudest as a coarse quantised
// estimate. Grounded on original_source/src/estimators/tuned.cpp; useful
// mainly as an integration test of the window/norm primitives it shares
// with HighRes (spec.md §4.F).
type Tuned struct {
	n          int // the main loop's frame size; Tuned reads its tail
	lowestMIDI int
	lanes      [12]tunedLane
}

type tunedLane struct {
	length int
	fft    *fourier.FFT
	window []float64
	padded []float64
	norms  []float64
}

// NewTuned constructs a Tuned estimator whose twelve lanes each analyse
// length round(FS/freq(lowestMIDI+i)) samples, per spec.md §4.F.
func NewTuned(fs float64, n, lowestMIDI int) *Tuned {
	t := &Tuned{n: n, lowestMIDI: lowestMIDI}
	for i := 0; i < 12; i++ {
		freq := note.FreqFromMIDI(lowestMIDI + i)
		length := int(fs/freq + 0.5)
		if length < 2 {
			length = 2
		}
		w := make([]float64, length)
		window.Generate(window.BlackmanNuttall, w)
		t.lanes[i] = tunedLane{
			length: length,
			fft:    fourier.NewFFT(length),
			window: w,
			padded: make([]float64, length),
			norms:  make([]float64, length/2+1),
		}
	}
	return t
}

func (t *Tuned) FrameSize() int {
	return t.n
}

// Perform windows and transforms the tail buf[N-L_i:N] for each of the
// twelve lanes and selects the MIDI number of the loudest (highest
// total-power) lane.
func (t *Tuned) Perform(buf []float32) ([]note.Event, Snapshot, error) {
	bestMIDI := t.lowestMIDI
	bestPower := -1.0

	for i, lane := range t.lanes {
		tail := buf[len(buf)-lane.length:]
		for j, s := range tail {
			lane.padded[j] = float64(s) * lane.window[j]
		}
		spec := lane.fft.Coefficients(nil, lane.padded)
		_, totalPower := spectrum.NormsWithPower(lane.norms, spec)
		if totalPower > bestPower {
			bestPower = totalPower
			bestMIDI = t.lowestMIDI + i
		}
	}

	freq := note.FreqFromMIDI(bestMIDI)
	n := note.FromFreqAmp(freq, bestPower)
	ev := note.Event{Note: n, Offset: 0, Length: t.n, Confidence: note.NoConfidence}
	return []note.Event{ev}, Snapshot{}, nil
}
