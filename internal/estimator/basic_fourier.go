package estimator

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/digistring/digistring/internal/note"
	"github.com/digistring/digistring/internal/spectrum"
)

// BasicFourier is the simplest estimator in the original engine: a
// single un-padded, un-windowed (rectangle) DFT of length N, peak-picked
// with AllMaxPeaks and selected by loudest peak. Supplemented from
// original_source/src/estimators/basic_fourier.cpp — named in spec.md §2's
// component table but not detailed in §4.F; included here as a
// low-overhead baseline and integration test of the shared spectrum
// primitives (SPEC_FULL.md §4.F expansion).
type BasicFourier struct {
	fs    float64
	n     int
	fft   *fourier.FFT
	input []float64
	norms []float64
}

// NewBasicFourier constructs a BasicFourier estimator for n-sample frames.
func NewBasicFourier(fs float64, n int) *BasicFourier {
	return &BasicFourier{
		fs:    fs,
		n:     n,
		fft:   fourier.NewFFT(n),
		input: make([]float64, n),
		norms: make([]float64, n/2+1),
	}
}

func (b *BasicFourier) FrameSize() int {
	return b.n
}

func (b *BasicFourier) Perform(buf []float32) ([]note.Event, Snapshot, error) {
	for i, s := range buf[:b.n] {
		b.input[i] = float64(s)
	}

	spec := b.fft.Coefficients(nil, b.input)
	maxNorm, _ := spectrum.NormsWithPower(b.norms, spec)

	peaks := spectrum.AllMaxPeaks(b.norms, PeakThreshold, SNRThreshold, maxNorm)
	if len(peaks) == 0 {
		return nil, Snapshot{}, nil
	}

	loudest := peaks[0]
	for _, p := range peaks[1:] {
		if p.Value > loudest.Value {
			loudest = p
		}
	}

	binSpacing := b.fs / float64(b.n)
	freq := float64(loudest.Index) * binSpacing
	n := note.FromFreqAmp(freq, loudest.Value)

	ev := note.Event{Note: n, Offset: 0, Length: b.n, Confidence: note.NoConfidence}
	return []note.Event{ev}, Snapshot{}, nil
}
