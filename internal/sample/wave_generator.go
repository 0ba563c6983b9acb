package sample

import "math"

// MinFrequencyHz is the lower bound pitch_down clamps WaveGenerator to,
// per spec.md §4.D.
const MinFrequencyHz = 1.0

// PitchStepHz is the +-5 Hz step pitch_up/pitch_down apply.
const PitchStepHz = 5.0

// WaveGenerator synthesizes a continuous sine at a mutable frequency,
// maintaining phase across frames, grounded on
// original_source/src/sample_getter/wave_generator.cpp.
type WaveGenerator struct {
	overlapState
	fs    float64
	freq  float64
	phase float64 // radians, [0, 2*pi)
}

// NewWaveGenerator constructs a source producing a freqHz sine at sample
// rate fs using cfg's overlap policy (must be FixedRatio).
func NewWaveGenerator(fs, freqHz float64, cfg PolicyConfig) *WaveGenerator {
	return &WaveGenerator{
		overlapState: newOverlapState(cfg),
		fs:           fs,
		freq:         freqHz,
	}
}

func (w *WaveGenerator) GetFrame(buf []float32) (int, error) {
	n := len(buf)
	k := w.nextK(n)
	old := n - k

	shiftBuffer(buf, old)

	step := 2 * math.Pi * w.freq / w.fs
	for i := old; i < n; i++ {
		buf[i] = float32(math.Sin(w.phase))
		w.phase += step
		if w.phase >= 2*math.Pi {
			w.phase -= 2 * math.Pi
		}
	}

	w.advance(k)
	return k, nil
}

func (w *WaveGenerator) PitchUp() {
	w.freq += PitchStepHz
}

func (w *WaveGenerator) PitchDown() {
	w.freq = math.Max(MinFrequencyHz, w.freq-PitchStepHz)
}
