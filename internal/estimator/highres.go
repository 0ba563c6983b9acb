package estimator

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/digistring/digistring/internal/logging"
	"github.com/digistring/digistring/internal/note"
	"github.com/digistring/digistring/internal/spectrum"
	"github.com/digistring/digistring/internal/window"
)

// HighRes is the central pitch estimator of spec.md §4.E: a windowed,
// zero-padded real-to-complex transform followed by Gaussian-envelope
// peak detection, log-space parabolic interpolation and harmonic-
// consistency note selection. Grounded line-for-line on
// original_source/src/estimators/highres.cpp.
type HighRes struct {
	fs            float64
	n             int // analysis window length
	m             int // zero-padded transform length, N*(1+Z)
	fft           *fourier.FFT
	windowCoefs   []float64
	dolphFailed   bool // permanent fallback flag once Dolph-Chebyshev fails once
	attenuationDB float64

	padded       []float64
	kernel       []float64
	norms        []float64
	envelope     []float64
	prevPower    float64
	havePrevPow  bool

	Selector Selector
	Filters  Filters
}

// NewHighRes constructs a HighRes estimator. Buffer allocation failure is
// not modeled (Go slices do not fail to allocate short of OOM, which
// panics); a non-positive attenuation is rejected as the Go analogue of
// spec.md §7's FatalInit "buffer allocation failed" class.
func NewHighRes(fs, attenuationDB float64) (*HighRes, error) {
	n := HighResFrameSize
	m := n * (1 + ZeroPadFactor)

	coefs, err := window.DolphChebyshevWindow(n, attenuationDB, true)
	dolphFailed := false
	if err != nil {
		logging.Warning("highres: Dolph-Chebyshev window unavailable, falling back to Blackman-Nuttall", "err", err)
		coefs = make([]float64, n)
		window.Generate(window.BlackmanNuttall, coefs)
		dolphFailed = true
	}

	kernelWidth := spectrum.KernelWidth(m, spectrum.KernelWidthFactor)

	h := &HighRes{
		fs:            fs,
		n:             n,
		m:             m,
		fft:           fourier.NewFFT(m),
		windowCoefs:   coefs,
		dolphFailed:   dolphFailed,
		attenuationDB: attenuationDB,
		padded:        make([]float64, m),
		kernel:        spectrum.GaussianKernel(kernelWidth, spectrum.DefaultSigma),
		norms:         make([]float64, m/2+1),
		envelope:      make([]float64, m/2+1),
		Selector:      LikeliestNote,
		Filters: Filters{
			LowHigh:     true,
			LowestNote:  LowestNoteMIDI,
			HighestNote: HighestNoteMIDI,
			Transient:   false,
		},
	}
	return h, nil
}

func (h *HighRes) FrameSize() int {
	return h.n
}

// Perform implements spec.md §4.E's nine-step pipeline.
func (h *HighRes) Perform(buf []float32) ([]note.Event, Snapshot, error) {
	// Step 1: window, with permanent-fallback retry on first failure.
	if !h.dolphFailed {
		coefs, err := window.DolphChebyshevWindow(h.n, h.attenuationDB, true)
		if err != nil {
			logging.Warning("highres: Dolph-Chebyshev window unavailable, switching to Blackman-Nuttall for remainder of process", "err", err)
			h.windowCoefs = make([]float64, h.n)
			window.Generate(window.BlackmanNuttall, h.windowCoefs)
			h.dolphFailed = true
		} else {
			h.windowCoefs = coefs
		}
	}

	for i := 0; i < h.n; i++ {
		h.padded[i] = float64(buf[i]) * h.windowCoefs[i]
	}
	for i := h.n; i < h.m; i++ {
		h.padded[i] = 0
	}

	// Step 2: real-to-complex DFT of length M.
	spectrumC := h.fft.Coefficients(nil, h.padded)

	// Step 3: norms, max_norm, total_power.
	maxNorm, totalPower := spectrum.NormsWithPower(h.norms, spectrumC)

	// Step 4: Gaussian envelope.
	spectrum.GaussianEnvelope(h.envelope, h.norms, h.kernel)

	snap := Snapshot{
		Spectrum:   append([]float64(nil), h.norms...),
		Envelope:   append([]float64(nil), h.envelope...),
		Waveform:   append([]float32(nil), buf[:h.n]...),
		BinSpacing: h.fs / float64(h.m),
	}

	// Step 5: peak picking, only if total power clears the threshold.
	if totalPower <= PowerThreshold {
		h.prevPower = totalPower
		h.havePrevPow = true
		return nil, snap, nil
	}

	peaks := spectrum.EnvelopePeaks(h.norms, h.envelope, EnvelopeMin)
	if len(peaks) == 0 {
		h.prevPower = totalPower
		h.havePrevPow = true
		return nil, snap, nil
	}

	// Step 6: log-space parabolic interpolation into candidate notes.
	candidates := make([]note.Note, 0, len(peaks))
	binSpacing := h.fs / float64(h.m)
	for _, p := range peaks {
		if p.Index == 0 || p.Index >= len(h.norms)-1 {
			logging.Warning("highres: peak on first/last bin skipped", "index", p.Index)
			continue
		}
		a, b, c := h.norms[p.Index-1], h.norms[p.Index], h.norms[p.Index+1]
		offset, amp := spectrum.InterpolateParabolic(a, b, c, spectrum.Log, 0)
		freq := (float64(p.Index) + offset) * binSpacing
		candidates = append(candidates, note.FromFreqAmp(freq, amp))
	}
	snap.Peaks = candidates

	if len(candidates) == 0 {
		h.prevPower = totalPower
		h.havePrevPow = true
		return nil, snap, nil
	}

	// Step 7: note selection.
	selected, ok := selectNote(candidates, h.Selector)
	h.prevPower = totalPower
	h.havePrevPow = true
	if !ok || selected.Amp <= 0 {
		return nil, snap, nil
	}

	// Step 8: optional filters.
	if !h.Filters.Apply(selected, totalPower) {
		return nil, snap, nil
	}

	// Step 9: exactly one event spanning the whole window.
	ev := note.Event{Note: selected, Offset: 0, Length: h.n, Confidence: note.NoConfidence}
	return []note.Event{ev}, snap, nil
}

// selectNote implements spec.md §4.E step 7 and the three named
// alternative policies.
func selectNote(candidates []note.Note, sel Selector) (note.Note, bool) {
	if len(candidates) == 0 {
		return note.Note{}, false
	}
	if len(candidates) == 1 {
		if candidates[0].Amp > 0 {
			return candidates[0], true
		}
		return note.Note{}, false
	}

	switch sel {
	case LoudestPeak:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Amp > best.Amp {
				best = c
			}
		}
		return best, true

	case LowestPeak:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Freq < best.Freq {
				best = c
			}
		}
		return best, true

	case MostOvertonePower:
		bestIdx, bestPower := 0, -1.0
		for i := range candidates {
			power := overtonePower(candidates, i)
			if power > bestPower {
				bestPower = power
				bestIdx = i
			}
		}
		return candidates[bestIdx], true

	default: // LikeliestNote
		bestIdx, bestCount := 0, -1
		for i := range candidates {
			count := harmonicCount(candidates, i)
			if count > bestCount {
				bestCount = count
				bestIdx = i
			}
		}
		return candidates[bestIdx], true
	}
}

// harmonicCount counts candidates j>i whose frequency is within
// OvertoneErrorCents of the i-th candidate's theoretical harmonic,
// spec.md §4.E step 7.
func harmonicCount(candidates []note.Note, i int) int {
	count := 0
	fundamental := candidates[i].Freq
	for j := i + 1; j < len(candidates); j++ {
		ratio := math.Round(candidates[j].Freq / fundamental)
		if ratio < 1 {
			continue
		}
		expected := fundamental * ratio
		cents := math.Abs(1200 * math.Log2(candidates[j].Freq/expected))
		if cents <= OvertoneErrorCents {
			count++
		}
	}
	return count
}

// overtonePower sums the amplitudes of candidates matching candidate i's
// harmonic series, for the MostOvertonePower selector.
func overtonePower(candidates []note.Note, i int) float64 {
	fundamental := candidates[i].Freq
	power := candidates[i].Amp
	for j := range candidates {
		if j == i {
			continue
		}
		ratio := math.Round(candidates[j].Freq / fundamental)
		if ratio < 1 {
			continue
		}
		expected := fundamental * ratio
		cents := math.Abs(1200 * math.Log2(candidates[j].Freq/expected))
		if cents <= OvertoneErrorCents {
			power += candidates[j].Amp
		}
	}
	return power
}
