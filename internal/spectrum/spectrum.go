// Package spectrum implements the spectrum-domain primitives of spec.md
// §4.C: norms, the Gaussian envelope, the three peak pickers and parabolic
// interpolation, grounded on original_source/src/estimators/highres.cpp
// (calc_envelope, all_max, envelope_peaks, min_dy_peaks, interpolate_max).
package spectrum

import (
	"math"
	"math/cmplx"
)

// KernelWidthFactor and Sigma are the Gaussian-envelope defaults of
// original_source/src/config/transcription.h.
const (
	KernelWidthFactor = 0.000478
	DefaultSigma      = 1.2
)

// Norms computes norms[i] = sqrt(real(c[i])^2 + imag(c[i])^2) into dst,
// which must have the same length as c.
func Norms(dst []float64, c []complex128) {
	for i, v := range c {
		dst[i] = cmplx.Abs(v)
	}
}

// NormsWithPower is Norms plus the secondary (max_norm, total_power)
// summary spec.md §4.C names.
func NormsWithPower(dst []float64, c []complex128) (maxNorm, totalPower float64) {
	for i, v := range c {
		n := cmplx.Abs(v)
		dst[i] = n
		totalPower += n
		if n > maxNorm {
			maxNorm = n
		}
	}
	return maxNorm, totalPower
}

// DB converts a linear magnitude to the display-oriented dB variant of
// spec.md §4.C: 20*log10(1+magnitude).
func DB(magnitude float64) float64 {
	return 20 * math.Log10(1+magnitude)
}

// GaussianKernel builds a width-W Gaussian kernel, W = 2*mid+1, per
// spec.md §4.C: g[j] = exp(-pi*((j-mid)/(mid*sigma))^2).
func GaussianKernel(width int, sigma float64) []float64 {
	mid := width / 2
	k := make([]float64, width)
	for j := 0; j < width; j++ {
		x := (float64(j-mid)) / (float64(mid) * sigma)
		k[j] = math.Exp(-math.Pi * x * x)
	}
	return k
}

// KernelWidth returns W = max(1, round(m*factor)) rounded up to the next
// odd integer, spec.md §4.C's envelope-width derivation.
func KernelWidth(m int, factor float64) int {
	w := int(math.Max(1, math.Round(float64(m)*factor)))
	if w%2 == 0 {
		w++
	}
	return w
}

// GaussianEnvelope convolves norms with a Gaussian kernel into dst. At the
// borders the kernel is clipped to the available range and the remaining
// weights renormalised, matching spec.md §4.C's border handling.
func GaussianEnvelope(dst, norms, kernel []float64) {
	n := len(norms)
	width := len(kernel)
	mid := width / 2

	for i := 0; i < n; i++ {
		lo := i - mid
		hi := i + mid
		kLo := 0
		kHi := width - 1
		if lo < 0 {
			kLo = -lo
			lo = 0
		}
		if hi >= n {
			kHi = width - 1 - (hi - n + 1)
			hi = n - 1
		}

		var sum, weight float64
		for j, k := lo, kLo; j <= hi && k <= kHi; j, k = j+1, k+1 {
			sum += norms[j] * kernel[k]
			weight += kernel[k]
		}
		if weight > 0 {
			dst[i] = sum / weight
		}
	}
}

// Peak is a single detected spectral peak at bin index i.
type Peak struct {
	Index int
	Value float64
}

// AllMaxPeaks finds every strict local maximum above threshold, with an
// optional SNR gate (snr<=0 disables the gate).
func AllMaxPeaks(norms []float64, threshold, snr, maxNorm float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(norms)-1; i++ {
		if norms[i-1] < norms[i] && norms[i] > norms[i+1] && norms[i] > threshold {
			if snr > 0 && norms[i] <= snr*maxNorm {
				continue
			}
			peaks = append(peaks, Peak{Index: i, Value: norms[i]})
		}
	}
	return peaks
}

// EnvelopePeaks finds local maxima of norms that also clear the Gaussian
// envelope at the same index, starting at index 5 to skip DC/near-DC
// artefacts per spec.md §4.C.
func EnvelopePeaks(norms, envelope []float64, envelopeMin float64) []Peak {
	var peaks []Peak
	for i := 5; i < len(norms)-1; i++ {
		if norms[i-1] < norms[i] && norms[i] > norms[i+1] && envelope[i] > envelopeMin {
			peaks = append(peaks, Peak{Index: i, Value: norms[i]})
		}
	}
	return peaks
}

// MinDyPeaks performs the alternating peak/valley traversal of spec.md
// §4.C: a candidate peak is accepted only if its height above the
// preceding valley exceeds minPeakDy.
func MinDyPeaks(norms []float64, minPeakDy float64) []Peak {
	var peaks []Peak
	if len(norms) < 3 {
		return peaks
	}

	valley := norms[0]
	rising := false

	for i := 1; i < len(norms)-1; i++ {
		switch {
		case !rising && norms[i] > norms[i-1]:
			rising = true
		case rising && norms[i] < norms[i-1]:
			rising = false
			peakVal := norms[i-1]
			if peakVal-valley > minPeakDy {
				peaks = append(peaks, Peak{Index: i - 1, Value: peakVal})
			}
			valley = norms[i]
		case !rising && norms[i] < valley:
			valley = norms[i]
		}
	}

	return peaks
}

// Transform selects the value-space InterpolateParabolic operates in.
type Transform int

const (
	Linear Transform = iota
	Log
	Log2
	Log10
	DBTransform
	XQIFFT
)

// InterpolateParabolic performs parabolic peak interpolation on the triple
// (a,b,c), b the local maximum, per spec.md §4.C:
//
//	p = 0.5*(a-c)/(a-2b+c)   in (-0.5, 0.5)
//	amp = b - 0.25*(a-c)*p
//
// t selects the space the triple is transformed into before interpolating;
// exponent is only used when t == XQIFFT.
func InterpolateParabolic(a, b, c float64, t Transform, exponent float64) (offset, amp float64) {
	ta, tb, tc := a, b, c
	switch t {
	case Log:
		ta, tb, tc = math.Log(a), math.Log(b), math.Log(c)
	case Log2:
		ta, tb, tc = math.Log2(a), math.Log2(b), math.Log2(c)
	case Log10:
		ta, tb, tc = math.Log10(a), math.Log10(b), math.Log10(c)
	case DBTransform:
		ta, tb, tc = DB(a), DB(b), DB(c)
	case XQIFFT:
		ta, tb, tc = math.Pow(a, exponent), math.Pow(b, exponent), math.Pow(c, exponent)
	}

	denom := ta - 2*tb + tc
	if denom == 0 {
		return 0, b
	}

	p := 0.5 * (ta - tc) / denom
	interpAmp := tb - 0.25*(ta-tc)*p

	// Un-transform the interpolated amplitude back to linear space so
	// callers always receive a linear-magnitude Note.Amp.
	switch t {
	case Log:
		interpAmp = math.Exp(interpAmp)
	case Log2:
		interpAmp = math.Exp2(interpAmp)
	case Log10:
		interpAmp = math.Pow(10, interpAmp)
	case DBTransform:
		interpAmp = math.Pow(10, interpAmp/20) - 1
	case XQIFFT:
		interpAmp = math.Pow(interpAmp, 1/exponent)
	}

	return p, interpAmp
}
