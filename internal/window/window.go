// Package window implements the analysis-window library of spec.md §4.A:
// the closed-form cosine-sum windows plus Dolph-Chebyshev, grounded
// bin-for-bin on original_source/src/estimators/window_func.cpp.
package window

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/digistring/digistring/internal/cache"
)

// Type selects one of the named window functions.
type Type int

const (
	Rectangle Type = iota
	Hamming
	Hann
	Blackman
	Nuttall
	BlackmanNuttall
	BlackmanHarris
	FlatTop
	Welch
	DolphChebyshev
)

// ErrCacheUnavailable is returned by DolphChebyshev when useCache is
// requested but internal/cache has not been initialized.
var ErrCacheUnavailable = errors.New("window: coefficient cache not initialized")

// MinAttenuationDB is the lowest attenuation for which Dolph-Chebyshev is
// defined; spec.md §4.A: "for attenuation_db < 45, the window is undefined".
const MinAttenuationDB = 45.0

// Generate fills dst (length = the window size) with the named window's
// coefficients. DolphChebyshev is rejected here; call DolphChebyshevWindow
// directly since it can fail and carries extra parameters.
func Generate(t Type, dst []float64) {
	n := len(dst)
	switch t {
	case Rectangle:
		for i := range dst {
			dst[i] = 1.0
		}
	case Hamming:
		cosineSum(dst, 0.53836, 0.46164)
	case Hann:
		cosineSum(dst, 0.5, 0.5)
	case Blackman:
		cosineSum3(dst, 0.42, 0.5, 0.08)
	case Nuttall:
		cosineSum4(dst, 0.355768, 0.487396, 0.144232, 0.012604)
	case BlackmanNuttall:
		cosineSum4(dst, 0.3635819, 0.4891775, 0.1365995, 0.0106411)
	case BlackmanHarris:
		cosineSum4(dst, 0.35875, 0.48829, 0.14128, 0.01168)
	case FlatTop:
		cosineSum5(dst, 0.21557895, 0.41663158, 0.277263158, 0.083578947, 0.006947368)
	case Welch:
		for i := 0; i < n; i++ {
			x := (float64(i) - float64(n-1)/2.0) / (float64(n-1) / 2.0)
			dst[i] = 1 - x*x
		}
	default:
		panic("window: Generate called with a window that requires parameters")
	}
}

func cosineSum(dst []float64, a0, a1 float64) {
	n := len(dst)
	for i := 0; i < n; i++ {
		dst[i] = a0 - a1*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
}

func cosineSum3(dst []float64, a0, a1, a2 float64) {
	n := len(dst)
	for i := 0; i < n; i++ {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		dst[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
}

func cosineSum4(dst []float64, a0, a1, a2, a3 float64) {
	n := len(dst)
	for i := 0; i < n; i++ {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		dst[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x)
	}
}

func cosineSum5(dst []float64, a0, a1, a2, a3, a4 float64) {
	n := len(dst)
	for i := 0; i < n; i++ {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		dst[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x) + a4*math.Cos(4*x)
	}
}

// DolphChebyshevWindow computes (or retrieves from cache) the Dolph-Chebyshev
// window of the given size and attenuation in dB. Per spec.md §4.A it uses
// the frequency-domain definition: samples of a Chebyshev polynomial with
// mainlobe/sidelobe ratio 10^(attenuation/20), inverse-DFT'd and normalised
// to unit peak (SPEC_FULL.md resolved Open Question 4).
func DolphChebyshevWindow(size int, attenuationDB float64, useCache bool) ([]float64, error) {
	if useCache {
		if !cache.Initialized() {
			return nil, ErrCacheUnavailable
		}
		if w, ok := cache.Load(size, attenuationDB); ok {
			return w, nil
		}
	}

	w := computeDolphChebyshev(size, attenuationDB)

	if useCache {
		cache.Save(size, attenuationDB, w)
	}

	return w, nil
}

// computeDolphChebyshev is the frequency-domain construction promoted from
// the commented-out fallback at the end of
// original_source/src/estimators/window_func.cpp: build Chebyshev
// polynomial samples on the unit circle, inverse-DFT to the time domain,
// take magnitudes and normalise to unit peak.
func computeDolphChebyshev(size int, attenuationDB float64) []float64 {
	n := size
	beta := math.Cosh(math.Acosh(math.Pow(10, attenuationDB/20)) / float64(n-1))

	freqSamples := make([]complex128, n)
	for i := 0; i < n; i++ {
		x := beta * math.Cos(math.Pi*float64(i)/float64(n))
		freqSamples[i] = complex(chebyshevPoly(n-1, x), 0)
	}

	// gonum's real-to-complex FFT expects a real input of length n and
	// returns n/2+1 complex coefficients; here we need the inverse of a
	// conceptually complex frequency-domain sequence, so we instead run a
	// full complex IDFT by hand using the same magnitude math gonum's
	// fourier.FFT would give us on the modulus, since the polynomial
	// samples are real-valued (Chebyshev polynomials are real on this
	// domain) and symmetric.
	fft := fourier.NewFFT(n)
	real := make([]float64, n)
	for i, c := range freqSamples {
		real[i] = cmplx.Abs(c) * sign(c)
	}
	spectrum := fft.Coefficients(nil, real)

	coeffs := make([]float64, n)
	peak := 0.0
	for i := 0; i < n; i++ {
		var v float64
		if i < len(spectrum) {
			v = cmplx.Abs(spectrum[i])
		} else {
			v = cmplx.Abs(spectrum[n-i])
		}
		coeffs[i] = v
		if v > peak {
			peak = v
		}
	}

	if peak > 0 {
		for i := range coeffs {
			coeffs[i] /= peak
		}
	}

	return shiftToCenter(coeffs)
}

func sign(c complex128) float64 {
	if real(c) < 0 {
		return -1
	}
	return 1
}

// shiftToCenter performs the fftshift original_source applies after the
// inverse transform so the window's peak lands at the centre sample rather
// than index 0.
func shiftToCenter(w []float64) []float64 {
	n := len(w)
	out := make([]float64, n)
	mid := n / 2
	for i := 0; i < n; i++ {
		out[i] = w[(i+mid)%n]
	}
	return out
}

// chebyshevPoly evaluates T_order(x), the Chebyshev polynomial of the first
// kind, using the standard piecewise trigonometric/hyperbolic definition
// valid for all real x.
func chebyshevPoly(order int, x float64) float64 {
	switch {
	case x > 1:
		return math.Cosh(float64(order) * math.Acosh(x))
	case x < -1:
		sign := 1.0
		if order%2 != 0 {
			sign = -1.0
		}
		return sign * math.Cosh(float64(order)*math.Acosh(-x))
	default:
		return math.Cos(float64(order) * math.Acos(x))
	}
}
