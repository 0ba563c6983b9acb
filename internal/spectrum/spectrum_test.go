package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestInterpolateParabolicBounds(t *testing.T) {
	// spec.md §8 invariant 5: for any triple (a,b,c) with b>a, b>c, the
	// interpolated offset lands in (-0.5, 0.5).
	rapid.Check(t, func(rt *rapid.T) {
		b := rapid.Float64Range(0.5, 10).Draw(rt, "b")
		a := rapid.Float64Range(0.01, b-0.001).Draw(rt, "a")
		c := rapid.Float64Range(0.01, b-0.001).Draw(rt, "c")

		offset, amp := InterpolateParabolic(a, b, c, Linear, 0)

		assert.Greater(t, offset, -0.5)
		assert.Less(t, offset, 0.5)
		assert.Greater(t, amp, 0.0)
	})
}

func TestNormsWithPower(t *testing.T) {
	c := []complex128{complex(3, 4), complex(0, 0), complex(1, 0)}
	dst := make([]float64, len(c))
	maxNorm, totalPower := NormsWithPower(dst, c)

	assert.InDelta(t, 5.0, maxNorm, 1e-9)
	assert.InDelta(t, 6.0, totalPower, 1e-9)
	assert.Equal(t, []float64{5, 0, 1}, dst)
}

func TestGaussianEnvelopeBorderNormalisation(t *testing.T) {
	norms := []float64{1, 2, 3, 2, 1}
	kernel := GaussianKernel(5, DefaultSigma)
	env := make([]float64, len(norms))
	GaussianEnvelope(env, norms, kernel)

	for _, v := range env {
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestKernelWidthIsOdd(t *testing.T) {
	for _, m := range []int{100, 1000, 81920} {
		w := KernelWidth(m, KernelWidthFactor)
		assert.Equal(t, 1, w%2)
		assert.GreaterOrEqual(t, w, 1)
	}
}

func TestAllMaxPeaksFindsStrictLocalMaxima(t *testing.T) {
	norms := []float64{0, 1, 0, 2, 0, 3, 0}
	peaks := AllMaxPeaks(norms, 0.5, 0, 3)
	assert.Len(t, peaks, 3)
}

func TestMinDyPeaksRejectsShallowPeaks(t *testing.T) {
	norms := []float64{0, 0.1, 0, 5, 0}
	peaks := MinDyPeaks(norms, 1.0)
	assert.Len(t, peaks, 1)
	assert.Equal(t, 3, peaks[0].Index)
}
