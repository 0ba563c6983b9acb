package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHannShape(t *testing.T) {
	dst := make([]float64, 9)
	Generate(Hann, dst)

	assert.InDelta(t, 0, dst[0], 1e-9)
	assert.InDelta(t, 1, dst[4], 1e-9) // centre sample is the peak
	assert.InDelta(t, 0, dst[8], 1e-9)
}

func TestGenerateRectangleIsAllOnes(t *testing.T) {
	dst := make([]float64, 16)
	Generate(Rectangle, dst)
	for _, v := range dst {
		assert.Equal(t, 1.0, v)
	}
}

func TestDolphChebyshevRejectsWithoutCache(t *testing.T) {
	_, err := DolphChebyshevWindow(64, 50, true)
	require.ErrorIs(t, err, ErrCacheUnavailable)
}

func TestDolphChebyshevNormalisedToUnitPeak(t *testing.T) {
	w, err := DolphChebyshevWindow(64, 50, false)
	require.NoError(t, err)

	peak := 0.0
	for _, v := range w {
		if v > peak {
			peak = v
		}
	}
	assert.InDelta(t, 1.0, peak, 1e-6)
}
