package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWaveGeneratorOverlapContinuity(t *testing.T) {
	// spec.md §8 invariant 7: the next frame's first N-k' samples equal
	// the current frame's last N-k' samples.
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(8, 64).Draw(rt, "n")
		ratio := rapid.Float64Range(0.5, 0.95).Draw(rt, "ratio")

		g := NewWaveGenerator(8000, 440, PolicyConfig{Policy: FixedRatio, OverlapRatio: ratio})
		buf := make([]float32, n)

		k1, err := g.GetFrame(buf)
		require.NoError(rt, err)
		require.GreaterOrEqual(rt, k1, 1)
		require.LessOrEqual(rt, k1, n)

		prevTail := append([]float32(nil), buf...)

		k2, err := g.GetFrame(buf)
		require.NoError(rt, err)

		old := n - k2
		for i := 0; i < old; i++ {
			assert.Equal(rt, prevTail[i+k2], buf[i])
		}
	})
}

func TestAudioFileSeekRecomputesOverlap(t *testing.T) {
	// spec.md §8 S5: N=8, OVERLAP_RATIO=0.5, content s[i]=i (1-indexed
	// sample values, so samples[idx] holds idx+1). After reading one
	// frame and seeking +2, the next frame's first 4 samples equal
	// {3,4,5,6} and last 4 equal {7,8,9,10}.
	samples := make([]float32, 16)
	for i := range samples {
		samples[i] = float32(i + 1)
	}

	a := &AudioFile{
		overlapState: newOverlapState(PolicyConfig{Policy: FixedRatio, OverlapRatio: 0.5}),
		samples:      samples,
	}

	buf := make([]float32, 8)
	k, err := a.GetFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, k)
	assert.Equal(t, []float32{0, 0, 0, 0, 1, 2, 3, 4}, buf)

	a.Seek(2)

	k, err = a.GetFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, k)
	assert.Equal(t, []float32{3, 4, 5, 6, 7, 8, 9, 10}, buf)
}

func TestIncrementPlayedSamplesMonotonic(t *testing.T) {
	inc := NewIncrement(PolicyConfig{Policy: FixedRatio, OverlapRatio: 0.5})
	buf := make([]float32, 8)

	var prev uint64
	for i := 0; i < 5; i++ {
		k, err := inc.GetFrame(buf)
		require.NoError(t, err)
		assert.Greater(t, k, 0)
		assert.LessOrEqual(t, k, len(buf))
		assert.Equal(t, prev+uint64(k), inc.PlayedSamples())
		prev = inc.PlayedSamples()
	}
}
