package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicFourierSilenceYieldsNoEvents(t *testing.T) {
	const n = 1024
	b := NewBasicFourier(48000, n)
	assert.Equal(t, n, b.FrameSize())

	events, _, err := b.Perform(make([]float32, n))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestBasicFourierFindsBinExactTone(t *testing.T) {
	// bin 256 of a 16384-point DFT at 96kHz lands exactly on 1500Hz, so
	// no peak interpolation error is in play.
	const fs = 96000.0
	const n = HighResFrameSize
	const bin = 256

	b := NewBasicFourier(fs, n)
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(math.Cos(2 * math.Pi * float64(bin) * float64(i) / float64(n)))
	}

	events, _, err := b.Perform(buf)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.InDelta(t, fs/n*bin, events[0].Note.Freq, 1e-6)
	assert.Equal(t, n, events[0].Length)
}

func TestTunedFrameSizeMatchesConstructor(t *testing.T) {
	const n = HighResFrameSize
	tu := NewTuned(96000, n, LowestNoteMIDI)
	assert.Equal(t, n, tu.FrameSize())
}

func TestTunedPerformSelectsLowestLaneOnSilence(t *testing.T) {
	// every lane has zero total power, so the first (lowest) lane wins the
	// strict ">" comparison in Perform's selection loop.
	const n = HighResFrameSize
	tu := NewTuned(96000, n, LowestNoteMIDI)

	events, _, err := tu.Perform(make([]float32, n))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, LowestNoteMIDI, events[0].Note.MIDINumber)
	assert.Equal(t, n, events[0].Length)
}
