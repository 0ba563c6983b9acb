package cache

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInitRejectsNonDirectory(t *testing.T) {
	Reset()
	f := t.TempDir() + "/not-a-dir"
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	err := Init(f)
	assert.Error(t, err)
	Reset()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	// spec.md §8 invariant 6: save(k,a,w) then load(k,a) returns w
	// element-wise to at least 6 significant digits.
	Reset()
	require.NoError(t, Init(t.TempDir()))
	defer Reset()

	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 64).Draw(rt, "size")
		attenuation := rapid.Float64Range(45, 100).Draw(rt, "attenuation")
		coeffs := rapid.SliceOfN(rapid.Float64Range(-1, 1), size, size).Draw(rt, "coeffs")

		Save(size, attenuation, coeffs)
		loaded, ok := Load(size, attenuation)
		require.True(rt, ok)
		require.Len(rt, loaded, size)
		for i := range coeffs {
			assert.InDelta(rt, coeffs[i], loaded[i], 1e-6)
		}
	})
}

func TestLoadAbsentWithoutMatchingFile(t *testing.T) {
	Reset()
	require.NoError(t, Init(t.TempDir()))
	defer Reset()

	_, ok := Load(16384, 50.0)
	assert.False(t, ok)
}

func TestFilenameThreeDecimalDigits(t *testing.T) {
	assert.Equal(t, "dolph_window_16384_50.000.txt", Filename(16384, 50))
	assert.Equal(t, "dolph_window_1024_45.125.txt", Filename(1024, 45.125))
}
