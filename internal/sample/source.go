// Package sample implements the sample-source abstraction of spec.md §4.D:
// a unified provider of fixed-size frames with two overlap policies,
// grounded on original_source/src/sample_getter/*.cpp.
package sample

import "math"

// Source is the capability set every variant exposes: spec.md §4.D's
// {get_frame, pitch_up, pitch_down, is_blocking, played_samples}.
type Source interface {
	// GetFrame fills buf (length N) with the next analysis frame and
	// returns the count of newly produced samples, k in [1,N]. The
	// remaining N-k samples are left over from the previous call.
	GetFrame(buf []float32) (k int, err error)
	PitchUp()
	PitchDown()
	IsBlocking() bool
	PlayedSamples() uint64
}

// Policy selects one of the two mutually exclusive overlap strategies of
// spec.md §4.D, chosen once at construction (the original's compile-time
// switch becomes a constructor parameter here).
type Policy int

const (
	// FixedRatio carries N - floor(N*OverlapRatio) samples forward every
	// frame; it applies to every source variant.
	FixedRatio Policy = iota
	// NonBlocking carries forward based on how much input is available
	// without blocking; only sources that can report that (AudioIn) may
	// use it.
	NonBlocking
)

// PolicyConfig bundles the three ratios spec.md §4.D names.
type PolicyConfig struct {
	Policy       Policy
	OverlapRatio float64 // fixed-ratio: N-k = floor(N*OverlapRatio)
	MinRatio     float64 // non-blocking: lower clamp on k
	MaxRatio     float64 // non-blocking: upper clamp on k
}

// DefaultPolicyConfig matches original_source/src/config/audio.h's
// compile-time defaults.
var DefaultPolicyConfig = PolicyConfig{
	Policy:       FixedRatio,
	OverlapRatio: 0.95,
	MinRatio:     0.1,
	MaxRatio:     0.5,
}

// fixedRatioNew returns k for the fixed-ratio policy, clamped to [1,N-1].
func fixedRatioNew(n int, ratio float64) int {
	old := int(math.Floor(float64(n) * ratio))
	k := n - old
	return clampInt(k, 1, n-1)
}

// nonBlockingNew returns k for the non-blocking policy given q samples
// available without blocking, clamped per spec.md §4.D point 3.
func nonBlockingNew(n int, q int, minRatio, maxRatio float64) int {
	lo := int(math.Floor(float64(n) * minRatio))
	hi := int(math.Floor(float64(n) * maxRatio))
	k := clampInt(q, lo, hi)
	return clampInt(k, 1, n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// shiftBuffer shifts buf left by discarding its first `old` samples and
// leaves the tail ready to be filled with `len(buf)-old` new samples. It
// implements the overlap carry-forward every generator variant needs.
func shiftBuffer(buf []float32, old int) {
	if old <= 0 {
		return
	}
	copy(buf, buf[old:])
}

// overlapState is embedded by the synthetic generators (WaveGenerator,
// NoteGenerator, Increment) that always have input ready and so only ever
// use the fixed-ratio policy.
type overlapState struct {
	cfg     PolicyConfig
	played  uint64
}

func newOverlapState(cfg PolicyConfig) overlapState {
	return overlapState{cfg: cfg}
}

func (o *overlapState) nextK(n int) int {
	return fixedRatioNew(n, o.cfg.OverlapRatio)
}

func (o *overlapState) advance(k int) {
	o.played += uint64(k)
}

func (o *overlapState) PlayedSamples() uint64 {
	return o.played
}

func (o *overlapState) IsBlocking() bool {
	return false
}
