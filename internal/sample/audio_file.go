package sample

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/digistring/digistring/internal/logging"
	"github.com/digistring/digistring/internal/quitflag"
)

// AudioFile plays back a mono WAV file pre-decoded into a float buffer,
// grounded on original_source/src/sample_getter/audio_file.cpp. Sample
// rate must match FS; playback of bit-depths other than 32-bit float is
// linearly rescaled into [-1,1].
type AudioFile struct {
	overlapState
	samples []float32
	pos     int       // index of the next unread sample
	overlap []float32 // carried-forward region, recomputed from samples on Seek
}

// OpenAudioFile decodes path and returns an AudioFile source. fs is the
// required sample rate; a mismatch or a non-mono file is a FatalInit
// condition per spec.md §7, so it is returned as an error for the caller
// to treat as fatal.
func OpenAudioFile(path string, fs float64, cfg PolicyConfig) (*AudioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sample: opening %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("sample: %q is not a valid WAV file", path)
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("sample: %q is not mono (channels=%d)", path, dec.NumChans)
	}
	if float64(dec.SampleRate) != fs {
		return nil, fmt.Errorf("sample: %q sample rate %d does not match configured FS %v", path, dec.SampleRate, fs)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("sample: decoding %q: %w", path, err)
	}

	samples := make([]float32, len(buf.Data))
	bitDepth := dec.BitDepth
	for i, v := range buf.Data {
		samples[i] = rescaleSample(int32(v), bitDepth)
	}

	return &AudioFile{overlapState: newOverlapState(cfg), samples: samples}, nil
}

// rescaleSample converts a decoded PCM sample to [-1,1]. 24-bit-in-32-bit
// payloads (bitDepth reported as 24 but go-audio widens to an int32 word)
// use (value>>8)/(2^23-1) per spec.md §9's resolved ambiguity
// (SPEC_FULL.md Open Question 2); a nonzero low byte signals true 32-bit
// PCM and is logged as a transient warning rather than silently truncated.
func rescaleSample(v int32, bitDepth int) float32 {
	switch bitDepth {
	case 16:
		return float32(v) / float32(1<<15-1)
	case 24:
		if v&0xFF != 0 {
			logging.Warning("sample: 24-bit WAV sample has nonzero low byte, may be true 32-bit PCM")
		}
		return float32(v>>8) / float32(1<<23-1)
	case 32:
		return float32(v) / float32(1<<31-1)
	default:
		return float32(v) / float32(int64(1)<<(bitDepth-1)-1)
	}
}

func (a *AudioFile) GetFrame(buf []float32) (int, error) {
	n := len(buf)
	k := a.nextK(n)
	old := n - k

	if len(a.overlap) != old {
		resized := make([]float32, old)
		copy(resized, a.overlap)
		a.overlap = resized
	}

	copy(buf[:old], a.overlap)

	for i := old; i < n; i++ {
		if a.pos < len(a.samples) {
			buf[i] = a.samples[a.pos]
		} else {
			buf[i] = 0
			quitflag.Set()
		}
		a.pos++
	}

	copy(a.overlap, buf[n-old:n])

	return k, nil
}

// Seek moves the read position by deltaSamples (may be negative), clamped
// to the file bounds, and rewrites the overlap buffer from the file
// content at the new position, matching
// original_source/src/sample_getter/audio_file.cpp's seek(): a position
// before the start zero-fills the overlap, a position past the end sets
// the quit flag, and anywhere else the overlap is recopied from samples
// immediately preceding the new position (zero-padding the part that
// would fall before sample 0).
func (a *AudioFile) Seek(deltaSamples int) {
	a.pos += deltaSamples
	if a.pos <= 0 {
		a.pos = 0
		for i := range a.overlap {
			a.overlap[i] = 0
		}
		return
	}
	if a.pos > len(a.samples) {
		a.pos = len(a.samples)
		quitflag.Set()
		return
	}

	old := len(a.overlap)
	if old == 0 {
		return
	}
	needed := old - a.pos
	if needed > 0 {
		for i := 0; i < needed; i++ {
			a.overlap[i] = 0
		}
		copy(a.overlap[needed:], a.samples[:a.pos])
	} else {
		copy(a.overlap, a.samples[a.pos-old:a.pos])
	}
}

func (a *AudioFile) PlayedSamples() uint64 {
	return uint64(a.pos)
}

func (a *AudioFile) PitchUp()   {}
func (a *AudioFile) PitchDown() {}
