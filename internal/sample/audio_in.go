package sample

import (
	"time"

	"github.com/digistring/digistring/internal/audiodevice"
	"github.com/digistring/digistring/internal/quitflag"
)

// dequeuePollInterval is the bounded-sleep granularity spec.md §9
// recommends for suspension via dequeue: "attempt dequeue, if empty sleep
// ~1ms, poll quit flag, repeat".
const dequeuePollInterval = time.Millisecond

// AudioIn dequeues from the OS audio input device, grounded on
// original_source/src/sample_getter/sample_getter.cpp's device-input
// variant and program.cpp's audio-in wiring. It is a blocking source and
// therefore always uses the fixed-ratio policy unless the caller opts
// into NonBlocking explicitly (non-blocking overlap is legal only here,
// per spec.md §4.D point 3).
type AudioIn struct {
	stream  *audiodevice.Stream
	cfg     PolicyConfig
	played  uint64
}

// NewAudioIn wraps an already-open duplex stream as a Source.
func NewAudioIn(stream *audiodevice.Stream, cfg PolicyConfig) *AudioIn {
	return &AudioIn{stream: stream, cfg: cfg}
}

func (a *AudioIn) GetFrame(buf []float32) (int, error) {
	n := len(buf)

	var k int
	if a.cfg.Policy == NonBlocking {
		q := a.stream.AvailableInput()
		k = nonBlockingNew(n, q, a.cfg.MinRatio, a.cfg.MaxRatio)
	} else {
		k = fixedRatioNew(n, a.cfg.OverlapRatio)
	}
	old := n - k

	shiftBuffer(buf, old)

	got := 0
	for got < k {
		if quitflag.Poll() {
			break
		}
		got += a.stream.DequeueInput(buf[old+got : n])
		if got < k {
			time.Sleep(dequeuePollInterval)
		}
	}

	a.played += uint64(k)
	return k, nil
}

func (a *AudioIn) PitchUp()   {}
func (a *AudioIn) PitchDown() {}

func (a *AudioIn) IsBlocking() bool {
	return a.cfg.Policy != NonBlocking
}

func (a *AudioIn) PlayedSamples() uint64 {
	return a.played
}
