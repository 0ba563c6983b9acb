// Package audiodevice wraps github.com/gordonklaus/portaudio for device
// enumeration, opening, and the enqueue/dequeue primitives the core thread
// uses to talk to the OS-owned audio thread (spec.md §5). The dependency is
// grounded on rayboyd-audio-engine's go.mod (other_examples), the pack
// manifest that pairs gordonklaus/portaudio with gonum and go-audio/wav the
// way this module does.
package audiodevice

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/digistring/digistring/internal/logging"
)

// DeviceBufferSamples is the launch-time device buffer size requested per
// spec.md §6 ("A launch-time device buffer of 64 samples is requested").
const DeviceBufferSamples = 64

// Init starts the portaudio host API. Must be called once before any
// other function in this package; Terminate releases it.
func Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audiodevice: initializing portaudio: %w", err)
	}
	return nil
}

// Terminate shuts down the portaudio host API.
func Terminate() {
	if err := portaudio.Terminate(); err != nil {
		logging.Warning("audiodevice: error terminating portaudio", "err", err)
	}
}

// Device describes one enumerated input or output device, for `--audio`.
type Device struct {
	Name       string
	MaxInputs  int
	MaxOutputs int
	Default    bool
}

// ListDevices enumerates every device portaudio can see, for the `--audio`
// CLI collaborator (spec.md §6).
func ListDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audiodevice: enumerating devices: %w", err)
	}

	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		d := Device{
			Name:       info.Name,
			MaxInputs:  info.MaxInputChannels,
			MaxOutputs: info.MaxOutputChannels,
		}
		if defaultIn != nil && info.Name == defaultIn.Name {
			d.Default = true
		}
		if defaultOut != nil && info.Name == defaultOut.Name {
			d.Default = true
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// findDeviceByName looks up a device by its exact name, for --audio_in /
// --audio_out (spec.md §6).
func findDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return nil, fmt.Errorf("audiodevice: no device named %q", name)
}

// ring is a single-producer single-consumer float32 ring buffer used as
// the enqueue/dequeue primitive between the portaudio callback (its own
// OS thread) and the core thread, matching spec.md §5's "atomic
// enqueue/dequeue primitives".
type ring struct {
	mu   sync.Mutex
	buf  []float32
	head int
	tail int
	size int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]float32, capacity)}
}

func (r *ring) push(samples []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range samples {
		if r.size == len(r.buf) {
			break
		}
		r.buf[r.tail] = s
		r.tail = (r.tail + 1) % len(r.buf)
		r.size++
		n++
	}
	return n
}

func (r *ring) pop(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for n < len(dst) && r.size > 0 {
		dst[n] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
		r.size--
		n++
	}
	return n
}

func (r *ring) depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Stream wraps a single duplex portaudio.Stream, exposing the ring-buffer
// enqueue/dequeue surface the program loop and AudioIn source need.
type Stream struct {
	stream *portaudio.Stream
	in     *ring
	out    *ring
}

// Open opens a mono duplex stream at fs Hz with the device-buffer frame
// size above. inName/outName select devices by exact name; empty strings
// select the system default. Opening with unavailable parameters is a
// FatalInit condition per spec.md §7.
func Open(fs float64, inName, outName string, wantInput, wantOutput bool) (*Stream, error) {
	var inDev, outDev *portaudio.DeviceInfo
	var err error

	if wantInput {
		if inName != "" {
			if inDev, err = findDeviceByName(inName); err != nil {
				return nil, err
			}
		} else if inDev, err = portaudio.DefaultInputDevice(); err != nil {
			return nil, fmt.Errorf("audiodevice: no default input device: %w", err)
		}
	}
	if wantOutput {
		if outName != "" {
			if outDev, err = findDeviceByName(outName); err != nil {
				return nil, err
			}
		} else if outDev, err = portaudio.DefaultOutputDevice(); err != nil {
			return nil, fmt.Errorf("audiodevice: no default output device: %w", err)
		}
	}

	s := &Stream{in: newRing(DeviceBufferSamples * 64), out: newRing(DeviceBufferSamples * 64)}

	var inChans, outChans int
	if wantInput {
		inChans = 1
	}
	if wantOutput {
		outChans = 1
	}

	params := portaudio.LowLatencyParameters(inDev, outDev)
	params.Input.Channels = inChans
	params.Output.Channels = outChans
	params.SampleRate = fs
	params.FramesPerBuffer = DeviceBufferSamples

	callback := func(in, out []float32) {
		if wantInput {
			s.in.push(in)
		}
		if wantOutput {
			n := s.out.pop(out)
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
		}
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("audiodevice: opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("audiodevice: starting stream: %w", err)
	}

	s.stream = stream
	return s, nil
}

// Close stops and releases the underlying portaudio stream.
func (s *Stream) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		logging.Warning("audiodevice: error stopping stream", "err", err)
	}
	return s.stream.Close()
}

// DequeueInput copies up to len(dst) newly captured samples into dst,
// returning the count actually copied.
func (s *Stream) DequeueInput(dst []float32) int {
	return s.in.pop(dst)
}

// AvailableInput reports how many input samples can be dequeued without
// blocking, used by the non-blocking overlap policy (spec.md §4.D).
func (s *Stream) AvailableInput() int {
	return s.in.depth()
}

// EnqueueOutput appends samples to the output queue. Returns an error if
// none of the samples fit (a FatalRuntime condition per spec.md §7).
func (s *Stream) EnqueueOutput(samples []float32) error {
	n := s.out.push(samples)
	if n == 0 && len(samples) > 0 {
		return fmt.Errorf("audiodevice: output queue full, enqueue failed")
	}
	if n < len(samples) {
		logging.Warning("audiodevice: output queue partially full", "dropped", len(samples)-n)
	}
	return nil
}

// OutputQueueDepth returns the number of samples currently queued for
// playback, polled by the program loop's audio-synchronisation step.
func (s *Stream) OutputQueueDepth() int {
	return s.out.depth()
}
