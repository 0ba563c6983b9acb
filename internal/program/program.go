// Package program implements the main loop of spec.md §4.H: orchestrating
// the sample source, estimator, synth and sinks, the overlap event
// adjustment, slowdown scaling and audio synchronisation. Grounded on
// original_source/src/program.cpp (main_loop, adjust_events,
// sync_with_audio, slowdown).
package program

import (
	"time"

	"github.com/digistring/digistring/internal/audiodevice"
	"github.com/digistring/digistring/internal/estimator"
	"github.com/digistring/digistring/internal/logging"
	"github.com/digistring/digistring/internal/midiout"
	"github.com/digistring/digistring/internal/note"
	"github.com/digistring/digistring/internal/perf"
	"github.com/digistring/digistring/internal/quitflag"
	"github.com/digistring/digistring/internal/resultsfile"
	"github.com/digistring/digistring/internal/sample"
	"github.com/digistring/digistring/internal/synth"
	"github.com/digistring/digistring/internal/tui"
)

// Program owns every collaborator the loop coordinates: spec.md §9's
// "program loop owns the estimator, sample source, synth, sinks", no
// cyclic ownership.
type Program struct {
	FS         float64
	Estimator  estimator.Estimator
	Source     sample.Source
	Synth      synth.Synth         // nil if synthesis disabled
	AudioOut   *audiodevice.Stream // nil if no playback/synthesis audio path
	ResultsOut *resultsfile.Writer // nil if -o not given
	MIDIOut    *midiout.Sink       // nil if --midi not given
	Keyboard   *tui.Keyboard       // nil if headless control unavailable
	Perf       *perf.Ring          // nil if --perf not given
	PerfPath   string              // report destination when Perf != nil

	SlowdownFactor float64 // > 1 spreads analysis over s x real time
	VirtualSync    bool    // --sync: sleep to real time without playback audio
	Monitor        bool    // -p: enqueue the raw input onto AudioOut

	buf          []float32
	played       uint64
	lastSyncTime time.Time
}

// New constructs a Program. buf must be sized to Estimator.FrameSize().
func New(fs float64, est estimator.Estimator, src sample.Source) *Program {
	n := est.FrameSize()
	return &Program{
		FS:             fs,
		Estimator:      est,
		Source:         src,
		SlowdownFactor: 1.0,
		buf:            make([]float32, n),
	}
}

// AdjustEvents implements spec.md §4.H step e, the three-case partition:
//
//	old = N - k
//	case 1: offset+length <= old  -> drop (already emitted last frame)
//	case 2: offset < old          -> shorten and shift to the new frame
//	case 3: otherwise             -> shift only
func AdjustEvents(events []note.Event, old int) []note.Event {
	out := make([]note.Event, 0, len(events))
	for _, ev := range events {
		switch {
		case ev.Offset+ev.Length <= old:
			continue // case 1: drop
		case ev.Offset < old:
			ev.Length -= old - ev.Offset // case 2: shorten
			ev.Offset = 0
		default:
			ev.Offset -= old // case 3: shift
		}
		out = append(out, ev)
	}
	return out
}

// applySlowdown scales offset, length and the effective new-sample count
// by s, per spec.md §4.H step g.
func applySlowdown(events []note.Event, k int, s float64) ([]note.Event, int) {
	if s <= 1 {
		return events, k
	}
	scaled := make([]note.Event, len(events))
	for i, ev := range events {
		ev.Offset = int(float64(ev.Offset) * s)
		ev.Length = int(float64(ev.Length) * s)
		scaled[i] = ev
	}
	return scaled, int(float64(k) * s)
}

// RunOnce executes a single iteration of the loop body (spec.md §4.H
// steps a-j), returning false when the quit flag was observed and no
// further iterations should run.
func (p *Program) RunOnce() (bool, error) {
	if quitflag.Poll() {
		return false, nil
	}

	if p.Perf != nil {
		p.Perf.Push("frame_start")
		defer p.Perf.EndFrame()
	}

	// a. drain UI/OS events.
	if p.Keyboard != nil {
		switch p.Keyboard.Poll() {
		case tui.KeyPitchUp:
			p.Source.PitchUp()
		case tui.KeyPitchDown:
			p.Source.PitchDown()
		}
	}

	// b. acquire a frame.
	k, err := p.Source.GetFrame(p.buf)
	if err != nil {
		return false, err
	}
	old := len(p.buf) - k
	if p.Perf != nil {
		p.Perf.Push("get_frame")
	}

	// c. enqueue newly read samples for monitoring playback (-p).
	if p.Monitor && p.AudioOut != nil {
		if err := p.AudioOut.EnqueueOutput(p.buf[old:]); err != nil {
			logging.Warning("program: failed to enqueue input monitor audio", "err", err)
		}
	}

	// d. estimate.
	events, _, err := p.Estimator.Perform(p.buf)
	if err != nil {
		return false, err
	}
	if p.Perf != nil {
		p.Perf.Push("estimate")
	}

	// e. adjust for overlap.
	events = AdjustEvents(events, old)

	// g. slowdown.
	events, effectiveK := applySlowdown(events, k, p.SlowdownFactor)

	// f. write to sinks.
	startSample := p.played
	if p.ResultsOut != nil {
		if len(events) == 0 {
			if err := p.ResultsOut.WriteEvent(resultsfile.SilenceRecord(int(startSample), p.FS)); err != nil {
				logging.Warning("program: failed to write silence record", "err", err)
			}
		}
		for _, ev := range events {
			if err := p.ResultsOut.WriteEvent(resultsfile.NoteRecord(ev, int(startSample), p.FS)); err != nil {
				logging.Warning("program: failed to write note record", "err", err)
			}
		}
	}
	if p.MIDIOut != nil {
		if err := p.MIDIOut.Emit(events); err != nil {
			logging.Warning("program: midi emit failed", "err", err)
		}
	}

	p.played += uint64(k)

	// h. synthesize and enqueue.
	if p.Synth != nil && p.AudioOut != nil {
		synthBuf := make([]float32, effectiveK)
		p.Synth.Synthesize(events, synthBuf, 1.0)
		if err := p.AudioOut.EnqueueOutput(synthBuf); err != nil {
			return false, err // FatalRuntime per spec.md §7
		}
	}

	// i. graphics: external collaborator, intentionally not implemented
	// here (spec.md §1 scopes it out as an interface-only component).

	// j. audio synchronisation.
	p.sync(effectiveK)
	if p.Perf != nil {
		p.Perf.Push("sync")
	}

	return true, nil
}

// sync implements spec.md §4.H step j's three-way timing floor.
func (p *Program) sync(k int) {
	switch {
	case p.AudioOut != nil:
		for p.AudioOut.OutputQueueDepth() > len(p.buf) {
			if quitflag.Poll() {
				return
			}
			if p.Keyboard != nil {
				p.Keyboard.Poll()
			}
			time.Sleep(time.Millisecond)
		}
	case p.VirtualSync:
		target := time.Duration(float64(k) / p.FS * float64(time.Second))
		if p.lastSyncTime.IsZero() {
			p.lastSyncTime = time.Now()
			return
		}
		elapsed := time.Since(p.lastSyncTime)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
		p.lastSyncTime = time.Now()
	default:
		// blocking input device already rate-limited GetFrame.
	}
}

// Run executes RunOnce until the quit flag is set or an error occurs, then
// emits a final silence event and closes sinks, per spec.md §4.H step 3.
func (p *Program) Run() error {
	for {
		cont, err := p.RunOnce()
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return p.shutdown()
}

func (p *Program) shutdown() error {
	if p.ResultsOut != nil {
		if err := p.ResultsOut.WriteEvent(resultsfile.SilenceRecord(int(p.played), p.FS)); err != nil {
			logging.Warning("program: failed to write final silence record", "err", err)
		}
		if err := p.ResultsOut.Close(); err != nil {
			logging.Warning("program: failed to close results file", "err", err)
		}
	}
	if p.MIDIOut != nil {
		if err := p.MIDIOut.Close(); err != nil {
			logging.Warning("program: failed to close MIDI sink", "err", err)
		}
	}
	if p.Perf != nil && p.PerfPath != "" {
		if err := p.Perf.WriteReport(p.PerfPath); err != nil {
			logging.Warning("program: failed to write performance report", "err", err)
		}
	}
	return nil
}
