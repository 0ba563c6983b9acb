// Command digistring is the real-time monophonic pitch-estimation engine
// described by spec.md, wiring the internal/cli, internal/program and
// collaborator packages together. Grounded on
// original_source/src/main.cpp and the teacher's cmd/direwolf/main.go
// startup shape (parse flags, init logging, init subsystems, run, defer
// teardown).
package main

import (
	"fmt"
	"os"

	"github.com/digistring/digistring/internal/audiodevice"
	"github.com/digistring/digistring/internal/cache"
	"github.com/digistring/digistring/internal/cli"
	"github.com/digistring/digistring/internal/estimator"
	"github.com/digistring/digistring/internal/logging"
	"github.com/digistring/digistring/internal/midiout"
	"github.com/digistring/digistring/internal/note"
	"github.com/digistring/digistring/internal/perf"
	"github.com/digistring/digistring/internal/profile"
	"github.com/digistring/digistring/internal/program"
	"github.com/digistring/digistring/internal/quitflag"
	"github.com/digistring/digistring/internal/resourcedir"
	"github.com/digistring/digistring/internal/resultsfile"
	"github.com/digistring/digistring/internal/sample"
	"github.com/digistring/digistring/internal/synth"
	"github.com/digistring/digistring/internal/tui"
)

// sampleRateHz is the launch-time-fixed FS of spec.md §3; this rewrite
// defaults to the original's typical 96 kHz rather than exposing a flag,
// since spec.md does not list a CLI flag for it.
const sampleRateHz = 96000.0

// perfRingFrames bounds how many frames of timing data --perf retains.
const perfRingFrames = 8192

func main() {
	logging.Init(false)

	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if args.Help {
		printHelp(args.HelpReadme)
		return
	}

	if args.Overtones {
		runOvertones(args)
		return
	}

	if err := run(args); err != nil {
		logging.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(args cli.Args) error {
	quitflag.WatchSignals()

	if args.ListAudio {
		return listAudio()
	}

	rscDir := args.ResourceDir
	if rscDir != "" {
		if err := resourcedir.Verify(rscDir); err != nil {
			return fmt.Errorf("main: %w", err)
		}
		if err := cache.Init(resourcedir.CacheDir(rscDir)); err != nil {
			return fmt.Errorf("main: %w", err)
		}
	}

	profiles, err := profile.Load("")
	if err != nil {
		return err
	}
	prof, ok := profiles.Lookup(args.Profile)
	if !ok {
		logging.Warning("main: unknown profile, falling back to guitar defaults", "profile", args.Profile)
	}

	est, err := buildEstimator(args.Estimator, sampleRateHz, prof)
	if err != nil {
		return err
	}

	// An audio device is needed whenever no synthetic/file source was
	// requested (live input is the default per spec.md §1's "nominally a
	// guitar" use case), whenever --audio_in names a device explicitly, or
	// whenever anything wants to play audio out (--synth, -p, --audio_out).
	wantInput := args.File == "" && !args.SineInput && !args.NoteInput || args.AudioIn != ""
	wantOutput := args.Synth || args.Monitor || args.AudioOut != ""

	var stream *audiodevice.Stream
	if wantInput || wantOutput {
		if err := audiodevice.Init(); err != nil {
			return err
		}
		defer audiodevice.Terminate()

		s, err := audiodevice.Open(sampleRateHz, args.AudioIn, args.AudioOut, wantInput, wantOutput)
		if err != nil {
			return fmt.Errorf("main: %w", err)
		}
		defer s.Close()
		stream = s
	}

	src, err := buildSource(args, stream)
	if err != nil {
		return err
	}

	p := program.New(sampleRateHz, est, src)
	p.VirtualSync = args.Sync
	p.Monitor = args.Monitor
	if wantOutput {
		p.AudioOut = stream
	}
	if args.Slow > 1 {
		p.SlowdownFactor = args.Slow
	}

	if args.Synth {
		s, err := buildSynth(args.SynthName, sampleRateHz)
		if err != nil {
			return err
		}
		p.Synth = s
	}

	if args.Output != "" {
		header := resultsfile.Header{
			SampleRateHz:       sampleRateHz,
			InputBufferSamples: est.FrameSize(),
			InputBufferMs:      1000 * float64(est.FrameSize()) / sampleRateHz,
			FourierBinHz:       sampleRateHz / float64(est.FrameSize()*(1+estimator.ZeroPadFactor)),
		}
		w, resolved, err := resultsfile.Open(args.Output, header)
		if err != nil {
			return err
		}
		logging.Info("main: writing results", "path", resolved)
		p.ResultsOut = w
	}

	if args.MIDI {
		p.MIDIOut = midiout.New(os.Stdout)
	}

	if args.PerfPath != "" {
		p.Perf = perf.New(perfRingFrames)
		p.PerfPath = args.PerfPath
	}

	kb, err := tui.Open()
	if err != nil {
		return err
	}
	p.Keyboard = kb
	defer func() {
		if p.Keyboard != nil {
			p.Keyboard.Close()
		}
	}()

	return p.Run()
}

// buildEstimator selects one of spec.md §2's estimator variants by name,
// applying the chosen instrument profile's note-range filters to HighRes
// (the only variant with a configurable Filters field).
func buildEstimator(name string, fs float64, prof profile.Profile) (estimator.Estimator, error) {
	switch name {
	case "", "highres":
		est, err := estimator.NewHighRes(fs, prof.DefaultAttenuation)
		if err != nil {
			return nil, err
		}
		est.Filters.LowestNote = prof.LowestNoteMIDI
		est.Filters.HighestNote = prof.HighestNoteMIDI
		return est, nil
	case "tuned":
		return estimator.NewTuned(fs, estimator.HighResFrameSize, prof.LowestNoteMIDI), nil
	case "basicfourier":
		return estimator.NewBasicFourier(fs, estimator.HighResFrameSize), nil
	default:
		return nil, fmt.Errorf("main: unknown estimator %q", name)
	}
}

func buildSource(args cli.Args, stream *audiodevice.Stream) (sample.Source, error) {
	switch {
	case args.File != "":
		return sample.OpenAudioFile(args.File, sampleRateHz, sample.DefaultPolicyConfig)
	case args.SineInput:
		return sample.NewWaveGenerator(sampleRateHz, args.SineFreq, sample.DefaultPolicyConfig), nil
	case args.NoteInput:
		n, err := note.ParseName(args.Note)
		if err != nil {
			return nil, err
		}
		return sample.NewNoteGenerator(sampleRateHz, n.MIDINumber, sample.DefaultPolicyConfig), nil
	case stream != nil:
		return sample.NewAudioIn(stream, sample.DefaultPolicyConfig), nil
	default:
		return nil, fmt.Errorf("main: no input source selected (use --file, -s, -n or an audio input device)")
	}
}

func buildSynth(name string, fs float64) (synth.Synth, error) {
	switch name {
	case "", "sine":
		return synth.NewSine(fs), nil
	case "sine_amped":
		return synth.NewSineAmped(fs), nil
	case "square":
		return synth.NewSquare(fs), nil
	case "sine_poly":
		return nil, synth.ErrNotImplemented
	default:
		return nil, fmt.Errorf("main: unknown synth %q", name)
	}
}

func listAudio() error {
	if err := audiodevice.Init(); err != nil {
		return err
	}
	defer audiodevice.Terminate()

	devices, err := audiodevice.ListDevices()
	if err != nil {
		return err
	}

	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %-40s in=%-3d out=%-3d\n", marker, d.Name, d.MaxInputs, d.MaxOutputs)
	}
	return nil
}

func runOvertones(args cli.Args) {
	n, err := note.ParseName(args.OverNote)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	for i, f := range n.Overtones(args.OverCount) {
		fmt.Printf("%2d: %.3f Hz\n", i+1, f)
	}
}

func printHelp(readme bool) {
	if readme {
		fmt.Println("See README.md for the full manual.")
		return
	}
	fmt.Println("Usage: digistring [flags] [file.wav]")
	fmt.Println("Run with --help for the flag reference.")
}
