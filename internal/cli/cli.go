// Package cli parses the flag table of spec.md §6 with
// github.com/spf13/pflag, grounded on the teacher's cmd/direwolf/main.go
// and src/atest.go flag definitions (pflag.StringP, pflag.BoolP, a custom
// pflag.Usage, pflag.Parse/pflag.Args for positional arguments).
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// MinWidth and MinHeight are the resolution floors spec.md §6 requires
// for -r.
const (
	MinWidth  = 320
	MinHeight = 240
)

// Args is the fully parsed CLI configuration, spec.md §5's "launch-time
// configuration (set once, read-only thereafter)".
type Args struct {
	ListAudio   bool
	AudioIn     string
	AudioOut    string
	Fullscreen  bool
	File        string
	NoteInput   bool
	Note        string // defaults to "A4" when NoteInput and empty
	SineInput   bool
	SineFreq    float64 // defaults to 1000
	Monitor     bool
	MonitorChan string // "", "left", or "right"
	Synth       bool
	SynthName   string // defaults to "sine"
	SynthVolume float64 // defaults to 1.0
	Output      string
	PerfPath    string
	Width       int
	Height      int
	ResourceDir string
	Slow        float64
	Sync        bool
	Overtones   bool
	OverNote    string
	OverCount   int
	OverMIDIOn  bool
	MIDI        bool
	Experiment  bool
	Experiments bool
	Help        bool
	HelpReadme  bool
	Profile     string
	Estimator   string // "" (highres), "tuned", or "basicfourier"
}

// Parse parses os.Args[1:] (and any positional WAV-file path, handled
// identically to --file) into Args.
func Parse(argv []string) (Args, error) {
	fs := pflag.NewFlagSet("digistring", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: digistring [flags] [file.wav]")
		fs.PrintDefaults()
	}

	var a Args

	fs.BoolVar(&a.ListAudio, "audio", false, "list audio driver and devices, then exit")
	fs.StringVar(&a.AudioIn, "audio_in", "", "select input device by exact name")
	fs.StringVar(&a.AudioOut, "audio_out", "", "select output device by exact name")
	fs.BoolVarP(&a.Fullscreen, "fullscreen", "f", false, "start in fullscreen")
	fs.StringVar(&a.File, "file", "", "play a WAV file as the input source")

	noteFlag := fs.StringP("note", "n", "", "synthesize a note as input")
	fs.Lookup("note").NoOptDefVal = "A4"

	sineFlag := fs.StringP("sine", "s", "", "synthesize a sine as input")
	fs.Lookup("sine").NoOptDefVal = "1000"

	monitorFlag := fs.StringP("monitor", "p", "", "monitor input at the output, optionally routed to left|right")
	fs.Lookup("monitor").NoOptDefVal = "both"

	synthFlag := fs.StringP("synth", "", "", "enable synthesis: [name] [volume]")
	fs.Lookup("synth").NoOptDefVal = "sine 1.0"

	fs.StringVarP(&a.Output, "output", "o", "", "JSON output path")
	fs.Lookup("output").NoOptDefVal = "digistring.json"

	fs.StringVar(&a.PerfPath, "perf", "", "performance output file(s)")
	fs.Lookup("perf").NoOptDefVal = "digistring.perf"

	resFlag := fs.StringP("resolution", "r", "", "start resolution, <w>x<h>")
	fs.StringVar(&a.ResourceDir, "rsc", "", "resource directory")
	fs.Float64Var(&a.Slow, "slow", 1.0, "slowdown factor > 1")
	fs.BoolVar(&a.Sync, "sync", false, "virtual audio-rate sync without playback")

	overFlag := fs.String("over", "", "print overtones: <note> [n] [midi_on|midi_off]")

	fs.BoolVar(&a.MIDI, "midi", false, "emit MIDI events")
	fs.BoolVar(&a.Experiment, "experiment", false, "run experimental harness")
	fs.BoolVar(&a.Experiments, "experiments", false, "list experimental harnesses")
	fs.StringVar(&a.Profile, "profile", "", "named instrument profile (guitar, bass, violin, ukulele)")
	fs.StringVar(&a.Estimator, "estimator", "", "estimator algorithm: highres (default), tuned, basicfourier")

	helpFlag := fs.BoolP("help", "h", false, "print help")
	fs.Lookup("help").NoOptDefVal = "true"

	if err := fs.Parse(argv); err != nil {
		return Args{}, err
	}

	if *noteFlag != "" {
		a.NoteInput = true
		a.Note = *noteFlag
	}

	if *sineFlag != "" {
		a.SineInput = true
		freq, err := strconv.ParseFloat(*sineFlag, 64)
		if err != nil {
			return Args{}, fmt.Errorf("cli: invalid -s frequency %q: %w", *sineFlag, err)
		}
		if freq < 1 {
			freq = 1
		}
		a.SineFreq = freq
	}

	if *monitorFlag != "" {
		a.Monitor = true
		switch *monitorFlag {
		case "left", "right":
			a.MonitorChan = *monitorFlag
		case "both":
			a.MonitorChan = ""
		default:
			return Args{}, fmt.Errorf("cli: invalid -p channel %q, want left|right", *monitorFlag)
		}
	}

	if *synthFlag != "" {
		a.Synth = true
		parts := strings.Fields(*synthFlag)
		a.SynthName = "sine"
		a.SynthVolume = 1.0
		if len(parts) > 0 {
			a.SynthName = parts[0]
		}
		if len(parts) > 1 {
			v, err := strconv.ParseFloat(parts[1], 64)
			if err != nil || v < 0 || v > 1 {
				return Args{}, fmt.Errorf("cli: invalid --synth volume %q, want [0,1]", parts[1])
			}
			a.SynthVolume = v
		}
	}

	if *resFlag != "" {
		w, h, err := parseResolution(*resFlag)
		if err != nil {
			return Args{}, err
		}
		if w < MinWidth || h < MinHeight {
			return Args{}, fmt.Errorf("cli: -r %dx%d is below the minimum %dx%d", w, h, MinWidth, MinHeight)
		}
		a.Width, a.Height = w, h
	}

	if *overFlag != "" {
		a.Overtones = true
		parts := strings.Fields(*overFlag)
		a.OverNote = parts[0]
		a.OverCount = 5
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err == nil {
				a.OverCount = n
			} else if parts[1] == "midi_on" || parts[1] == "midi_off" {
				a.OverMIDIOn = parts[1] == "midi_on"
			}
		}
		if len(parts) > 2 {
			a.OverMIDIOn = parts[2] == "midi_on"
		}
	}

	if *helpFlag {
		a.Help = true
		if len(fs.Args()) > 0 && fs.Args()[0] == "readme" {
			a.HelpReadme = true
		}
	}

	if a.File == "" && len(fs.Args()) > 0 {
		a.File = fs.Args()[0]
	}

	return a, nil
}

func parseResolution(s string) (w, h int, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("cli: invalid resolution %q, want <w>x<h>", s)
	}
	w, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("cli: invalid width in %q: %w", s, err)
	}
	h, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("cli: invalid height in %q: %w", s, err)
	}
	return w, h, nil
}
