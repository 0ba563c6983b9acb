// Command digistring-completions generates shell completion scripts for
// digistring, the shell-completion generator collaborator spec.md §1
// names as out of scope for the core but worth a minimal concrete CLI
// here since it is cheap and exercises spf13/pflag's completion support
// (SPEC_FULL.md §1 expansion).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: digistring-completions <bash|zsh>")
		os.Exit(1)
	}

	fs := pflag.NewFlagSet("digistring", pflag.ContinueOnError)
	fs.Bool("audio", false, "list audio driver and devices, then exit")
	fs.String("audio_in", "", "select input device by exact name")
	fs.String("audio_out", "", "select output device by exact name")
	fs.BoolP("fullscreen", "f", false, "start in fullscreen")
	fs.String("file", "", "play a WAV file as the input source")
	fs.StringP("note", "n", "", "synthesize a note as input")
	fs.StringP("sine", "s", "", "synthesize a sine as input")
	fs.StringP("monitor", "p", "", "monitor input at the output")
	fs.String("synth", "", "enable synthesis")
	fs.StringP("output", "o", "", "JSON output path")
	fs.String("perf", "", "performance output file(s)")
	fs.StringP("resolution", "r", "", "start resolution")
	fs.String("rsc", "", "resource directory")
	fs.Float64("slow", 1.0, "slowdown factor")
	fs.Bool("sync", false, "virtual audio-rate sync")
	fs.String("over", "", "print overtones")
	fs.Bool("midi", false, "emit MIDI events")
	fs.Bool("experiment", false, "run experimental harness")
	fs.Bool("experiments", false, "list experimental harnesses")
	fs.String("profile", "", "named instrument profile")
	fs.BoolP("help", "h", false, "print help")

	switch os.Args[1] {
	case "bash":
		writeBashCompletion(fs)
	case "zsh":
		writeZshCompletion(fs)
	default:
		fmt.Fprintln(os.Stderr, "unsupported shell:", os.Args[1])
		os.Exit(1)
	}
}

// writeBashCompletion emits a minimal flag-name completion function; a
// full grammar-aware completer is out of scope per spec.md §1.
func writeBashCompletion(fs *pflag.FlagSet) {
	fmt.Println("_digistring_completions() {")
	fmt.Println(`    local cur="${COMP_WORDS[COMP_CWORD]}"`)
	fmt.Print("    COMPREPLY=( $(compgen -W \"")
	fs.VisitAll(func(f *pflag.Flag) {
		fmt.Printf("--%s ", f.Name)
	})
	fmt.Println("\" -- \"$cur\") )")
	fmt.Println("}")
	fmt.Println("complete -F _digistring_completions digistring")
}

func writeZshCompletion(fs *pflag.FlagSet) {
	fmt.Println("#compdef digistring")
	fmt.Println("_arguments \\")
	fs.VisitAll(func(f *pflag.Flag) {
		fmt.Printf("  '--%s[%s]' \\\n", f.Name, f.Usage)
	})
}
