// Package resultsfile implements the JSON results sink of spec.md §6,
// grounded on original_source/src/results_file.cpp, plus the
// strftime-aware, collision-avoiding path resolution shared with
// internal/perf (SPEC_FULL.md §6 expansion).
package resultsfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/digistring/digistring/internal/note"
)

// Header is the top-level JSON object's static fields, written once
// before any events, per spec.md §6.
type Header struct {
	SampleRateHz       float64  `json:"Sample rate (Hz)"`
	InputBufferSamples int      `json:"Input buffer size (samples)"`
	InputBufferMs      float64  `json:"Input buffer time (ms)"`
	FourierBinHz       float64  `json:"Fourier bin size (Hz)"`
	OverlapRatio       *float64 `json:"Overlap ratio,omitempty"`
	MinRatio           *float64 `json:"Min non-block ratio,omitempty"`
	MaxRatio           *float64 `json:"Max non-block ratio,omitempty"`
}

// EventRecord is a single entry in the "note events" array. Silence
// frames carry nil pointers for every field except NoteStartSamples.
type EventRecord struct {
	NoteStartSamples  int      `json:"note_start (samples)"`
	NoteStartSeconds  float64  `json:"note_start (seconds)"`
	NoteDurationSamp  *int     `json:"note_duration (samples)"`
	NoteDurationSecs  *float64 `json:"note_duration (seconds)"`
	Note              *string  `json:"note"`
	Frequency         *float64 `json:"frequency"`
	Amplitude         *float64 `json:"amplitude"`
	Error             *float64 `json:"error"`
	MIDINumber        *int     `json:"midi_number"`
}

// Writer streams EventRecords into a JSON object with a pre-written
// header, 4-space indentation per spec.md §6.
type Writer struct {
	f          *os.File
	enc        *json.Encoder
	wroteFirst bool
}

// ResolvePath expands strftime escapes in path, then appends a numeric
// suffix if the resulting path already exists, per spec.md §6 ("-o
// auto-suffixes a number if the path exists") and SPEC_FULL.md's §6
// strftime expansion.
func ResolvePath(path string) (string, error) {
	pattern, err := strftime.New(path)
	if err != nil {
		return "", fmt.Errorf("resultsfile: invalid strftime pattern %q: %w", path, err)
	}

	expanded := pattern.FormatString(time.Now())
	return resolveCollision(expanded)
}

func resolveCollision(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
}

// Open resolves path (strftime + collision suffix) and begins streaming a
// results file with the given header.
func Open(path string, header Header) (*Writer, string, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Create(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("resultsfile: creating %q: %w", resolved, err)
	}

	if _, err := fmt.Fprint(f, "{\n"); err != nil {
		f.Close()
		return nil, "", err
	}

	headerJSON, err := json.MarshalIndent(header, "    ", "    ")
	if err != nil {
		f.Close()
		return nil, "", err
	}
	// Strip the header's own enclosing braces so its fields merge into
	// the outer object.
	inner := headerJSON[1 : len(headerJSON)-1]
	if _, err := f.Write(inner); err != nil {
		f.Close()
		return nil, "", err
	}
	if _, err := fmt.Fprint(f, ",\n    \"note events\": [\n"); err != nil {
		f.Close()
		return nil, "", err
	}

	return &Writer{f: f, enc: json.NewEncoder(f)}, resolved, nil
}

// WriteEvent appends one event record, comma-separating from any prior
// record.
func (w *Writer) WriteEvent(rec EventRecord) error {
	if w.wroteFirst {
		if _, err := fmt.Fprint(w.f, ",\n"); err != nil {
			return err
		}
	}
	w.wroteFirst = true

	b, err := json.MarshalIndent(rec, "        ", "    ")
	if err != nil {
		return err
	}
	_, err = w.f.Write(append([]byte("        "), b...))
	return err
}

// Close finishes the JSON document and closes the file.
func (w *Writer) Close() error {
	if _, err := fmt.Fprint(w.f, "\n    ]\n}\n"); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// SilenceRecord builds the all-null EventRecord for a frame with no note,
// per spec.md §6's "silence frames emit the same keys with null values
// except for note_start".
func SilenceRecord(startSamples int, fs float64) EventRecord {
	return EventRecord{
		NoteStartSamples: startSamples,
		NoteStartSeconds: float64(startSamples) / fs,
	}
}

// NoteRecord builds an EventRecord from a note event.
func NoteRecord(ev note.Event, startSamples int, fs float64) EventRecord {
	duration := ev.Length
	durationSecs := float64(ev.Length) / fs
	name := ev.Note.String()
	freq := ev.Note.Freq
	amp := ev.Note.Amp
	errCents := ev.Note.ErrorCents
	midi := ev.Note.MIDINumber

	return EventRecord{
		NoteStartSamples: startSamples,
		NoteStartSeconds: float64(startSamples) / fs,
		NoteDurationSamp: &duration,
		NoteDurationSecs: &durationSecs,
		Note:             &name,
		Frequency:        &freq,
		Amplitude:        &amp,
		Error:            &errCents,
		MIDINumber:       &midi,
	}
}
