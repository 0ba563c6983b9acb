// Package perf implements a minimal per-frame timing ring and its text
// report sink for the `--perf` CLI collaborator, grounded on
// original_source/src/performance.cpp's Performance class.
package perf

import (
	"fmt"
	"os"
	"time"

	"github.com/digistring/digistring/internal/resultsfile"
)

// Point is one named timestamp pushed during a frame, the Go analogue of
// push_time_point.
type Point struct {
	Name string
	At   time.Time
}

// Ring is a fixed-capacity sequence of frames, each a slice of Points.
type Ring struct {
	capacity int
	frames   [][]Point
	current  []Point
	start    time.Time
}

// New constructs a Ring retaining up to capacity frames of timing data.
func New(capacity int) *Ring {
	return &Ring{capacity: capacity, start: time.Now()}
}

// Push records a named timestamp within the current frame.
func (r *Ring) Push(name string) {
	r.current = append(r.current, Point{Name: name, At: time.Now()})
}

// EndFrame closes out the current frame, evicting the oldest if the ring
// is at capacity.
func (r *Ring) EndFrame() {
	r.frames = append(r.frames, r.current)
	r.current = nil
	if len(r.frames) > r.capacity {
		r.frames = r.frames[len(r.frames)-r.capacity:]
	}
}

// WriteReport writes a plain-text per-frame timing breakdown to path,
// resolved through the same strftime + collision-suffix helper the
// results-file sink uses (SPEC_FULL.md §6 expansion).
func (r *Ring) WriteReport(path string) error {
	resolved, err := resultsfile.ResolvePath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(resolved)
	if err != nil {
		return fmt.Errorf("perf: creating %q: %w", resolved, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "program start: %s\n", r.start.Format(time.RFC3339Nano))
	for i, frame := range r.frames {
		fmt.Fprintf(f, "frame %d:\n", i)
		var prev time.Time
		for j, p := range frame {
			if j == 0 {
				fmt.Fprintf(f, "  %-24s %s\n", p.Name, p.At.Sub(r.start))
			} else {
				fmt.Fprintf(f, "  %-24s %s (+%s)\n", p.Name, p.At.Sub(r.start), p.At.Sub(prev))
			}
			prev = p.At
		}
	}

	return nil
}
