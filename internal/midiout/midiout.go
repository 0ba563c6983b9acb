// Package midiout implements the MIDI sink contract of spec.md §6: raw
// 3-byte messages with velocity derived from a running maximum amplitude,
// grounded on original_source/src/midi_out.cpp.
package midiout

import (
	"io"
	"math"

	"github.com/digistring/digistring/internal/note"
)

const (
	statusNoteOn        = 0x90
	statusNoteOff       = 0x80
	statusControlChange = 0xB0
	allNotesOffCC       = 123
)

// Sink writes raw MIDI byte messages to an underlying io.Writer (a serial
// port or virtual MIDI device in production, any io.Writer in tests).
type Sink struct {
	w           io.Writer
	peakAmp     float64
	activeMIDI  int
	hasActive   bool
}

// New wraps w as a MIDI sink.
func New(w io.Writer) *Sink {
	return &Sink{w: w, activeMIDI: -1}
}

// velocity derives a MIDI velocity (0-127) from amp and the running
// maximum peakAmp, per spec.md §6:
//
//	velocity = round(log2(amp)/log2(peak_amp) * 127)
func velocity(amp, peakAmp float64) byte {
	if peakAmp <= 0 || amp <= 0 {
		return 0
	}
	v := math.Log2(amp) / math.Log2(peakAmp) * 127
	v = math.Max(0, math.Min(127, v))
	return byte(math.Round(v))
}

// Emit writes Note On/Off messages for the transition from the
// previously active note (if any) to events (zero or one event).
func (s *Sink) Emit(events []note.Event) error {
	var next note.Event
	hasNext := len(events) > 0
	if hasNext {
		next = events[0]
		if next.Note.Amp > s.peakAmp {
			s.peakAmp = next.Note.Amp
		}
	}

	if s.hasActive && (!hasNext || next.Note.MIDINumber != s.activeMIDI) {
		if err := s.write(statusNoteOff, byte(s.activeMIDI), 0); err != nil {
			return err
		}
		s.hasActive = false
	}

	if hasNext && (!s.hasActive || next.Note.MIDINumber != s.activeMIDI) {
		vel := velocity(next.Note.Amp, s.peakAmp)
		if err := s.write(statusNoteOn, byte(next.Note.MIDINumber), vel); err != nil {
			return err
		}
		s.activeMIDI = next.Note.MIDINumber
		s.hasActive = true
	}

	return nil
}

// Close emits the All-Notes-Off control-change message, per spec.md §6's
// shutdown contract.
func (s *Sink) Close() error {
	return s.write(statusControlChange, allNotesOffCC, 0)
}

func (s *Sink) write(status, data1, data2 byte) error {
	_, err := s.w.Write([]byte{status, data1, data2})
	return err
}
