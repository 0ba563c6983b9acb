package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/digistring/digistring/internal/note"
)

func TestAdjustEventsPartition(t *testing.T) {
	// spec.md §8 invariant 8: the three cases partition events, no event
	// is double-emitted, none silently dropped unless case 1 applies.
	const n = 100
	old := 60 // carried-over region

	cases := []struct {
		name   string
		ev     note.Event
		expect *note.Event // nil means dropped
	}{
		{"case1_fully_carried", note.Event{Offset: 0, Length: 50}, nil},
		{"case2_straddles", note.Event{Offset: 40, Length: 40}, &note.Event{Offset: 0, Length: 20}},
		{"case3_fully_new", note.Event{Offset: 70, Length: 20}, &note.Event{Offset: 10, Length: 20}},
	}

	for _, c := range cases {
		out := AdjustEvents([]note.Event{c.ev}, old)
		if c.expect == nil {
			assert.Empty(t, out, c.name)
			continue
		}
		assert.Len(t, out, 1, c.name)
		assert.Equal(t, c.expect.Offset, out[0].Offset, c.name)
		assert.Equal(t, c.expect.Length, out[0].Length, c.name)
	}
}

func TestAdjustEventsNeverProducesNegativeOffsetOrOverrun(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(10, 1000).Draw(rt, "n")
		k := rapid.IntRange(1, n).Draw(rt, "k")
		old := n - k

		offset := rapid.IntRange(0, n-1).Draw(rt, "offset")
		length := rapid.IntRange(1, n-offset).Draw(rt, "length")

		out := AdjustEvents([]note.Event{{Offset: offset, Length: length}}, old)
		for _, ev := range out {
			assert.GreaterOrEqual(rt, ev.Offset, 0)
			assert.LessOrEqual(rt, ev.Offset+ev.Length, k)
		}
	})
}
