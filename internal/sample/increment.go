package sample

// Increment is the diagnostic source of spec.md §4.D: sample i equals i+1.
// Grounded on original_source/src/sample_getter/sample_getter.cpp's
// trivial test variant.
type Increment struct {
	overlapState
	next float32
}

// NewIncrement constructs an Increment source starting at value 1.
func NewIncrement(cfg PolicyConfig) *Increment {
	return &Increment{overlapState: newOverlapState(cfg), next: 1}
}

func (inc *Increment) GetFrame(buf []float32) (int, error) {
	n := len(buf)
	k := inc.nextK(n)
	old := n - k

	shiftBuffer(buf, old)

	for i := old; i < n; i++ {
		buf[i] = inc.next
		inc.next++
	}

	inc.advance(k)
	return k, nil
}

func (inc *Increment) PitchUp()   {}
func (inc *Increment) PitchDown() {}
