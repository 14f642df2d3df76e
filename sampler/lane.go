package sampler

import "math/rand/v2"

// The golden ratio increment used to decorrelate frame seeds.
const frameMix = 0x9e3779b97f4a7c15

// A per-lane random source backed by a PCG stream. A lane owns its
// generator exclusively; lanes never share one.
type Lane struct {
	pcg rand.PCG
}

// Create a lane generator keyed by the render seed, the frame counter and
// the pixel coordinates.
func NewLane(seed uint64, frame, x, y uint32) *Lane {
	l := &Lane{}
	l.Reset(seed, frame, x, y)
	return l
}

// Re-key the generator for another lane without allocating.
func (l *Lane) Reset(seed uint64, frame, x, y uint32) {
	l.pcg.Seed(seed^(uint64(frame)*frameMix), uint64(y)<<32|uint64(x))
}

// Float32 returns a value in [0, 1) built from the top 24 bits of the stream.
func (l *Lane) Float32() float32 {
	return float32(l.pcg.Uint64()>>40) * (1.0 / (1 << 24))
}

// A source that cycles through a fixed list of values. It is used to make
// kernel invocations reproducible.
type Sequence struct {
	values []float32
	next   int
}

// Create a sequence source. An empty sequence always yields 0.
func NewSequence(values ...float32) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float32() float32 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Get the number of values consumed since the last wrap-around.
func (s *Sequence) Pos() int {
	return s.next
}
