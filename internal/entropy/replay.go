package entropy

import "math"

// Sequence replays a fixed list of draws, cycling when exhausted.
// An empty sequence always yields 0.5.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a replay source over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int { return s.next }

// Recorder wraps a Source and captures every draw so a tick can be replayed
// exactly with NewSequence(rec.Draws()...).
type Recorder struct {
	src   Source
	draws []float64
}

// NewRecorder wraps src.
func NewRecorder(src Source) *Recorder {
	return &Recorder{src: src}
}

// Float64 implements Source.
func (r *Recorder) Float64() float64 {
	v := r.src.Float64()
	r.draws = append(r.draws, v)
	return v
}

// Draws returns a copy of the captured draws.
func (r *Recorder) Draws() []float64 {
	return append([]float64(nil), r.draws...)
}

// Count returns the number of captured draws.
func (r *Recorder) Count() int { return len(r.draws) }

// Intn picks an index in [0, n) with a single draw. n <= 0 returns 0 and
// still consumes the draw so callers keep a fixed draw count.
func Intn(src Source, n int) int {
	v := src.Float64()
	if n <= 0 {
		return 0
	}
	i := int(math.Floor(v * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// Chance draws once and reports whether it fell below p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Shuffle permutes ids in place with Fisher-Yates, consuming exactly
// len(ids)-1 draws.
func Shuffle(src Source, ids []string) {
	for i := len(ids) - 1; i > 0; i-- {
		j := Intn(src, i+1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
