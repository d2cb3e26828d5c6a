package scoring

import (
	"math/rand"
	"sync"
)

// RandomSource supplies the peer-similarity draws.
type RandomSource interface {
	Float64() float64
}

type seededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededSource returns a goroutine-safe source. Equal seeds yield equal
// sequences.
func NewSeededSource(seed int64) RandomSource {
	return &seededSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// FixedSource always returns the same draw.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }
