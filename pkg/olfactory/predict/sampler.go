package predict

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler draws notes from a category without replacement.
type Sampler interface {
	Sample(notes []string, n int) []string
}

// SeededSampler draws from a single seeded source. Safe for concurrent use.
type SeededSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a deterministic sampler for seed.
func NewSampler(seed int64) *SeededSampler {
	return &SeededSampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns min(n, len(notes)) distinct notes using a partial
// Fisher-Yates shuffle over a copy of notes.
func (s *SeededSampler) Sample(notes []string, n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw(s.rng, notes, n)
}

type timeSeeded struct{}

// TimeSeeded returns a sampler seeded from the wall clock on every call.
func TimeSeeded() Sampler { return timeSeeded{} }

func (timeSeeded) Sample(notes []string, n int) []string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return draw(rng, notes, n)
}

func draw(rng *rand.Rand, notes []string, n int) []string {
	if n > len(notes) {
		n = len(notes)
	}
	if n <= 0 {
		return nil
	}
	pool := append([]string(nil), notes...)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
