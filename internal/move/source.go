package move

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source draws the opponent's move.
type Source interface {
	Draw() Move
}

// RandomSource draws moves uniformly at random.
type RandomSource struct {
	random *rand.Rand
}

// NewRandomSource creates a uniform source. A zero seed seeds from the clock.
func NewRandomSource(seed uint64) *RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomSource{
		random: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Draw returns one of the three moves with equal probability.
func (s *RandomSource) Draw() Move {
	return Move(s.random.IntN(len(catalog)))
}

// FixedSource replays a fixed sequence of moves, repeating the last one
// once the sequence is exhausted.
type FixedSource struct {
	mu    sync.Mutex
	moves []Move
	next  int
}

// NewFixedSource creates a FixedSource. With no moves it always draws Rock.
func NewFixedSource(moves ...Move) *FixedSource {
	return &FixedSource{moves: moves}
}

func (s *FixedSource) Draw() Move {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.moves) == 0 {
		return Rock
	}
	i := s.next
	if i >= len(s.moves) {
		i = len(s.moves) - 1
	} else {
		s.next++
	}
	return s.moves[i]
}
