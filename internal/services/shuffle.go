package services

import "math/rand/v2"

// Shuffler is the only source of randomness in the feed engine.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type randShuffler struct{}

func (randShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

func NewRandomShuffler() Shuffler { return randShuffler{} }

func shuffleInPlace[T any](s Shuffler, xs []T) {
	if len(xs) < 2 {
		return
	}
	s.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
}
