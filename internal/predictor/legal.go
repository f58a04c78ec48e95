package predictor

import (
	"context"
	"math/rand/v2"
	"sync"
)

const (
	StrategyFirst  = "first"
	StrategyRandom = "random"
)

// Legal picks straight from the legal move list. It never fails on a valid,
// non-terminal position, so it closes every chain.
type Legal struct {
	Strategy string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewLegal(strategy string, seed uint64) *Legal {
	return &Legal{
		Strategy: strategy,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (l *Legal) Predict(ctx context.Context, fen string) (string, error) {
	moves, err := LegalMoves(fen)
	if err != nil {
		return "", err
	}
	if len(moves) == 0 {
		return "", ErrNoLegalMoves
	}

	if l.Strategy != StrategyRandom || l.rng == nil {
		return moves[0], nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return moves[l.rng.IntN(len(moves))], nil
}

func (l *Legal) String() string {
	return "legal-" + l.Strategy
}
