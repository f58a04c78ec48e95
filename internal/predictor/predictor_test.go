package predictor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"chessplay/internal/engine"
	"chessplay/internal/logging"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	startFEN     = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	afterE4      = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
)

func TestIsFENSafe(t *testing.T) {
	assert.True(t, IsFENSafe(startFEN))
	assert.False(t, IsFENSafe(startFEN+"\nquit"))
	assert.False(t, IsFENSafe("rnbqkbnr/pppppppp w"))
	assert.False(t, IsFENSafe(""))
}

func TestLegalMoves(t *testing.T) {
	moves, err := LegalMoves(startFEN)
	require.NoError(t, err)
	assert.Len(t, moves, 20)
	assert.Equal(t, "a2a3", moves[0])

	assert.True(t, IsLegal(afterE4, "e7e5"))
	assert.False(t, IsLegal(afterE4, "e2e4"))
	assert.False(t, IsLegal("garbage", "e2e4"))

	_, err = LegalMoves("8/8/8/8/8/8/8/8 w - - 0 1 extra")
	assert.True(t, errors.Is(err, ErrInvalidFEN))
}

func TestLegalFirst(t *testing.T) {
	l := NewLegal(StrategyFirst, 1)
	move, err := l.Predict(context.Background(), afterE4)
	require.NoError(t, err)
	assert.Equal(t, "a7a5", move)

	_, err = l.Predict(context.Background(), foolsMateFEN)
	assert.True(t, errors.Is(err, ErrNoLegalMoves))
}

func TestLegalRandomIsLegal(t *testing.T) {
	l := NewLegal(StrategyRandom, 42)
	for i := 0; i < 20; i++ {
		move, err := l.Predict(context.Background(), afterE4)
		require.NoError(t, err)
		assert.True(t, IsLegal(afterE4, move), move)
	}
}

func TestChainFallsThrough(t *testing.T) {
	broken := Func(func(ctx context.Context, fen string) (string, error) {
		return "", errors.New("engine offline")
	})
	illegal := Func(func(ctx context.Context, fen string) (string, error) {
		return "e2e4", nil
	})
	c := NewChain(logging.Nop(), broken, illegal, NewLegal(StrategyFirst, 0))

	move, err := c.Predict(context.Background(), afterE4)
	require.NoError(t, err)
	assert.Equal(t, "a7a5", move)
	assert.Equal(t, 3, c.Len())
}

func TestChainAllFail(t *testing.T) {
	illegal := Func(func(ctx context.Context, fen string) (string, error) {
		return "e2e4", nil
	})
	c := NewChain(logging.Nop(), illegal)

	_, err := c.Predict(context.Background(), afterE4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalMove))
}

func TestChainStopsOnTerminalPosition(t *testing.T) {
	var calls atomic.Int32
	counting := Func(func(ctx context.Context, fen string) (string, error) {
		calls.Add(1)
		return "", ErrNoLegalMoves
	})
	c := NewChain(logging.Nop(), counting, counting)

	_, err := c.Predict(context.Background(), foolsMateFEN)
	assert.True(t, errors.Is(err, ErrNoLegalMoves))
	assert.Equal(t, int32(1), calls.Load())
}

func TestChainRejectsBadFEN(t *testing.T) {
	c := NewChain(logging.Nop(), NewLegal(StrategyFirst, 0))
	_, err := c.Predict(context.Background(), "not a fen")
	assert.True(t, errors.Is(err, ErrInvalidFEN))
}

type fakeSearcher struct {
	best   string
	delay  time.Duration
	level  int
	fen    string
	closed *atomic.Int32
}

func (f *fakeSearcher) SetSkillLevel(level int)            { f.level = level }
func (f *fakeSearcher) SetPosition(fen string, _ []string) { f.fen = fen }

func (f *fakeSearcher) Search(ctx context.Context, timeMs int) (*engine.SearchResult, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &engine.SearchResult{BestMove: f.best, Depth: 3}, nil
}

func (f *fakeSearcher) Close() error {
	f.closed.Add(1)
	return nil
}

func TestPoolPredict(t *testing.T) {
	var closed atomic.Int32
	factory := func() (Searcher, error) {
		return &fakeSearcher{best: "e7e5", closed: &closed}, nil
	}
	p, err := NewPool(PoolConfig{Workers: 3, SearchTime: 100, Level: 5}, factory, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, p.Workers())

	move, err := p.Predict(context.Background(), afterE4)
	require.NoError(t, err)
	assert.Equal(t, "e7e5", move)

	_, err = p.Predict(context.Background(), "bad\nfen")
	assert.True(t, errors.Is(err, ErrInvalidFEN))

	require.NoError(t, p.Shutdown(time.Second))
	assert.Equal(t, int32(3), closed.Load())

	_, err = p.Predict(context.Background(), afterE4)
	assert.True(t, errors.Is(err, ErrShuttingDown))
}

func TestPoolNoMove(t *testing.T) {
	var closed atomic.Int32
	factory := func() (Searcher, error) {
		return &fakeSearcher{best: "(none)", closed: &closed}, nil
	}
	p, err := NewPool(PoolConfig{Workers: 1}, factory, logging.Nop())
	require.NoError(t, err)
	defer p.Shutdown(time.Second)

	_, err = p.Predict(context.Background(), foolsMateFEN)
	assert.True(t, errors.Is(err, ErrNoLegalMoves))
}

func TestPoolContextTimeout(t *testing.T) {
	var closed atomic.Int32
	factory := func() (Searcher, error) {
		return &fakeSearcher{best: "e7e5", delay: time.Hour, closed: &closed}, nil
	}
	p, err := NewPool(PoolConfig{Workers: 1}, factory, logging.Nop())
	require.NoError(t, err)
	defer p.Shutdown(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Predict(ctx, afterE4)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPoolPartialStart(t *testing.T) {
	var closed atomic.Int32
	var n atomic.Int32
	factory := func() (Searcher, error) {
		if n.Add(1) == 1 {
			return nil, errors.New("no binary")
		}
		return &fakeSearcher{best: "e7e5", closed: &closed}, nil
	}
	p, err := NewPool(PoolConfig{Workers: 2}, factory, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Workers())
	require.NoError(t, p.Shutdown(time.Second))

	_, err = NewPool(PoolConfig{Workers: 2}, func() (Searcher, error) {
		return nil, errors.New("no binary")
	}, logging.Nop())
	assert.Error(t, err)
}
