package predictor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chessplay/internal/engine"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrQueueFull    = errors.New("queue is full")
	ErrShuttingDown = errors.New("queue is shutting down")
)

// Searcher is one engine instance; a worker owns it exclusively
type Searcher interface {
	SetSkillLevel(level int)
	SetPosition(fen string, moves []string)
	Search(ctx context.Context, timeMs int) (*engine.SearchResult, error)
	Close() error
}

type SearcherFactory func() (Searcher, error)

// UCIFactory starts a UCI engine at path for every worker
func UCIFactory(path string) SearcherFactory {
	return func() (Searcher, error) {
		return engine.New(path)
	}
}

type PoolConfig struct {
	Workers    int
	SearchTime int // ms
	Level      int
	QueueSize  int
}

type task struct {
	ctx      context.Context
	fen      string
	response chan<- taskResult
}

type taskResult struct {
	move string
	err  error
}

// Pool spreads searches over a fixed set of engine workers
type Pool struct {
	cfg    PoolConfig
	tasks  chan task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu        sync.Mutex
	closeErrs *multierror.Error
	ready     int
}

// NewPool starts the workers. Each worker creates its own searcher; it fails
// only when no worker could start one.
func NewPool(cfg PoolConfig, factory SearcherFactory, log zerolog.Logger) (*Pool, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 2 // Default
	}
	if cfg.SearchTime <= 0 {
		cfg.SearchTime = 1000
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		tasks:  make(chan task, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("component", "pool").Logger(),
	}

	searchers := make([]Searcher, 0, cfg.Workers)
	var startErrs *multierror.Error
	for i := 0; i < cfg.Workers; i++ {
		s, err := factory()
		if err != nil {
			p.log.Warn().Err(err).Int("worker", i).Msg("worker failed to initialize engine")
			startErrs = multierror.Append(startErrs, err)
			continue
		}
		searchers = append(searchers, s)
	}
	if len(searchers) == 0 {
		cancel()
		return nil, errors.Wrap(startErrs.ErrorOrNil(), "no engine workers started")
	}

	p.ready = len(searchers)
	for i, s := range searchers {
		p.wg.Add(1)
		go p.worker(i, s)
	}
	return p, nil
}

func (p *Pool) worker(id int, s Searcher) {
	defer p.wg.Done()
	defer func() {
		if err := s.Close(); err != nil {
			p.mu.Lock()
			p.closeErrs = multierror.Append(p.closeErrs, errors.Wrapf(err, "worker %d", id))
			p.mu.Unlock()
		}
	}()

	for {
		select {
		case t := <-p.tasks:
			res := p.process(s, t)

			// Send result if receiver still listening
			select {
			case t.response <- res:
			case <-time.After(100 * time.Millisecond):
			}

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(s Searcher, t task) taskResult {
	if t.ctx.Err() != nil {
		return taskResult{err: t.ctx.Err()}
	}

	s.SetSkillLevel(p.cfg.Level)
	s.SetPosition(t.fen, nil)

	search, err := s.Search(t.ctx, p.cfg.SearchTime)
	if err != nil {
		return taskResult{err: errors.Wrap(err, "engine search failed")}
	}

	// Check for no legal moves
	if search.BestMove == "" || search.BestMove == "(none)" {
		return taskResult{err: ErrNoLegalMoves}
	}

	p.log.Debug().Str("move", search.BestMove).Int("depth", search.Depth).Int("score", search.Score).Msg("search done")
	return taskResult{move: search.BestMove}
}

// Predict queues the position and waits for a worker or ctx
func (p *Pool) Predict(ctx context.Context, fen string) (string, error) {
	if !IsFENSafe(fen) {
		return "", errors.Wrap(ErrInvalidFEN, "malformed")
	}

	respChan := make(chan taskResult, 1)
	t := task{ctx: ctx, fen: fen, response: respChan}

	select {
	case <-p.ctx.Done():
		return "", ErrShuttingDown
	default:
	}

	select {
	case p.tasks <- t:
	case <-p.ctx.Done():
		return "", ErrShuttingDown
	default:
		return "", ErrQueueFull
	}

	select {
	case res := <-respChan:
		return res.move, res.err
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "waiting for engine")
	case <-p.ctx.Done():
		return "", ErrShuttingDown
	}
}

// Workers is the number of running engine workers
func (p *Pool) Workers() int {
	return p.ready
}

func (p *Pool) String() string {
	return fmt.Sprintf("engine-pool(%d)", p.ready)
}

// Shutdown stops the workers and closes their engines
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		return errors.New("shutdown timeout exceeded")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeErrs.ErrorOrNil()
}
