// Package controller keeps the rules engine, the board renderer and the remote
// move predictor in step. It is the only component that decides what happens
// after a human move.
package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chessplay/internal/core"
	"chessplay/internal/predict"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultThinkDelay = 500 * time.Millisecond

	MsgIllegalMove       = "Illegal move! Please try again."
	MsgPredictionFailed  = "Error getting move from model"
	MsgIllegalRemoteMove = "Model suggested an illegal move"
	MsgBusy              = "Waiting for the model's move"
	MsgDrawn             = "Game drawn!"
)

// Phase of the turn cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingPrediction
)

func (p Phase) String() string {
	if p == PhaseAwaitingPrediction {
		return "awaiting prediction"
	}
	return "idle"
}

type Option func(*Controller)

// WithPromotion sets the piece used for every promotion, human or remote
func WithPromotion(p core.Promotion) Option {
	return func(c *Controller) {
		if p != core.PromoteNone {
			c.promotion = p
		}
	}
}

func WithThinkDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.thinkDelay = d
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRecorder attaches a game archive
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// Controller is safe for concurrent use. The prediction round trip runs
// without holding the lock; state-mutating calls made meanwhile are refused.
type Controller struct {
	mu sync.Mutex

	rules     Rules
	renderer  Renderer
	view      View
	predictor Predictor
	recorder  Recorder
	log       zerolog.Logger

	promotion  core.Promotion
	thinkDelay time.Duration

	phase      Phase
	highlights map[string]struct{}
	status     string
	gameID     string
}

func New(rules Rules, renderer Renderer, view View, predictor Predictor, opts ...Option) *Controller {
	c := &Controller{
		rules:      rules,
		renderer:   renderer,
		view:       view,
		predictor:  predictor,
		log:        zerolog.Nop(),
		promotion:  core.PromoteQueen,
		thinkDelay: DefaultThinkDelay,
		highlights: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start paints the current position and opens an archive record
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.newArchiveGame()
	c.refreshBoard()
	c.refreshStatus()
}

// HandleHumanMove applies a human move and, unless the game ended, asks the
// predictor for the reply and applies that too. The human move is never
// rolled back by a prediction failure.
func (c *Controller) HandleHumanMove(ctx context.Context, from, to string) Result {
	c.mu.Lock()
	if c.phase == PhaseAwaitingPrediction {
		c.mu.Unlock()
		c.view.Notify(MsgBusy)
		return Result{Kind: ResultBusy, Err: ErrAwaitingPrediction}
	}

	attempt := core.Move{From: from, To: to, Promotion: c.promotion}
	human, ok := c.rules.ApplyMove(attempt)
	if !ok {
		c.refreshBoard()
		c.refreshStatus()
		c.mu.Unlock()

		c.log.Debug().Str("move", attempt.String()).Msg("illegal human move")
		c.view.Notify(MsgIllegalMove)
		return Result{Kind: ResultIllegalHumanMove, Err: errors.Wrap(ErrIllegalHumanMove, attempt.String())}
	}

	c.record(human, core.SourceHuman)
	c.refreshBoard()
	c.refreshStatus()

	if c.rules.IsGameOver() {
		c.mu.Unlock()
		return Result{Kind: ResultGameOver, Human: human}
	}

	fen := c.rules.FEN()
	c.phase = PhaseAwaitingPrediction
	c.mu.Unlock()

	code, err := c.predictor.Predict(ctx, fen)

	c.mu.Lock()
	if err != nil {
		c.phase = PhaseIdle
		c.setStatus(MsgPredictionFailed)
		c.mu.Unlock()

		kind := ResultPredictionFailed
		if errors.Is(err, predict.ErrMissingMove) {
			kind = ResultPredictionMissingMove
		}
		c.log.Warn().Err(err).Str("fen", fen).Msg("prediction failed")
		return Result{Kind: kind, Human: human, Err: err}
	}

	reply, err := core.ParseMoveCode(code, c.promotion)
	applied := false
	if err == nil {
		reply, applied = c.rules.ApplyMove(reply)
	}
	if !applied {
		c.phase = PhaseIdle
		c.mu.Unlock()

		c.log.Warn().Str("code", code).Str("fen", fen).Msg("model move rejected")
		c.view.Notify(MsgIllegalRemoteMove)
		return Result{
			Kind:  ResultIllegalRemoteMove,
			Human: human,
			Reply: reply,
			Code:  code,
			Err:   errors.Wrap(ErrIllegalRemoteMove, code),
		}
	}
	c.record(reply, core.SourceModel)
	c.mu.Unlock()

	if c.thinkDelay > 0 {
		t := time.NewTimer(c.thinkDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}

	c.mu.Lock()
	c.refreshBoard()
	c.refreshStatus()
	c.phase = PhaseIdle
	c.mu.Unlock()

	return Result{Kind: ResultReplied, Human: human, Reply: reply, Code: code}
}

// RefreshBoard repaints the position and highlights the last move
func (c *Controller) RefreshBoard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshBoard()
}

// RefreshStatus projects the game state onto the status text and undo control
func (c *Controller) RefreshStatus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshStatus()
}

// PreviewLegalMoves highlights every legal destination from square
func (c *Controller) PreviewLegalMoves(square string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearHighlights()
	for _, m := range c.rules.LegalDestinations(square) {
		c.highlight(m.To)
	}
}

func (c *Controller) ClearPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearHighlights()
}

// Reset returns to the initial position and starts a new archive record
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseAwaitingPrediction {
		return ErrAwaitingPrediction
	}

	c.rules.Reset()
	c.clearHighlights()
	fen := c.rules.FEN()
	if fen == core.StartingFEN {
		c.renderer.ResetToStart()
	} else {
		c.renderer.Paint(fen)
	}
	c.refreshStatus()
	c.newArchiveGame()
	return nil
}

// UndoLastPair pops the model's reply and the human move before it, or just
// one move when only one has been played. It returns the number popped.
func (c *Controller) UndoLastPair() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseAwaitingPrediction {
		return 0, ErrAwaitingPrediction
	}

	popped := 0
	for i := 0; i < 2; i++ {
		if c.rules.HistoryLength() == 0 {
			break
		}
		if !c.rules.UndoLastMove() {
			break
		}
		popped++
	}

	if popped > 0 && c.recorder != nil {
		if err := c.recorder.DeleteUndoneMoves(c.gameID, c.rules.HistoryLength()); err != nil {
			c.log.Warn().Err(err).Str("game", c.gameID).Msg("archive truncate failed")
		}
	}

	c.refreshBoard()
	c.refreshStatus()
	return popped, nil
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Highlights returns the highlighted squares in sorted order
func (c *Controller) Highlights() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	squares := make([]string, 0, len(c.highlights))
	for sq := range c.highlights {
		squares = append(squares, sq)
	}
	sort.Strings(squares)
	return squares
}

// Status returns the last status text shown
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) FEN() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rules.FEN()
}

func (c *Controller) SideToMove() core.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rules.SideToMove()
}

func (c *Controller) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

func (c *Controller) refreshBoard() {
	c.clearHighlights()
	if c.rules.HistoryLength() > 0 {
		if last, ok := c.rules.LastMove(); ok {
			c.highlight(last.From)
			c.highlight(last.To)
		}
	}
	c.renderer.Paint(c.rules.FEN())
}

func (c *Controller) refreshStatus() {
	side := c.rules.SideToMove()

	var text string
	switch {
	case c.rules.IsCheckmate():
		text = fmt.Sprintf("Checkmate! %s wins!", core.OppositeColor(side).Name())
	case c.rules.IsDraw():
		text = MsgDrawn
	default:
		text = side.Name() + "'s turn"
		if c.rules.IsCheck() {
			text += " (Check!)"
		}
	}

	c.setStatus(text)
	c.view.SetUndoEnabled(c.rules.HistoryLength() > 0)
}

func (c *Controller) setStatus(text string) {
	c.status = text
	c.view.SetStatus(text)
}

func (c *Controller) clearHighlights() {
	c.renderer.ClearAllHighlights()
	clear(c.highlights)
}

func (c *Controller) highlight(square string) {
	c.highlights[square] = struct{}{}
	c.renderer.AddHighlight(square)
}

func (c *Controller) newArchiveGame() {
	if c.recorder == nil {
		return
	}
	c.gameID = uuid.New().String()
	if err := c.recorder.RecordNewGame(c.gameID, c.rules.FEN()); err != nil {
		c.log.Warn().Err(err).Msg("archive game record failed")
	}
}

// record must run right after m was applied
func (c *Controller) record(m core.Move, source core.Source) {
	if c.recorder == nil {
		return
	}
	ply := c.rules.HistoryLength()
	// the mover is the side not to move now
	color := core.OppositeColor(c.rules.SideToMove())
	if err := c.recorder.RecordMove(c.gameID, ply, m, c.rules.FEN(), color, source); err != nil {
		c.log.Warn().Err(err).Str("game", c.gameID).Int("ply", ply).Msg("archive move record failed")
	}
}

// PGN returns the game record, or "" when the rules engine cannot export one
func (c *Controller) PGN() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.rules.(Notation); ok {
		return n.PGN()
	}
	return ""
}

// Moves returns the played moves in UCI form
func (c *Controller) Moves() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.rules.(Notation); ok {
		return n.Moves()
	}
	return nil
}

// LegalDestinations lists legal target squares from square without touching highlights
func (c *Controller) LegalDestinations(square string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	moves := c.rules.LegalDestinations(square)
	squares := make([]string, 0, len(moves))
	for _, m := range moves {
		squares = append(squares, m.To)
	}
	return squares
}
