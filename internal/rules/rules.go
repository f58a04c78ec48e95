// Package rules adapts github.com/notnil/chess to the move/turn/terminal contract the
// controller consumes. It is the single owner of position and history.
package rules

import (
	"sort"
	"strings"

	"chessplay/internal/core"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

const StartingFEN = core.StartingFEN

var squares = func() map[string]chess.Square {
	m := make(map[string]chess.Square, 64)
	for sq := chess.A1; sq <= chess.H8; sq++ {
		m[sq.String()] = sq
	}
	return m
}()

var promotions = map[core.Promotion]chess.PieceType{
	core.PromoteQueen:  chess.Queen,
	core.PromoteRook:   chess.Rook,
	core.PromoteBishop: chess.Bishop,
	core.PromoteKnight: chess.Knight,
}

// Engine holds one game. It is not safe for concurrent use; the controller serializes access.
type Engine struct {
	initialFEN string
	game       *chess.Game
	played     []core.Move
}

// New returns an engine at the standard starting position
func New() *Engine {
	e, _ := NewFromFEN(StartingFEN)
	return e
}

// NewFromFEN returns an engine whose initial position (and reset target) is fen
func NewFromFEN(fen string) (*Engine, error) {
	g, err := newGame(fen)
	if err != nil {
		return nil, err
	}
	return &Engine{initialFEN: fen, game: g}, nil
}

func newGame(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid FEN %q", fen)
	}
	return chess.NewGame(opt), nil
}

// ApplyMove plays m if it is legal. The promotion piece only matters for pawn moves to the
// last rank; for any other move it is ignored. Returns false and leaves the position untouched
// when the move is illegal, malformed or the game is already over.
func (e *Engine) ApplyMove(m core.Move) (core.Move, bool) {
	if e.IsGameOver() {
		return core.Move{}, false
	}
	found := e.find(m)
	if found == nil {
		return core.Move{}, false
	}
	if err := e.game.Move(found); err != nil {
		return core.Move{}, false
	}
	applied := toCore(found)
	e.played = append(e.played, applied)
	return applied, true
}

func (e *Engine) find(m core.Move) *chess.Move {
	from, ok := squares[strings.ToLower(m.From)]
	if !ok {
		return nil
	}
	to, ok := squares[strings.ToLower(m.To)]
	if !ok {
		return nil
	}
	want, ok := promotions[m.Promotion]
	if !ok {
		want = chess.Queen
	}
	for _, vm := range e.game.ValidMoves() {
		if vm.S1() != from || vm.S2() != to {
			continue
		}
		if vm.Promo() == chess.NoPieceType || vm.Promo() == want {
			return vm
		}
	}
	return nil
}

// LegalDestinations lists the legal moves starting on square, ordered by destination.
// Promotion variants collapse into one entry per destination.
func (e *Engine) LegalDestinations(square string) []core.Move {
	from, ok := squares[strings.ToLower(square)]
	if !ok || e.IsGameOver() {
		return nil
	}
	seen := make(map[chess.Square]bool)
	var moves []core.Move
	for _, vm := range e.game.ValidMoves() {
		if vm.S1() != from || seen[vm.S2()] {
			continue
		}
		seen[vm.S2()] = true
		moves = append(moves, core.Move{From: vm.S1().String(), To: vm.S2().String()})
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].To < moves[j].To })
	return moves
}

// FEN returns the canonical serialized position
func (e *Engine) FEN() string {
	return e.game.Position().String()
}

func (e *Engine) SideToMove() core.Color {
	if e.game.Position().Turn() == chess.Black {
		return core.ColorBlack
	}
	return core.ColorWhite
}

func (e *Engine) IsCheckmate() bool {
	return e.game.Method() == chess.Checkmate
}

// IsDraw covers stalemate, insufficient material, threefold repetition and the fifty-move rule
func (e *Engine) IsDraw() bool {
	if e.game.Outcome() == chess.Draw {
		return true
	}
	for _, method := range e.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			return true
		}
	}
	return false
}

// IsCheck reports whether the side to move is in check. Only known from the move that led
// here, so a position loaded from FEN with no history reports false.
func (e *Engine) IsCheck() bool {
	moves := e.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

func (e *Engine) IsGameOver() bool {
	return e.IsCheckmate() || e.IsDraw() || e.game.Outcome() != chess.NoOutcome
}

func (e *Engine) HistoryLength() int {
	return len(e.played)
}

func (e *Engine) LastMove() (core.Move, bool) {
	if len(e.played) == 0 {
		return core.Move{}, false
	}
	return e.played[len(e.played)-1], true
}

// UndoLastMove takes back one move by replaying the remaining history from the initial position
func (e *Engine) UndoLastMove() bool {
	if len(e.played) == 0 {
		return false
	}
	remaining := e.played[:len(e.played)-1]

	g, err := newGame(e.initialFEN)
	if err != nil {
		return false
	}
	e.game = g
	e.played = nil
	for _, m := range remaining {
		if _, ok := e.ApplyMove(m); !ok {
			// History was legal when played; a failure here means the library disagrees with itself
			return false
		}
	}
	return true
}

// Reset returns to the initial position and drops history
func (e *Engine) Reset() {
	g, err := newGame(e.initialFEN)
	if err != nil {
		return
	}
	e.game = g
	e.played = nil
}

// Moves returns the history as compact move codes
func (e *Engine) Moves() []string {
	out := make([]string, len(e.played))
	for i, m := range e.played {
		out[i] = m.String()
	}
	return out
}

// PGN returns the game in PGN movetext
func (e *Engine) PGN() string {
	return e.game.String()
}

// InitialFEN is the position Reset returns to
func (e *Engine) InitialFEN() string {
	return e.initialFEN
}

func toCore(m *chess.Move) core.Move {
	cm := core.Move{From: m.S1().String(), To: m.S2().String()}
	switch m.Promo() {
	case chess.Queen:
		cm.Promotion = core.PromoteQueen
	case chess.Rook:
		cm.Promotion = core.PromoteRook
	case chess.Bishop:
		cm.Promotion = core.PromoteBishop
	case chess.Knight:
		cm.Promotion = core.PromoteKnight
	}
	return cm
}

// ValidateFEN reports whether fen parses as a position
func ValidateFEN(fen string) error {
	_, err := chess.FEN(fen)
	return errors.Wrap(err, "invalid FEN")
}
