// Package predictor produces moves for the prediction service.
package predictor

import (
	"context"
	"regexp"
	"sort"
	"unicode"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

var (
	// ErrNoLegalMoves means the position is terminal; the service answers with a null move
	ErrNoLegalMoves = errors.New("no legal moves")
	ErrInvalidFEN   = errors.New("invalid FEN")
	ErrIllegalMove  = errors.New("suggested move is illegal")
)

// FEN shape check; full parsing is left to the chess library
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

type Predictor interface {
	Predict(ctx context.Context, fen string) (string, error)
}

// Func adapts a function to Predictor
type Func func(ctx context.Context, fen string) (string, error)

func (f Func) Predict(ctx context.Context, fen string) (string, error) {
	return f(ctx, fen)
}

// IsFENSafe rejects control characters, which could inject UCI commands, and
// anything not shaped like a six-field FEN
func IsFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

// ParsePosition validates fen and returns a game positioned on it
func ParsePosition(fen string) (*chess.Game, error) {
	if !IsFENSafe(fen) {
		return nil, errors.Wrap(ErrInvalidFEN, "malformed")
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidFEN, err.Error())
	}
	return chess.NewGame(opt), nil
}

// LegalMoves returns the legal moves of fen in UCI form, sorted
func LegalMoves(fen string) ([]string, error) {
	g, err := ParsePosition(fen)
	if err != nil {
		return nil, err
	}
	valid := g.ValidMoves()
	moves := make([]string, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, m.String())
	}
	sort.Strings(moves)
	return moves, nil
}

// IsLegal reports whether the UCI move is legal in fen
func IsLegal(fen, move string) bool {
	moves, err := LegalMoves(fen)
	if err != nil {
		return false
	}
	i := sort.SearchStrings(moves, move)
	return i < len(moves) && moves[i] == move
}
