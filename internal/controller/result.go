package controller

import (
	"chessplay/internal/core"

	"github.com/pkg/errors"
)

var (
	ErrIllegalHumanMove   = errors.New("illegal move")
	ErrIllegalRemoteMove  = errors.New("model suggested an illegal move")
	ErrAwaitingPrediction = errors.New("waiting for the model's reply")
)

// ResultKind says how a human move attempt ended
type ResultKind int

const (
	// ResultReplied: human move and model reply were both applied
	ResultReplied ResultKind = iota
	// ResultGameOver: human move applied and ended the game; the model was not asked
	ResultGameOver
	ResultIllegalHumanMove
	ResultIllegalRemoteMove
	ResultPredictionFailed
	ResultPredictionMissingMove
	ResultBusy
)

func (k ResultKind) String() string {
	switch k {
	case ResultReplied:
		return "replied"
	case ResultGameOver:
		return "game over"
	case ResultIllegalHumanMove:
		return "illegal human move"
	case ResultIllegalRemoteMove:
		return "illegal model move"
	case ResultPredictionFailed:
		return "prediction failed"
	case ResultPredictionMissingMove:
		return "prediction missing move"
	case ResultBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Result of HandleHumanMove
type Result struct {
	Kind  ResultKind
	Human core.Move // applied human move, zero if rejected
	Reply core.Move // model move, set when decoded
	Code  string    // raw move code returned by the service
	Err   error
}

// HumanApplied reports whether the human's move is on the board
func (r Result) HumanApplied() bool {
	switch r.Kind {
	case ResultIllegalHumanMove, ResultBusy:
		return false
	default:
		return true
	}
}
