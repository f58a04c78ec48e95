package controller

import (
	"context"

	"chessplay/internal/core"
)

// Rules is the authoritative game state. The controller never edits positions itself.
type Rules interface {
	// ApplyMove returns false when the move is illegal; nothing is mutated in that case
	ApplyMove(m core.Move) (core.Move, bool)
	LegalDestinations(square string) []core.Move
	FEN() string
	SideToMove() core.Color
	IsCheckmate() bool
	IsDraw() bool
	IsCheck() bool
	IsGameOver() bool
	HistoryLength() int
	LastMove() (core.Move, bool)
	UndoLastMove() bool
	Reset()
}

// Renderer paints positions and square highlights. It owns no chess semantics.
type Renderer interface {
	Paint(fen string)
	ResetToStart()
	AddHighlight(square string)
	ClearAllHighlights()
}

// View is the status region, the undo control and the notice channel
type View interface {
	SetStatus(text string)
	SetUndoEnabled(enabled bool)
	Notify(msg string)
}

// Predictor returns a compact move code for a position
type Predictor interface {
	Predict(ctx context.Context, fen string) (string, error)
}

// Recorder archives games. Failures are logged and never affect play.
type Recorder interface {
	RecordNewGame(gameID, initialFEN string) error
	RecordMove(gameID string, ply int, move core.Move, fenAfter string, color core.Color, source core.Source) error
	DeleteUndoneMoves(gameID string, afterPly int) error
}

// Notation is implemented by rules engines that can export the game record
type Notation interface {
	PGN() string
	Moves() []string
}
