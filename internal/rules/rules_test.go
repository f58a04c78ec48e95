package rules

import (
	"testing"

	"chessplay/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, e *Engine, codes ...string) {
	t.Helper()
	for _, code := range codes {
		m, err := core.ParseMoveCode(code, core.PromoteQueen)
		require.NoError(t, err)
		_, ok := e.ApplyMove(m)
		require.True(t, ok, "move %s should be legal", code)
	}
}

func TestApplyLegalMove(t *testing.T) {
	e := New()
	applied, ok := e.ApplyMove(core.Move{From: "e2", To: "e4", Promotion: core.PromoteQueen})
	require.True(t, ok)
	assert.Equal(t, core.Move{From: "e2", To: "e4"}, applied, "promotion dropped on a plain pawn push")
	assert.Equal(t, core.ColorBlack, e.SideToMove())
	assert.Equal(t, 1, e.HistoryLength())

	last, ok := e.LastMove()
	require.True(t, ok)
	assert.Equal(t, "e2", last.From)
	assert.Equal(t, "e4", last.To)
}

func TestIllegalMoveLeavesPositionUntouched(t *testing.T) {
	e := New()
	before := e.FEN()

	for _, m := range []core.Move{
		{From: "e2", To: "e5"},
		{From: "e7", To: "e5"}, // wrong side
		{From: "z9", To: "e4"},
		{From: "", To: ""},
	} {
		_, ok := e.ApplyMove(m)
		assert.False(t, ok, m.String())
	}
	assert.Equal(t, before, e.FEN())
	assert.Equal(t, 0, e.HistoryLength())
}

func TestLegalDestinations(t *testing.T) {
	e := New()
	dests := e.LegalDestinations("b1")
	require.Len(t, dests, 2)
	assert.Equal(t, "a3", dests[0].To)
	assert.Equal(t, "c3", dests[1].To)

	assert.Empty(t, e.LegalDestinations("e1"))
	assert.Empty(t, e.LegalDestinations("nope"))
}

func TestCheckmate(t *testing.T) {
	e := New()
	play(t, e, "f2f3", "e7e5", "g2g4", "d8h4")

	assert.True(t, e.IsCheckmate())
	assert.True(t, e.IsCheck())
	assert.True(t, e.IsGameOver())
	assert.False(t, e.IsDraw())
	assert.Equal(t, core.ColorWhite, e.SideToMove(), "mated side is to move")

	_, ok := e.ApplyMove(core.Move{From: "a2", To: "a3"})
	assert.False(t, ok, "no moves after the game is over")
	assert.Empty(t, e.LegalDestinations("a2"))
}

func TestStalemateIsDraw(t *testing.T) {
	e, err := NewFromFEN("7k/8/5QK1/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)
	play(t, e, "f6f7")

	assert.True(t, e.IsDraw())
	assert.False(t, e.IsCheckmate())
	assert.True(t, e.IsGameOver())
}

func TestThreefoldRepetitionIsDraw(t *testing.T) {
	e := New()
	play(t, e, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8")
	assert.True(t, e.IsDraw())
}

func TestPromotionPiece(t *testing.T) {
	e, err := NewFromFEN("8/P7/8/8/8/8/8/k6K w - - 0 1")
	require.NoError(t, err)

	applied, ok := e.ApplyMove(core.Move{From: "a7", To: "a8", Promotion: core.PromoteKnight})
	require.True(t, ok)
	assert.Equal(t, core.PromoteKnight, applied.Promotion)
	assert.Equal(t, "a7a8n", e.Moves()[0])
}

func TestUndoReplaysHistory(t *testing.T) {
	e := New()
	start := e.FEN()
	play(t, e, "e2e4")
	afterFirst := e.FEN()
	play(t, e, "e7e5")

	require.True(t, e.UndoLastMove())
	assert.Equal(t, afterFirst, e.FEN())
	assert.Equal(t, 1, e.HistoryLength())

	require.True(t, e.UndoLastMove())
	assert.Equal(t, start, e.FEN())
	assert.False(t, e.UndoLastMove())
}

func TestResetToInitialFEN(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	e, err := NewFromFEN(fen)
	require.NoError(t, err)
	play(t, e, "e1g1")

	e.Reset()
	assert.Equal(t, fen, e.FEN())
	assert.Equal(t, 0, e.HistoryLength())
	assert.Equal(t, fen, e.InitialFEN())
}

func TestNewFromFENRejectsGarbage(t *testing.T) {
	_, err := NewFromFEN("not a fen")
	assert.Error(t, err)
	assert.Error(t, ValidateFEN("8/8/8"))
	assert.NoError(t, ValidateFEN(StartingFEN))
}
