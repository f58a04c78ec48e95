package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaintPlainBoard(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, ThemeOff)

	r.ResetToStart()

	out := buf.String()
	assert.Contains(t, out, "8 r n b q k b n r  8")
	assert.Contains(t, out, "1 R N B Q K B N R  1")
	assert.Contains(t, out, "4 . . . . . . . .  4")
	assert.NotContains(t, out, "\033[")
}

func TestHighlightsShowOnNextPaint(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, ThemeOff)

	r.AddHighlight("e2")
	r.AddHighlight("e4")
	assert.Empty(t, buf.String(), "highlighting alone does not draw")

	r.Paint("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	out := buf.String()
	assert.Contains(t, out, "4 . . . . P*. . .  4")
	assert.Contains(t, out, "2 P P P P .*P P P  2")

	buf.Reset()
	r.ClearAllHighlights()
	r.Redraw()
	assert.NotContains(t, buf.String(), "*")
}

func TestThemedBoardUsesHighlightBackground(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, ThemeGreen)

	r.AddHighlight("e4")
	r.ResetToStart()

	assert.Contains(t, buf.String(), themes[ThemeGreen].highlightBg)
	assert.Equal(t, 1, strings.Count(buf.String(), themes[ThemeGreen].highlightBg))
}

func TestStatusAndNotices(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, ThemeOff)

	r.SetStatus("White's turn")
	r.Notify("Illegal move! Please try again.")
	r.SetUndoEnabled(true)

	assert.Equal(t, "White's turn\nIllegal move! Please try again.\n", buf.String())
	assert.Equal(t, "White's turn", r.Status())
	assert.True(t, r.UndoEnabled())
}

func TestPaintBadFEN(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, ThemeOff)
	r.Paint("8/8")
	assert.Contains(t, buf.String(), "Error: invalid FEN")
}

func TestResolveTheme(t *testing.T) {
	var buf bytes.Buffer

	theme, err := ResolveTheme("auto", &buf)
	require.NoError(t, err)
	assert.Equal(t, ThemeOff, theme, "a buffer is not a terminal")

	theme, err = ResolveTheme("Gray", &buf)
	require.NoError(t, err)
	assert.Equal(t, ThemeGray, theme)

	_, err = ResolveTheme("neon", &buf)
	assert.Error(t, err)

	r := NewTerminal(&buf, ThemeOff)
	assert.Error(t, r.SetTheme("neon"))
	require.NoError(t, r.SetTheme(ThemeBrown))
	assert.Equal(t, ThemeBrown, r.Theme())
}
