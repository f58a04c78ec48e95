// Package tui is a mouse-driven terminal board built on tcell.
package tui

import (
	"sync"
	"sync/atomic"

	"chessplay/internal/board"
	"chessplay/internal/core"

	"github.com/gdamore/tcell/v2"
)

const (
	originX     = 3 // room for rank labels
	originY     = 1
	squareWidth = 3
)

var (
	lightSquare = tcell.NewRGBColor(0xf0, 0xd9, 0xb5)
	darkSquare  = tcell.NewRGBColor(0xb5, 0x88, 0x63)
	litSquare   = tcell.NewRGBColor(0xcd, 0xd2, 0x6a)
	whitePiece  = tcell.ColorWhite
	blackPiece  = tcell.ColorBlack
)

var glyphs = map[byte]rune{
	'K': '♔', 'Q': '♕', 'R': '♖', 'B': '♗', 'N': '♘', 'P': '♙',
	'k': '♚', 'q': '♛', 'r': '♜', 'b': '♝', 'n': '♞', 'p': '♟',
}

// Board is the controller's Renderer and View. Every change posts an
// interrupt so the event loop redraws; nothing here touches the screen
// outside Draw.
type Board struct {
	mu         sync.Mutex
	screen     tcell.Screen
	fen        string
	highlights map[string]bool
	status     string
	notice     string
	undo       bool
	ascii      bool

	// at most one redraw interrupt sits in the event queue
	pending atomic.Bool
}

func NewBoard(screen tcell.Screen) *Board {
	return &Board{
		screen:     screen,
		fen:        core.StartingFEN,
		highlights: make(map[string]bool),
	}
}

// SetASCII draws FEN letters instead of chess glyphs
func (b *Board) SetASCII(ascii bool) {
	b.mu.Lock()
	b.ascii = ascii
	b.mu.Unlock()
	b.changed()
}

func (b *Board) changed() {
	if !b.pending.CompareAndSwap(false, true) {
		return
	}
	if err := b.screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
		b.pending.Store(false)
	}
}

func (b *Board) Paint(fen string) {
	b.mu.Lock()
	b.fen = fen
	b.mu.Unlock()
	b.changed()
}

func (b *Board) ResetToStart() {
	b.Paint(core.StartingFEN)
}

func (b *Board) AddHighlight(square string) {
	b.mu.Lock()
	b.highlights[square] = true
	b.mu.Unlock()
	b.changed()
}

func (b *Board) ClearAllHighlights() {
	b.mu.Lock()
	clear(b.highlights)
	b.mu.Unlock()
	b.changed()
}

func (b *Board) SetStatus(text string) {
	b.mu.Lock()
	b.status = text
	b.notice = ""
	b.mu.Unlock()
	b.changed()
}

func (b *Board) SetUndoEnabled(enabled bool) {
	b.mu.Lock()
	b.undo = enabled
	b.mu.Unlock()
	b.changed()
}

func (b *Board) Notify(msg string) {
	b.mu.Lock()
	b.notice = msg
	b.mu.Unlock()
	b.changed()
}

func (b *Board) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Board) UndoEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.undo
}

// SquareAt maps a screen cell to a square name, or "" off the board
func SquareAt(x, y int) string {
	if x < originX || y < originY {
		return ""
	}
	col := (x - originX) / squareWidth
	row := y - originY
	if col > 7 || row > 7 {
		return ""
	}
	return board.SquareName(row, col)
}

// Draw renders the current state; call it only from the event loop
func (b *Board) Draw() {
	b.pending.Store(false)
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.screen
	s.Clear()

	pos, err := board.ParseFEN(b.fen)
	if err != nil {
		drawText(s, 0, 0, tcell.StyleDefault.Foreground(tcell.ColorRed), err.Error())
		s.Show()
		return
	}

	for row := 0; row < 8; row++ {
		drawText(s, 0, originY+row, tcell.StyleDefault, string(rune('8'-row)))
		for col := 0; col < 8; col++ {
			square := board.SquareName(row, col)
			bg := darkSquare
			if board.IsLight(row, col) {
				bg = lightSquare
			}
			if b.highlights[square] {
				bg = litSquare
			}

			style := tcell.StyleDefault.Background(bg)
			ch := ' '
			if piece := pos.PieceAt(square); piece != 0 {
				fg := blackPiece
				if piece >= 'A' && piece <= 'Z' {
					fg = whitePiece
				}
				style = style.Foreground(fg).Bold(true)
				ch = rune(piece)
				if g, ok := glyphs[piece]; ok && !b.ascii {
					ch = g
				}
			}

			x := originX + col*squareWidth
			s.SetContent(x, originY+row, ' ', nil, style)
			s.SetContent(x+1, originY+row, ch, nil, style)
			s.SetContent(x+2, originY+row, ' ', nil, style)
		}
	}
	for col := 0; col < 8; col++ {
		drawText(s, originX+col*squareWidth+1, originY+8, tcell.StyleDefault, string(rune('a'+col)))
	}

	y := originY + 10
	drawText(s, 0, y, tcell.StyleDefault.Bold(true), b.status)
	if b.notice != "" {
		drawText(s, 0, y+1, tcell.StyleDefault.Foreground(tcell.ColorRed), b.notice)
	}

	help := "drag to move  r reset  q quit"
	if b.undo {
		help = "drag to move  u undo  r reset  q quit"
	}
	drawText(s, 0, y+3, tcell.StyleDefault.Dim(true), help)

	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
