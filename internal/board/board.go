// Package board decodes the piece placement of a FEN string for display. It knows nothing about
// move legality; renderers use it to turn a position string into squares.
package board

import (
	"fmt"
	"strings"

	"chessplay/internal/core"
)

const StartingFEN = core.StartingFEN

type Board struct {
	squares [8][8]byte
	turn    core.Color
}

// ParseFEN reads the placement field and, when present, the side to move.
// Castling, en passant and clocks are not needed for display and are ignored.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid FEN: empty")
	}

	b := &Board{turn: core.ColorWhite}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN: expected 8 ranks, got %d", len(ranks))
	}

	for r := 0; r < 8; r++ {
		file := 0
		for _, ch := range ranks[r] {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", ch):
				if file >= 8 {
					return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
				}
				b.squares[r][file] = byte(ch)
				file++
			default:
				return nil, fmt.Errorf("invalid FEN: unexpected %q in rank %d", ch, 8-r)
			}
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, file)
		}
	}

	if len(parts) > 1 {
		switch parts[1] {
		case "w":
			b.turn = core.ColorWhite
		case "b":
			b.turn = core.ColorBlack
		default:
			return nil, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
		}
	}

	return b, nil
}

// Start returns the standard initial position
func Start() *Board {
	b, _ := ParseFEN(StartingFEN)
	return b
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b.squares[r][f]
			if piece == 0 {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

func (b *Board) Turn() core.Color {
	return b.turn
}

// PieceAt returns the FEN letter on square, or 0 for an empty or invalid square
func (b *Board) PieceAt(square string) byte {
	if !core.IsSquare(square) {
		return 0
	}
	file := square[0] - 'a'
	rank := '8' - square[1]
	return b.squares[rank][file]
}

// SquareName returns the algebraic name for a display row (0 = rank 8) and column (0 = file a)
func SquareName(row, col int) string {
	return fmt.Sprintf("%c%c", 'a'+col, '8'-row)
}

// IsLight reports whether the square at display row/col is a light square
func IsLight(row, col int) bool {
	return (row+col)%2 == 0
}
