package core

import (
	"fmt"
	"strings"
)

// Promotion is the piece a pawn becomes on the last rank, as a lowercase UCI letter
type Promotion byte

const (
	PromoteNone   Promotion = 0
	PromoteQueen  Promotion = 'q'
	PromoteRook   Promotion = 'r'
	PromoteBishop Promotion = 'b'
	PromoteKnight Promotion = 'n'
)

func (p Promotion) String() string {
	if p == PromoteNone {
		return ""
	}
	return string(rune(p))
}

// ParsePromotion accepts q, r, b, n (any case) or a full piece name
func ParsePromotion(s string) (Promotion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "queen":
		return PromoteQueen, nil
	case "r", "rook":
		return PromoteRook, nil
	case "b", "bishop":
		return PromoteBishop, nil
	case "n", "knight":
		return PromoteKnight, nil
	default:
		return PromoteNone, fmt.Errorf("invalid promotion piece: %q (use q, r, b or n)", s)
	}
}

// Move is a structured move. Squares are algebraic ("e2") and are not checked here.
type Move struct {
	From      string
	To        string
	Promotion Promotion
}

// String returns the compact move code, e.g. "e2e4" or "a7a8q"
func (m Move) String() string {
	return m.From + m.To + m.Promotion.String()
}

// ParseMoveCode decodes a compact move code. The first two characters are the origin,
// the next two the destination; any trailing promotion letter is replaced by promo.
func ParseMoveCode(code string, promo Promotion) (Move, error) {
	code = strings.TrimSpace(code)
	if len(code) < 4 || len(code) > 5 {
		return Move{}, fmt.Errorf("invalid move code %q: expected 4-5 characters", code)
	}
	return Move{
		From:      code[0:2],
		To:        code[2:4],
		Promotion: promo,
	}, nil
}

// IsSquare reports whether s names a board square in algebraic notation
func IsSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
