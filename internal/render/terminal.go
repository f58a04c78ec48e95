// Package render draws the board and status as ANSI text.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"chessplay/internal/board"
	"chessplay/internal/client/display"
	"chessplay/internal/core"

	"golang.org/x/term"
)

type ColorTheme string

const (
	ThemeAuto  ColorTheme = "auto"
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg     string
	darkBg      string
	highlightBg string
	white       string
	black       string
	reset       string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg:     "\033[48;5;230m", // Beige
		darkBg:      "\033[48;5;94m",  // Brown
		highlightBg: "\033[48;5;178m", // Gold
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
	ThemeGreen: {
		lightBg:     "\033[48;5;157m", // Light green
		darkBg:      "\033[48;5;22m",  // Dark green
		highlightBg: "\033[48;5;185m", // Yellow
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
	ThemeGray: {
		lightBg:     "\033[48;5;251m", // Light gray
		darkBg:      "\033[48;5;240m", // Dark gray
		highlightBg: "\033[48;5;74m",  // Steel blue
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
}

// ResolveTheme maps "auto" to brown on a terminal and off otherwise
func ResolveTheme(name string, out io.Writer) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(strings.TrimSpace(name)))
	if theme == ThemeAuto || theme == "" {
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return ThemeBrown, nil
		}
		return ThemeOff, nil
	}
	if _, ok := themes[theme]; !ok {
		return "", fmt.Errorf("invalid theme: %s (use: auto, off, brown, green, gray)", name)
	}
	return theme, nil
}

// Terminal is a Renderer and View that writes to a text stream. Highlights are
// collected and shown on the next paint.
type Terminal struct {
	mu         sync.Mutex
	out        io.Writer
	theme      ColorTheme
	fen        string
	highlights map[string]bool
	status     string
	undo       bool
}

func NewTerminal(out io.Writer, theme ColorTheme) *Terminal {
	if _, ok := themes[theme]; !ok {
		theme = ThemeOff
	}
	return &Terminal{
		out:        out,
		theme:      theme,
		fen:        core.StartingFEN,
		highlights: make(map[string]bool),
	}
}

func (t *Terminal) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	t.mu.Lock()
	t.theme = theme
	t.mu.Unlock()
	return nil
}

func (t *Terminal) Theme() ColorTheme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

func (t *Terminal) Paint(fen string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fen = fen
	t.draw()
}

func (t *Terminal) ResetToStart() {
	t.Paint(core.StartingFEN)
}

func (t *Terminal) AddHighlight(square string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.highlights[square] = true
}

func (t *Terminal) ClearAllHighlights() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.highlights)
}

// Redraw paints the last position again with the current highlights
func (t *Terminal) Redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draw()
}

func (t *Terminal) SetStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = text
	fmt.Fprintf(t.out, "%s%s%s\n", t.color(display.Cyan), text, t.color(display.Reset))
}

func (t *Terminal) SetUndoEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = enabled
}

func (t *Terminal) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s%s%s\n", t.color(display.Red), msg, t.color(display.Reset))
}

func (t *Terminal) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Terminal) UndoEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.undo
}

// color suppresses escape codes when theming is off
func (t *Terminal) color(code string) string {
	if t.theme == ThemeOff {
		return ""
	}
	return code
}

func (t *Terminal) draw() {
	b, err := board.ParseFEN(t.fen)
	if err != nil {
		fmt.Fprintf(t.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(t.out, t.renderBoard(b))
}

func (t *Terminal) renderBoard(b *board.Board) string {
	theme := themes[t.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			square := board.SquareName(r, f)
			piece := b.PieceAt(square)
			lit := t.highlights[square]

			if t.theme == ThemeOff {
				// No colors: '*' marks a highlighted square
				ch := byte('.')
				if piece != 0 {
					ch = piece
				}
				mark := byte(' ')
				if lit {
					mark = '*'
				}
				sb.WriteString(fmt.Sprintf("%c%c", ch, mark))
				continue
			}

			bg := theme.darkBg
			if board.IsLight(r, f) {
				bg = theme.lightBg
			}
			if lit {
				bg = theme.highlightBg
			}

			if piece == 0 {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
			} else {
				color := theme.black
				if piece >= 'A' && piece <= 'Z' {
					color = theme.white
				}
				sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, color, piece, theme.reset))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h\n")

	return sb.String()
}
