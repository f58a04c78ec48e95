package commands

import (
	"fmt"
	"strings"

	"chessplay/internal/client/display"
	"chessplay/internal/controller"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move; the model replies",
		Usage:       "move <e2e4 | e2 e4>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Take back your last move and the model's reply",
		Usage:       "undo",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "reset",
		ShortName:   "n",
		Description: "Start over from the initial position",
		Usage:       "reset",
		Handler:     resetHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and status",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "legal",
		ShortName:   "l",
		Description: "Highlight legal destinations from a square",
		Usage:       "legal <square>",
		Handler:     legalHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "c",
		Description: "Clear highlights",
		Usage:       "clear",
		Handler:     clearHandler,
	})

	r.Register(&Command{
		Name:        "status",
		ShortName:   "s",
		Description: "Show game status",
		Usage:       "status",
		Handler:     statusHandler,
	})

	r.Register(&Command{
		Name:        "fen",
		ShortName:   "f",
		Description: "Show the current position as FEN",
		Usage:       "fen",
		Handler:     fenHandler,
	})

	r.Register(&Command{
		Name:        "pgn",
		ShortName:   "g",
		Description: "Show the game as PGN",
		Usage:       "pgn",
		Handler:     pgnHandler,
	})

	r.Register(&Command{
		Name:        "history",
		ShortName:   "y",
		Description: "Show move history",
		Usage:       "history",
		Handler:     historyHandler,
	})
}

func moveHandler(s Session, args []string) error {
	var from, to string
	switch {
	case len(args) == 1 && len(args[0]) >= 4:
		from, to = args[0][0:2], args[0][2:4]
	case len(args) == 2:
		from, to = args[0], args[1]
	default:
		return fmt.Errorf("usage: move <e2e4 | e2 e4>")
	}

	from, to = strings.ToLower(from), strings.ToLower(to)
	res := s.Controller().HandleHumanMove(s.Context(), from, to)

	out := s.Out()
	switch res.Kind {
	case controller.ResultReplied:
		fmt.Fprintf(out, "%sModel played: %s%s\n", display.Magenta, res.Reply, display.Reset)
	case controller.ResultIllegalRemoteMove:
		fmt.Fprintf(out, "%sModel sent: %q%s\n", display.Yellow, res.Code, display.Reset)
	case controller.ResultPredictionFailed, controller.ResultPredictionMissingMove:
		fmt.Fprintf(out, "%s%v%s\n", display.Yellow, res.Err, display.Reset)
	}
	return nil
}

func undoHandler(s Session, args []string) error {
	n, err := s.Controller().UndoLastPair()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(s.Out(), "%sNothing to undo%s\n", display.Yellow, display.Reset)
		return nil
	}
	fmt.Fprintf(s.Out(), "%sUndid %d move(s)%s\n", display.Green, n, display.Reset)
	return nil
}

func resetHandler(s Session, args []string) error {
	if err := s.Controller().Reset(); err != nil {
		return err
	}
	fmt.Fprintf(s.Out(), "%sNew game%s\n", display.Green, display.Reset)
	return nil
}

func showBoardHandler(s Session, args []string) error {
	s.Controller().RefreshBoard()
	s.Controller().RefreshStatus()
	return nil
}

func legalHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: legal <square>")
	}
	square := strings.ToLower(args[0])

	c := s.Controller()
	c.PreviewLegalMoves(square)
	s.Terminal().Redraw()

	dests := c.Highlights()
	if len(dests) == 0 {
		fmt.Fprintf(s.Out(), "%sNo legal moves from %s%s\n", display.Yellow, square, display.Reset)
		return nil
	}
	fmt.Fprintf(s.Out(), "%s%s: %s%s\n", display.Cyan, square, strings.Join(dests, " "), display.Reset)
	return nil
}

func clearHandler(s Session, args []string) error {
	s.Controller().ClearPreview()
	s.Terminal().Redraw()
	return nil
}

func statusHandler(s Session, args []string) error {
	c := s.Controller()
	fmt.Fprintf(s.Out(), "Status: %s\n", c.Status())
	fmt.Fprintf(s.Out(), "Undo: %v | Moves: %d\n", s.Terminal().UndoEnabled(), len(c.Moves()))
	return nil
}

func fenHandler(s Session, args []string) error {
	fmt.Fprintln(s.Out(), s.Controller().FEN())
	return nil
}

func pgnHandler(s Session, args []string) error {
	fmt.Fprintln(s.Out(), s.Controller().PGN())
	return nil
}

func historyHandler(s Session, args []string) error {
	moves := s.Controller().Moves()
	if len(moves) == 0 {
		fmt.Fprintf(s.Out(), "%sNo moves yet%s\n", display.Yellow, display.Reset)
		return nil
	}
	for _, line := range display.MovePairs(moves) {
		fmt.Fprintln(s.Out(), line)
	}
	fmt.Fprintf(s.Out(), "Current FEN: %s\n", s.Controller().FEN())
	return nil
}
