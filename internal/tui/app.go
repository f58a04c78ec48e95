package tui

import (
	"context"

	"chessplay/internal/controller"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

// App runs the tcell event loop around a controller
type App struct {
	screen tcell.Screen
	board  *Board
	ctrl   *controller.Controller
	log    zerolog.Logger

	dragFrom string
	hover    string
}

func NewApp(screen tcell.Screen, board *Board, ctrl *controller.Controller, log zerolog.Logger) *App {
	return &App{screen: screen, board: board, ctrl: ctrl, log: log}
}

// Run handles events until the user quits or ctx ends. The screen must
// already be initialised; Run does not call Fini.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.screen.EnableMouse(tcell.MouseMotionEvents)
	go func() {
		<-ctx.Done()
		a.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
	}()

	a.ctrl.Start()
	a.board.Draw()

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
			a.board.Draw()

		case *tcell.EventResize:
			a.screen.Sync()
			a.board.Draw()

		case *tcell.EventKey:
			if a.handleKey(ctx, ev) {
				return nil
			}

		case *tcell.EventMouse:
			a.handleMouse(ctx, ev)
		}
	}
}

// handleKey reports whether the app should quit
func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'u':
			if _, err := a.ctrl.UndoLastPair(); err != nil {
				a.board.Notify(controller.MsgBusy)
			}
		case 'r':
			if err := a.ctrl.Reset(); err != nil {
				a.board.Notify(controller.MsgBusy)
			}
		}
	}
	return false
}

func (a *App) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	x, y := ev.Position()
	square := SquareAt(x, y)

	if ev.Buttons()&tcell.Button1 != 0 {
		if a.dragFrom == "" && square != "" {
			a.dragFrom = square
		}
		return
	}

	if a.dragFrom != "" {
		from := a.dragFrom
		a.dragFrom = ""
		if square != "" && square != from {
			go func() {
				res := a.ctrl.HandleHumanMove(ctx, from, square)
				a.log.Debug().Str("from", from).Str("to", square).Stringer("result", res.Kind).Msg("move")
			}()
			a.hover = ""
			return
		}
	}

	// hover preview
	if square == a.hover {
		return
	}
	a.hover = square
	if square == "" {
		a.ctrl.ClearPreview()
		return
	}
	a.ctrl.PreviewLegalMoves(square)
}
