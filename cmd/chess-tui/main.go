// Package main runs the mouse-driven board: drag pieces to move, hover to
// preview legal destinations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"chessplay/internal/config"
	"chessplay/internal/controller"
	"chessplay/internal/logging"
	"chessplay/internal/predict"
	"chessplay/internal/rules"
	"chessplay/internal/storage"
	"chessplay/internal/tui"

	"github.com/gdamore/tcell/v2"
	"github.com/hashicorp/go-multierror"
)

func main() {
	cfg := config.DefaultClient()
	cfg.Bind(flag.CommandLine)
	ascii := flag.Bool("ascii", false, "Draw pieces as letters instead of chess glyphs")
	flag.Parse()

	if err := run(cfg, *ascii); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Client, ascii bool) (err error) {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stderr belongs to the screen while it runs
	logOut := io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logging.New(logOut, cfg.LogLevel, false)

	engine := rules.New()
	if cfg.StartFEN != "" {
		if engine, err = rules.NewFromFEN(cfg.StartFEN); err != nil {
			return fmt.Errorf("invalid -fen: %w", err)
		}
	}

	client := predict.New(cfg.Endpoint, cfg.Timeout, log)
	opts := []controller.Option{
		controller.WithPromotion(cfg.PromotionPiece()),
		controller.WithThinkDelay(cfg.ThinkDelay),
		controller.WithLogger(log),
	}

	if cfg.StoragePath != "" {
		store, serr := storage.NewStore(cfg.StoragePath, false, log)
		if serr != nil {
			return fmt.Errorf("failed to initialize storage: %w", serr)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				err = multierror.Append(err, cerr)
			}
		}()
		if serr := store.InitDB(); serr != nil {
			return fmt.Errorf("failed to initialize schema: %w", serr)
		}
		store.SetEndpoint(client.Endpoint)
		opts = append(opts, controller.WithRecorder(store))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	board := tui.NewBoard(screen)
	board.SetASCII(ascii)
	ctrl := controller.New(engine, board, board, client, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tui.NewApp(screen, board, ctrl, log).Run(ctx)
}
