// Package main implements the interactive terminal client: the human plays
// against a remote move-prediction service from a readline prompt.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"chessplay/cmd/chess-client/cli"
	"chessplay/internal/client/commands"
	"chessplay/internal/client/display"
	"chessplay/internal/client/session"
	"chessplay/internal/config"
	"chessplay/internal/controller"
	"chessplay/internal/logging"
	"chessplay/internal/predict"
	"chessplay/internal/render"
	"chessplay/internal/rules"
	"chessplay/internal/storage"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "%sCLI error: %v%s\n", display.Red, err, display.Reset)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg := config.DefaultClient()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
}

func run(cfg config.Client) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	theme, err := render.ResolveTheme(cfg.Theme, os.Stdout)
	if err != nil {
		return err
	}
	term := render.NewTerminal(os.Stdout, theme)

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
		store, err := storage.NewStore(cfg.StoragePath, false, log)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close storage cleanly")
			}
		}()
		store.SetEndpoint(client.Endpoint)
		opts = append(opts, controller.WithRecorder(store))
	}

	ctrl := controller.New(engine, term, term, client, opts...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          os.Stdout,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s := &session.Session{
		Ctx:    ctx,
		Ctrl:   ctrl,
		Term:   term,
		Client: client,
		Writer: rl.Stdout(),
	}

	fmt.Printf("%sChess vs. Model%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sEndpoint: %s%s\n", display.Cyan, cfg.Endpoint, display.Reset)
	fmt.Printf("Type 'help' for commands, or enter a move like e2e4\n\n")

	ctrl.Start()
	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(ctrl))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := registry.Execute(line); err != nil {
			break
		}
	}
	return nil
}

// openLogger writes to -log-file when set; on stderr only warnings surface so
// the board stays readable
func openLogger(cfg config.Client) (zerolog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return logging.New(os.Stderr, cfg.LogLevel, true), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return logging.New(f, cfg.LogLevel, false), func() { f.Close() }, nil
}

func buildPrompt(ctrl *controller.Controller) string {
	base := "chess"

	if id := ctrl.GameID(); id != "" {
		base += display.Yellow + " [" + display.White + id[:8] + display.Yellow + "]"
	}
	base += display.Reset + " - " + display.ColorForTurn(ctrl.SideToMove())
	return display.Prompt(base)
}
