// Package main serves move predictions over HTTP. Moves come from a pool of
// UCI engine workers when one is configured, falling back to a legal-move
// picker so that every non-terminal position gets an answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessplay/internal/config"
	"chessplay/internal/logging"
	"chessplay/internal/predictor"
	"chessplay/internal/server/http"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	cfg := config.DefaultServer()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log := logging.New(os.Stderr, cfg.LogLevel, true)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(cfg config.Server, log zerolog.Logger) (err error) {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.PIDPath != "" {
		pid, perr := acquirePIDFile(cfg.PIDPath, cfg.PIDLock)
		if perr != nil {
			return fmt.Errorf("failed to manage PID file: %w", perr)
		}
		defer func() {
			if rerr := pid.Release(); rerr != nil {
				err = multierror.Append(err, rerr)
			}
		}()
		log.Info().Str("path", cfg.PIDPath).Bool("lock", cfg.PIDLock).Msg("PID file created")
	}

	chain, pool := buildPredictors(cfg, log)
	engineStatus := "fallback"
	if pool != nil {
		engineStatus = "ok"
	}

	app := http.NewFiberApp(chain, http.Config{
		DevMode:      cfg.Dev,
		AccessLog:    accessLog(log),
		EngineStatus: func() string { return engineStatus },
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("engine", engineStatus).
			Bool("dev", cfg.Dev).
			Msg("prediction server listening")
		return app.Listen(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		var result *multierror.Error
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
		}
		if pool != nil {
			if err := pool.Shutdown(gracefulShutdownTimeout); err != nil {
				result = multierror.Append(result, fmt.Errorf("engine pool shutdown: %w", err))
			}
		}
		return result.ErrorOrNil()
	})

	err = g.Wait()
	log.Info().Msg("server exited")
	return err
}

// buildPredictors returns the chain to serve and the engine pool inside it, if any
func buildPredictors(cfg config.Server, log zerolog.Logger) (*predictor.Chain, *predictor.Pool) {
	var predictors []predictor.Predictor
	var pool *predictor.Pool

	if cfg.EngineEnabled() {
		p, err := predictor.NewPool(predictor.PoolConfig{
			Workers:    cfg.Workers,
			SearchTime: cfg.SearchTime,
			Level:      cfg.Level,
		}, predictor.UCIFactory(cfg.EnginePath), log)
		if err != nil {
			log.Warn().Err(err).Str("engine", cfg.EnginePath).Msg("engine unavailable, serving legal-move fallback only")
		} else {
			pool = p
			predictors = append(predictors, p)
		}
	}

	predictors = append(predictors, predictor.NewLegal(cfg.Fallback, uint64(time.Now().UnixNano())))
	return predictor.NewChain(log, predictors...), pool
}

// accessLog routes fiber's access log through zerolog at debug level
func accessLog(log zerolog.Logger) io.Writer {
	if log.GetLevel() > zerolog.DebugLevel {
		return nil
	}
	return &zerologWriter{log: log.With().Str("component", "access").Logger()}
}

type zerologWriter struct {
	log zerolog.Logger
}

func (w *zerologWriter) Write(p []byte) (int, error) {
	w.log.Debug().Msg(string(trimNewline(p)))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		return p[:n-1]
	}
	return p
}
