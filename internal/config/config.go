// Package config holds the client and server settings, their defaults, flag bindings
// and validation.
package config

import (
	"flag"
	"fmt"
	"time"

	"chessplay/internal/core"
	"chessplay/internal/validation"
)

const (
	DefaultEndpoint   = "http://localhost:8000/predict"
	DefaultThinkDelay = 500 * time.Millisecond
	DefaultTimeout    = 30 * time.Second
)

// Client configures the interactive clients (REPL and TUI)
type Client struct {
	Endpoint    string        `validate:"required,url"`
	Promotion   string        `validate:"required,oneof=q r b n"`
	ThinkDelay  time.Duration `validate:"gte=0"`
	Timeout     time.Duration `validate:"gt=0"`
	Theme       string        `validate:"oneof=auto off brown green gray"`
	StartFEN    string        `validate:"omitempty,max=100"`
	StoragePath string
	HistoryFile string
	LogLevel    string `validate:"oneof=debug info warn error disabled"`
	LogFile     string
}

func DefaultClient() Client {
	return Client{
		Endpoint:    DefaultEndpoint,
		Promotion:   "q",
		ThinkDelay:  DefaultThinkDelay,
		Timeout:     DefaultTimeout,
		Theme:       "auto",
		HistoryFile: ".chess_history",
		LogLevel:    "warn",
	}
}

// Bind registers the client flags on fs, using the current values as defaults
func (c *Client) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "Prediction service URL")
	fs.StringVar(&c.Promotion, "promotion", c.Promotion, "Promotion piece for all pawn promotions (q|r|b|n)")
	fs.DurationVar(&c.ThinkDelay, "think-delay", c.ThinkDelay, "Display delay before showing the model's move")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Prediction request timeout")
	fs.StringVar(&c.Theme, "theme", c.Theme, "Board theme (auto|off|brown|green|gray)")
	fs.StringVar(&c.StartFEN, "fen", c.StartFEN, "Start from this position instead of the initial one")
	fs.StringVar(&c.StoragePath, "storage-path", c.StoragePath, "Path to SQLite game archive (disabled if empty)")
	fs.StringVar(&c.HistoryFile, "history-file", c.HistoryFile, "Readline history file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug|info|warn|error|disabled)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Write logs to this file instead of stderr")
}

func (c *Client) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

// PromotionPiece returns the configured promotion, defaulting to queen
func (c *Client) PromotionPiece() core.Promotion {
	p, err := core.ParsePromotion(c.Promotion)
	if err != nil {
		return core.PromoteQueen
	}
	return p
}

// Server configures the prediction service
type Server struct {
	Host       string `validate:"required"`
	Port       int    `validate:"min=1,max=65535"`
	EnginePath string
	Workers    int    `validate:"min=0,max=16"`
	SearchTime int    `validate:"min=100,max=10000"` // ms
	Level      int    `validate:"min=0,max=20"`
	Fallback   string `validate:"oneof=first random"`
	Dev        bool
	PIDPath    string
	PIDLock    bool
	LogLevel   string `validate:"oneof=debug info warn error disabled"`
}

func DefaultServer() Server {
	return Server{
		Host:       "localhost",
		Port:       8000,
		EnginePath: "stockfish",
		Workers:    2,
		SearchTime: 1000,
		Level:      10,
		Fallback:   "first",
		LogLevel:   "info",
	}
}

func (s *Server) Bind(fs *flag.FlagSet) {
	fs.StringVar(&s.Host, "host", s.Host, "API server host")
	fs.IntVar(&s.Port, "port", s.Port, "API server port")
	fs.StringVar(&s.EnginePath, "engine", s.EnginePath, "UCI engine binary (empty disables the engine)")
	fs.IntVar(&s.Workers, "workers", s.Workers, "Engine worker count (0 disables the engine)")
	fs.IntVar(&s.SearchTime, "search-time", s.SearchTime, "Engine search time in milliseconds (100-10000)")
	fs.IntVar(&s.Level, "level", s.Level, "Engine skill level (0-20)")
	fs.StringVar(&s.Fallback, "fallback", s.Fallback, "Legal-move fallback strategy (first|random)")
	fs.BoolVar(&s.Dev, "dev", s.Dev, "Development mode (relaxed rate limits)")
	fs.StringVar(&s.PIDPath, "pid", s.PIDPath, "Optional path to write PID file")
	fs.BoolVar(&s.PIDLock, "pid-lock", s.PIDLock, "Lock PID file to allow only one instance (requires -pid)")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "Log level (debug|info|warn|error|disabled)")
}

func (s *Server) Validate() error {
	if err := validation.Struct(s); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if s.PIDLock && s.PIDPath == "" {
		return fmt.Errorf("invalid server config: -pid-lock requires -pid")
	}
	return nil
}

// EngineEnabled reports whether engine workers should be started
func (s *Server) EngineEnabled() bool {
	return s.EnginePath != "" && s.Workers > 0
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
