package http

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"chessplay/internal/core"
	"chessplay/internal/predictor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	rateLimitRate         = 10 // req/sec
	defaultRequestTimeout = 10 * time.Second
)

type Config struct {
	DevMode        bool
	RequestTimeout time.Duration
	AccessLog      io.Writer // fiber access log; nil disables it
	// EngineStatus reports "ok" or "fallback" for /health
	EngineStatus func() string
}

// HTTPHandler serves move predictions
type HTTPHandler struct {
	predictor predictor.Predictor
	cfg       Config
	log       zerolog.Logger
}

func NewHTTPHandler(p predictor.Predictor, cfg Config, log zerolog.Logger) *HTTPHandler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.EngineStatus == nil {
		cfg.EngineStatus = func() string { return "fallback" }
	}
	return &HTTPHandler{predictor: p, cfg: cfg, log: log.With().Str("component", "http").Logger()}
}

func NewFiberApp(p predictor.Predictor, cfg Config, log zerolog.Logger) *fiber.App {
	h := NewHTTPHandler(p, cfg, log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          35 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
			Output: cfg.AccessLog,
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	maxReq := rateLimitRate
	if cfg.DevMode {
		maxReq = rateLimitRate * 2
	}
	rateLimit := limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	})

	app.Post("/predict", rateLimit, contentTypeValidator, validationMiddleware, h.Predict)

	return app
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with engine status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status: "healthy",
		Time:   time.Now().Unix(),
		Engine: h.cfg.EngineStatus(),
	})
}

// Predict answers {"fen": ...} with {"move": "<uci>"}, or a null move for a
// position without legal moves
func (h *HTTPHandler) Predict(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedBody").(*core.PredictRequest)
	if !ok || req == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.cfg.RequestTimeout)
	defer cancel()

	rid := c.Get("X-Request-ID")
	move, err := h.predictor.Predict(ctx, req.FEN)
	switch {
	case errors.Is(err, predictor.ErrInvalidFEN):
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid FEN",
			Code:    core.ErrInvalidFEN,
			Details: err.Error(),
		})
	case errors.Is(err, predictor.ErrNoLegalMoves):
		h.log.Debug().Str("rid", rid).Str("fen", req.FEN).Msg("no legal moves")
		return c.JSON(core.PredictResponse{})
	case err != nil:
		h.log.Error().Err(err).Str("rid", rid).Str("fen", req.FEN).Msg("prediction failed")
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error:   "prediction failed",
			Code:    core.ErrPredictionFailed,
			Details: err.Error(),
		})
	}

	h.log.Debug().Str("rid", rid).Str("fen", req.FEN).Str("move", move).Msg("predicted")
	return c.JSON(core.PredictResponse{Move: &move})
}
