package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"chessplay/internal/core"
	"chessplay/internal/logging"
	"chessplay/internal/predictor"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

func newApp(p predictor.Predictor) *fiber.App {
	return NewFiberApp(p, Config{DevMode: true}, logging.Nop())
}

func post(t *testing.T, app *fiber.App, body, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/predict", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestPredictReturnsMove(t *testing.T) {
	chain := predictor.NewChain(logging.Nop(), predictor.NewLegal(predictor.StrategyFirst, 0))
	app := newApp(chain)

	status, body := post(t, app, `{"fen":"`+afterE4+`"}`, "application/json")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp core.PredictResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Move)
	assert.Equal(t, "a7a5", *resp.Move)
}

func TestPredictTerminalPositionReturnsNullMove(t *testing.T) {
	app := newApp(predictor.NewLegal(predictor.StrategyFirst, 0))

	mate := "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	status, body := post(t, app, `{"fen":"`+mate+`"}`, "application/json; charset=utf-8")

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"move":null}`, string(body))
}

func TestPredictRejectsBadRequests(t *testing.T) {
	app := newApp(predictor.NewLegal(predictor.StrategyFirst, 0))

	cases := []struct {
		name        string
		body        string
		contentType string
		status      int
		code        string
	}{
		{"wrong content type", `fen=x`, "text/plain", fiber.StatusUnsupportedMediaType, core.ErrInvalidContent},
		{"not json", `{fen`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"missing fen", `{}`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"fen too long", `{"fen":"` + strings.Repeat("8/", 60) + `"}`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"invalid fen", `{"fen":"not a position"}`, "application/json", fiber.StatusBadRequest, core.ErrInvalidFEN},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := post(t, app, tc.body, tc.contentType)
			assert.Equal(t, tc.status, status, string(body))

			var resp core.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestPredictorFailureIs500(t *testing.T) {
	failing := predictor.Func(func(ctx context.Context, fen string) (string, error) {
		return "", errors.New("engine crashed")
	})
	app := newApp(failing)

	status, body := post(t, app, `{"fen":"`+afterE4+`"}`, "application/json")
	assert.Equal(t, fiber.StatusInternalServerError, status)

	var resp core.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, core.ErrPredictionFailed, resp.Code)
	assert.Contains(t, resp.Details, "engine crashed")
}

func TestHealth(t *testing.T) {
	app := NewFiberApp(predictor.NewLegal(predictor.StrategyFirst, 0), Config{
		EngineStatus: func() string { return "ok" },
	}, logging.Nop())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var health core.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Engine)
	assert.NotZero(t, health.Time)
}

func TestUnknownRoute(t *testing.T) {
	app := newApp(predictor.NewLegal(predictor.StrategyFirst, 0))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body core.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, core.ErrNotFound, body.Code)
}

func TestRateLimit(t *testing.T) {
	app := NewFiberApp(predictor.NewLegal(predictor.StrategyFirst, 0), Config{}, logging.Nop())

	limited := false
	for i := 0; i < rateLimitRate+5; i++ {
		status, _ := post(t, app, `{"fen":"`+afterE4+`"}`, "application/json")
		if status == fiber.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
