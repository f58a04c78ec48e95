// Package predict is the HTTP client for the move-prediction service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"chessplay/internal/core"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Failure kinds. Callers test with errors.Is.
var (
	// ErrTransport covers network errors, non-2xx statuses and bodies that are not valid JSON
	ErrTransport = errors.New("prediction request failed")
	// ErrMissingMove is a well-formed reply without a usable move field
	ErrMissingMove = errors.New("prediction response has no move")
)

const maxResponseBytes = 64 << 10

type Client struct {
	mu         sync.RWMutex
	endpoint   string
	HTTPClient *http.Client
	log        zerolog.Logger
}

func New(endpoint string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "predict").Logger(),
	}
}

// SetEndpoint updates the prediction URL
func (c *Client) SetEndpoint(url string) {
	c.mu.Lock()
	c.endpoint = strings.TrimSpace(url)
	c.mu.Unlock()
}

func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// Predict posts the position and returns the raw compact move code from the reply
func (c *Client) Predict(ctx context.Context, fen string) (string, error) {
	endpoint := c.Endpoint()
	requestID := uuid.NewString()
	log := c.log.With().Str("rid", requestID).Logger()

	body, err := json.Marshal(core.PredictRequest{FEN: fen})
	if err != nil {
		return "", errors.Wrap(ErrTransport, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrapf(ErrTransport, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log.Debug().Str("url", endpoint).Str("fen", fen).Msg("prediction request")
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("prediction transport error")
		return "", errors.Wrap(ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrapf(ErrTransport, "read response: %v", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("prediction response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := describeError(respBody)
		log.Warn().Int("status", resp.StatusCode).Str("detail", detail).Msg("prediction service error")
		return "", errors.Wrapf(ErrTransport, "status %d %s", resp.StatusCode, detail)
	}

	var payload core.PredictResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		log.Warn().Err(err).Str("body", string(respBody)).Msg("prediction response not JSON")
		return "", errors.Wrapf(ErrTransport, "decode response: %v", err)
	}

	if payload.Move == nil || strings.TrimSpace(*payload.Move) == "" {
		log.Warn().Str("body", string(respBody)).Msg("prediction response without move")
		return "", ErrMissingMove
	}

	return strings.TrimSpace(*payload.Move), nil
}

// describeError extracts a short message from an error body
func describeError(body []byte) string {
	var errResp core.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		if errResp.Details != "" {
			return errResp.Error + ": " + errResp.Details
		}
		return errResp.Error
	}
	// FastAPI style {"detail": "..."}
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
