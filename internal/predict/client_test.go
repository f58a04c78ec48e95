package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chessplay/internal/core"
	"chessplay/internal/logging"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/predict", 2*time.Second, logging.Nop())
}

func TestPredictSendsFEN(t *testing.T) {
	const fen = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req core.PredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, fen, req.FEN)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"move":"e7e5"}`))
	})

	move, err := c.Predict(context.Background(), fen)
	require.NoError(t, err)
	assert.Equal(t, "e7e5", move)
}

func TestPredictFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`, ErrTransport},
		{"bad request", http.StatusBadRequest, `{"error":"invalid FEN","code":"INVALID_FEN"}`, ErrTransport},
		{"not json", http.StatusOK, `<html>`, ErrTransport},
		{"wrong type", http.StatusOK, `{"move":42}`, ErrTransport},
		{"missing field", http.StatusOK, `{"best":"e7e5"}`, ErrMissingMove},
		{"null move", http.StatusOK, `{"move":null}`, ErrMissingMove},
		{"empty move", http.StatusOK, `{"move":""}`, ErrMissingMove},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.Predict(context.Background(), "8/8/8/8/8/8/8/8 w - - 0 1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestPredictErrorDetailInMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid FEN","code":"INVALID_FEN","details":"bad rank"}`))
	})

	_, err := c.Predict(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid FEN: bad rank")
}

func TestPredictNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, logging.Nop())
	_, err := c.Predict(context.Background(), "8/8/8/8/8/8/8/8 w - - 0 1")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestPredictContextCancel(t *testing.T) {
	release := make(chan struct{})
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Predict(ctx, "8/8/8/8/8/8/8/8 w - - 0 1")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestSetEndpoint(t *testing.T) {
	c := New("http://a/predict", time.Second, logging.Nop())
	c.SetEndpoint(" http://b/predict ")
	assert.Equal(t, "http://b/predict", c.Endpoint())
}
