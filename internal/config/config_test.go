package config

import (
	"flag"
	"testing"
	"time"

	"chessplay/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	c := DefaultClient()
	require.NoError(t, c.Validate())
	assert.Equal(t, core.PromoteQueen, c.PromotionPiece())

	s := DefaultServer()
	require.NoError(t, s.Validate())
	assert.True(t, s.EngineEnabled())
	assert.Equal(t, "localhost:8000", s.Addr())
}

func TestClientFlags(t *testing.T) {
	c := DefaultClient()
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	c.Bind(fs)

	err := fs.Parse([]string{"-endpoint", "http://model:9000/predict", "-promotion", "n", "-think-delay", "0s"})
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "http://model:9000/predict", c.Endpoint)
	assert.Equal(t, core.PromoteKnight, c.PromotionPiece())
	assert.Equal(t, time.Duration(0), c.ThinkDelay)
}

func TestClientValidation(t *testing.T) {
	c := DefaultClient()
	c.Promotion = "k"
	c.Endpoint = "not a url"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Promotion must be one of")
	assert.Contains(t, err.Error(), "Endpoint must be a valid URL")

	c = DefaultClient()
	c.Timeout = 0
	assert.Error(t, c.Validate())
}

func TestServerValidation(t *testing.T) {
	s := DefaultServer()
	s.SearchTime = 50
	assert.Error(t, s.Validate())

	s = DefaultServer()
	s.PIDLock = true
	assert.ErrorContains(t, s.Validate(), "-pid-lock requires -pid")

	s = DefaultServer()
	s.Workers = 0
	require.NoError(t, s.Validate())
	assert.False(t, s.EngineEnabled())
}
