package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"chessplay/internal/core"
	"chessplay/internal/logging"
	"chessplay/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	var out bytes.Buffer

	require.NoError(t, run([]string{"init", "-path", path}, &out))
	assert.Contains(t, out.String(), "Database initialized")

	store, err := storage.NewStore(path, false, logging.Nop())
	require.NoError(t, err)
	require.NoError(t, store.RecordNewGame("game-1", core.StartingFEN))
	require.NoError(t, store.RecordMove("game-1", 1, core.Move{From: "e2", To: "e4"}, "fen", core.ColorWhite, core.SourceHuman))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, store.Flush(ctx))
	require.NoError(t, store.Close())

	out.Reset()
	require.NoError(t, run([]string{"query", "-path", path}, &out))
	assert.Contains(t, out.String(), "game-1")
	assert.Contains(t, out.String(), "Found 1 game(s)")

	out.Reset()
	require.NoError(t, run([]string{"query", "-path", path, "-json"}, &out))
	assert.Contains(t, out.String(), `"gameId": "game-1"`)

	out.Reset()
	require.NoError(t, run([]string{"moves", "-path", path, "-gameId", "game-1"}, &out))
	assert.Contains(t, out.String(), "e2e4")

	out.Reset()
	require.NoError(t, run([]string{"delete", "-path", path}, &out))
	assert.Contains(t, out.String(), "Database deleted")
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"vacuum"}, &out))
	assert.Error(t, run([]string{"init"}, &out))
	assert.Error(t, run([]string{"moves", "-path", filepath.Join(t.TempDir(), "x.db")}, &out))
}
