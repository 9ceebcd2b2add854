package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/othello/internal/board"
	"github.com/hailam/othello/internal/config"
	"github.com/hailam/othello/internal/storage"
)

func newTestShell(t *testing.T, store *storage.Storage) *Shell {
	t.Helper()
	cfg := config.Default()
	cfg.Search.MaxDepth = 2
	sh, err := New(cfg, store, &bytes.Buffer{})
	require.NoError(t, err)
	return sh
}

func TestPlayAndGo(t *testing.T) {
	sh := newTestShell(t, nil)

	resp, err := sh.Execute("moves")
	require.NoError(t, err)
	assert.Equal(t, "Black: d3 c4 f5 e6", resp.String())

	_, err = sh.Execute("go")
	assert.Error(t, err, "engine must wait for the human")

	resp, err = sh.Execute("play d3")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), "White to move")
	assert.Equal(t, 5, sh.Engine().Position().DiscCount())

	resp, err = sh.Execute("go")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.String(), "engine plays "))
	assert.Equal(t, board.Black, sh.Turn())
	assert.Equal(t, 6, sh.Engine().Position().DiscCount())
}

func TestIllegalPlay(t *testing.T) {
	sh := newTestShell(t, nil)

	_, err := sh.Execute("play a1")
	assert.Error(t, err)
	_, err = sh.Execute("play pass")
	assert.Error(t, err)
	_, err = sh.Execute("play z9")
	assert.ErrorIs(t, err, board.ErrBadNotation)
	_, err = sh.Execute("frobnicate")
	assert.Error(t, err)
	assert.Equal(t, 4, sh.Engine().Position().DiscCount())
}

func TestUndo(t *testing.T) {
	sh := newTestShell(t, nil)

	_, err := sh.Execute("undo")
	assert.Error(t, err)

	_, err = sh.Execute("play f5")
	require.NoError(t, err)
	_, err = sh.Execute("go")
	require.NoError(t, err)

	_, err = sh.Execute("undo")
	require.NoError(t, err)
	pos := sh.Engine().Position()
	assert.Equal(t, 4, pos.DiscCount())
	assert.Equal(t, board.Black, sh.Turn())
	assert.Equal(t, board.NewPosition(board.Black).Fingerprint(), pos.Fingerprint())
}

func TestNewAsWhite(t *testing.T) {
	sh := newTestShell(t, nil)

	_, err := sh.Execute("new white")
	require.NoError(t, err)
	_, err = sh.Execute("play d3")
	assert.Error(t, err, "black moves first")

	_, err = sh.Execute("go")
	require.NoError(t, err)
	assert.Equal(t, board.White, sh.Turn())
}

func TestSearchEvalProbe(t *testing.T) {
	sh := newTestShell(t, nil)

	resp, err := sh.Execute("search alphabeta 3")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), "alphabeta depth 3:")

	resp, err = sh.Execute("probe")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.String(), "hit: move "))

	resp, err = sh.Execute("eval")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), "mobility 4/4")

	_, err = sh.Execute("search bogo 3")
	assert.Error(t, err)
	_, err = sh.Execute("search minimax x")
	assert.Error(t, err)
}

func TestLoadQuotedAndPass(t *testing.T) {
	sh := newTestShell(t, nil)

	// Black cannot move; white can.
	resp, err := sh.Execute(`load "wb" black`)
	require.NoError(t, err)
	assert.Contains(t, resp.String(), "Black to move")

	resp, err = sh.Execute("moves")
	require.NoError(t, err)
	assert.Equal(t, "Black: pass", resp.String())

	_, err = sh.Execute("play pass")
	require.NoError(t, err)
	resp, err = sh.Execute("go")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.String(), "engine plays c1"))
	assert.Contains(t, resp.String(), "game over: white")
}

func TestRender(t *testing.T) {
	sh := newTestShell(t, nil)
	path := filepath.Join(t.TempDir(), "board.png")

	_, err := sh.Execute("render " + path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestRenderMissingDirectory(t *testing.T) {
	sh := newTestShell(t, nil)
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := sh.Execute("render " + filepath.Join(dir, "board.png"))
	assert.Error(t, err)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestHistoryFile(t *testing.T) {
	dir, err := storage.GetDataDir()
	if err != nil {
		assert.Empty(t, historyFile())
		return
	}
	assert.Equal(t, filepath.Join(dir, "history"), historyFile())
}

func TestQuit(t *testing.T) {
	sh := newTestShell(t, nil)
	_, err := sh.Execute("quit")
	assert.ErrorIs(t, err, errQuit)

	resp, err := sh.Execute("   ")
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestRecordsFinishedGame(t *testing.T) {
	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()
	sh := newTestShell(t, store)

	_, err = sh.Execute("stats")
	require.NoError(t, err)

	// The human always takes the first legal move.
	for i := 0; i < 200 && !sh.Engine().Position().IsDone(); i++ {
		if sh.Turn() == sh.human {
			var m board.Move = board.Pass
			if moves := sh.Engine().Position().GenerateLegalMoves(sh.Turn()); moves.Len() > 0 {
				m = moves.Get(0)
			}
			_, err = sh.Execute("play " + m.String())
		} else {
			_, err = sh.Execute("go")
		}
		require.NoError(t, err)
	}
	require.True(t, sh.Engine().Position().IsDone())

	stats, err := store.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GamesPlayed)

	games, err := store.ListGames()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "human", games[0].Black)

	resp, err := sh.Execute("stats")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), "games 1")
}

func TestPreferencesPersist(t *testing.T) {
	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	sh := newTestShell(t, store)
	_, err = sh.Execute("new white")
	require.NoError(t, err)

	again := newTestShell(t, store)
	assert.Equal(t, board.White, again.human)
}
