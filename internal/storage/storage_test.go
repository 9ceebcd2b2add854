package storage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	rec := GameRecord{
		Moves:      []string{"d3", "c5", "e6", "pass"},
		Black:      "negascout",
		White:      "alphabeta",
		BlackDiscs: 40,
		WhiteDiscs: 24,
		Duration:   3 * time.Second,
	}
	id, err := s.RecordGame(rec)
	require.NoError(t, err)
	assert.Equal(t, GameID("d3 c5 e6 pass"), id)

	got, err := s.LoadGame(id)
	require.NoError(t, err)
	assert.Equal(t, rec.Moves, got.Moves)
	assert.Equal(t, WinnerBlack, got.Winner)
	assert.Equal(t, id, got.ID)
	assert.False(t, got.PlayedAt.IsZero())

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.BlackWins)
	assert.Equal(t, 64, stats.TotalDiscs)
	assert.Equal(t, 1, stats.WinsByPlayer["negascout"])
	assert.Equal(t, 3*time.Second, stats.TotalPlayTime)
}

func TestRecordGameDeduplicates(t *testing.T) {
	s := openTest(t)

	rec := GameRecord{Moves: []string{"f5", "d6"}, BlackDiscs: 30, WhiteDiscs: 30}
	_, err := s.RecordGame(rec)
	require.NoError(t, err)
	_, err = s.RecordGame(rec)
	require.NoError(t, err)

	games, err := s.ListGames()
	require.NoError(t, err)
	assert.Len(t, games, 1)

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.Draws)
}

func TestListGames(t *testing.T) {
	s := openTest(t)
	for _, moves := range [][]string{{"d3"}, {"c4"}, {"f5"}} {
		_, err := s.RecordGame(GameRecord{Moves: moves, BlackDiscs: 1, WhiteDiscs: 2})
		require.NoError(t, err)
	}

	games, err := s.ListGames()
	require.NoError(t, err)
	require.Len(t, games, 3)
	for _, g := range games {
		assert.Equal(t, WinnerWhite, g.Winner)
	}

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.WhiteWins)
	assert.InDelta(t, 0.0, stats.BlackWinRate(), 1e-9)
	assert.InDelta(t, 3.0, stats.AverageDiscs(), 1e-9)
}

func TestLoadMissingGame(t *testing.T) {
	s := openTest(t)
	_, err := s.LoadGame("0000000000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEmptyStats(t *testing.T) {
	s := openTest(t)
	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.GamesPlayed)
	assert.NotNil(t, stats.WinsByPlayer)
	assert.Zero(t, stats.BlackWinRate())
}

func TestPreferences(t *testing.T) {
	s := openTest(t)

	prefs, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences().PlayerSide, prefs.PlayerSide)

	prefs.PlayerSide = "white"
	prefs.Algorithm = "alphabeta"
	require.NoError(t, s.SavePreferences(prefs))

	got, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "white", got.PlayerSide)
	assert.Equal(t, "alphabeta", got.Algorithm)
	assert.False(t, got.LastPlayed.IsZero())
}

func TestWinnerOf(t *testing.T) {
	assert.Equal(t, WinnerBlack, WinnerOf(33, 31))
	assert.Equal(t, WinnerWhite, WinnerOf(10, 54))
	assert.Equal(t, WinnerDraw, WinnerOf(32, 32))
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.RecordGame(GameRecord{Moves: []string{"e6"}, BlackDiscs: 4, WhiteDiscs: 1})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GamesPlayed)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
