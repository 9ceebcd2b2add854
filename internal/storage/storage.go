package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	gamePrefix     = "game/"
	keyStats       = "stats"
	keyPreferences = "preferences"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Result labels
const (
	WinnerBlack = "black"
	WinnerWhite = "white"
	WinnerDraw  = "draw"
)

// GameRecord is one finished game.
type GameRecord struct {
	ID         string        `json:"id"`
	Moves      []string      `json:"moves"` // in play order, passes included
	Black      string        `json:"black"` // player label, e.g. "negascout" or "human"
	White      string        `json:"white"`
	BlackDiscs int           `json:"black_discs"`
	WhiteDiscs int           `json:"white_discs"`
	Winner     string        `json:"winner"`
	Duration   time.Duration `json:"duration"`
	PlayedAt   time.Time     `json:"played_at"`
}

// Transcript returns the moves joined by spaces.
func (r *GameRecord) Transcript() string {
	return strings.Join(r.Moves, " ")
}

// GameID derives a record ID from a transcript. Identical games share an ID.
func GameID(transcript string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(transcript))
}

// WinnerOf labels the result of a final disc count.
func WinnerOf(blackDiscs, whiteDiscs int) string {
	switch {
	case blackDiscs > whiteDiscs:
		return WinnerBlack
	case whiteDiscs > blackDiscs:
		return WinnerWhite
	}
	return WinnerDraw
}

// GameStats aggregates every recorded game.
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	BlackWins     int            `json:"black_wins"`
	WhiteWins     int            `json:"white_wins"`
	Draws         int            `json:"draws"`
	TotalDiscs    int            `json:"total_discs"`
	WinsByPlayer  map[string]int `json:"wins_by_player"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByPlayer: make(map[string]int),
	}
}

// BlackWinRate returns black's win rate as a percentage (0-100)
func (s *GameStats) BlackWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.BlackWins) / float64(s.GamesPlayed) * 100
}

// AverageDiscs returns the mean number of discs on the final board.
func (s *GameStats) AverageDiscs() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalDiscs) / float64(s.GamesPlayed)
}

// Preferences are the interactive shell's remembered settings.
type Preferences struct {
	PlayerSide string        `json:"player_side"`
	Algorithm  string        `json:"algorithm"`
	MoveTime   time.Duration `json:"move_time"`
	LastPlayed time.Time     `json:"last_played"`
}

// DefaultPreferences returns default shell preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		PlayerSide: "black",
		Algorithm:  "negascout",
		MoveTime:   2 * time.Second,
	}
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir. An empty dir selects the
// platform data directory.
func Open(dir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dir)
	if err != nil {
		return nil, fmt.Errorf("database dir: %w", err)
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordGame stores a finished game and folds it into the statistics in one
// transaction. The ID and winner are filled in when empty. A game whose
// transcript was already recorded is not counted twice. The stored ID is
// returned.
func (s *Storage) RecordGame(rec GameRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = GameID(rec.Transcript())
	}
	if rec.Winner == "" {
		rec.Winner = WinnerOf(rec.BlackDiscs, rec.WhiteDiscs)
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now()
	}

	data, err := json.Marshal(&rec)
	if err != nil {
		return "", fmt.Errorf("encode game: %w", err)
	}

	key := []byte(gamePrefix + rec.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // already recorded
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.add(&rec)
		return saveJSON(txn, keyStats, stats)
	})
	if err != nil {
		return "", fmt.Errorf("record game %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

func (s *GameStats) add(rec *GameRecord) {
	s.GamesPlayed++
	s.TotalDiscs += rec.BlackDiscs + rec.WhiteDiscs
	s.TotalPlayTime += rec.Duration

	switch rec.Winner {
	case WinnerBlack:
		s.BlackWins++
		s.WinsByPlayer[rec.Black]++
	case WinnerWhite:
		s.WhiteWins++
		s.WinsByPlayer[rec.White]++
	default:
		s.Draws++
	}
}

// LoadGame returns the game stored under id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gamePrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return rec, nil
}

// ListGames returns every stored game in key order.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	var stats *GameStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*GameStats, error) {
	stats := NewGameStats()
	if err := loadJSON(txn, keyStats, stats); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if stats.WinsByPlayer == nil {
		stats.WinsByPlayer = make(map[string]int)
	}
	return stats, nil
}

// SavePreferences saves shell preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.db.Update(func(txn *badger.Txn) error {
		return saveJSON(txn, keyPreferences, prefs)
	})
}

// LoadPreferences loads shell preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		if err := loadJSON(txn, keyPreferences, prefs); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	})
	return prefs, err
}

func saveJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func loadJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
