// Package match plays engine-versus-engine games. Games run concurrently,
// but each game owns both of its engines, so every search stays
// single-threaded.
package match

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/othello/internal/board"
	"github.com/hailam/othello/internal/config"
	"github.com/hailam/othello/internal/engine"
	"github.com/hailam/othello/internal/storage"
)

// clockMoves is the number of average moves a side's game clock covers.
const clockMoves = 32

// Player is one competitor.
type Player struct {
	Name    string
	Options engine.Options
}

// Result is one finished game.
type Result struct {
	Game       int
	ID         string // storage ID, when recorded
	Black      string
	White      string
	Moves      []board.Move
	BlackDiscs int
	WhiteDiscs int
	Winner     string
	Duration   time.Duration
}

// Summary aggregates a match.
type Summary struct {
	Games        int
	BlackWins    int
	WhiteWins    int
	Draws        int
	WinsByPlayer map[string]int
	AverageDiscs float64
	Results      []Result
}

// Players builds the two competitors from the configuration:
// search.algorithm against match.opponent.
func Players(cfg *config.Config) ([2]Player, error) {
	var players [2]Player
	for i, name := range []string{cfg.Search.Algorithm, cfg.Match.Opponent} {
		opts, err := cfg.EngineOptions()
		if err != nil {
			return players, err
		}
		algo, err := engine.ParseAlgorithm(name)
		if err != nil {
			return players, err
		}
		opts.Algorithm = algo
		players[i] = Player{Name: algo.String(), Options: opts}
	}
	if players[0].Name == players[1].Name {
		players[1].Name += "-2"
	}
	return players, nil
}

// Run plays the match described by cfg.Match, recording each game in store
// when it is not nil.
func Run(ctx context.Context, cfg *config.Config, store *storage.Storage) (Summary, error) {
	players, err := Players(cfg)
	if err != nil {
		return Summary{}, err
	}
	return RunPlayers(ctx, players, cfg.Match.Games, cfg.Match.Parallel, cfg.Match.MoveTime, store)
}

// RunPlayers plays games between two players, alternating colours, with at
// most parallel games in flight.
func RunPlayers(ctx context.Context, players [2]Player, games, parallel int, moveTime time.Duration, store *storage.Storage) (Summary, error) {
	results := make([]Result, games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i := 0; i < games; i++ {
		g.Go(func() error {
			black, white := players[0], players[1]
			if i%2 == 1 {
				black, white = white, black
			}
			res, err := PlayGame(gctx, black, white, moveTime)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			res.Game = i
			if store != nil {
				id, err := store.RecordGame(res.Record())
				if err != nil {
					return err
				}
				res.ID = id
			}
			results[i] = res
			log.Info().
				Int("game", i).
				Str("black", res.Black).
				Str("white", res.White).
				Int("black_discs", res.BlackDiscs).
				Int("white_discs", res.WhiteDiscs).
				Str("winner", res.Winner).
				Msg("game finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Summarize(results), nil
}

// PlayGame plays one game to the end. Each side's clock holds moveTime for
// an average move; a negative moveTime plays without clocks.
func PlayGame(ctx context.Context, black, white Player, moveTime time.Duration) (Result, error) {
	engines := [2]*engine.Engine{
		engine.NewEngine(board.Black, black.Options),
		engine.NewEngine(board.White, white.Options),
	}
	clocks := [2]time.Duration{moveTime * clockMoves, moveTime * clockMoves}
	if moveTime < 0 {
		clocks = [2]time.Duration{-1, -1}
	}

	start := time.Now()
	res := Result{Black: black.Name, White: white.Name}
	last := board.NoMove
	passes := 0
	side := board.Black
	for passes < 2 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		eng := engines[side]

		moveStart := time.Now()
		m := eng.Play(last, clocks[side])
		if clocks[side] >= 0 {
			clocks[side] = max(clocks[side]-time.Since(moveStart), 0)
		}

		if m == board.Pass {
			passes++
		} else {
			passes = 0
		}
		res.Moves = append(res.Moves, m)
		last = m
		side = side.Other()
	}

	// The side that passed last has applied every move.
	final := engines[side.Other()].Position()
	res.BlackDiscs = final.CountBlack()
	res.WhiteDiscs = final.CountWhite()
	res.Winner = storage.WinnerOf(res.BlackDiscs, res.WhiteDiscs)
	res.Duration = time.Since(start)
	return res, nil
}

// Record converts the result into a storage record.
func (r *Result) Record() storage.GameRecord {
	return storage.GameRecord{
		Moves:      lo.Map(r.Moves, func(m board.Move, _ int) string { return m.String() }),
		Black:      r.Black,
		White:      r.White,
		BlackDiscs: r.BlackDiscs,
		WhiteDiscs: r.WhiteDiscs,
		Winner:     r.Winner,
		Duration:   r.Duration,
	}
}

// WinnerName returns the name of the winning player, or "" for a draw.
func (r *Result) WinnerName() string {
	switch r.Winner {
	case storage.WinnerBlack:
		return r.Black
	case storage.WinnerWhite:
		return r.White
	}
	return ""
}

// Summarize aggregates finished games.
func Summarize(results []Result) Summary {
	decided := lo.Filter(results, func(r Result, _ int) bool { return r.Winner != storage.WinnerDraw })
	s := Summary{
		Games:        len(results),
		BlackWins:    lo.CountBy(results, func(r Result) bool { return r.Winner == storage.WinnerBlack }),
		WhiteWins:    lo.CountBy(results, func(r Result) bool { return r.Winner == storage.WinnerWhite }),
		Draws:        len(results) - len(decided),
		WinsByPlayer: lo.CountValuesBy(decided, func(r Result) string { return r.WinnerName() }),
		Results:      results,
	}
	if len(results) > 0 {
		discs := lo.SumBy(results, func(r Result) int { return r.BlackDiscs + r.WhiteDiscs })
		s.AverageDiscs = float64(discs) / float64(len(results))
	}
	return s
}
