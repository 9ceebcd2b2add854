// othello-match plays engine-versus-engine games and records the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othello/internal/config"
	"github.com/hailam/othello/internal/match"
	"github.com/hailam/othello/internal/storage"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	games      = flag.Int("games", 0, "number of games (overrides match.games)")
	parallel   = flag.Int("parallel", 0, "games in flight (overrides match.parallel)")
	opponent   = flag.String("opponent", "", "algorithm facing search.algorithm (overrides match.opponent)")
	noStore    = flag.Bool("nostore", false, "do not record games")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	if *games > 0 {
		cfg.Match.Games = *games
	}
	if *parallel > 0 {
		cfg.Match.Parallel = *parallel
	}
	if *opponent != "" {
		cfg.Match.Opponent = *opponent
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *storage.Storage
	if !*noStore {
		store, err = storage.Open(cfg.Storage.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open game store")
		}
		defer store.Close()
	}

	sum, err := match.Run(ctx, cfg, store)
	if err != nil {
		log.Error().Err(err).Msg("match aborted")
		return
	}

	fmt.Printf("games %d: black %d, white %d, draws %d, %.1f discs on average\n",
		sum.Games, sum.BlackWins, sum.WhiteWins, sum.Draws, sum.AverageDiscs)
	names := make([]string, 0, len(sum.WinsByPlayer))
	for name := range sum.WinsByPlayer {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %d wins\n", name, sum.WinsByPlayer[name])
	}
}
