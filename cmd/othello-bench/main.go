// othello-bench compares the search algorithms on one position and counts
// perft nodes.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othello/internal/board"
	"github.com/hailam/othello/internal/config"
	"github.com/hailam/othello/internal/engine"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", 6, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches per algorithm")
	boardFlag := flag.String("board", "", "64-symbol board to search (empty = opening)")
	sideFlag := flag.String("side", "black", "side to move")
	perftFlag := flag.Int("perft", 0, "count perft to this depth instead of searching")
	noCache := flag.Bool("nocache", false, "disable the transposition cache")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	cfg.SetupLogging()

	side, ok := board.ParseSide(*sideFlag)
	if !ok {
		log.Fatal().Str("side", *sideFlag).Msg("unknown side")
	}
	if *depthFlag < 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must not be negative")
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	newPosition := func() *board.Position {
		pos := board.NewPosition(side)
		if *boardFlag != "" {
			pos.Load(*boardFlag)
		}
		return pos
	}

	if *perftFlag > 0 {
		for d := 1; d <= *perftFlag; d++ {
			start := time.Now()
			nodes := board.Perft(newPosition(), side, d)
			fmt.Printf("perft %d: %d (%s)\n", d, nodes, time.Since(start).Round(time.Microsecond))
		}
		return
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	fmt.Printf("searchbench: depth=%d repeat=%d side=%s\n", *depthFlag, *repeatFlag, side)
	fmt.Println(newPosition())

	algos := []engine.Algorithm{engine.AlgoMinimax, engine.AlgoAlphaBeta, engine.AlgoNegascout}
	for _, algo := range algos {
		depth := *depthFlag
		if algo == engine.AlgoMinimax {
			depth = min(depth, engine.MinimaxMaxDepth)
		}

		var nodes uint64
		var move board.Move
		var score int
		start := time.Now()
		for i := 0; i < *repeatFlag; i++ {
			var cache *engine.Cache
			if !*noCache {
				cache = engine.NewCache(opts.ChainCap, opts.Eviction)
			}
			s := engine.NewSearcher(newPosition(), opts.Eval, cache)
			move, score = s.Search(algo, depth, side)
			nodes += s.Nodes()
		}
		elapsed := time.Since(start)
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Printf("%-10s depth %2d  move %-4s score %6d  nodes %10d  time %10s  nps %.0f\n",
			algo, depth, move, score, nodes, elapsed.Round(time.Microsecond), nps)
	}
}
