// Othello - an interactive console for playing against the engine
package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othello/internal/config"
	"github.com/hailam/othello/internal/shell"
	"github.com/hailam/othello/internal/storage"
)

var (
	configPath  = flag.String("config", "", "YAML configuration file")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	noStore     = flag.Bool("nostore", false, "do not record games")
	dumpDefault = flag.Bool("defaults", false, "print the default configuration and exit")
)

func main() {
	flag.Parse()

	if *dumpDefault {
		if err := config.WriteDefault(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("")
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	cfg.SetupLogging()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	var store *storage.Storage
	if !*noStore {
		store, err = storage.Open(cfg.Storage.Dir)
		if err != nil {
			log.Warn().Err(err).Msg("game records disabled")
		} else {
			defer store.Close()
		}
	}

	sh, err := shell.New(cfg, store, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	if err := sh.Run(); err != nil {
		log.Error().Err(err).Msg("")
	}
}
