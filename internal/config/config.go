// Package config loads engine, match and logging settings with viper from
// defaults, an optional YAML file and OTHELLO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hailam/othello/internal/engine"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "OTHELLO"

// SearchConfig controls the engine's policy layer.
type SearchConfig struct {
	Ceiling        time.Duration `mapstructure:"ceiling" yaml:"ceiling"`
	MaxDepth       int           `mapstructure:"max_depth" yaml:"max_depth"`
	Algorithm      string        `mapstructure:"algorithm" yaml:"algorithm"`
	EndgameEmpties int           `mapstructure:"endgame_empties" yaml:"endgame_empties"`
	GreedyBelow    time.Duration `mapstructure:"greedy_below" yaml:"greedy_below"`
}

// CacheConfig sizes the transposition cache.
type CacheConfig struct {
	ChainCap int    `mapstructure:"chain_cap" yaml:"chain_cap"`
	Eviction string `mapstructure:"eviction" yaml:"eviction"`
}

// EvalConfig holds the positional evaluator's coefficients.
type EvalConfig struct {
	Material         int `mapstructure:"material" yaml:"material"`
	Stability        int `mapstructure:"stability" yaml:"stability"`
	Edge             int `mapstructure:"edge" yaml:"edge"`
	Mobility         int `mapstructure:"mobility" yaml:"mobility"`
	Frontier         int `mapstructure:"frontier" yaml:"frontier"`
	Square           int `mapstructure:"square" yaml:"square"`
	EndgameEmpties   int `mapstructure:"endgame_empties" yaml:"endgame_empties"`
	EndgameMaterial  int `mapstructure:"endgame_material" yaml:"endgame_material"`
	EndgameStability int `mapstructure:"endgame_stability" yaml:"endgame_stability"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// StorageConfig locates the game record database.
type StorageConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// MatchConfig controls self-play matches.
type MatchConfig struct {
	Games    int           `mapstructure:"games" yaml:"games"`
	Parallel int           `mapstructure:"parallel" yaml:"parallel"`
	MoveTime time.Duration `mapstructure:"move_time" yaml:"move_time"`
	// Opponent is the algorithm facing search.algorithm.
	Opponent string `mapstructure:"opponent" yaml:"opponent"`
}

// Config is the complete configuration.
type Config struct {
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Eval    EvalConfig    `mapstructure:"eval" yaml:"eval"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Match   MatchConfig   `mapstructure:"match" yaml:"match"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := engine.DefaultOptions()
	w := engine.DefaultEvalWeights
	return &Config{
		Search: SearchConfig{
			Ceiling:        opts.MoveLimit,
			MaxDepth:       opts.MaxDepth,
			Algorithm:      opts.Algorithm.String(),
			EndgameEmpties: opts.EndgameEmpties,
			GreedyBelow:    opts.GreedyBelow,
		},
		Cache: CacheConfig{
			ChainCap: engine.DefaultChainCap,
			Eviction: engine.PopularityEviction{}.Name(),
		},
		Eval: EvalConfig{
			Material:         w.Material,
			Stability:        w.Stability,
			Edge:             w.Edge,
			Mobility:         w.Mobility,
			Frontier:         w.Frontier,
			Square:           w.Square,
			EndgameEmpties:   w.EndgameEmpties,
			EndgameMaterial:  w.EndgameMaterial,
			EndgameStability: w.EndgameStability,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Match: MatchConfig{
			Games:    10,
			Parallel: 4,
			MoveTime: 200 * time.Millisecond,
			Opponent: engine.AlgoAlphaBeta.String(),
		},
	}
}

// setDefaults registers every key so environment overrides apply even when
// the file does not mention them.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("search.ceiling", c.Search.Ceiling)
	v.SetDefault("search.max_depth", c.Search.MaxDepth)
	v.SetDefault("search.algorithm", c.Search.Algorithm)
	v.SetDefault("search.endgame_empties", c.Search.EndgameEmpties)
	v.SetDefault("search.greedy_below", c.Search.GreedyBelow)

	v.SetDefault("cache.chain_cap", c.Cache.ChainCap)
	v.SetDefault("cache.eviction", c.Cache.Eviction)

	v.SetDefault("eval.material", c.Eval.Material)
	v.SetDefault("eval.stability", c.Eval.Stability)
	v.SetDefault("eval.edge", c.Eval.Edge)
	v.SetDefault("eval.mobility", c.Eval.Mobility)
	v.SetDefault("eval.frontier", c.Eval.Frontier)
	v.SetDefault("eval.square", c.Eval.Square)
	v.SetDefault("eval.endgame_empties", c.Eval.EndgameEmpties)
	v.SetDefault("eval.endgame_material", c.Eval.EndgameMaterial)
	v.SetDefault("eval.endgame_stability", c.Eval.EndgameStability)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.pretty", c.Log.Pretty)

	v.SetDefault("storage.dir", c.Storage.Dir)

	v.SetDefault("match.games", c.Match.Games)
	v.SetDefault("match.parallel", c.Match.Parallel)
	v.SetDefault("match.move_time", c.Match.MoveTime)
	v.SetDefault("match.opponent", c.Match.Opponent)
}

// Load reads the configuration. An empty path uses defaults and the
// environment only; a missing file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot use.
func (c *Config) Validate() error {
	var errs []error
	if _, err := engine.ParseAlgorithm(c.Search.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("search.algorithm: %w", err))
	}
	if _, err := engine.ParseAlgorithm(c.Match.Opponent); err != nil {
		errs = append(errs, fmt.Errorf("match.opponent: %w", err))
	}
	if _, err := engine.ParseEviction(c.Cache.Eviction); err != nil {
		errs = append(errs, fmt.Errorf("cache.eviction: %w", err))
	}
	if c.Cache.ChainCap <= 0 {
		errs = append(errs, fmt.Errorf("cache.chain_cap must be positive, got %d", c.Cache.ChainCap))
	}
	if c.Search.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("search.max_depth must be positive, got %d", c.Search.MaxDepth))
	}
	if c.Search.Ceiling <= 0 {
		errs = append(errs, fmt.Errorf("search.ceiling must be positive, got %s", c.Search.Ceiling))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Match.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("match.parallel must be positive, got %d", c.Match.Parallel))
	}
	return errors.Join(errs...)
}

// EvalWeights converts the eval section into evaluator weights.
func (c *Config) EvalWeights() engine.EvalWeights {
	return engine.EvalWeights{
		Material:         c.Eval.Material,
		Stability:        c.Eval.Stability,
		Edge:             c.Eval.Edge,
		Mobility:         c.Eval.Mobility,
		Frontier:         c.Eval.Frontier,
		Square:           c.Eval.Square,
		EndgameEmpties:   c.Eval.EndgameEmpties,
		EndgameMaterial:  c.Eval.EndgameMaterial,
		EndgameStability: c.Eval.EndgameStability,
	}
}

// EngineOptions builds engine options from the search, cache and eval
// sections.
func (c *Config) EngineOptions() (engine.Options, error) {
	algo, err := engine.ParseAlgorithm(c.Search.Algorithm)
	if err != nil {
		return engine.Options{}, err
	}
	policy, err := engine.ParseEviction(c.Cache.Eviction)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Algorithm:      algo,
		MaxDepth:       c.Search.MaxDepth,
		MoveLimit:      c.Search.Ceiling,
		EndgameEmpties: c.Search.EndgameEmpties,
		GreedyBelow:    c.Search.GreedyBelow,
		ChainCap:       c.Cache.ChainCap,
		Eviction:       policy,
		Eval:           engine.NewPositionalEvaluator(c.EvalWeights()),
	}, nil
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	return enc.Close()
}

// SetupLogging configures the global zerolog logger.
func (c *Config) SetupLogging() {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if c.Log.Pretty {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("debug logging is on")
}
