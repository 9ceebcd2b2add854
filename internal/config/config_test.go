package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/othello/internal/engine"
)

func TestLoadDefaults(t *testing.T) {
	is := is.New(t)
	cfg, err := Load("")
	is.NoErr(err)
	is.Equal(cfg, Default())
	is.Equal(cfg.Search.Ceiling, 2*time.Second)
	is.Equal(cfg.Search.Algorithm, "negascout")
	is.Equal(cfg.Cache.ChainCap, 10)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(WriteDefault(&buf))

	path := filepath.Join(t.TempDir(), "othello.yaml")
	is.NoErr(os.WriteFile(path, buf.Bytes(), 0o644))

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg, Default())
}

func TestLoadFileOverrides(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "othello.yaml")
	body := []byte("search:\n  algorithm: alphabeta\n  ceiling: 500ms\ncache:\n  eviction: lru\n")
	is.NoErr(os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg.Search.Algorithm, "alphabeta")
	is.Equal(cfg.Search.Ceiling, 500*time.Millisecond)
	is.Equal(cfg.Cache.Eviction, "lru")
	is.Equal(cfg.Search.MaxDepth, 12) // untouched keys keep defaults

	opts, err := cfg.EngineOptions()
	is.NoErr(err)
	is.Equal(opts.Algorithm, engine.AlgoAlphaBeta)
	is.Equal(opts.Eviction.Name(), "lru")
	is.Equal(opts.MoveLimit, 500*time.Millisecond)
}

func TestEnvironmentOverrides(t *testing.T) {
	is := is.New(t)
	t.Setenv("OTHELLO_SEARCH_MAX_DEPTH", "7")
	t.Setenv("OTHELLO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	is.NoErr(err)
	is.Equal(cfg.Search.MaxDepth, 7)
	is.Equal(cfg.Log.Level, "debug")
}

func TestMissingFile(t *testing.T) {
	is := is.New(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	is.True(err != nil)
}

func TestValidate(t *testing.T) {
	is := is.New(t)

	cfg := Default()
	cfg.Search.Algorithm = "mtdf"
	is.True(cfg.Validate() != nil)

	cfg = Default()
	cfg.Cache.Eviction = "random"
	is.True(cfg.Validate() != nil)

	cfg = Default()
	cfg.Cache.ChainCap = 0
	is.True(cfg.Validate() != nil)

	cfg = Default()
	cfg.Log.Level = "loud"
	is.True(cfg.Validate() != nil)

	is.NoErr(Default().Validate())
}

func TestEvalWeightsMatchEngineDefaults(t *testing.T) {
	is := is.New(t)
	is.Equal(Default().EvalWeights(), engine.DefaultEvalWeights)
}
