package config

import (
	"os"
	"path/filepath"
	"testing"

	"ShashkiAI/game/ai"
	"ShashkiAI/game/core"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 4, cfg.AI.Depth)
	require.Equal(t, core.Standard, cfg.Rules)

	side, err := cfg.AISide()
	require.NoError(t, err)
	require.Equal(t, core.Dark, side)
}

func TestLoadWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "shashki.yaml", `
server:
  addr: ":9000"
  allowed_origins: ["http://localhost:3000"]
ai:
  depth: 6
  side: light
  evaluator:
    king_weight: 2
  search:
    algorithm: minimax
    workers: 4
    cache: true
    cache_limit: 1000
rules:
  forced_capture: true
  backward_captures: false
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	require.Equal(t, 6, cfg.AI.Depth)
	require.Equal(t, "light", cfg.AI.Side)
	require.Equal(t, 2.0, cfg.AI.Evaluator.KingWeight)
	require.Equal(t, ai.Options{Algorithm: ai.Minimax, Workers: 4, Cache: true, CacheLimit: 1000}, cfg.AI.Search)
	require.Equal(t, core.Rules{ForcedCapture: true}, cfg.Rules)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.Pretty, "unset keys keep their defaults")
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "shashki.toml", `
[ai]
depth = 2
side = "none"

[ai.search]
algorithm = "alphabeta"
workers = 2

[log]
pretty = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.AI.Depth)
	require.Equal(t, 2, cfg.AI.Search.Workers)
	require.False(t, cfg.Log.Pretty)
	require.Equal(t, ":8080", cfg.Server.Addr)

	side, err := cfg.AISide()
	require.NoError(t, err)
	require.Equal(t, core.NoSide, side)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "shashki.ini", "depth=3")

	_, err := Load(path)
	require.ErrorContains(t, err, "unsupported extension")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "shashki.yml", "ai:\n  depth: 6\n")
	t.Setenv("SHASHKI_AI_DEPTH", "3")
	t.Setenv("SHASHKI_AI_ALGORITHM", "minimax")
	t.Setenv("SHASHKI_FORCED_CAPTURE", "false")
	t.Setenv("SHASHKI_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.AI.Depth)
	require.Equal(t, ai.Minimax, cfg.AI.Search.Algorithm)
	require.False(t, cfg.Rules.ForcedCapture)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestDotEnvIsRead(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "SHASHKI_ADDR=:7070\nSHASHKI_AI_KING_WEIGHT=3\n")
	t.Cleanup(func() {
		os.Unsetenv("SHASHKI_ADDR")
		os.Unsetenv("SHASHKI_AI_KING_WEIGHT")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, 3.0, cfg.AI.Evaluator.KingWeight)
}

func TestBadEnvironmentValues(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"SHASHKI_AI_DEPTH":  "deep",
		"SHASHKI_AI_CACHE":  "maybe",
		"SHASHKI_LOG_LEVEL": "debug",
	}
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 4, cfg.AI.Depth)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.AI.Depth = 0
	cfg.AI.Side = "purple"
	cfg.AI.Evaluator.KingWeight = 1
	cfg.AI.Search.Algorithm = "mcts"
	cfg.AI.Search.Workers = 0
	cfg.Log.Level = "loud"

	var merr *multierror.Error
	require.ErrorAs(t, cfg.Validate(), &merr)
	require.Len(t, merr.Errors, 7)
}

func TestValidateDepthLimits(t *testing.T) {
	cfg := Default()
	cfg.AI.Depth = 12
	require.ErrorContains(t, cfg.Validate(), "exceeds ai.max_depth 10")

	cfg.AI.MaxDepth = 12
	require.NoError(t, cfg.Validate())

	cfg.AI.MaxDepth = 0
	var merr *multierror.Error
	require.ErrorAs(t, cfg.Validate(), &merr)
	require.Len(t, merr.Errors, 1)

	cfg = Default()
	cfg.Server.IdleRoomSeconds = -1
	require.ErrorContains(t, cfg.Validate(), "idle_room_seconds")
}

func TestMaxDepthFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHASHKI_AI_MAX_DEPTH", "3")

	_, err := Load("")
	require.ErrorContains(t, err, "ai.depth 4 exceeds ai.max_depth 3")
}
