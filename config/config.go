// Package config loads the server and engine settings. Values come from the
// defaults, then an optional YAML or TOML file, then SHASHKI_* environment
// variables (a .env file in the working directory is read first).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ShashkiAI/game/ai"
	"ShashkiAI/game/core"
	"ShashkiAI/logging"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SHASHKI_"

type Config struct {
	Server ServerConfig `json:"server" yaml:"server" toml:"server"`
	AI     AIConfig     `json:"ai" yaml:"ai" toml:"ai"`
	Rules  core.Rules   `json:"rules" yaml:"rules" toml:"rules"`
	Log    LogConfig    `json:"log" yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// AllowedOrigins restricts WebSocket upgrades; empty accepts any origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	// IdleRoomSeconds expires rooms created through the API that nobody
	// joined; zero keeps them.
	IdleRoomSeconds int `json:"idle_room_seconds" yaml:"idle_room_seconds" toml:"idle_room_seconds"`
}

type AIConfig struct {
	Depth int `json:"depth" yaml:"depth" toml:"depth"`
	// MaxDepth bounds Depth and any depth a client asks for.
	MaxDepth  int          `json:"max_depth" yaml:"max_depth" toml:"max_depth"`
	Side      string       `json:"side" yaml:"side" toml:"side"`
	Evaluator ai.Evaluator `json:"evaluator" yaml:"evaluator" toml:"evaluator"`
	Search    ai.Options   `json:"search" yaml:"search" toml:"search"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty" toml:"pretty"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", IdleRoomSeconds: 600},
		AI: AIConfig{
			Depth:     4,
			MaxDepth:  10,
			Side:      core.Dark.String(),
			Evaluator: ai.DefaultEvaluator(),
			Search:    ai.DefaultOptions(),
		},
		Rules: core.Standard,
		Log:   LogConfig{Level: "info", Pretty: true},
	}
}

// Load builds a Config from the defaults, the file at path (skipped when
// path is empty) and the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return cfg, errors.Wrap(err, "load .env")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return errors.Errorf("config %s: unsupported extension %q", path, ext)
	}
	return errors.Wrapf(err, "decode config %s", path)
}

// applyEnv overrides fields from SHASHKI_* variables. Unset variables keep
// the current value.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var result *multierror.Error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = b
		}
	}

	str("ADDR", &c.Server.Addr)
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	integer("IDLE_ROOM_SECONDS", &c.Server.IdleRoomSeconds)
	integer("AI_DEPTH", &c.AI.Depth)
	integer("AI_MAX_DEPTH", &c.AI.MaxDepth)
	str("AI_SIDE", &c.AI.Side)
	float("AI_KING_WEIGHT", &c.AI.Evaluator.KingWeight)
	float("AI_ADVANCE_WEIGHT", &c.AI.Evaluator.AdvanceWeight)
	algo := string(c.AI.Search.Algorithm)
	str("AI_ALGORITHM", &algo)
	c.AI.Search.Algorithm = ai.Algorithm(algo)
	integer("AI_WORKERS", &c.AI.Search.Workers)
	boolean("AI_CACHE", &c.AI.Search.Cache)
	integer("AI_CACHE_LIMIT", &c.AI.Search.CacheLimit)
	boolean("FORCED_CAPTURE", &c.Rules.ForcedCapture)
	boolean("BACKWARD_CAPTURES", &c.Rules.BackwardCaptures)
	str("LOG_LEVEL", &c.Log.Level)
	boolean("LOG_PRETTY", &c.Log.Pretty)

	return result.ErrorOrNil()
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Server.Addr == "" {
		result = multierror.Append(result, errors.New("server.addr is empty"))
	}
	if c.Server.IdleRoomSeconds < 0 {
		result = multierror.Append(result, errors.Errorf("server.idle_room_seconds must not be negative, got %d", c.Server.IdleRoomSeconds))
	}
	if c.AI.MaxDepth < 1 {
		result = multierror.Append(result, errors.Errorf("ai.max_depth must be at least 1, got %d", c.AI.MaxDepth))
	}
	if c.AI.Depth < 1 {
		result = multierror.Append(result, errors.Errorf("ai.depth must be at least 1, got %d", c.AI.Depth))
	} else if c.AI.MaxDepth >= 1 && c.AI.Depth > c.AI.MaxDepth {
		result = multierror.Append(result, errors.Errorf("ai.depth %d exceeds ai.max_depth %d", c.AI.Depth, c.AI.MaxDepth))
	}
	if c.AI.Side != "" {
		if _, err := c.AISide(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.AI.Evaluator.KingWeight <= 1 {
		result = multierror.Append(result, errors.Errorf("ai.evaluator.king_weight must be greater than 1, got %v", c.AI.Evaluator.KingWeight))
	}
	if c.AI.Evaluator.AdvanceWeight < 0 {
		result = multierror.Append(result, errors.Errorf("ai.evaluator.advance_weight must not be negative, got %v", c.AI.Evaluator.AdvanceWeight))
	}
	if _, err := ai.ParseAlgorithm(string(c.AI.Search.Algorithm)); err != nil {
		result = multierror.Append(result, err)
	}
	if c.AI.Search.Workers < 1 {
		result = multierror.Append(result, errors.Errorf("ai.search.workers must be at least 1, got %d", c.AI.Search.Workers))
	}
	if c.AI.Search.Cache && c.AI.Search.CacheLimit < 1 {
		result = multierror.Append(result, errors.Errorf("ai.search.cache_limit must be positive, got %d", c.AI.Search.CacheLimit))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// AISide is the side the computer plays in new rooms. NoSide means every
// room is human against human.
func (c Config) AISide() (core.Side, error) {
	side, err := core.ParseSide(c.AI.Side)
	return side, errors.Wrap(err, "ai.side")
}
