package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ShashkiAI/config"
	"ShashkiAI/logging"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := loadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("shashki")
	}
}

// loadDotEnv reads .env from the working directory before the flags are
// parsed, so flag EnvVars such as SHASHKI_CONFIG can come from it. A missing
// file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return err
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shashki",
		Usage: "checkers engine with a WebSocket server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML or TOML config file",
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
		},
		Action: func(*cli.Context) error {
			fmt.Println("--help for more information.")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the game server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "listen address, overrides the config",
					},
				},
				Action: func(cCtx *cli.Context) error {
					cfg, err := loadConfig(cCtx)
					if err != nil {
						return err
					}
					if addr := cCtx.String("addr"); addr != "" {
						cfg.Server.Addr = addr
					}
					ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					return serve(ctx, cfg)
				},
			},
			{
				Name:  "selfplay",
				Usage: "let the engine play itself and print the game",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "search depth for both sides, overrides the config",
					},
					&cli.IntFlag{
						Name:  "light-depth",
						Usage: "search depth for light",
					},
					&cli.IntFlag{
						Name:  "dark-depth",
						Usage: "search depth for dark",
					},
					&cli.IntFlag{
						Name:  "max-plies",
						Usage: "stop after this many plies",
						Value: 200,
					},
				},
				Action: func(cCtx *cli.Context) error {
					cfg, err := loadConfig(cCtx)
					if err != nil {
						return err
					}
					depth := cfg.AI.Depth
					if d := cCtx.Int("depth"); d > 0 {
						depth = d
					}
					light, dark := depth, depth
					if d := cCtx.Int("light-depth"); d > 0 {
						light = d
					}
					if d := cCtx.Int("dark-depth"); d > 0 {
						dark = d
					}
					_, _, err = selfPlay(os.Stdout, cfg, light, dark, cCtx.Int("max-plies"))
					return err
				},
			},
		},
	}
}

func loadConfig(cCtx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(cCtx.String("config"))
	if err != nil {
		return cfg, err
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		return cfg, err
	}
	log.Debug().Interface("config", cfg).Msg("loaded config")
	return cfg, nil
}
