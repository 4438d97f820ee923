package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kodekulture/gissa-server/internal/config"
)

var cfgFile string

func main() {
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	// a missing .env is fine, the environment may be set already
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "gissa",
		Short:        "Semantic word guessing server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	root.AddCommand(serveCmd(), playCmd(), nounsCmd(), embeddingsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the log level.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(lvl)
		zlog.Debug().Msgf("Setting log level to %v", lvl)
	}
	return cfg, nil
}
