package main

import (
	"context"
	"log"

	"github.com/neovim/go-client/nvim/plugin"
	"github.com/spf13/viper"

	"textchecker/internal/app"
	"textchecker/internal/bootstrap"
	"textchecker/internal/config"
	"textchecker/internal/host"
	"textchecker/internal/logging"
)

// Set up the connection to Neovim, start the lint worker and
// register the plugin commands. Logs go to stderr since stdout carries RPC.
func main() {
	plugin.Main(func(p *plugin.Plugin) error {
		cfg, err := config.Load(viper.New(), "")
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if err != nil {
			return err
		}

		cl, err := bootstrap.Connect(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		checker := app.NewChecker(cl, cfg.Ext, app.WithLogger(logger))

		log.Println("[textchecker] registering handlers")
		return host.Register(p, host.NewCommands(checker, cfg.Debounce, logger))
	})
}
