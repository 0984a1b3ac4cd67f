package main

import (
	"flag"

	"github.com/ghaggin/accounts/internal/accounts"
	"github.com/ghaggin/accounts/internal/config"
	"github.com/ghaggin/accounts/internal/middleware"
	"github.com/ghaggin/accounts/internal/repository"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var configPath = flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	newConfig := func() (*config.Config, error) {
		if *configPath == "" {
			return config.New()
		}
		return config.Load(*configPath)
	}

	app := fx.New(
		fx.Provide(
			zap.NewDevelopment,
			newConfig,
			clockwork.NewRealClock,
			middleware.NewSessionManager,
			repository.NewJSON,
		),
		accounts.Module,
		fx.Invoke(accounts.RegisterHooks),
	)

	app.Run()
}
