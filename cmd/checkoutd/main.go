package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/checkout-login/pkg/config"
	"github.com/tendant/checkout-login/pkg/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var repos server.Repositories
	switch cfg.Store {
	case config.StorePostgres:
		dbConfig := cfg.IdmDbConfig.ToDbConfig()
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			os.Exit(-1)
		}
		repos = server.PostgresRepositories(pool)
	default:
		repos = server.InMemoryRepositories()
	}

	srv := server.New(cfg, repos)

	if cfg.Store == config.StoreMemory && cfg.CheckoutConfig.SeedDemoAccounts {
		seeds, err := srv.SeedDemoAccounts(ctx)
		if err != nil {
			slog.Error("Failed to seed demo accounts", "error", err)
			os.Exit(1)
		}
		for _, seed := range seeds {
			// development only, the store is discarded on exit
			slog.Info("Demo account", "login", seed.Login, "email", seed.Email, "totpSecret", seed.TotpSecret)
		}
	}

	web := app.DefaultApp()

	app.RoutesHealthz(web.R)
	app.RoutesHealthzReady(web.R)
	srv.Mount(web.R)

	slog.Info("Checkout login listening", "store", cfg.Store, "gateway", cfg.CheckoutConfig.GatewayPrefix)
	web.Run()
}
