package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/pflag"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/checkout-login/pkg/account"
	"github.com/tendant/checkout-login/pkg/config"
	"github.com/tendant/checkout-login/pkg/twofa"
)

type Config struct {
	IdmDbConfig config.IdmDbConfig
	TotpConfig  config.TotpConfig
}

func main() {
	login := pflag.String("login", "", "Login name for the new account (required)")
	email := pflag.String("email", "", "Email for the new account (required)")
	password := pflag.String("password", "", "Password for the new account (required)")
	locked := pflag.Bool("locked", false, "Create the account locked")
	enrollTotp := pflag.Bool("totp", false, "Enroll a TOTP second factor and print its secret")
	pflag.Parse()

	if *login == "" || *email == "" || *password == "" {
		fmt.Println("Error: login, email and password are required")
		pflag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbConfig := cfg.IdmDbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(1)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		slog.Error("Failed to start transaction", "error", err)
		os.Exit(1)
	}
	// ignored once committed
	defer tx.Rollback(ctx)

	accounts := account.NewService(account.NewPostgresAccountRepository(tx))
	acct, err := accounts.CreateAccount(ctx, account.CreateAccountParams{
		Login:    *login,
		Email:    *email,
		Password: *password,
		Locked:   *locked,
	})
	if err != nil {
		slog.Error("Failed to create account", "login", *login, "error", err)
		os.Exit(1)
	}

	var secret string
	if *enrollTotp {
		opts := twofa.TotpOptions{Issuer: cfg.TotpConfig.Issuer, Period: cfg.TotpConfig.Period, Skew: cfg.TotpConfig.Skew}
		twofaService := twofa.NewService(twofa.NewPostgresEnrollmentRepository(tx), twofa.WithTotpOptions(opts))
		enrollment, err := twofaService.Enroll(ctx, acct.ID, acct.Email)
		if err != nil {
			slog.Error("Failed to enroll second factor", "login", acct.Login, "error", err)
			os.Exit(1)
		}
		secret = enrollment.Secret
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("Failed to commit transaction", "error", err)
		os.Exit(1)
	}

	slog.Info("Account created successfully", "login", acct.Login, "email", acct.Email, "id", acct.ID, "totp", *enrollTotp)
	if secret != "" {
		fmt.Printf("TOTP secret for %s: %s\n", acct.Login, secret)
	}
}
