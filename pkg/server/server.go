// Package server wires the checkout login services together and mounts
// their routes.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jinzhu/copier"
	"github.com/tendant/checkout-login/pkg/account"
	"github.com/tendant/checkout-login/pkg/checkout"
	"github.com/tendant/checkout-login/pkg/config"
	"github.com/tendant/checkout-login/pkg/csrf"
	"github.com/tendant/checkout-login/pkg/gateway"
	"github.com/tendant/checkout-login/pkg/loginflow"
	"github.com/tendant/checkout-login/pkg/session"
	"github.com/tendant/checkout-login/pkg/twofa"
)

// DBTX is satisfied by *pgxpool.Pool
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Repositories struct {
	Accounts     account.AccountRepository
	Enrollments  twofa.EnrollmentRepository
	RecordLookup twofa.RecordLookup
	Orders       checkout.OrderRepository
}

func InMemoryRepositories() Repositories {
	enrollments := twofa.NewInMemoryEnrollmentRepository()
	return Repositories{
		Accounts:     account.NewInMemoryAccountRepository(),
		Enrollments:  enrollments,
		RecordLookup: enrollments,
		Orders:       checkout.NewInMemoryOrderRepository(),
	}
}

func PostgresRepositories(db DBTX) Repositories {
	enrollments := twofa.NewPostgresEnrollmentRepository(db)
	return Repositories{
		Accounts:     account.NewPostgresAccountRepository(db),
		Enrollments:  enrollments,
		RecordLookup: enrollments,
		Orders:       checkout.NewPostgresOrderRepository(db),
	}
}

type Server struct {
	Accounts  *account.Service
	TwoFactor *twofa.Service
	Gateway   *gateway.Service
	Checkout  *checkout.Service

	gatewayHandle  gateway.Handle
	checkoutHandle checkout.Handle
	sessionIssuer  *session.Issuer
	sessionCookies session.CookieWriter
	paths          config.CheckoutConfig
}

func New(cfg config.Config, repos Repositories, accountOpts ...account.Option) *Server {
	var totpOpts twofa.TotpOptions
	copier.Copy(&totpOpts, &cfg.TotpConfig)

	accounts := account.NewService(repos.Accounts, accountOpts...)
	twofaService := twofa.NewService(repos.Enrollments, twofa.WithTotpOptions(totpOpts))

	var (
		status twofa.StatusService     = twofaService
		codes  loginflow.CodeValidator = twofaService
		lookup twofa.RecordLookup      = repos.RecordLookup
	)
	if !cfg.TotpConfig.Enabled {
		slog.Warn("Second factor disabled, every account signs on with a password only")
		noop := twofa.NewNoOpService()
		status, codes, lookup = noop, noop, nil
	}
	detector := twofa.NewDetector(status, lookup)

	issuer := session.NewIssuer(cfg.SessionConfig.Secret, cfg.SessionConfig.Issuer, cfg.SessionConfig.TTL)
	cookies := session.NewCookieWriter(cfg.SessionConfig.CookieName, cfg.SessionConfig.CookieHttpOnly, cfg.SessionConfig.CookieSecure)

	flow := loginflow.NewLoginFlowService(&loginflow.ServiceDependencies{
		Accounts:      accounts,
		SecondFactors: detector,
		Codes:         codes,
		Sessions:      issuer,
	})

	guard := csrf.NewGuard(cfg.CsrfConfig.Secret,
		csrf.WithAction(cfg.CsrfConfig.Action),
		csrf.WithTTL(cfg.CsrfConfig.TTL),
	)

	gatewayService := gateway.NewService(gateway.NewLocalIdentityProvider(accounts, flow), detector, guard)
	checkoutService := checkout.NewService(repos.Orders)

	return &Server{
		Accounts:  accounts,
		TwoFactor: twofaService,
		Gateway:   gatewayService,
		Checkout:  checkoutService,
		gatewayHandle: gateway.NewHandle(gatewayService, cookies,
			gateway.WithPrefix(cfg.CheckoutConfig.GatewayPrefix),
			gateway.WithLostPasswordURL(cfg.CheckoutConfig.LostPasswordURL),
		),
		checkoutHandle: checkout.NewHandle(checkoutService),
		sessionIssuer:  issuer,
		sessionCookies: cookies,
		paths:          cfg.CheckoutConfig,
	}
}

// Mount registers the gateway, checkout and session routes on r
func (s *Server) Mount(r chi.Router) {
	r.Mount(s.gatewayHandle.Prefix(), s.gatewayHandle.Routes())
	r.Mount(s.paths.CheckoutPath, s.checkoutHandle.Routes())
	r.Mount(s.paths.SessionPath, session.Handler(s.sessionIssuer, s.sessionCookies))
}

type DemoSeed struct {
	Login      string
	Email      string
	Password   string
	TotpSecret string
}

// SeedDemoAccounts creates alice without and bob with a second factor
func (s *Server) SeedDemoAccounts(ctx context.Context) ([]DemoSeed, error) {
	seeds := []DemoSeed{
		{Login: "alice", Email: "alice@example.com", Password: "correctpw"},
		{Login: "bob", Email: "bob@example.com", Password: "bobpw"},
	}

	for i, seed := range seeds {
		acct, err := s.Accounts.CreateAccount(ctx, account.CreateAccountParams{
			Login:    seed.Login,
			Email:    seed.Email,
			Password: seed.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", seed.Login, err)
		}
		if seed.Login != "bob" {
			continue
		}
		enrollment, err := s.TwoFactor.Enroll(ctx, acct.ID, seed.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to enroll %s: %w", seed.Login, err)
		}
		seeds[i].TotpSecret = enrollment.Secret
	}

	slog.Info("Seeded demo accounts", "count", len(seeds))
	return seeds, nil
}
