// Package config loads the checkout login configuration from environment
// variables with cleanenv.
//
// Every setting has a development default so the server starts with no
// environment at all:
//
//	cfg, err := config.Load()
//	if err != nil {
//		slog.Error("Failed to load configuration", "error", err)
//		os.Exit(1)
//	}
//
// Outside APP_ENV=development, Load rejects the placeholder CSRF_SECRET and
// SESSION_SECRET values as well as a secret shared between the two.
// Validation errors are collected and reported together as ValidationErrors.
package config
