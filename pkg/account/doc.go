// Package account is the read side of the identity provider used by the
// checkout login flow.
//
// An Account is resolved from a user-supplied identifier (email address or
// login name) and its stored password hash is checked with a PasswordHasher
// chosen from the hash format. Two repositories are provided: an in-memory one
// for development and tests, and a Postgres one built on pgx.
//
//	repo := account.NewInMemoryAccountRepository()
//	svc := account.NewService(repo)
//
//	acct, found, err := svc.ResolveAccount(ctx, "alice@example.com")
//	if err != nil || !found {
//		...
//	}
//	ok, err := svc.VerifyPassword(ctx, acct, password)
package account
