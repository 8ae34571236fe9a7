// Package errors provides the structured error type shared by the checkout
// login packages.
//
// Every error carries an ErrorCode from a small taxonomy:
//
//	SECURITY_CHECK_FAILED  anti-forgery token missing or invalid, request rejected
//	VALIDATION_FAILED      required input missing, user-correctable
//	NOT_FOUND              identifier does not resolve to an account
//	CREDENTIAL_MISMATCH    wrong password or one-time code, user-correctable
//	INTERNAL_ERROR         unexpected failure, reported generically
//
// Only SECURITY_CHECK_FAILED and INTERNAL_ERROR map to non-2xx HTTP statuses.
// The other codes describe soft failures that are returned inside a normal
// response body so the client can read the explicit ok/exists fields.
//
// Usage:
//
//	if token == "" {
//		return errors.New(errors.ErrCodeSecurityCheckFailed, "Security check failed.")
//	}
//
//	acct, err := repo.FindByLogin(ctx, login)
//	if err != nil {
//		return errors.InternalWrap(err, "failed to resolve account")
//	}
package errors
