// Package twofa is the second-factor provider used by the checkout login flow.
//
// It stores TOTP enrollments, validates six-digit one-time codes with
// github.com/pquerna/otp, and answers the one question the login flow asks:
// does this account have at least one active second factor?
//
// That question is answered by a Detector which consults a primary status
// service first and a direct enrollment-record lookup second. Both paths
// share the same meaning, "at least one active enrollment record exists", so
// the fallback only matters when the primary path is unavailable or stale.
//
//	repo := twofa.NewInMemoryEnrollmentRepository()
//	svc := twofa.NewService(repo)
//	detector := twofa.NewDetector(svc, repo)
//
//	has2FA, err := detector.HasActiveSecondFactor(ctx, accountID)
//
// Enrollment management is limited to what provisioning tools need
// (Enroll, Deactivate); there is no self-service enrollment API.
package twofa
