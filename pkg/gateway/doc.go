// Package gateway is the unauthenticated entry point of the checkout login.
//
// It exposes three stateless operations:
//
//   - IdentifyUser reports whether an identifier belongs to an account and
//     whether that account has an active second factor.
//   - VerifyPassword checks a password without signing the caller in.
//   - LoginWithSecondFactor signs the caller in, forwarding the optional
//     one-time code to the second factor check.
//
// Every operation validates the anti-forgery token before doing anything
// else. Failures are returned as results carrying a message and an error
// code; no error or panic crosses the operation boundary.
//
// Handle serves the operations over HTTP, both through a single
// action-dispatched endpoint and through one route per operation.
package gateway
