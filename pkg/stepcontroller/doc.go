// Package stepcontroller drives the checkout login widget.
//
// The Controller is a small state machine. The customer first enters an
// identifier; once the identifier field loses focus the controller asks the
// gateway whether the identifier belongs to an account. Existing customers
// are then asked for a password and, when their account has an active
// second factor, a six digit code. New customers may tick "create an
// account" and continue with the normal checkout submission.
//
// The controller never talks to the page directly. It renders through a
// View, calls the server through a Gateway and submits the checkout form
// through a Host. HTTPGateway and HTTPHost implement the latter two over
// HTTP.
//
// View methods are called with the controller's lock held and must not call
// back into the controller.
package stepcontroller
