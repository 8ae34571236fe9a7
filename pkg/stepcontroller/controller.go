package stepcontroller

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	apperrors "github.com/tendant/checkout-login/pkg/errors"
	"github.com/tendant/checkout-login/pkg/gateway"
)

const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultReconcileDelay = 100 * time.Millisecond
)

const (
	MsgChecking            = "Checking..."
	MsgVerifyingPassword   = "Verifying password..."
	MsgPasswordVerified    = "Password verified."
	MsgPasswordVerified2FA = "Password verified. Please enter your 2FA code."
	MsgVerifyingCode       = "Verifying 2FA code..."
	MsgLoggingIn           = "Logging in..."

	MsgEnterIdentifier    = "Please enter username or email."
	MsgEnterPassword      = "Please enter your password."
	MsgCheckCreateAccount = "Please check \"Create an account\" to continue."
	MsgInvalidCodeFormat  = "Please enter the 6-digit code."
	MsgIncorrectPassword  = "Incorrect password"
	MsgLoginFailed        = "Login failed."
	MsgNetworkError       = "Network error, please try again."
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// ValidOTPFormat reports whether code looks like a six digit one-time code
func ValidOTPFormat(code string) bool {
	return otpPattern.MatchString(code)
}

type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageError
)

// View renders the widget
type View interface {
	Render(layout Layout)
	SetButtonEnabled(enabled bool)
	ShowMessage(kind MessageKind, text string)
	ClearMessage()
	// FocusOTP focuses the code field and selects its content
	FocusOTP()
	// Reload reloads the page after a successful login
	Reload()
}

// Gateway is the client side of the authentication gateway
type Gateway interface {
	IdentifyUser(ctx context.Context, identifier string) (gateway.IdentifyResult, error)
	VerifyPassword(ctx context.Context, identifier, password string) (gateway.VerifyPasswordResult, error)
	LoginWithSecondFactor(ctx context.Context, identifier, password, otpCode string) (gateway.LoginResult, error)
}

// Host submits the checkout form
type Host interface {
	Submit(ctx context.Context, values FormValues) error
}

type Controller struct {
	mu sync.Mutex

	ctx     context.Context
	view    View
	gateway Gateway
	host    Host
	clock   Clock

	debounce        time.Duration
	reconcileDelay  time.Duration
	lostPasswordURL string

	mode     Mode
	state    State
	password string

	inflight    int
	identifySeq uint64
	// epoch changes whenever a new identifier is applied; results of calls
	// issued under an older epoch are dropped.
	epoch uint64

	pendingIdentify  Timer
	pendingReconcile Timer

	installed       bool
	loginToggled    bool
	passwordVisible bool

	// running counts spawned calls whose result has not been applied yet
	running int
	idle    *sync.Cond
}

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounce = d
	}
}

func WithReconcileDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.reconcileDelay = d
	}
}

func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

func WithLostPasswordURL(url string) Option {
	return func(c *Controller) {
		c.lostPasswordURL = url
	}
}

func New(view View, gw Gateway, host Host, opts ...Option) *Controller {
	c := &Controller{
		ctx:            context.Background(),
		view:           view,
		gateway:        gw,
		host:           host,
		clock:          realClock{},
		debounce:       DefaultDebounce,
		reconcileDelay: DefaultReconcileDelay,
		mode:           ModeIdentify,
		state:          State{Step: 1},
	}
	c.idle = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Install renders the widget the first time it is called and reports
// whether it did anything.
func (c *Controller) Install() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.installed {
		return false
	}
	c.installed = true
	c.render()
	c.view.SetButtonEnabled(c.inflight == 0)
	return true
}

// Reconcile re-renders the current layout after the host page redrew the
// form. Bursts of calls collapse into one render.
func (c *Controller) Reconcile() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.installed {
		return
	}
	if c.pendingReconcile != nil {
		c.pendingReconcile.Stop()
	}
	c.pendingReconcile = c.clock.AfterFunc(c.reconcileDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.pendingReconcile = nil
		c.render()
		c.view.SetButtonEnabled(c.inflight == 0)
	})
}

// BlurIdentifier schedules an identifier check. A later blur supersedes
// both a pending check and the result of one already in flight.
func (c *Controller) BlurIdentifier(value string) {
	identifier := strings.TrimSpace(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeTerminalSubmit {
		return
	}
	if identifier == "" || (c.mode != ModeIdentify && identifier == c.state.Username) {
		c.supersedeIdentify()
		return
	}

	seq := c.supersedeIdentify()
	c.pendingIdentify = c.clock.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.identifySeq {
			return
		}
		c.pendingIdentify = nil
		c.launchIdentify(seq, identifier)
	})
}

// Submit handles a click on the action button
func (c *Controller) Submit(values FormValues) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight > 0 {
		return
	}

	switch c.mode {
	case ModeIdentify:
		identifier := strings.TrimSpace(values.Identifier)
		if identifier == "" {
			c.view.ShowMessage(MessageError, MsgEnterIdentifier)
			return
		}
		c.launchIdentify(c.supersedeIdentify(), identifier)

	case ModeNewAccount:
		if !values.CreateAccount {
			c.view.ShowMessage(MessageError, MsgCheckCreateAccount)
			return
		}
		c.mode = ModeTerminalSubmit
		c.password = ""
		c.render()
		c.view.ClearMessage()
		c.beginCall()
		submission := FormValues{Identifier: c.state.Username, CreateAccount: true}
		c.spawn(func() {
			err := c.host.Submit(c.ctx, submission)
			c.finishSubmit(err)
		})

	case ModeExistingPassword:
		if values.Password == "" {
			c.view.ShowMessage(MessageError, MsgEnterPassword)
			return
		}
		c.beginCall()
		c.view.ShowMessage(MessageInfo, MsgVerifyingPassword)
		epoch, username, password := c.epoch, c.state.Username, values.Password
		c.spawn(func() {
			res, err := c.gateway.VerifyPassword(c.ctx, username, password)
			c.finishVerify(epoch, password, res, err)
		})

	case ModeSecondFactor:
		code := strings.TrimSpace(values.OTPCode)
		if !ValidOTPFormat(code) {
			c.view.ShowMessage(MessageError, MsgInvalidCodeFormat)
			c.view.FocusOTP()
			return
		}
		c.beginCall()
		c.view.ShowMessage(MessageInfo, MsgVerifyingCode)
		c.launchLogin(code)

	case ModeDirectLogin:
		c.beginCall()
		c.view.ShowMessage(MessageInfo, MsgLoggingIn)
		c.launchLogin("")
	}
}

// ToggleLogin shows or hides the password field on step 1 without
// changing the flow state.
func (c *Controller) ToggleLogin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginToggled = !c.loginToggled
	c.render()
}

// TogglePasswordVisibility switches the password field between masked and plain text
func (c *Controller) TogglePasswordVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passwordVisible = !c.passwordVisible
	c.render()
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a call is outstanding
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Wait blocks until no call is running. A debounced check that fires while
// Wait is blocked is waited for as well.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.running > 0 {
		c.idle.Wait()
	}
}

func (c *Controller) supersedeIdentify() uint64 {
	if c.pendingIdentify != nil {
		c.pendingIdentify.Stop()
		c.pendingIdentify = nil
	}
	c.identifySeq++
	return c.identifySeq
}

func (c *Controller) launchIdentify(seq uint64, identifier string) {
	c.beginCall()
	c.view.ShowMessage(MessageInfo, MsgChecking)
	c.spawn(func() {
		res, err := c.gateway.IdentifyUser(c.ctx, identifier)
		c.finishIdentify(seq, identifier, res, err)
	})
}

func (c *Controller) finishIdentify(seq uint64, identifier string, res gateway.IdentifyResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endCall()

	if seq != c.identifySeq {
		slog.Debug("Dropping superseded identifier check", "seq", seq)
		return
	}
	if err != nil {
		slog.Warn("Identifier check failed", "err", err)
		c.view.ShowMessage(MessageError, MsgNetworkError)
		return
	}
	if !res.Exists && res.Code != "" && res.Code != apperrors.ErrCodeNotFound {
		c.view.ShowMessage(MessageError, res.Msg)
		return
	}

	c.epoch++
	c.password = ""
	c.state = State{
		Step:       1,
		UserExists: res.Exists,
		Has2FA:     res.Has2FA,
		Username:   identifier,
	}
	if res.Exists {
		c.mode = ModeExistingPassword
	} else {
		c.mode = ModeNewAccount
	}
	c.view.ClearMessage()
	c.render()
}

func (c *Controller) finishVerify(epoch uint64, password string, res gateway.VerifyPasswordResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endCall()

	if epoch != c.epoch {
		return
	}
	if err != nil {
		slog.Warn("Password check failed", "err", err)
		c.view.ShowMessage(MessageError, MsgNetworkError)
		return
	}
	if !res.OK {
		c.view.ShowMessage(MessageError, messageOr(res.Msg, MsgIncorrectPassword))
		return
	}

	c.password = password
	c.state.Step = 2
	c.state.Has2FA = res.Has2FA
	if res.Has2FA {
		c.mode = ModeSecondFactor
		c.render()
		c.view.ShowMessage(MessageInfo, MsgPasswordVerified2FA)
		c.view.FocusOTP()
		return
	}
	c.mode = ModeDirectLogin
	c.render()
	c.view.ShowMessage(MessageInfo, MsgPasswordVerified)
}

func (c *Controller) launchLogin(code string) {
	epoch, username, password := c.epoch, c.state.Username, c.password
	c.spawn(func() {
		res, err := c.gateway.LoginWithSecondFactor(c.ctx, username, password, code)
		c.finishLogin(epoch, res, err)
	})
}

func (c *Controller) finishLogin(epoch uint64, res gateway.LoginResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endCall()

	if epoch != c.epoch {
		return
	}
	if err != nil || !res.OK {
		msg := MsgNetworkError
		if err != nil {
			slog.Warn("Login call failed", "err", err)
		} else {
			msg = messageOr(res.Msg, MsgLoginFailed)
		}
		c.view.ShowMessage(MessageError, msg)
		if c.mode == ModeSecondFactor {
			c.view.FocusOTP()
		}
		return
	}

	c.password = ""
	c.view.Reload()
}

func (c *Controller) finishSubmit(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endCall()

	if err != nil {
		slog.Warn("Checkout submission failed", "err", err)
		c.mode = ModeNewAccount
		c.render()
		c.view.ShowMessage(MessageError, MsgNetworkError)
	}
}

func (c *Controller) beginCall() {
	c.inflight++
	c.view.SetButtonEnabled(false)
}

func (c *Controller) endCall() {
	c.inflight--
	c.view.SetButtonEnabled(c.inflight == 0)
}

// spawn must be called with c.mu held
func (c *Controller) spawn(fn func()) {
	c.running++
	go func() {
		fn()
		c.mu.Lock()
		c.running--
		if c.running == 0 {
			c.idle.Broadcast()
		}
		c.mu.Unlock()
	}()
}

func (c *Controller) render() {
	layout := LayoutFor(c.mode)
	if c.loginToggled && c.mode.Step() == 1 && c.mode != ModeTerminalSubmit {
		layout.ShowPassword = !layout.ShowPassword
	}
	layout.PasswordMasked = !c.passwordVisible
	if layout.ShowLostPassword {
		layout.LostPasswordURL = c.lostPasswordURL
	}
	c.view.Render(layout)
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
