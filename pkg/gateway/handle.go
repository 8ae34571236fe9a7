package gateway

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	apperrors "github.com/tendant/checkout-login/pkg/errors"
	"github.com/tendant/checkout-login/pkg/session"
)

const DefaultPrefix = "/api/checkout"

// MaxRequestBody caps form and JSON bodies posted to the gateway
const MaxRequestBody = 64 << 10

// form carries the fields posted by the checkout page
type form struct {
	Action    string `json:"action"`
	Nonce     string `json:"nonce"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	OTPCode   string `json:"otp_code"`
	WflsToken string `json:"wfls_token"`
}

func (f form) otpCode() string {
	if f.OTPCode != "" {
		return f.OTPCode
	}
	return f.WflsToken
}

type Handle struct {
	service         *Service
	cookies         session.CookieWriter
	prefix          string
	lostPasswordURL string
}

type HandleOption func(*Handle)

func WithPrefix(prefix string) HandleOption {
	return func(h *Handle) {
		h.prefix = strings.TrimRight(prefix, "/")
	}
}

func WithLostPasswordURL(url string) HandleOption {
	return func(h *Handle) {
		h.lostPasswordURL = url
	}
}

func NewHandle(service *Service, cookies session.CookieWriter, opts ...HandleOption) Handle {
	h := Handle{
		service: service,
		cookies: cookies,
		prefix:  DefaultPrefix,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Prefix is the path the routes are expected to be mounted at
func (h Handle) Prefix() string {
	return h.prefix
}

// Routes returns the gateway routes, relative to Prefix
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/bootstrap", h.Bootstrap)
	r.Post("/ajax", h.Ajax)
	r.Post("/identify", h.Identify)
	r.Post("/verify-password", h.VerifyPassword)
	r.Post("/login", h.Login)
	return r
}

// Bootstrap handles GET /bootstrap
func (h Handle) Bootstrap(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.service.IssueToken()
	if err != nil {
		slog.Error("Failed to issue anti-forgery token", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, LoginResult{Msg: msgGenericFailure, Code: apperrors.ErrCodeInternal})
		return
	}
	render.JSON(w, r, BootstrapResponse{
		AjaxURL:         h.prefix + "/ajax",
		Nonce:           nonce,
		LostPasswordURL: h.lostPasswordURL,
	})
}

// Ajax handles POST /ajax, dispatching on the action field
func (h Handle) Ajax(w http.ResponseWriter, r *http.Request) {
	f, ok := h.decode(w, r)
	if !ok {
		return
	}
	switch f.Action {
	case ActionCheckUser:
		h.identify(w, r, f)
	case ActionVerifyPassword:
		h.verifyPassword(w, r, f)
	case ActionLoginWith2FA:
		h.login(w, r, f)
	default:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, LoginResult{Msg: "Unknown action.", Code: apperrors.ErrCodeValidationFailed})
	}
}

// Identify handles POST /identify
func (h Handle) Identify(w http.ResponseWriter, r *http.Request) {
	if f, ok := h.decode(w, r); ok {
		h.identify(w, r, f)
	}
}

// VerifyPassword handles POST /verify-password
func (h Handle) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	if f, ok := h.decode(w, r); ok {
		h.verifyPassword(w, r, f)
	}
}

// Login handles POST /login
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	if f, ok := h.decode(w, r); ok {
		h.login(w, r, f)
	}
}

func (h Handle) identify(w http.ResponseWriter, r *http.Request, f form) {
	result := h.service.IdentifyUser(r.Context(), IdentifyRequest{
		Token:      f.Nonce,
		Identifier: f.Username,
	})
	respond(w, r, result.Code, result)
}

func (h Handle) verifyPassword(w http.ResponseWriter, r *http.Request, f form) {
	result := h.service.VerifyPassword(r.Context(), VerifyPasswordRequest{
		Token:      f.Nonce,
		Identifier: f.Username,
		Password:   f.Password,
	})
	respond(w, r, result.Code, result)
}

func (h Handle) login(w http.ResponseWriter, r *http.Request, f form) {
	result := h.service.LoginWithSecondFactor(r.Context(), LoginRequest{
		Token:      f.Nonce,
		Identifier: f.Username,
		Password:   f.Password,
		OTPCode:    f.otpCode(),
	})
	if result.OK {
		h.cookies.Establish(w, result.Session)
	}
	respond(w, r, result.Code, result)
}

// decode reads the posted fields from a JSON or form-encoded body
func (h Handle) decode(w http.ResponseWriter, r *http.Request) (form, bool) {
	var f form
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := render.DecodeJSON(r.Body, &f); err != nil {
			slog.Warn("Failed to decode request body", "err", err)
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, LoginResult{Msg: "Invalid request body", Code: apperrors.ErrCodeValidationFailed})
			return form{}, false
		}
		return f, true
	}

	if err := r.ParseForm(); err != nil {
		slog.Warn("Failed to parse form", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, LoginResult{Msg: "Invalid request body", Code: apperrors.ErrCodeValidationFailed})
		return form{}, false
	}
	return form{
		Action:    r.PostForm.Get("action"),
		Nonce:     r.PostForm.Get("nonce"),
		Username:  r.PostForm.Get("username"),
		Password:  r.PostForm.Get("password"),
		OTPCode:   r.PostForm.Get("otp_code"),
		WflsToken: r.PostForm.Get("wfls_token"),
	}, true
}

func respond(w http.ResponseWriter, r *http.Request, code apperrors.ErrorCode, body interface{}) {
	status := http.StatusOK
	if code != "" {
		status = apperrors.MapErrorCodeToHTTPStatus(code)
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}
