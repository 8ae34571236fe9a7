package gateway

import (
	apperrors "github.com/tendant/checkout-login/pkg/errors"
	"github.com/tendant/checkout-login/pkg/session"
)

const (
	ActionCheckUser      = "check_user"
	ActionVerifyPassword = "verify_password"
	ActionLoginWith2FA   = "login_with_2fa"
)

type IdentifyRequest struct {
	Token      string
	Identifier string
}

type VerifyPasswordRequest struct {
	Token      string
	Identifier string
	Password   string
}

type LoginRequest struct {
	Token      string
	Identifier string
	Password   string
	OTPCode    string
}

type IdentifyResult struct {
	Exists bool                `json:"exists"`
	Has2FA bool                `json:"has_2fa"`
	Msg    string              `json:"msg,omitempty"`
	Code   apperrors.ErrorCode `json:"code,omitempty"`
}

type VerifyPasswordResult struct {
	OK     bool                `json:"ok"`
	Has2FA bool                `json:"has_2fa"`
	Msg    string              `json:"msg,omitempty"`
	Code   apperrors.ErrorCode `json:"code,omitempty"`
}

type LoginResult struct {
	OK   bool                `json:"ok"`
	Msg  string              `json:"msg,omitempty"`
	Code apperrors.ErrorCode `json:"code,omitempty"`

	Session session.Session `json:"-"`
}

// BootstrapResponse is the page configuration needed before the first call
type BootstrapResponse struct {
	AjaxURL         string `json:"ajax_url"`
	Nonce           string `json:"nonce"`
	LostPasswordURL string `json:"lost_password_url,omitempty"`
}
