package stepcontroller

const (
	ButtonContinue     = "Continue"
	ButtonLogin        = "Login"
	ButtonVerifyLogin  = "Verify & Log in"
	ButtonDirectLogin  = "Log in"
	OptionalLoginText  = "Already have an account? Login is optional."
	RegisteredHintText = "You are already registered. Please enter your password."
)

// Layout describes which parts of the widget are visible
type Layout struct {
	Mode Mode

	ShowIdentifier    bool
	ShowPassword      bool
	ShowCreateAccount bool
	ShowOTP           bool

	ShowLoginToggle    bool
	ShowLostPassword   bool
	ShowRegisteredHint bool
	ShowOptionalNotice bool

	PasswordMasked  bool
	LostPasswordURL string
	ButtonLabel     string
}

// LayoutFor returns the base layout of a mode
func LayoutFor(mode Mode) Layout {
	l := Layout{Mode: mode, PasswordMasked: true}
	switch mode {
	case ModeIdentify:
		l.ShowIdentifier = true
		l.ShowLoginToggle = true
		l.ShowOptionalNotice = true
		l.ButtonLabel = ButtonContinue
	case ModeExistingPassword:
		l.ShowIdentifier = true
		l.ShowPassword = true
		l.ShowLoginToggle = true
		l.ShowLostPassword = true
		l.ShowRegisteredHint = true
		l.ButtonLabel = ButtonLogin
	case ModeNewAccount, ModeTerminalSubmit:
		l.ShowIdentifier = true
		l.ShowCreateAccount = true
		l.ShowLoginToggle = true
		l.ButtonLabel = ButtonContinue
	case ModeSecondFactor:
		l.ShowOTP = true
		l.ButtonLabel = ButtonVerifyLogin
	case ModeDirectLogin:
		l.ButtonLabel = ButtonDirectLogin
	}
	return l
}
