package stepcontroller

type Mode int

const (
	ModeIdentify Mode = iota
	ModeExistingPassword
	ModeNewAccount
	ModeSecondFactor
	ModeDirectLogin
	ModeTerminalSubmit
)

func (m Mode) String() string {
	switch m {
	case ModeIdentify:
		return "S0_IDENTIFY"
	case ModeExistingPassword:
		return "S1_EXISTING_PASSWORD"
	case ModeNewAccount:
		return "S1_NEW_ACCOUNT"
	case ModeSecondFactor:
		return "S2_SECOND_FACTOR"
	case ModeDirectLogin:
		return "S2_DIRECT_LOGIN"
	case ModeTerminalSubmit:
		return "TERMINAL_SUBMIT"
	default:
		return "UNKNOWN"
	}
}

// Step is the step number the mode belongs to
func (m Mode) Step() int {
	switch m {
	case ModeSecondFactor, ModeDirectLogin:
		return 2
	default:
		return 1
	}
}

// State is the client-side progress of the flow. The verified password is
// kept by the controller and never exposed here.
type State struct {
	Step       int
	UserExists bool
	Has2FA     bool
	Username   string
}

// FormValues are the widget's field values at the time of an event
type FormValues struct {
	Identifier    string
	Password      string
	OTPCode       string
	CreateAccount bool
}
