package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tendant/checkout-login/pkg/stepcontroller"
)

// terminalView prints what a browser would show and remembers the last
// layout so the prompt loop knows which fields to ask for.
type terminalView struct {
	out io.Writer

	mu            sync.Mutex
	layout        stepcontroller.Layout
	buttonEnabled bool
	lastError     string
	focusOTP      bool
	reloaded      bool
}

func newTerminalView(out io.Writer) *terminalView {
	return &terminalView{out: out}
}

func (v *terminalView) Render(layout stepcontroller.Layout) {
	v.mu.Lock()
	defer v.mu.Unlock()

	changed := layout.Mode != v.layout.Mode
	v.layout = layout
	if !changed {
		return
	}

	fmt.Fprintf(v.out, "\n-- %s --\n", layout.Mode)
	if layout.ShowOptionalNotice {
		fmt.Fprintln(v.out, stepcontroller.OptionalLoginText)
	}
	if layout.ShowRegisteredHint {
		fmt.Fprintln(v.out, stepcontroller.RegisteredHintText)
	}
	if layout.ShowLostPassword && layout.LostPasswordURL != "" {
		fmt.Fprintf(v.out, "Lost your password? %s\n", layout.LostPasswordURL)
	}
}

func (v *terminalView) SetButtonEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buttonEnabled = enabled
}

func (v *terminalView) ShowMessage(kind stepcontroller.MessageKind, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prefix := "  "
	if kind == stepcontroller.MessageError {
		prefix = "! "
		v.lastError = text
	}
	fmt.Fprintln(v.out, prefix+text)
}

func (v *terminalView) ClearMessage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastError = ""
}

func (v *terminalView) FocusOTP() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focusOTP = true
}

func (v *terminalView) Reload() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloaded = true
}

func (v *terminalView) isReloaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reloaded
}

// takeError returns and clears the last error shown
func (v *terminalView) takeError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	msg := v.lastError
	v.lastError = ""
	v.focusOTP = false
	return strings.TrimSpace(msg)
}
