package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/spf13/pflag"
	"github.com/tendant/checkout-login/pkg/session"
	"github.com/tendant/checkout-login/pkg/stepcontroller"
	"golang.org/x/term"
)

// maxRounds bounds the prompt loop so a server that keeps answering with
// errors does not trap the terminal.
const maxRounds = 10

type prompter struct {
	in *bufio.Reader
	fd int
}

func (p prompter) line(label string) (string, error) {
	fmt.Print(label)
	s, err := p.in.ReadString('\n')
	if err != nil && s == "" {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// secret reads without echo when stdin is a terminal
func (p prompter) secret(label string) (string, error) {
	if !term.IsTerminal(p.fd) {
		return p.line(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(p.fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func main() {
	baseURL := pflag.String("base-url", "http://localhost:3000", "Base URL of the checkout server")
	prefix := pflag.String("prefix", "/api/checkout", "Gateway route prefix")
	checkoutPath := pflag.String("checkout-path", "/checkout", "Checkout order route")
	sessionPath := pflag.String("session-path", "/api/session", "Session route prefix")
	timeout := pflag.Duration("timeout", 10*time.Second, "HTTP request timeout")
	debug := pflag.Bool("debug", false, "Enable debug logging")
	pflag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	jar, err := cookiejar.New(nil)
	if err != nil {
		slog.Error("Failed to create cookie jar", "error", err)
		os.Exit(1)
	}
	client := &http.Client{Jar: jar, Timeout: *timeout}
	base := strings.TrimRight(*baseURL, "/")

	ctx := context.Background()
	gw, err := stepcontroller.NewHTTPGateway(ctx, client, base, *prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	host := stepcontroller.NewHTTPHost(client, base+*checkoutPath)

	view := newTerminalView(os.Stdout)
	ctrl := stepcontroller.New(view, gw, host,
		stepcontroller.WithContext(ctx),
		stepcontroller.WithLostPasswordURL(gw.LostPasswordURL()),
	)
	ctrl.Install()

	p := prompter{in: bufio.NewReader(os.Stdin), fd: int(os.Stdin.Fd())}
	if err := run(ctrl, view, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if view.isReloaded() {
		me, err := fetchMe(ctx, client, base+*sessionPath+"/me")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Logged in, but the session check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Logged in as %s (%s)\n", me.Login, me.AccountID)
	}
}

func run(ctrl *stepcontroller.Controller, view *terminalView, p prompter) error {
	for round := 0; round < maxRounds; round++ {
		switch ctrl.Mode() {
		case stepcontroller.ModeIdentify:
			identifier, err := p.line("Email address or username: ")
			if err != nil {
				return err
			}
			ctrl.Submit(stepcontroller.FormValues{Identifier: identifier})

		case stepcontroller.ModeExistingPassword:
			password, err := p.secret("Password: ")
			if err != nil {
				return err
			}
			ctrl.Submit(stepcontroller.FormValues{Password: password})

		case stepcontroller.ModeNewAccount:
			answer, err := p.line("Create an account? [y/N]: ")
			if err != nil {
				return err
			}
			if !strings.EqualFold(strings.TrimSpace(answer), "y") {
				fmt.Println("Continuing as guest.")
				return nil
			}
			ctrl.Submit(stepcontroller.FormValues{CreateAccount: true})

		case stepcontroller.ModeSecondFactor:
			code, err := p.secret("6-digit code: ")
			if err != nil {
				return err
			}
			ctrl.Submit(stepcontroller.FormValues{OTPCode: code})

		case stepcontroller.ModeDirectLogin:
			ctrl.Submit(stepcontroller.FormValues{})

		case stepcontroller.ModeTerminalSubmit:
			fmt.Println("Order placed, account creation requested.")
			return nil
		}

		ctrl.Wait()
		view.takeError()
		if view.isReloaded() {
			return nil
		}
	}
	return fmt.Errorf("gave up after %d attempts", maxRounds)
}

func fetchMe(ctx context.Context, client *http.Client, url string) (session.MeResponse, error) {
	var me session.MeResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return me, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return me, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return me, fmt.Errorf("status %d", resp.StatusCode)
	}
	err = render.DecodeJSON(resp.Body, &me)
	return me, err
}
