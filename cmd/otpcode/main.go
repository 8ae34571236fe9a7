package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/xlzd/gotp"
)

// Prints the current code for a base32 TOTP secret, e.g. one printed by
// checkoutd's demo seeding or by inituser --totp.
func main() {
	secret := pflag.StringP("secret", "s", "", "Base32 TOTP secret (required)")
	period := pflag.Int("period", 30, "Code period in seconds")
	watch := pflag.BoolP("watch", "w", false, "Keep printing a new code every period")
	pflag.Parse()

	key := strings.ToUpper(strings.TrimSpace(*secret))
	if key == "" {
		fmt.Fprintln(os.Stderr, "Error: --secret is required")
		pflag.Usage()
		os.Exit(1)
	}

	totp := gotp.NewTOTP(key, 6, *period, nil)
	for {
		remaining := *period - int(time.Now().Unix()%int64(*period))
		fmt.Printf("%s (valid for %ds)\n", totp.Now(), remaining)
		if !*watch {
			return
		}
		time.Sleep(time.Duration(remaining) * time.Second)
	}
}
