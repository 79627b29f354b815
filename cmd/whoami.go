package cmd

import (
	"fmt"
	"io"
	"time"

	"shipster/cli/internal/auth"
	"shipster/cli/internal/logging"
	"shipster/cli/internal/navigation"

	"github.com/spf13/cobra"
)

// whoamiCmd shows the stored session. It reads local state only.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the saved lobby session",
	Long: `The whoami command shows the player stored by the last join: nick, id and a
masked credential. When the credential is a JWT its claims are decoded for display
only. They are not verified and do not affect whether you count as logged in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		sess, ok := d.guard.Session(cmd.Context())
		if !ok {
			fmt.Fprintln(out, "🔒 You're not in the lobby yet!")
			d.nav.Navigate(navigation.AnonLogin)
			return nil
		}
		printSession(out, sess)
		return nil
	},
}

func printSession(w io.Writer, sess auth.Session) {
	name := sess.Nick()
	if name == "" {
		name = sess.ID()
	}
	if name == "" {
		name = "player"
	}
	fmt.Fprintf(w, "👤 Current player: %s\n", name)
	if id := sess.ID(); id != "" {
		fmt.Fprintf(w, "   id:         %s\n", id)
	}
	if c := sess.Credential(); c != "" {
		fmt.Fprintf(w, "   credential: %s\n", logging.MaskCredential(c))
	}

	claims, err := sess.Claims()
	if err != nil {
		return
	}
	if iss, _ := claims.GetIssuer(); iss != "" {
		fmt.Fprintf(w, "   issuer:     %s\n", iss)
	}
	if exp, _ := claims.GetExpirationTime(); exp != nil {
		note := ""
		if exp.Before(time.Now()) {
			note = " (expired, unverified)"
		}
		fmt.Fprintf(w, "   expires:    %s%s\n", exp.Local().Format(time.RFC1123), note)
	}
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
