package cmd

import (
	"errors"
	"fmt"

	"shipster/cli/internal/access"
	"shipster/cli/internal/navigation"

	"github.com/spf13/cobra"
)

var errAccessDenied = errors.New("access denied")

// authorizeCmd checks an access level against the stored session.
var authorizeCmd = &cobra.Command{
	Use:   "authorize <level>",
	Short: "Check whether the current session may access a level",
	Long: `The authorize command checks a required access level (anon, player, or a number)
against the local session and exits non-zero when access is denied.
Only the player level needs a session; every other level is open.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := access.Parse(args[0])
		if err != nil {
			return err
		}

		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		if d.guard.Authorize(cmd.Context(), level) {
			fmt.Fprintf(out, "✅ Access granted: %s\n", level)
			return nil
		}
		fmt.Fprintf(out, "🔒 Access denied: %s requires joining the lobby\n", level)
		d.nav.Navigate(navigation.AnonLogin)
		return shown(errAccessDenied)
	},
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
}
