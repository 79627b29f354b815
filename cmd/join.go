// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	apperrors "shipster/cli/internal/errors"
	"shipster/cli/internal/httperrors"
	"shipster/cli/internal/logging"
	"shipster/cli/internal/navigation"
	"shipster/cli/internal/terminal"

	"github.com/spf13/cobra"
)

// joinCmd joins the lobby with a nick and stores the returned session.
var joinCmd = &cobra.Command{
	Use:     "join [nick]",
	Aliases: []string{"login"},
	Short:   "Join the lobby and save the session",
	Long: `The join command submits your nick to the lobby and stores whatever the lobby
answers as your session. Joining again replaces the stored session.

If no nick is given on the command line you are prompted for one.
The transport (http, socket or grpc) and the store are taken from configuration
or from the --transport and --store flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		nick := ""
		if len(args) == 1 {
			nick = args[0]
		}
		if nick == "" {
			if !terminal.IsInteractive(os.Stdin) {
				return errors.New("nick is required: shipster join <nick>")
			}
			var err error
			nick, err = terminal.Prompt(out, cmd.InOrStdin(), "Nick: ", true)
			if err != nil {
				return err
			}
		}

		d, err := loadDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.Timeout())
		defer cancel()

		stop := func() {}
		if terminal.IsInteractive(os.Stdout) {
			stop = startInlineSpinner(out, "Joining the lobby", spinnerFrames, 120*time.Millisecond)
		}
		sess, err := d.guard.Login(ctx, nick)
		stop()

		if err != nil {
			if apperrors.Is(err, apperrors.BackendUnreachable) {
				return shown(httperrors.FormatNetworkError(err, "joining the lobby", httperrors.ExtractHostFromURL(d.lobbyHost())))
			}
			fmt.Fprintln(cmd.ErrOrStderr(), logging.FormatJoinError(err))
			return shown(err)
		}

		who := sess.Nick()
		if who == "" {
			who = nick
		}
		fmt.Fprintln(out, greeting(who))
		d.nav.Navigate(navigation.PlayerLobby)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
