// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd removes the stored session. The lobby is not notified.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved lobby session",
	Long: `The logout command removes the session saved by join from the configured store.
It always succeeds, whether or not a session existed. Nothing is sent to the lobby.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		d.guard.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Session removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
