// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for shipster.
// It implements the lobby session commands (join, logout, whoami, authorize) and a
// development lobby server using the Cobra CLI framework. Commands build their
// collaborators from the layered configuration in deps.go.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"shipster/cli/internal/logging"

	"github.com/spf13/cobra"
)

// Version holds the CLI version. It is set at build time using -ldflags.
var Version = "0.0.0-dev"

var (
	showVersion bool

	flagStore     string
	flagTransport string
	flagBackend   string
	flagVerbose   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "shipster",
	Short:         "Join the Hipster Shipster lobby from your terminal",
	Long:          `shipster keeps a lobby session on this machine: join with a nick, check what you may access, and leave again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "shipster %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// shownError marks an error that was already rendered for the user.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func shown(err error) error { return &shownError{err: err} }

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var se *shownError
		if !errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStore, "store", "", "Session store: keyring, memory, redis, sqlite or postgres")
	pf.StringVar(&flagTransport, "transport", "", "Join transport: http, socket or grpc")
	pf.StringVar(&flagBackend, "backend", "", "Lobby URL (http/socket) or address (grpc)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}
