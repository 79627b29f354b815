// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	apperrors "shipster/cli/internal/errors"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatJoinError formats a failed join in a user-friendly way.
// Unreachable backends are rendered by httperrors instead.
func FormatJoinError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Could not join the lobby"))
	b.WriteString("\n\n")

	switch apperrors.KindOf(err) {
	case apperrors.JoinRejected:
		b.WriteString("The lobby refused the request.\n")
		b.WriteString("This usually means:\n")
		b.WriteString("  • The nick is empty or already taken\n")
		b.WriteString("  • The lobby is full\n")
	case apperrors.InvalidResponse:
		b.WriteString("The lobby answered with something we could not read.\n")
		b.WriteString("Check that --backend points at a shipster lobby and --transport matches it.\n")
	case apperrors.StoreFailed:
		b.WriteString("You joined, but the session could not be saved locally.\n")
		b.WriteString("Try another store with --store sqlite.\n")
	default:
		b.WriteString("The join request failed unexpectedly.\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return b.String()
}
