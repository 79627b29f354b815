// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains network failures when the lobby cannot be reached.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Cause is the broad reason a connection attempt failed.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
	CauseServer
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseDNS:
		return "dns"
	case CauseRefused:
		return "refused"
	case CauseTLS:
		return "tls"
	case CauseServer:
		return "server"
	default:
		return "unknown"
	}
}

// Classify inspects err (and its chain) and returns the most specific cause.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseUnknown
	case isTimeoutError(err):
		return CauseTimeout
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefusedError(err):
		return CauseRefused
	case isSSLError(err):
		return CauseTLS
	case isServerError(err.Error()):
		return CauseServer
	default:
		return CauseUnknown
	}
}

// FormatNetworkError prints a troubleshooting message for err against host and
// returns err wrapped for the caller. what describes the interrupted action, e.g.
// "joining the lobby".
func FormatNetworkError(err error, what, host string) error {
	if err == nil {
		return nil
	}
	pterm.Print(Explain(err, what, host))
	return fmt.Errorf("network error: %w", err)
}

// Explain renders the troubleshooting message without printing it.
func Explain(err error, what, host string) string {
	if host == "" {
		host = "the lobby server"
	}
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	switch Classify(err) {
	case CauseTimeout:
		line("⏱️  Connection timeout while %s", what)
		line("")
		line("%s took too long to respond. Check your connection or raise timeout_seconds.", host)
	case CauseDNS:
		line("🌐 Cannot resolve %s while %s", host, what)
		line("")
		line("Check backend_url (or grpc_addr) and your DNS settings.")
	case CauseRefused:
		line("🚫 Connection refused while %s", what)
		line("")
		line("Nothing is listening on %s. Is the lobby running?", host)
		line("  • Start a local one with: shipster lobby serve")
		line("  • Or point --backend at a running lobby")
	case CauseTLS:
		line("🔒 Secure connection to %s failed while %s", host, what)
		line("")
		line("Check the certificate and your system clock, or use http:// for a local lobby.")
	case CauseServer:
		line("⚠️  %s reported an internal error while %s", host, what)
		line("")
		line("The problem is on the server side. Try again in a few minutes.")
	default:
		line("❌ Cannot reach %s while %s", host, what)
		line("")
		line("Check backend_url, the selected transport, and your network.")
		if details := err.Error(); details != "" {
			if len(details) > 100 {
				details = details[:100] + "..."
			}
			line("%s", pterm.FgGray.Sprintf("Technical details: %s", details))
		}
	}
	line("")
	return b.String()
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(unwrapStatus(err)) == codes.DeadlineExceeded {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such host")
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate")
}

func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, s := range []string{"500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// unwrapStatus finds the first error in the chain that carries a gRPC status.
func unwrapStatus(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if _, ok := status.FromError(e); ok {
			return e
		}
	}
	return nil
}

// ExtractHostFromURL returns the host of a URL or of a gRPC target for messages.
func ExtractHostFromURL(raw string) string {
	for _, scheme := range []string{"grpc://", "grpcs://"} {
		if strings.HasPrefix(raw, scheme) {
			raw = "http://" + strings.TrimPrefix(raw, scheme)
		}
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "the lobby server"
	}
	return u.Host
}
