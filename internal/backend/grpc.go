// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"crypto/tls"
	"net"
	"strings"

	apperrors "shipster/cli/internal/errors"

	"github.com/pterm/pterm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Lobby gRPC service. Requests and responses are google.protobuf.Struct so the
// payload stays as opaque as on the other transports.
const (
	LobbyService = "shipster.lobby.v1.Lobby"
	JoinMethod   = "/" + LobbyService + "/Join"
)

// GRPC implements Client with a unary call to the lobby's Join method.
type GRPC struct {
	conn   *grpc.ClientConn
	logger *pterm.Logger
}

// DialGRPC creates a client for cfg.GRPCAddr. Extra options replace the transport
// credentials derived from the address scheme.
func DialGRPC(cfg Config, opts ...grpc.DialOption) (*GRPC, error) {
	target, creds := grpcTarget(cfg.GRPCAddr)
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.BackendUnreachable, "create grpc client", err)
	}
	return &GRPC{conn: conn, logger: cfg.logger()}, nil
}

// grpcTarget maps "grpcs://host[:port]" to TLS on host:443 by default and
// "grpc://host:port" or a bare host:port to plaintext.
func grpcTarget(addr string) (string, credentials.TransportCredentials) {
	switch {
	case strings.HasPrefix(addr, "grpcs://"):
		target := strings.TrimPrefix(addr, "grpcs://")
		host := target
		if h, _, err := net.SplitHostPort(target); err == nil {
			host = h
		} else {
			target = net.JoinHostPort(target, "443")
		}
		return target, credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	case strings.HasPrefix(addr, "grpc://"):
		return strings.TrimPrefix(addr, "grpc://"), insecure.NewCredentials()
	default:
		return addr, insecure.NewCredentials()
	}
}

// Join invokes the lobby's Join method with {"nick": nick}.
func (g *GRPC) Join(ctx context.Context, nick string) (map[string]any, error) {
	req, err := structpb.NewStruct(map[string]any{"nick": nick})
	if err != nil {
		return nil, err
	}

	g.logger.Debug("join request", g.logger.Args("transport", "grpc", "target", g.conn.Target()))

	resp := new(structpb.Struct)
	if err := g.conn.Invoke(ctx, JoinMethod, req, resp); err != nil {
		return nil, classifyGRPC(err)
	}
	return resp.AsMap(), nil
}

// classifyGRPC maps status codes onto error kinds. Codes describing a decision by
// the lobby are rejections; everything else means we did not get a decision.
func classifyGRPC(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return apperrors.Wrap(apperrors.BackendUnreachable, "join call failed", err)
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.AlreadyExists, codes.PermissionDenied,
		codes.ResourceExhausted, codes.FailedPrecondition, codes.Unauthenticated:
		return apperrors.Rejected(int(st.Code()), st.Code().String()+" "+st.Message())
	default:
		return apperrors.Wrap(apperrors.BackendUnreachable, "join call failed", err)
	}
}

// Close closes the underlying connection.
func (g *GRPC) Close() error { return g.conn.Close() }
