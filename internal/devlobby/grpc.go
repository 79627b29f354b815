package devlobby

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	grpcServiceName = "shipster.lobby.v1.Lobby"
	grpcJoinMethod  = "/" + grpcServiceName + "/Join"
)

// lobbyService is the gRPC handler type for the Lobby service.
type lobbyService interface {
	joinStruct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var lobbyServiceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*lobbyService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Join", Handler: joinHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shipster/lobby/v1/lobby.proto",
}

// RegisterGRPC adds the Lobby service to g.
func (s *Server) RegisterGRPC(g *grpc.Server) {
	g.RegisterService(&lobbyServiceDesc, s)
}

func joinHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(lobbyService).joinStruct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: grpcJoinMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(lobbyService).joinStruct(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func (s *Server) joinStruct(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	nick := in.GetFields()["nick"].GetStringValue()
	payload, err := s.join(nick)
	if err != nil {
		if je, ok := err.(*joinError); ok {
			return nil, status.Error(grpcCode(je.status), je.msg)
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	return structpb.NewStruct(payload)
}

func grpcCode(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusForbidden:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}
