package devlobby

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
)

// ListenAndServe runs the HTTP/socket routes on httpAddr and, when grpcAddr is not
// empty, the gRPC service on grpcAddr. It returns when ctx is cancelled or either
// server fails.
func (s *Server) ListenAndServe(ctx context.Context, httpAddr, grpcAddr string) error {
	hs := &http.Server{
		Addr:              httpAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		s.logger.Info("lobby listening", s.logger.Args("http", httpAddr))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var gs *grpc.Server
	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			_ = hs.Close()
			return err
		}
		gs = grpc.NewServer()
		s.RegisterGRPC(gs)
		go func() {
			s.logger.Info("lobby listening", s.logger.Args("grpc", grpcAddr))
			if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errc <- err
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(shutdownCtx)
	if gs != nil {
		gs.GracefulStop()
	}
	return err
}
