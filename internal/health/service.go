// GRPC health check server
// (https://godoc.org/google.golang.org/grpc/health/grpc_health_v1)
package health

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	rpc "google.golang.org/grpc/health/grpc_health_v1"
)

// CheckFn reports the current serving status.
type CheckFn func(ctx context.Context) rpc.HealthCheckResponse_ServingStatus

// New listens on addr and returns a func serving health
// checks until ctx is canceled.
func New(addr string) (run func(ctx context.Context, checkFn CheckFn) error, err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, checkFn CheckFn) error {
		return Serve(ctx, ln, checkFn)
	}, nil
}

// Serve serves health checks on ln until ctx is canceled.
func Serve(ctx context.Context, ln net.Listener, checkFn CheckFn) error {
	s := grpc.NewServer(grpc.ConnectionTimeout(time.Second * 3))
	rpc.RegisterHealthServer(s, &server{checkFn: checkFn})
	stop := context.AfterFunc(ctx, s.Stop)
	defer stop()
	return s.Serve(ln)
}

type server struct {
	rpc.UnimplementedHealthServer
	checkFn CheckFn
}

func (s *server) Check(ctx context.Context, _ *rpc.HealthCheckRequest) (*rpc.HealthCheckResponse, error) {
	return &rpc.HealthCheckResponse{Status: s.checkFn(ctx)}, nil
}
