package health

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	rpc "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var serving atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, func(context.Context) rpc.HealthCheckResponse_ServingStatus {
			if serving.Load() {
				return rpc.HealthCheckResponse_SERVING
			}
			return rpc.HealthCheckResponse_NOT_SERVING
		})
	}()

	conn, err := grpc.NewClient(ln.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := rpc.NewHealthClient(conn)

	check := func() rpc.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		res, err := client.Check(ctx, &rpc.HealthCheckRequest{})
		require.NoError(t, err)
		return res.GetStatus()
	}
	assert.Equal(t, rpc.HealthCheckResponse_NOT_SERVING, check())
	serving.Store(true)
	assert.Equal(t, rpc.HealthCheckResponse_SERVING, check())

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
