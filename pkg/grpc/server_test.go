package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/shashiranjanraj/storefront/pkg/grpc"
)

func TestHealthCheck(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.New()
	go srv.Serve(lis) //nolint:errcheck
	defer srv.Stop()

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client := grpc_health_v1.NewHealthClient(conn)

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: grpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	srv.SetServing(false)
	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: grpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}
