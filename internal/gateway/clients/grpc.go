package clients

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"salesdesk/internal/services/commissions/rpc"
)

type GRPCClients struct {
	Commissions    *rpc.Client
	health         healthpb.HealthClient
	commissionConn *grpc.ClientConn
}

// NewGRPCClients dials the commission service. The connection is lazy, so an
// unreachable target only shows up on the first call or health probe.
func NewGRPCClients(target string, logger *zap.Logger) (*GRPCClients, error) {
	commissionConn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("commission service connection failed: %w", err)
	}

	clients := &GRPCClients{
		Commissions:    rpc.NewClient(commissionConn),
		health:         healthpb.NewHealthClient(commissionConn),
		commissionConn: commissionConn,
	}

	if logger != nil {
		logger.Info("Commission service client ready", zap.String("target", target))
	}
	return clients, nil
}

// IsCommissionsServiceHealthy asks the service's health endpoint for the
// commission service status.
func (c *GRPCClients) IsCommissionsServiceHealthy(ctx context.Context) bool {
	if c == nil || c.health == nil {
		return false
	}
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return false
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}

func (c *GRPCClients) Close() {
	if c != nil && c.commissionConn != nil {
		c.commissionConn.Close()
	}
}
