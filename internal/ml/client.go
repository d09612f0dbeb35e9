package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

// PlacementModel is a pre-trained binary classifier. Predict returns the
// class label (1 or 0) for one feature vector.
type PlacementModel interface {
	Predict(ctx context.Context, features []float64) (int, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

const (
	placementFeatures = 2

	predictMethod = "/placement.v1.PlacementService/Predict"
	healthService = "placement.v1.PlacementService"
)

// grpcModel implements PlacementModel against a remote model server. The
// request is {"features": [...]} and the response {"label": n}, both carried
// as google.protobuf.Struct.
type grpcModel struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// NewGRPCModel creates a new PlacementModel backed by a gRPC model server
func NewGRPCModel(address string, opts ...grpc.DialOption) (PlacementModel, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ML service: %w", err)
	}

	return &grpcModel{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
	}, nil
}

func (c *grpcModel) Predict(ctx context.Context, features []float64) (int, error) {
	if err := validateFeatures(features, placementFeatures); err != nil {
		return 0, err
	}

	values := make([]interface{}, len(features))
	for i, f := range features {
		values[i] = f
	}
	req, err := structpb.NewStruct(map[string]interface{}{"features": values})
	if err != nil {
		return 0, fmt.Errorf("failed to build prediction request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, predictMethod, req, resp); err != nil {
		return 0, fmt.Errorf("gRPC prediction call failed: %w", err)
	}

	label, ok := resp.GetFields()["label"]
	if !ok {
		return 0, errors.New("prediction response has no label")
	}
	return int(label.GetNumberValue()), nil
}

func (c *grpcModel) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: healthService})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("service unhealthy: %s", resp.GetStatus())
	}

	return nil
}

// Close closes the gRPC connection
func (c *grpcModel) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// validateFeatures checks the vector holds n finite numbers
func validateFeatures(features []float64, n int) error {
	if len(features) != n {
		return fmt.Errorf("incorrect number of features: expected %d, got %d", n, len(features))
	}
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("feature %d is not a finite number", i)
		}
	}
	return nil
}
