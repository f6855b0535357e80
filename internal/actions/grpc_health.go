package actions

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
)

// GRPCHealth dials the step's resolved "target" param and calls the
// standard gRPC health-checking service, succeeding iff the service
// reports SERVING.
func GRPCHealth() action.Action {
	return action.ActionFunc(func(ctx context.Context, step model.Step) (model.ActionResult, error) {
		target, _ := step.Params["target"].(string)
		if target == "" {
			return model.Failure("grpc_health action requires a \"target\" param", ""), nil
		}
		service, _ := step.Params["service"].(string)

		conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return model.Failure(fmt.Sprintf("dial %s: %v", target, err), ""), nil
		}
		defer conn.Close()

		client := healthpb.NewHealthClient(conn)
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			return model.Failure(fmt.Sprintf("health check: %v", err), ""), nil
		}

		serving := resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
		return model.ActionResult{
			Success: serving,
			Output:  map[string]any{"status": resp.GetStatus().String()},
		}, nil
	})
}
