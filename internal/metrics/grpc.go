package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RPCMetrics instruments unary gRPC handlers. Failed calls are counted by
// their status code, so no separate error counter exists.
type RPCMetrics struct {
	duration metric.Float64Histogram
	calls    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func NewRPCMetrics(meter metric.Meter) (*RPCMetrics, error) {
	duration, err := meter.Float64Histogram(
		"hostel.rpc.duration",
		metric.WithDescription("Unary gRPC call duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	calls, err := meter.Int64Counter(
		"hostel.rpc.calls",
		metric.WithDescription("Unary gRPC calls by method and status code"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"hostel.rpc.in_flight",
		metric.WithDescription("Unary gRPC calls currently being served"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &RPCMetrics{duration: duration, calls: calls, inFlight: inFlight}, nil
}

// UnaryInterceptor is a pass-through on a nil receiver.
func (r *RPCMetrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if r == nil {
			return handler(ctx, req)
		}

		service, method := splitMethodName(info.FullMethod)
		target := metric.WithAttributes(
			attribute.String("rpc.service", service),
			attribute.String("rpc.method", method),
		)

		r.inFlight.Add(ctx, 1, target)
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		r.inFlight.Add(ctx, -1, target)

		outcome := metric.WithAttributes(
			attribute.String("rpc.service", service),
			attribute.String("rpc.method", method),
			attribute.String("rpc.grpc.status_code", status.Code(err).String()),
		)
		r.duration.Record(ctx, elapsed.Seconds(), outcome)
		r.calls.Add(ctx, 1, outcome)

		return resp, err
	}
}

// splitMethodName turns "/grpc.health.v1.Health/Check" into its service and method.
func splitMethodName(fullMethod string) (string, string) {
	service, method, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if !ok {
		return "unknown", service
	}
	return service, method
}
