package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("New_WithNoopMeter", func(t *testing.T) {
		m, err := New(noop.NewMeterProvider().Meter("hostel"))
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			m.RecordAllotmentCreated(ctx)
			m.RecordRoomChange(ctx, "approved")
			m.RecordFeesGenerated(ctx, 12)
			m.RecordLogin(ctx, "admin", false)
			m.RecordQuery(ctx, "select", "hostel_documents", time.Millisecond, errors.New("boom"))
			m.RecordPublish(ctx, "hostel.notice.created", time.Millisecond, nil)
		})
	})

	t.Run("Mock_IgnoresCalls", func(t *testing.T) {
		m := NewMock()
		assert.NotPanics(t, func() {
			m.RecordStudentDeleted(ctx)
			m.RecordQuery(ctx, "upsert", "hostel_documents", time.Millisecond, nil)
		})
	})

	t.Run("Nil_IgnoresCalls", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.RecordComplaintSubmitted(ctx)
			m.RecordNoticePublished(ctx)
			m.RecordPublish(ctx, "x", 0, errors.New("down"))
		})
	})
}

func TestSplitMethodName(t *testing.T) {
	service, method := splitMethodName("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitMethodName("Check")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "Check", method)
}

func TestRegisterOccupancy(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("hostel")

	require.NoError(t, RegisterRuntime(meter))
	require.NoError(t, RegisterOccupancy(meter, func() OccupancySnapshot {
		return OccupancySnapshot{Beds: 10, OccupiedBeds: 7, Students: 7, OpenComplaints: 2, PendingRoomChanges: 1}
	}))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	got := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if gauge, ok := md.Data.(metricdata.Gauge[int64]); ok && len(gauge.DataPoints) == 1 {
			got[md.Name] = gauge.DataPoints[0].Value
		}
	}
	assert.Equal(t, int64(10), got["hostel.beds.total"])
	assert.Equal(t, int64(7), got["hostel.beds.occupied"])
	assert.Equal(t, int64(2), got["hostel.complaints.open"])
	assert.Equal(t, int64(1), got["hostel.room_changes.pending"])
	assert.Positive(t, got["runtime.go.goroutines"])
}

func TestRPCMetrics_UnaryInterceptor(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("hostel")

	rpc, err := NewRPCMetrics(meter)
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	intercept := rpc.UnaryInterceptor()

	_, err = intercept(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	_, err = intercept(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var calls int64
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := md.Data.(metricdata.Sum[int64]); ok && md.Name == "hostel.rpc.calls" {
			for _, dp := range sum.DataPoints {
				calls += dp.Value
			}
			assert.Len(t, sum.DataPoints, 2, "one series per status code")
		}
	}
	assert.Equal(t, int64(2), calls)

	var nilRPC *RPCMetrics
	resp, err := nilRPC.UnaryInterceptor()(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "passthrough", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "passthrough", resp)
}
