package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics groups the hostel counters with the storage and messaging
// instruments. A nil *Metrics and NewMock both ignore every Record call.
type Metrics struct {
	allotmentsCreated   metric.Int64Counter
	studentsDeleted     metric.Int64Counter
	complaintsSubmitted metric.Int64Counter
	roomChanges         metric.Int64Counter
	feesGenerated       metric.Int64Counter
	noticesPublished    metric.Int64Counter
	logins              metric.Int64Counter

	queryDuration   metric.Float64Histogram
	queryErrors     metric.Int64Counter
	publishDuration metric.Float64Histogram
	publishErrors   metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.allotmentsCreated, err = meter.Int64Counter(
		"hostel.allotments.created",
		metric.WithDescription("Total number of rooms allotted"),
		metric.WithUnit("{allotment}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsDeleted, err = meter.Int64Counter(
		"hostel.students.deleted",
		metric.WithDescription("Total number of students removed"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.complaintsSubmitted, err = meter.Int64Counter(
		"hostel.complaints.submitted",
		metric.WithDescription("Total number of complaints submitted"),
		metric.WithUnit("{complaint}"),
	)
	if err != nil {
		return nil, err
	}

	m.roomChanges, err = meter.Int64Counter(
		"hostel.room_changes",
		metric.WithDescription("Room change requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.feesGenerated, err = meter.Int64Counter(
		"hostel.fees.generated",
		metric.WithDescription("Total number of monthly fee records generated"),
		metric.WithUnit("{fee}"),
	)
	if err != nil {
		return nil, err
	}

	m.noticesPublished, err = meter.Int64Counter(
		"hostel.notices.published",
		metric.WithDescription("Total number of notices published"),
		metric.WithUnit("{notice}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"hostel.auth.logins",
		metric.WithDescription("Login attempts by role and result"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s
	m.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Document store query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}

	m.queryErrors, err = meter.Int64Counter(
		"db.query.errors",
		metric.WithDescription("Document store query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 100µs, 500µs, 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s
	m.publishDuration, err = meter.Float64Histogram(
		"messaging.message.publish_duration",
		metric.WithDescription("Time spent publishing a hostel event"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		return nil, err
	}

	m.publishErrors, err = meter.Int64Counter(
		"messaging.message.errors",
		metric.WithDescription("Total number of failed event publishes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordAllotmentCreated(ctx context.Context) {
	if m != nil && m.allotmentsCreated != nil {
		m.allotmentsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStudentDeleted(ctx context.Context) {
	if m != nil && m.studentsDeleted != nil {
		m.studentsDeleted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordComplaintSubmitted(ctx context.Context) {
	if m != nil && m.complaintsSubmitted != nil {
		m.complaintsSubmitted.Add(ctx, 1)
	}
}

// RecordRoomChange counts a request outcome: submitted, approved, rejected or deleted.
func (m *Metrics) RecordRoomChange(ctx context.Context, outcome string) {
	if m != nil && m.roomChanges != nil {
		m.roomChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m *Metrics) RecordFeesGenerated(ctx context.Context, count int) {
	if m != nil && m.feesGenerated != nil {
		m.feesGenerated.Add(ctx, int64(count))
	}
}

func (m *Metrics) RecordNoticePublished(ctx context.Context) {
	if m != nil && m.noticesPublished != nil {
		m.noticesPublished.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, success bool) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role", role),
			attribute.Bool("success", success),
		))
	}
}

func (m *Metrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if m == nil || m.queryDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("table", table),
	}

	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err != nil && m.queryErrors != nil {
		errAttrs := append(attrs, attribute.String("error", err.Error()))
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}
}

func (m *Metrics) RecordPublish(ctx context.Context, subject string, duration time.Duration, err error) {
	if m == nil || m.publishDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("subject", subject),
	}

	m.publishDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err != nil && m.publishErrors != nil {
		errAttrs := append(attrs, attribute.String("error", err.Error()))
		m.publishErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
