package metrics

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// OccupancySnapshot is what the hostel gauges observe on every collection.
type OccupancySnapshot struct {
	Beds               int
	OccupiedBeds       int
	Students           int
	OpenComplaints     int
	PendingRoomChanges int
}

// RegisterRuntime observes process health: goroutines, heap and uptime.
func RegisterRuntime(meter metric.Meter) error {
	startTime := time.Now()

	goroutines, err := meter.Int64ObservableGauge(
		"runtime.go.goroutines",
		metric.WithDescription("Number of goroutines"),
		metric.WithUnit("{goroutine}"),
	)
	if err != nil {
		return err
	}

	heapAlloc, err := meter.Int64ObservableGauge(
		"runtime.go.mem.heap_alloc",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	gcCount, err := meter.Int64ObservableCounter(
		"runtime.go.gc.count",
		metric.WithDescription("Number of completed GC cycles"),
		metric.WithUnit("{gc}"),
	)
	if err != nil {
		return err
	}

	uptime, err := meter.Float64ObservableCounter(
		"service.uptime",
		metric.WithDescription("Service uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, observer metric.Observer) error {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			observer.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
			observer.ObserveInt64(heapAlloc, int64(m.HeapAlloc))
			observer.ObserveInt64(gcCount, int64(m.NumGC))
			observer.ObserveFloat64(uptime, time.Since(startTime).Seconds())
			return nil
		},
		goroutines, heapAlloc, gcCount, uptime,
	)
	return err
}

// RegisterOccupancy reports bed usage and open work read from snapshot.
func RegisterOccupancy(meter metric.Meter, snapshot func() OccupancySnapshot) error {
	beds, err := meter.Int64ObservableGauge(
		"hostel.beds.total",
		metric.WithDescription("Beds across all rooms"),
		metric.WithUnit("{bed}"),
	)
	if err != nil {
		return err
	}

	occupied, err := meter.Int64ObservableGauge(
		"hostel.beds.occupied",
		metric.WithDescription("Beds with a student allotted"),
		metric.WithUnit("{bed}"),
	)
	if err != nil {
		return err
	}

	students, err := meter.Int64ObservableGauge(
		"hostel.students.current",
		metric.WithDescription("Students currently registered"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return err
	}

	openComplaints, err := meter.Int64ObservableGauge(
		"hostel.complaints.open",
		metric.WithDescription("Complaints not yet resolved"),
		metric.WithUnit("{complaint}"),
	)
	if err != nil {
		return err
	}

	pendingChanges, err := meter.Int64ObservableGauge(
		"hostel.room_changes.pending",
		metric.WithDescription("Room change requests awaiting a decision"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, observer metric.Observer) error {
			s := snapshot()
			observer.ObserveInt64(beds, int64(s.Beds))
			observer.ObserveInt64(occupied, int64(s.OccupiedBeds))
			observer.ObserveInt64(students, int64(s.Students))
			observer.ObserveInt64(openComplaints, int64(s.OpenComplaints))
			observer.ObserveInt64(pendingChanges, int64(s.PendingRoomChanges))
			return nil
		},
		beds, occupied, students, openComplaints, pendingChanges,
	)
	return err
}
