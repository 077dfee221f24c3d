package hostel

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventAllotmentCreated     EventType = "allotment.created"
	EventStudentDeleted       EventType = "student.deleted"
	EventComplaintSubmitted   EventType = "complaint.submitted"
	EventComplaintStatus      EventType = "complaint.status_changed"
	EventRoomChangeSubmitted  EventType = "room_change.submitted"
	EventRoomChangeApproved   EventType = "room_change.approved"
	EventRoomChangeRejected   EventType = "room_change.rejected"
	EventRoomChangeDeleted    EventType = "room_change.deleted"
	EventMonthlyFeesGenerated EventType = "fees.generated"
	EventMonthlyFeeToggled    EventType = "fee.status_toggled"
	EventNoticeCreated        EventType = "notice.created"
	EventNoticeDeleted        EventType = "notice.deleted"
)

// Event announces a committed store mutation.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	StudentID  string    `json:"studentId,omitempty"`
	EntityID   string    `json:"entityId,omitempty"`
	Data       any       `json:"data,omitempty"`
}

// Publisher delivers events to a message bus (NATS or Kafka).
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type multiPublisher []Publisher

// MultiPublisher delivers each event to every publisher and joins their errors.
func MultiPublisher(publishers ...Publisher) Publisher {
	var ps multiPublisher
	for _, p := range publishers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return noopPublisher{}
	}
	return ps
}

func (m multiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
