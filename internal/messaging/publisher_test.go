package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/messaging"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"
	"github.com/SHADOW0715/Hostel-Management-System/internal/storage/memory"
	"github.com/SHADOW0715/Hostel-Management-System/internal/testutil/testnats"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherWithNATSContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Terminate(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("Publish_SubjectPerType", func(t *testing.T) {
		prefix := "test." + strings.ReplaceAll(t.Name(), "/", "_")
		publisher, err := messaging.NewPublisher(natsContainer.URL, prefix, logger, metrics.NewMock())
		require.NoError(t, err)
		defer publisher.Close()

		received := natsContainer.Subscribe(t, prefix+".notice.*")

		require.NoError(t, publisher.Publish(ctx, hostel.Event{
			Type:       hostel.EventNoticeCreated,
			OccurredAt: time.Now(),
			EntityID:   "N001",
		}))

		select {
		case msg := <-received:
			assert.Equal(t, prefix+".notice.created", msg.Subject)
			var event hostel.Event
			require.NoError(t, json.Unmarshal(msg.Data, &event))
			assert.Equal(t, hostel.EventNoticeCreated, event.Type)
			assert.Equal(t, "N001", event.EntityID)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for event")
		}
	})

	t.Run("Store_PublishesAfterCommit", func(t *testing.T) {
		prefix := "test." + strings.ReplaceAll(t.Name(), "/", "_")
		publisher, err := messaging.NewPublisher(natsContainer.URL, prefix, logger, metrics.NewMock())
		require.NoError(t, err)
		defer publisher.Close()

		received := natsContainer.Subscribe(t, prefix+".>")

		doc := hostel.NewDocument()
		doc.Rooms = []hostel.Room{{RoomID: "101", Floor: 1, Type: hostel.SingleSeater, Capacity: 1, Occupants: []string{}}}
		repo, err := memory.NewRepositoryWith(doc)
		require.NoError(t, err)
		store, err := hostel.Open(ctx, repo, hostel.WithPublisher(publisher), hostel.WithLogger(logger))
		require.NoError(t, err)

		_, err = store.CreateAllotment(ctx, hostel.AllotmentInput{
			StudentID: "STU001", Name: "Asha", Dept: "CSE", Year: 1,
			RoomID: "101", PaymentStatus: hostel.PaymentPaid, AllottedBy: "warden",
		})
		require.NoError(t, err)

		var msg *nats.Msg
		select {
		case msg = <-received:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for event")
		}
		assert.Equal(t, prefix+".allotment.created", msg.Subject)

		var event hostel.Event
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, "STU001", event.StudentID)
		assert.False(t, event.OccurredAt.IsZero())
	})

	t.Run("Ping_Connected", func(t *testing.T) {
		publisher, err := messaging.NewPublisher(natsContainer.URL, "test.ping", logger, nil)
		require.NoError(t, err)
		defer publisher.Close()

		assert.NoError(t, publisher.Ping(ctx))
	})
}
