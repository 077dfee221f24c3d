package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/kafka"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("Publish_KeyedByStudent", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, kafka.NewConfig())
		defer mock.Close()

		mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			assert.Equal(t, "hostel-events", msg.Topic)

			key, err := msg.Key.Encode()
			require.NoError(t, err)
			assert.Equal(t, "STU042", string(key))

			value, err := msg.Value.Encode()
			require.NoError(t, err)
			var event hostel.Event
			require.NoError(t, json.Unmarshal(value, &event))
			assert.Equal(t, hostel.EventRoomChangeApproved, event.Type)

			require.Len(t, msg.Headers, 1)
			assert.Equal(t, "room_change.approved", string(msg.Headers[0].Value))
			return nil
		})

		producer := kafka.NewProducerWith(mock, "hostel-events", logger, metrics.NewMock())
		require.NoError(t, producer.Publish(ctx, hostel.Event{
			Type:      hostel.EventRoomChangeApproved,
			StudentID: "STU042",
			EntityID:  "RC001",
		}))
	})

	t.Run("Publish_FallsBackToEntityKey", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, kafka.NewConfig())
		defer mock.Close()

		mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
			var event hostel.Event
			if err := json.Unmarshal(value, &event); err != nil {
				return err
			}
			if event.EntityID != "N007" {
				return errors.New("unexpected entity")
			}
			return nil
		})

		producer := kafka.NewProducerWith(mock, "hostel-events", logger, nil)
		assert.NoError(t, producer.Publish(ctx, hostel.Event{Type: hostel.EventNoticeCreated, EntityID: "N007"}))
	})

	t.Run("Publish_BrokerError", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, kafka.NewConfig())
		defer mock.Close()

		mock.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

		producer := kafka.NewProducerWith(mock, "hostel-events", logger, metrics.NewMock())
		err := producer.Publish(ctx, hostel.Event{Type: hostel.EventStudentDeleted, StudentID: "STU001"})
		assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	})
}
