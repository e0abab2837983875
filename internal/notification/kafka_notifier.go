package notification

import (
	"context"
	"encoding/json"
	"time"

	"transferdesk/internal/events"

	"github.com/segmentio/kafka-go"
)

type kafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier publishes notification requests onto the notification
// topic; the notifier worker consumes them and performs delivery.
func NewKafkaNotifier(writer *kafka.Writer) Notifier {
	return &kafkaNotifier{writer: writer}
}

func (n *kafkaNotifier) Send(ctx context.Context, recipient, subject, bodyHTML string) error {
	event := events.NotificationRequestedEvent{
		EventType:  "notification.requested",
		Recipient:  recipient,
		Subject:    subject,
		BodyHTML:   bodyHTML,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.NotificationRequestedTopic,
		Key:   []byte(recipient),
		Value: payload,
	})
}
