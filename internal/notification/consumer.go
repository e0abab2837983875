package notification

import (
	"context"
	"encoding/json"
	"errors"

	"transferdesk/internal/events"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads notification requests and delivers them until ctx is
// cancelled. Delivery errors are logged and the message is committed
// anyway: notifications are best effort and must never wedge the stream.
func RunConsumer(
	ctx context.Context,
	reader *kafka.Reader,
	sender Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("notification.consumer")
	log.Info("notifier consumer started", zap.String("topic", events.NotificationRequestedTopic))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("notifier consumer stopped")
				return
			}
			log.Error("read message failed", zap.Error(err))
			continue
		}

		var event events.NotificationRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("malformed notification event", zap.Error(err))
			continue
		}

		if err := sender.Send(ctx, event.Recipient, event.Subject, event.BodyHTML); err != nil {
			log.Warn("notification delivery failed",
				zap.String("recipient", event.Recipient),
				zap.String("subject", event.Subject),
				zap.Error(err),
			)
			continue
		}

		log.Debug("notification delivered",
			zap.String("recipient", event.Recipient),
			zap.String("subject", event.Subject),
		)
	}
}
