package events

import "time"

const NotificationRequestedTopic = "workflow.notification.requested.v1"

// NotificationRequestedEvent asks the notifier worker to deliver one
// message. Delivery is best effort; the workflow state that triggered it is
// already committed by the time this event exists.
type NotificationRequestedEvent struct {
	EventType  string    `json:"event_type"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	BodyHTML   string    `json:"body_html"`
	OccurredAt time.Time `json:"occurred_at"`
}
