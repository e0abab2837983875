package notification

import "context"

// Notifier hands a message to the delivery channel. Callers treat failures
// as non-fatal: a transition is already committed when Send runs, and a
// send error must never surface to the caller of the transition.
//
//go:generate mockgen -source=notifier.go -destination=mock/notifier_mock.go -package=mock
type Notifier interface {
	Send(ctx context.Context, recipient, subject, bodyHTML string) error
}

type noopNotifier struct{}

// NewNoop returns a Notifier that silently drops everything. Used in tests
// and in deployments without a broker.
func NewNoop() Notifier {
	return noopNotifier{}
}

func (noopNotifier) Send(context.Context, string, string, string) error {
	return nil
}
