package bootstrap

import "context"

// AuditLog is an operational event (startup, shutdown, config reload) — not
// to be confused with the workflow audit trail persisted by internal/audit.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
