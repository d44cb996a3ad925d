package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"dhamen.org/internal/auth"
	"dhamen.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Entry is one append-only audit record.
type Entry struct {
	OccurredAt time.Time
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IPAddress  string
	UserAgent  string
}

// Sink persists audit entries durably.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Trail records audit events: always as a structured log line, and into the
// sink when one is configured.
type Trail struct {
	sink Sink
}

// NewTrail builds a trail; sink may be nil for log-only operation.
func NewTrail(sink Sink) *Trail {
	return &Trail{sink: sink}
}

// Record enriches e with request and actor context, emits it as a log line
// and appends it to the sink.
func (t *Trail) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.Action) == "" {
		return errors.New("audit: action is required")
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = RequestIDFromContext(ctx)
	}
	if e.UserID == "" {
		if claims, ok := auth.ClaimsFromContext(ctx); ok {
			e.UserID = claims.Subject
		}
	}

	logEntry := map[string]any{
		"ts":     e.OccurredAt.Format(time.RFC3339Nano),
		"type":   "audit",
		"action": e.Action,
	}
	if e.RequestID != "" {
		logEntry["request_id"] = e.RequestID
	}
	if e.UserID != "" {
		logEntry["user_id"] = e.UserID
	}
	if e.EntityType != "" {
		logEntry["entity_type"] = e.EntityType
	}
	if e.EntityID != "" {
		logEntry["entity_id"] = e.EntityID
	}
	if data, err := json.Marshal(logEntry); err == nil {
		obs.Logger().Println(string(data))
	}

	if t.sink == nil {
		return nil
	}
	return t.sink.Append(ctx, e)
}
