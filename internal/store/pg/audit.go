package pg

import (
	"context"
	"database/sql"

	"dhamen.org/internal/audit"
	"dhamen.org/internal/ids"
)

// AuditLog appends audit entries to the append-only audit_logs table.
type AuditLog struct {
	db *sql.DB
}

var _ audit.Sink = (*AuditLog)(nil)

// Audit returns the audit sink view of s.
func (s *Store) Audit() *AuditLog { return &AuditLog{db: s.db} }

func (a *AuditLog) Append(ctx context.Context, e audit.Entry) error {
	_, err := a.db.ExecContext(ctx, `
		insert into audit_logs (id, occurred_at, user_id, action, entity_type, entity_id, request_id, ip_address, user_agent)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		ids.New(), e.OccurredAt,
		nullString(e.UserID), e.Action,
		nullString(e.EntityType), nullString(e.EntityID),
		nullString(e.RequestID), nullString(e.IPAddress), nullString(e.UserAgent),
	)
	return err
}
