package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
)

type auditLogsRepo struct {
	db dbtx
}

func (r *auditLogsRepo) CreateAuditLog(ctx context.Context, e domain.AuditLogEntry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	var userID sql.NullString
	if e.UserID != "" {
		userID = sql.NullString{String: e.UserID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource, resource_id,
			old_values, new_values, metadata, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, string(e.Action), e.Resource, e.ResourceID,
		nullableJSON(e.OldValues), nullableJSON(e.NewValues),
		string(metadata), e.IPAddress,
	)
	return err
}

func (r *auditLogsRepo) CountAuditLogs(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count)
	return count, err
}

func nullableJSON(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
