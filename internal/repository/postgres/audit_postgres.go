package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"atlasdocs/internal/model"
	"atlasdocs/internal/repository"
)

// AuditPostgres appends audit events to the audit_logs table.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert writes one event. created_at and id are assigned by the database.
func (r *AuditPostgres) Insert(ctx context.Context, ev *model.AuditEvent) error {
	var extra []byte
	if len(ev.Extra) > 0 {
		b, err := json.Marshal(ev.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra: %w", err)
		}
		extra = b
	}

	const q = `
		INSERT INTO audit_logs (ip_address, path, action, file_name, extra)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q,
		nullString(ev.IPAddress),
		nullString(ev.Path),
		ev.Action,
		nullString(ev.FileName),
		extra,
	).Scan(&ev.ID, &ev.CreatedAt)
}
