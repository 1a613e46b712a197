package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-cms/internal/model"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	var holderID *int64
	if entry.Actor.HolderID > 0 {
		holderID = &entry.Actor.HolderID
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_holder_id, actor_username, actor_role, actor_ip,
		  status, resource, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.Action, entry.OccurredAt.UTC(),
		holderID, entry.Actor.Username, string(entry.Actor.Role), entry.Actor.IP,
		entry.Status, entry.Resource, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

// Query returns the newest entries first, capped at maxAuditLimit.
func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, error) {
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	if query.Limit > maxAuditLimit {
		query.Limit = maxAuditLimit
	}

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if action := strings.TrimSpace(query.Action); action != "" {
		where = append(where, fmt.Sprintf("lower(action) = lower($%d)", argIdx))
		args = append(args, action)
		argIdx++
	}
	if query.HolderID > 0 {
		where = append(where, fmt.Sprintf("actor_holder_id = $%d", argIdx))
		args = append(args, query.HolderID)
		argIdx++
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		where = append(where, fmt.Sprintf("lower(status) = lower($%d)", argIdx))
		args = append(args, status)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	dataQuery := fmt.Sprintf(
		`SELECT action, occurred_at, COALESCE(actor_holder_id, 0), actor_username, actor_role, actor_ip,
		        status, resource, error_text
		 FROM audit_entries %s
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $%d`, whereClause, argIdx)
	args = append(args, query.Limit)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var role string
		if err := rows.Scan(
			&e.Action, &e.OccurredAt,
			&e.Actor.HolderID, &e.Actor.Username, &role, &e.Actor.IP,
			&e.Status, &e.Resource, &e.Error,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Actor.Role = model.Role(role)
		e.OccurredAt = e.OccurredAt.UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
