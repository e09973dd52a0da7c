package repository

import (
	"context"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditRepository struct {
	DB *db.Postgres
}

func (r AuditRepository) Append(ctx context.Context, ev domain.AuditEvent) error {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO audit_events (actor_id, actor_name, action, entity_type, entity_id, amount, details, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, ev.ActorID, ev.ActorName, ev.Action, ev.EntityType, ev.EntityID, ev.Amount, ev.Details, ev.LoggedAt)
	return err
}

func (r AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, actor_id, actor_name, action, entity_type, entity_id, amount, details, logged_at
		FROM audit_events
		ORDER BY logged_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var ev domain.AuditEvent
		var amount pgtype.Int8
		if err := rows.Scan(&ev.ID, &ev.ActorID, &ev.ActorName, &ev.Action,
			&ev.EntityType, &ev.EntityID, &amount, &ev.Details, &ev.LoggedAt); err != nil {
			return nil, err
		}
		if amount.Valid {
			ev.Amount = &amount.Int64
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
