package repository

import (
	"context"
	"time"

	"knowo_wallet/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository handles the append-only admin_actions audit trail
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit entry
func (r *AuditRepository) Create(ctx context.Context, a *domain.AdminAction) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO admin_actions (action, performed_by, details)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, a.Action, a.PerformedBy, a.Details).Scan(&a.ID, &a.CreatedAt)
}

// GetRecent returns the most recent audit entries
func (r *AuditRepository) GetRecent(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, action, performed_by, details, created_at
		FROM admin_actions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.AdminAction
	for rows.Next() {
		var a domain.AdminAction
		if err := rows.Scan(&a.ID, &a.Action, &a.PerformedBy, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// LastExecuted returns the most recent run time per billing/cleanup action
func (r *AuditRepository) LastExecuted(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.db.Query(ctx, `
		SELECT action, MAX(created_at)
		FROM admin_actions
		WHERE action = ANY($1)
		GROUP BY action
	`, []string{
		domain.ActionManualCleanup,
		domain.ActionDailyCheck,
		domain.ActionMonthlyDeduction,
		domain.ActionRunAll,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	last := make(map[string]time.Time)
	for rows.Next() {
		var action string
		var at time.Time
		if err := rows.Scan(&action, &at); err != nil {
			return nil, err
		}
		last[action] = at
	}
	return last, rows.Err()
}
