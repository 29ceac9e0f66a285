package repository

import (
	"context"

	"knowo_wallet/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles the append-only notifications table
type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, message, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.UserID, n.Message, string(n.Type)).Scan(&n.ID, &n.CreatedAt)
}

// CreateWithTx inserts a new notification within a transaction
func (r *NotificationRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, n *domain.Notification) error {
	return tx.QueryRow(ctx, `
		INSERT INTO notifications (user_id, message, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.UserID, n.Message, string(n.Type)).Scan(&n.ID, &n.CreatedAt)
}

// GetByUserID returns notifications for a user, newest first
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, message, type, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ *string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &typ, &n.CreatedAt); err != nil {
			return nil, err
		}
		if typ != nil {
			n.Type = domain.NotificationType(*typ)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
