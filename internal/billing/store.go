package billing

import (
	"context"
	"time"

	"knowo_wallet/internal/domain"
	"knowo_wallet/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// pgStore is the production Store over Postgres. Charging outcomes mutate
// the balance and insert the notification in one transaction so a partial
// apply cannot be observed.
type pgStore struct {
	db            *pgxpool.Pool
	users         *repository.UserRepository
	notifications *repository.NotificationRepository
	audit         *repository.AuditRepository
	quiz          *repository.QuizHistoryRepository
}

// NewStore creates the pgx-backed billing store
func NewStore(db *pgxpool.Pool) Store {
	return &pgStore{
		db:            db,
		users:         repository.NewUserRepository(db),
		notifications: repository.NewNotificationRepository(db),
		audit:         repository.NewAuditRepository(db),
		quiz:          repository.NewQuizHistoryRepository(db),
	}
}

func (s *pgStore) ListBillable(ctx context.Context) ([]domain.User, error) {
	return s.users.ListBillable(ctx)
}

func (s *pgStore) SendWarning(ctx context.Context, userID int64, message string) error {
	return s.notifications.Create(ctx, &domain.Notification{
		UserID:  userID,
		Message: message,
		Type:    domain.NotificationWarning,
	})
}

func (s *pgStore) ApplyRenewal(ctx context.Context, userID int64, fee decimal.Decimal, renewedAt time.Time, message string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.users.RenewPlanWithTx(ctx, tx, userID, fee, renewedAt); err != nil {
			return err
		}
		return s.notifications.CreateWithTx(ctx, tx, &domain.Notification{
			UserID:  userID,
			Message: message,
			Type:    domain.NotificationDeduction,
		})
	})
}

func (s *pgStore) ApplyDowngrade(ctx context.Context, userID int64, fee decimal.Decimal, message string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.users.DowngradeWithTx(ctx, tx, userID, fee); err != nil {
			return err
		}
		return s.notifications.CreateWithTx(ctx, tx, &domain.Notification{
			UserID:  userID,
			Message: message,
			Type:    domain.NotificationDowngrade,
		})
	})
}

func (s *pgStore) DeleteQuizHistory(ctx context.Context, days int) (int64, string, error) {
	cutoff, err := s.quiz.CutoffDate(ctx, days)
	if err != nil {
		return 0, "", err
	}
	deleted, err := s.quiz.DeleteOlderThan(ctx, days)
	if err != nil {
		return 0, "", err
	}
	return deleted, cutoff, nil
}

func (s *pgStore) DecrementDayCounts(ctx context.Context) (int64, int64, error) {
	return s.users.DecrementDayCounts(ctx)
}

func (s *pgStore) RecordAction(ctx context.Context, action, performedBy, details string) error {
	return s.audit.Create(ctx, &domain.AdminAction{
		Action:      action,
		PerformedBy: performedBy,
		Details:     details,
	})
}

func (s *pgStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
