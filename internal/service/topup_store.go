package service

import (
	"context"
	"errors"
	"fmt"

	"knowo_wallet/internal/domain"
	"knowo_wallet/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// pgTopupStore is the production TopupStore over Postgres.
type pgTopupStore struct {
	db            *pgxpool.Pool
	topups        *repository.TopupRepository
	users         *repository.UserRepository
	notifications *repository.NotificationRepository
}

func NewTopupStore(db *pgxpool.Pool) TopupStore {
	return &pgTopupStore{
		db:            db,
		topups:        repository.NewTopupRepository(db),
		users:         repository.NewUserRepository(db),
		notifications: repository.NewNotificationRepository(db),
	}
}

func (s *pgTopupStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *pgTopupStore) FindByUTR(ctx context.Context, utr string) (*domain.Topup, error) {
	return s.topups.GetByUTR(ctx, utr)
}

func (s *pgTopupStore) FindByImage(ctx context.Context, imgHash string, userID int64) (*domain.Topup, error) {
	return s.topups.GetByImageHash(ctx, imgHash, userID)
}

func (s *pgTopupStore) Create(ctx context.Context, t *domain.Topup) error {
	return s.topups.Create(ctx, t)
}

// Approve flips the due flag; approving also completes the top-up, credits
// the user and writes the notification in one transaction.
func (s *pgTopupStore) Approve(ctx context.Context, id int64, due bool) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID, amount, err := s.topups.SetDueWithTx(ctx, tx, id, due)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTopupNotFound
		}
		return err
	}

	if due {
		if err := s.users.CreditWithTx(ctx, tx, userID, amount); err != nil {
			return err
		}
		n := &domain.Notification{UserID: userID, Message: topupApprovedMessage(amount)}
		if err := s.notifications.CreateWithTx(ctx, tx, n); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *pgTopupStore) Screenshot(ctx context.Context, id int64) ([]byte, error) {
	return s.topups.GetScreenshot(ctx, id)
}

func (s *pgTopupStore) ListAll(ctx context.Context) ([]domain.TopupRecord, error) {
	return s.topups.ListAll(ctx)
}

func (s *pgTopupStore) ListByUser(ctx context.Context, userID int64) ([]domain.Topup, error) {
	return s.topups.ListByUser(ctx, userID)
}

func topupApprovedMessage(amount decimal.Decimal) string {
	return fmt.Sprintf("Your top-up of $%s has been approved and credited.", amount.StringFixed(2))
}
