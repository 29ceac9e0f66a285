package service

import (
	"context"
	"errors"

	"knowo_wallet/internal/domain"
	"knowo_wallet/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// pgWithdrawalStore is the production WithdrawalStore over Postgres.
type pgWithdrawalStore struct {
	db            *pgxpool.Pool
	withdrawals   *repository.WithdrawalRepository
	users         *repository.UserRepository
	notifications *repository.NotificationRepository
}

func NewWithdrawalStore(db *pgxpool.Pool) WithdrawalStore {
	return &pgWithdrawalStore{
		db:            db,
		withdrawals:   repository.NewWithdrawalRepository(db),
		users:         repository.NewUserRepository(db),
		notifications: repository.NewNotificationRepository(db),
	}
}

func (s *pgWithdrawalStore) Create(ctx context.Context, w *domain.Withdrawal) error {
	return s.withdrawals.Create(ctx, w)
}

func (s *pgWithdrawalStore) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	return s.withdrawals.GetByID(ctx, id)
}

func (s *pgWithdrawalStore) PendingCount(ctx context.Context, userID int64) (int64, error) {
	return s.withdrawals.HasPending(ctx, userID)
}

func (s *pgWithdrawalStore) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	balance, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// ApplyStatus updates the row, debits on completion and notifies, all in
// one transaction. The row update only matches withdrawals that are not
// completed yet, so two concurrent approvals cannot both debit: the loser
// gets ErrAlreadyCompleted. The debit amount comes from the updated row,
// not from an earlier read.
func (s *pgWithdrawalStore) ApplyStatus(ctx context.Context, id int64, status domain.WithdrawalStatus, message string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID, amount, err := s.withdrawals.UpdateStatusWithTx(ctx, tx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyCompleted
		}
		return err
	}

	if status == domain.WithdrawalStatusCompleted {
		if err := s.users.DebitWithTx(ctx, tx, userID, amount); err != nil {
			return err
		}
	}
	if message != "" {
		n := &domain.Notification{UserID: userID, Message: message}
		if err := s.notifications.CreateWithTx(ctx, tx, n); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *pgWithdrawalStore) ListAll(ctx context.Context) ([]domain.WithdrawalRecord, error) {
	return s.withdrawals.ListAll(ctx)
}

func (s *pgWithdrawalStore) ListByUser(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	return s.withdrawals.GetByUserID(ctx, userID)
}
