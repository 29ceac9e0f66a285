package service

import (
	"context"
	"errors"
	"fmt"

	"knowo_wallet/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrAlreadyCompleted   = errors.New("withdrawal already completed")
	ErrInvalidStatus      = errors.New("invalid withdrawal status")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrPendingWithdrawal  = errors.New("a withdrawal request is already pending")
)

// WithdrawalStore is the persistence surface for withdrawals. ApplyStatus
// must be atomic: the status change, the completion debit and the
// notification land together or not at all, and a row that is already
// completed surfaces as ErrAlreadyCompleted.
type WithdrawalStore interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	PendingCount(ctx context.Context, userID int64) (int64, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	ApplyStatus(ctx context.Context, id int64, status domain.WithdrawalStatus, message string) error
	ListAll(ctx context.Context) ([]domain.WithdrawalRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
}

// WithdrawalService handles withdrawal requests and their admin review.
// Funds are debited at approval time, not at request time.
type WithdrawalService struct {
	store     WithdrawalStore
	minAmount decimal.Decimal
}

func NewWithdrawalService(db *pgxpool.Pool, minAmount decimal.Decimal) *WithdrawalService {
	return &WithdrawalService{store: NewWithdrawalStore(db), minAmount: minAmount}
}

// NewWithdrawalServiceWithStore creates a service over a custom store.
func NewWithdrawalServiceWithStore(store WithdrawalStore, minAmount decimal.Decimal) *WithdrawalService {
	return &WithdrawalService{store: store, minAmount: minAmount}
}

// RequestWithdrawal validates and records a pending withdrawal. A user may
// hold at most one pending request, and the amount must cover the minimum
// and fit the current balance.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	if !w.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if w.Amount.LessThan(s.minAmount) {
		return fmt.Errorf("minimum withdrawal is $%s", s.minAmount.StringFixed(2))
	}

	pending, err := s.store.PendingCount(ctx, w.UserID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return ErrPendingWithdrawal
	}

	balance, err := s.store.Balance(ctx, w.UserID)
	if err != nil {
		return err
	}
	if balance.LessThan(w.Amount) {
		return ErrInsufficientFunds
	}

	w.Status = domain.WithdrawalStatusPending
	return s.store.Create(ctx, w)
}

// UpdateStatus applies an admin decision. Completing a withdrawal debits
// the user and notifies them in one transaction; rejecting only notifies.
// A completed withdrawal is final: the store re-checks under the row
// update, so a concurrent approval loses with ErrAlreadyCompleted.
func (s *WithdrawalService) UpdateStatus(ctx context.Context, id int64, status domain.WithdrawalStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWithdrawalNotFound
	}
	if w.Status == domain.WithdrawalStatusCompleted {
		return ErrAlreadyCompleted
	}

	var message string
	switch status {
	case domain.WithdrawalStatusCompleted:
		message = withdrawalProcessedMessage(w.Amount)
	case domain.WithdrawalStatusRejected:
		message = withdrawalRejectedMessage(w.Amount)
	}

	return s.store.ApplyStatus(ctx, id, status, message)
}

// ListAll returns every withdrawal joined with the requester, newest first.
func (s *WithdrawalService) ListAll(ctx context.Context) ([]domain.WithdrawalRecord, error) {
	return s.store.ListAll(ctx)
}

// ListByUser returns one user's withdrawal history, newest first.
func (s *WithdrawalService) ListByUser(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	return s.store.ListByUser(ctx, userID)
}

func withdrawalProcessedMessage(amount decimal.Decimal) string {
	return fmt.Sprintf("Your withdrawal of $%s has been processed.", amount.StringFixed(2))
}

func withdrawalRejectedMessage(amount decimal.Decimal) string {
	return fmt.Sprintf("Your withdrawal request of $%s was rejected.", amount.StringFixed(2))
}
