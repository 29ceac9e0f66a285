package repository

import (
	"context"

	"knowo_wallet/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create inserts a new pending withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO wallet_withdrawals
		(user_id, amount, message, method, upi_address, bank_holder_name, bank_name, ifsc_code, crypto_address, crypto_network, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, w.UserID, w.Amount.String(), nullable(w.Message), w.Method,
		nullable(w.UPIAddress), nullable(w.BankHolderName), nullable(w.BankName),
		nullable(w.IFSCCode), nullable(w.CryptoAddress), nullable(w.CryptoNetwork),
		w.Status).Scan(&w.ID, &w.CreatedAt)
}

// GetByID retrieves a withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount::text, message, method, upi_address, bank_holder_name,
		       bank_name, ifsc_code, crypto_address, crypto_network, status, created_at
		FROM wallet_withdrawals
		WHERE id = $1
	`, id)

	return scanWithdrawal(row)
}

// GetByUserID retrieves all withdrawals for a user, newest first
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount::text, message, method, upi_address, bank_holder_name,
		       bank_name, ifsc_code, crypto_address, crypto_network, status, created_at
		FROM wallet_withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// ListAll returns every withdrawal joined with the requesting user, newest
// first.
func (r *WithdrawalRepository) ListAll(ctx context.Context) ([]domain.WithdrawalRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.user_id, w.amount::text, w.message, w.method, w.upi_address,
		       w.bank_holder_name, w.bank_name, w.ifsc_code, w.crypto_address,
		       w.crypto_network, w.status, w.created_at, s.full_name, s.email
		FROM wallet_withdrawals w
		JOIN sign_up s ON w.user_id = s.id
		ORDER BY w.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.WithdrawalRecord
	for rows.Next() {
		var rec domain.WithdrawalRecord
		var amountStr string
		var message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet *string
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &amountStr, &message, &rec.Method, &upi,
			&holder, &bank, &ifsc, &cryptoAddr,
			&cryptoNet, &rec.Status, &rec.CreatedAt, &rec.FullName, &rec.Email,
		); err != nil {
			return nil, err
		}
		if rec.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, err
		}
		setOptional(&rec.Withdrawal, message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStatusWithTx sets the withdrawal status within a transaction. The
// update only matches rows that are not completed yet, so two concurrent
// approvals cannot both land; pgx.ErrNoRows means the row was already
// completed (or does not exist).
func (r *WithdrawalRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus) (int64, decimal.Decimal, error) {
	var userID int64
	var amountStr string
	err := tx.QueryRow(ctx, `
		UPDATE wallet_withdrawals
		SET status = $1
		WHERE id = $2 AND status <> 'completed'
		RETURNING user_id, amount::text
	`, status, id).Scan(&userID, &amountStr)
	if err != nil {
		return 0, decimal.Zero, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return userID, amount, nil
}

// HasPending checks if the user has a pending withdrawal, returning the
// pending count.
func (r *WithdrawalRepository) HasPending(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM wallet_withdrawals WHERE user_id = $1 AND status = 'pending'
	`, userID).Scan(&count)
	return count, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func setOptional(w *domain.Withdrawal, message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet *string) {
	if message != nil {
		w.Message = *message
	}
	if upi != nil {
		w.UPIAddress = *upi
	}
	if holder != nil {
		w.BankHolderName = *holder
	}
	if bank != nil {
		w.BankName = *bank
	}
	if ifsc != nil {
		w.IFSCCode = *ifsc
	}
	if cryptoAddr != nil {
		w.CryptoAddress = *cryptoAddr
	}
	if cryptoNet != nil {
		w.CryptoNetwork = *cryptoNet
	}
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var amountStr string
	var message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet *string

	if err := row.Scan(
		&w.ID, &w.UserID, &amountStr, &message, &w.Method, &upi, &holder,
		&bank, &ifsc, &cryptoAddr, &cryptoNet, &w.Status, &w.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	w.Amount = amount
	setOptional(&w, message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet)

	return &w, nil
}

func scanWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal

	for rows.Next() {
		var w domain.Withdrawal
		var amountStr string
		var message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet *string

		if err := rows.Scan(
			&w.ID, &w.UserID, &amountStr, &message, &w.Method, &upi, &holder,
			&bank, &ifsc, &cryptoAddr, &cryptoNet, &w.Status, &w.CreatedAt,
		); err != nil {
			return nil, err
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, err
		}
		w.Amount = amount
		setOptional(&w, message, upi, holder, bank, ifsc, cryptoAddr, cryptoNet)

		withdrawals = append(withdrawals, w)
	}

	return withdrawals, rows.Err()
}
