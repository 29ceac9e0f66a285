package repository

import (
	"context"

	"knowo_wallet/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TopupRepository struct {
	db *pgxpool.Pool
}

func NewTopupRepository(db *pgxpool.Pool) *TopupRepository {
	return &TopupRepository{db: db}
}

// Create inserts a new pending top-up submission
func (r *TopupRepository) Create(ctx context.Context, t *domain.Topup) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO wallet_topups (user_id, amount, method, utr_number, screenshot, img_hash, ocr_raw, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, payment_date
	`, t.UserID, t.Amount.String(), t.Method, t.UTRNumber, t.Screenshot, t.ImgHash, t.OCRRaw, t.Status).Scan(&t.ID, &t.PaymentDate)
}

// GetByUTR retrieves a top-up by its UTR number (global duplicate check)
func (r *TopupRepository) GetByUTR(ctx context.Context, utr string) (*domain.Topup, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount::text, method, utr_number, img_hash, status, due, payment_date
		FROM wallet_topups
		WHERE utr_number = $1
	`, utr)

	return scanTopup(row)
}

// GetByImageHash retrieves a top-up by screenshot hash for a given user
// (per-user duplicate check)
func (r *TopupRepository) GetByImageHash(ctx context.Context, imgHash string, userID int64) (*domain.Topup, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount::text, method, utr_number, img_hash, status, due, payment_date
		FROM wallet_topups
		WHERE img_hash = $1 AND user_id = $2
	`, imgHash, userID)

	return scanTopup(row)
}

// GetScreenshot returns the raw screenshot bytes for a submission
func (r *TopupRepository) GetScreenshot(ctx context.Context, id int64) ([]byte, error) {
	var screenshot []byte
	err := r.db.QueryRow(ctx, `SELECT screenshot FROM wallet_topups WHERE id = $1`, id).Scan(&screenshot)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return screenshot, nil
}

// SetDueWithTx updates the admin approval flag. Setting due also moves the
// submission to completed. Returns the owning user and amount so the caller
// can credit the balance in the same transaction.
func (r *TopupRepository) SetDueWithTx(ctx context.Context, tx pgx.Tx, id int64, due bool) (userID int64, amount decimal.Decimal, err error) {
	var amountStr string
	err = tx.QueryRow(ctx, `
		UPDATE wallet_topups
		SET due = $1,
		    status = CASE WHEN $1 = true THEN 'completed' ELSE status END
		WHERE id = $2
		RETURNING user_id, amount::text
	`, due, id).Scan(&userID, &amountStr)
	if err != nil {
		return 0, decimal.Zero, err
	}
	amount, err = decimal.NewFromString(amountStr)
	return userID, amount, err
}

// ListAll returns every top-up joined with the submitting user, newest
// first. Screenshot bytes are not included.
func (r *TopupRepository) ListAll(ctx context.Context) ([]domain.TopupRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.user_id, t.amount::text, t.method, t.utr_number, t.img_hash,
		       t.status, t.due, t.payment_date, s.full_name, s.email
		FROM wallet_topups t
		JOIN sign_up s ON t.user_id = s.id
		ORDER BY t.payment_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TopupRecord
	for rows.Next() {
		var rec domain.TopupRecord
		var amountStr string
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &amountStr, &rec.Method, &rec.UTRNumber, &rec.ImgHash,
			&rec.Status, &rec.Due, &rec.PaymentDate, &rec.FullName, &rec.Email,
		); err != nil {
			return nil, err
		}
		if rec.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListByUser returns all top-ups for a user, newest first
func (r *TopupRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Topup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount::text, method, utr_number, img_hash, status, due, payment_date
		FROM wallet_topups
		WHERE user_id = $1
		ORDER BY payment_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topups []domain.Topup
	for rows.Next() {
		var t domain.Topup
		var amountStr string
		if err := rows.Scan(
			&t.ID, &t.UserID, &amountStr, &t.Method, &t.UTRNumber, &t.ImgHash,
			&t.Status, &t.Due, &t.PaymentDate,
		); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, err
		}
		topups = append(topups, t)
	}
	return topups, rows.Err()
}

func scanTopup(row pgx.Row) (*domain.Topup, error) {
	var t domain.Topup
	var amountStr string

	if err := row.Scan(
		&t.ID, &t.UserID, &amountStr, &t.Method, &t.UTRNumber, &t.ImgHash,
		&t.Status, &t.Due, &t.PaymentDate,
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
	t.Amount = amount

	return &t, nil
}
