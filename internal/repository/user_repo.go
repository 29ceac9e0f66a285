package repository

import (
	"context"
	"time"

	"knowo_wallet/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, business_plan, coin::text, first_plan_date, day_count, created_at
		FROM sign_up
		WHERE id = $1
	`, id)

	return scanUser(row)
}

// GetBalance returns the user's current coin balance
func (r *UserRepository) GetBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	var coin string
	err := r.db.QueryRow(ctx, `SELECT coin::text FROM sign_up WHERE id = $1`, id).Scan(&coin)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(coin)
}

// ListBillable returns every user on a paid plan with a recorded cycle
// start. Bronze users are never billed.
func (r *UserRepository) ListBillable(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, email, business_plan, coin::text, first_plan_date, day_count, created_at
		FROM sign_up
		WHERE business_plan IS NOT NULL
		  AND business_plan != $1
		  AND first_plan_date IS NOT NULL
		ORDER BY id
	`, domain.PlanBronze)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserFromRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CreditWithTx adds amount to the user's balance within a transaction
func (r *UserRepository) CreditWithTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, `UPDATE sign_up SET coin = coin + $1 WHERE id = $2`, amount.String(), id)
	return err
}

// DebitWithTx subtracts amount from the user's balance within a transaction.
// The balance is allowed to go negative.
func (r *UserRepository) DebitWithTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, `UPDATE sign_up SET coin = coin - $1 WHERE id = $2`, amount.String(), id)
	return err
}

// RenewPlanWithTx debits the maintenance fee and resets the billing cycle
// start, keeping the current plan.
func (r *UserRepository) RenewPlanWithTx(ctx context.Context, tx pgx.Tx, id int64, fee decimal.Decimal, renewedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE sign_up SET coin = coin - $1, first_plan_date = $2 WHERE id = $3
	`, fee.String(), renewedAt, id)
	return err
}

// DowngradeWithTx debits the maintenance fee, forces the plan back to
// Bronze and clears the cycle start.
func (r *UserRepository) DowngradeWithTx(ctx context.Context, tx pgx.Tx, id int64, fee decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE sign_up SET coin = coin - $1, business_plan = $2, first_plan_date = NULL WHERE id = $3
	`, fee.String(), domain.PlanBronze, id)
	return err
}

// DecrementDayCounts subtracts one usable day from every user, floored at
// zero. Returns the number of updated rows and the number of users still
// holding a positive day count.
func (r *UserRepository) DecrementDayCounts(ctx context.Context) (updated int64, remaining int64, err error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sign_up
		SET day_count = GREATEST(day_count - 1, 0)
		WHERE day_count > 0
	`)
	if err != nil {
		return 0, 0, err
	}
	updated = tag.RowsAffected()

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sign_up WHERE day_count > 0`).Scan(&remaining)
	if err != nil {
		return updated, 0, err
	}
	return updated, remaining, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var plan *string
	var coin string
	var firstPlanDate *time.Time

	if err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &plan, &coin, &firstPlanDate, &u.DayCount, &u.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if plan != nil {
		u.BusinessPlan = *plan
	}
	balance, err := decimal.NewFromString(coin)
	if err != nil {
		return nil, err
	}
	u.Coin = balance
	u.FirstPlanDate = firstPlanDate

	return &u, nil
}

func scanUserFromRows(rows pgx.Rows) (*domain.User, error) {
	var u domain.User
	var plan *string
	var coin string
	var firstPlanDate *time.Time

	if err := rows.Scan(
		&u.ID, &u.FullName, &u.Email, &plan, &coin, &firstPlanDate, &u.DayCount, &u.CreatedAt,
	); err != nil {
		return nil, err
	}

	if plan != nil {
		u.BusinessPlan = *plan
	}
	balance, err := decimal.NewFromString(coin)
	if err != nil {
		return nil, err
	}
	u.Coin = balance
	u.FirstPlanDate = firstPlanDate

	return &u, nil
}
