package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            int64           `db:"id" json:"id"`
	FullName      string          `db:"full_name" json:"full_name"`
	Email         string          `db:"email" json:"email"`
	BusinessPlan  string          `db:"business_plan" json:"business_plan"`
	Coin          decimal.Decimal `db:"coin" json:"coin"`
	FirstPlanDate *time.Time      `db:"first_plan_date" json:"first_plan_date,omitempty"`
	DayCount      int             `db:"day_count" json:"day_count"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
