package domain

import "time"

// AdminAction is an append-only audit trail entry recording every manual or
// scheduled billing/cleanup run.
type AdminAction struct {
	ID          int64     `db:"id" json:"id"`
	Action      string    `db:"action" json:"action"`
	PerformedBy string    `db:"performed_by" json:"performed_by"`
	Details     string    `db:"details" json:"details"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Audit action names
const (
	ActionManualCleanup    = "manual_cleanup"
	ActionDailyCheck       = "manual_daily_check"
	ActionMonthlyDeduction = "manual_monthly_deduction"
	ActionRunAll           = "run_all_cron_jobs"
)

// PerformedByScheduler attributes runs triggered by the cron tick rather
// than an admin.
const PerformedByScheduler = "scheduler"
