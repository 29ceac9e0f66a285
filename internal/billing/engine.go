package billing

import (
	"context"
	"fmt"
	"time"

	"knowo_wallet/internal/domain"
	"knowo_wallet/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CleanupRetentionDays is how long quiz history is kept before the cleanup
// job deletes it.
const CleanupRetentionDays = 45

// Store is the persistence surface the engine drives. The pgx-backed
// implementation applies each charging outcome (balance mutation plus
// notification) in a single transaction.
type Store interface {
	ListBillable(ctx context.Context) ([]domain.User, error)
	SendWarning(ctx context.Context, userID int64, message string) error
	ApplyRenewal(ctx context.Context, userID int64, fee decimal.Decimal, renewedAt time.Time, message string) error
	ApplyDowngrade(ctx context.Context, userID int64, fee decimal.Decimal, message string) error
	DeleteQuizHistory(ctx context.Context, days int) (deleted int64, cutoff string, err error)
	DecrementDayCounts(ctx context.Context) (updated, remaining int64, err error)
	RecordAction(ctx context.Context, action, performedBy, details string) error
}

// Engine runs the periodic billing jobs: monthly maintenance-fee
// deduction, daily day-count decrement and quiz-history cleanup. The
// scheduled cron tick and the manual admin trigger both go through the
// same methods, differing only in the performedBy attribution.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates an engine over a pgx pool
func NewEngine(db *pgxpool.Pool) *Engine {
	return &Engine{store: NewStore(db), now: time.Now}
}

// NewEngineWithStore creates an engine over a custom store and clock
func NewEngineWithStore(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// UserReport describes what happened to one user in a run
type UserReport struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Plan       string `json:"plan,omitempty"`
	Action     Kind   `json:"action"`
	Days       int    `json:"days"`
	DaysLeft   int    `json:"days_remaining,omitempty"`
	Fee        string `json:"fee,omitempty"`
	OldBalance string `json:"old_balance,omitempty"`
	NewBalance string `json:"new_balance,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MonthlyRun is the summary of one monthly deduction evaluation. The four
// outcome buckets plus Skipped partition the evaluated users; Failures
// holds users whose decided outcome could not be persisted.
type MonthlyRun struct {
	Notifications []UserReport `json:"notifications"`
	Deductions    []UserReport `json:"deductions"`
	Downgrades    []UserReport `json:"downgrades"`
	NoAction      []UserReport `json:"no_action"`
	Skipped       []UserReport `json:"skipped"`
	Failures      []UserReport `json:"failures"`
}

// Summary returns the bucket counts for the audit trail and API responses
func (m *MonthlyRun) Summary() map[string]int {
	return map[string]int{
		"notifications": len(m.Notifications),
		"deductions":    len(m.Deductions) + len(m.Downgrades),
		"downgrades":    len(m.Downgrades),
		"no_action":     len(m.NoAction),
		"skipped":       len(m.Skipped),
		"failures":      len(m.Failures),
	}
}

// RunMonthlyDeduction evaluates every billable user exactly once and
// applies the decided outcome. Per-user persistence failures are isolated
// into the summary; the run itself fails only when the initial read or the
// final audit write fails.
func (e *Engine) RunMonthlyDeduction(ctx context.Context, performedBy string) (*MonthlyRun, error) {
	run, err := e.monthlyDeduction(ctx)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Notifications: %d, Deductions: %d, Downgrades: %d",
		len(run.Notifications), len(run.Deductions)+len(run.Downgrades), len(run.Downgrades))
	if err := e.store.RecordAction(ctx, domain.ActionMonthlyDeduction, performedBy, details); err != nil {
		return run, fmt.Errorf("record audit entry: %w", err)
	}

	logger.Info("monthly deduction completed",
		"performed_by", performedBy,
		"notifications", len(run.Notifications),
		"deductions", len(run.Deductions),
		"downgrades", len(run.Downgrades),
		"failures", len(run.Failures),
	)
	return run, nil
}

func (e *Engine) monthlyDeduction(ctx context.Context) (*MonthlyRun, error) {
	users, err := e.store.ListBillable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list billable users: %w", err)
	}

	now := e.now()
	run := &MonthlyRun{}

	for _, u := range users {
		report := e.evaluateUser(ctx, u, now)
		outcomeCounter.WithLabelValues(string(report.Action)).Inc()

		if report.Error != "" {
			failureCounter.Inc()
			run.Failures = append(run.Failures, report)
			continue
		}

		switch report.Action {
		case KindWarning:
			run.Notifications = append(run.Notifications, report)
		case KindRenewal:
			run.Deductions = append(run.Deductions, report)
		case KindDowngrade:
			run.Downgrades = append(run.Downgrades, report)
		case KindSkipped:
			run.Skipped = append(run.Skipped, report)
		default:
			run.NoAction = append(run.NoAction, report)
		}
	}

	return run, nil
}

func (e *Engine) evaluateUser(ctx context.Context, u domain.User, now time.Time) UserReport {
	days := DaysSince(now, *u.FirstPlanDate)
	oc := Decide(u.BusinessPlan, days, u.Coin)

	report := UserReport{
		UserID: u.ID,
		Name:   u.FullName,
		Plan:   u.BusinessPlan,
		Action: oc.Kind,
		Days:   days,
	}

	switch oc.Kind {
	case KindSkipped:
		report.Reason = fmt.Sprintf("Unknown plan: %s", u.BusinessPlan)
		return report

	case KindNoAction:
		report.Reason = fmt.Sprintf("Only %d days passed - waiting for day %d+", days, WarningStartDay)
		return report

	case KindWarning:
		report.DaysLeft = oc.DaysRemaining
		report.Fee = oc.Fee.StringFixed(2)
		msg := warningMessage(u.BusinessPlan, oc.Fee, oc.DaysRemaining)
		if err := e.store.SendWarning(ctx, u.ID, msg); err != nil {
			report.Error = err.Error()
		}
		return report

	case KindRenewal:
		report.Fee = oc.Fee.StringFixed(2)
		report.OldBalance = u.Coin.StringFixed(2)
		report.NewBalance = oc.NewBalance.StringFixed(2)
		msg := deductionMessage(u.BusinessPlan, oc.Fee, oc.NewBalance)
		if err := e.store.ApplyRenewal(ctx, u.ID, oc.Fee, now, msg); err != nil {
			report.Error = err.Error()
		}
		return report

	default: // KindDowngrade
		report.Fee = oc.Fee.StringFixed(2)
		report.OldBalance = u.Coin.StringFixed(2)
		report.NewBalance = oc.NewBalance.StringFixed(2)
		report.Reason = fmt.Sprintf("Insufficient balance: $%s - $%s = $%s",
			u.Coin.StringFixed(2), oc.Fee.StringFixed(2), oc.NewBalance.StringFixed(2))
		msg := downgradeMessage(oc.Fee, u.Coin, oc.NewBalance)
		if err := e.store.ApplyDowngrade(ctx, u.ID, oc.Fee, msg); err != nil {
			report.Error = err.Error()
		}
		return report
	}
}

// CleanupResult summarizes a quiz-history cleanup run
type CleanupResult struct {
	Deleted int64  `json:"deleted"`
	Cutoff  string `json:"cutoff_date"`
}

// RunCleanup deletes quiz history older than the retention window
func (e *Engine) RunCleanup(ctx context.Context, performedBy string) (*CleanupResult, error) {
	result, err := e.cleanup(ctx)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Cleaned up %d records older than %s", result.Deleted, result.Cutoff)
	if err := e.store.RecordAction(ctx, domain.ActionManualCleanup, performedBy, details); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	logger.Info("cleanup completed", "performed_by", performedBy, "deleted", result.Deleted, "cutoff", result.Cutoff)
	return result, nil
}

func (e *Engine) cleanup(ctx context.Context) (*CleanupResult, error) {
	deleted, cutoff, err := e.store.DeleteQuizHistory(ctx, CleanupRetentionDays)
	if err != nil {
		return nil, err
	}
	return &CleanupResult{Deleted: deleted, Cutoff: cutoff}, nil
}

// DailyCheckResult summarizes a day-count decrement run
type DailyCheckResult struct {
	Updated   int64 `json:"updated"`
	Remaining int64 `json:"remaining"`
}

// RunDailyCheck decrements every user's remaining day count, floored at
// zero.
func (e *Engine) RunDailyCheck(ctx context.Context, performedBy string) (*DailyCheckResult, error) {
	result, err := e.dailyCheck(ctx)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Deducted 1 day from %d users. %d users still have positive day_count", result.Updated, result.Remaining)
	if err := e.store.RecordAction(ctx, domain.ActionDailyCheck, performedBy, details); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	logger.Info("daily check completed", "performed_by", performedBy, "updated", result.Updated, "remaining", result.Remaining)
	return result, nil
}

func (e *Engine) dailyCheck(ctx context.Context) (*DailyCheckResult, error) {
	updated, remaining, err := e.store.DecrementDayCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &DailyCheckResult{Updated: updated, Remaining: remaining}, nil
}

// JobResult reports one job inside a composite run
type JobResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RunAllResult aggregates the composite "run everything" trigger
type RunAllResult struct {
	Cleanup          JobResult `json:"cleanup"`
	DailyCheck       JobResult `json:"daily_check"`
	MonthlyDeduction JobResult `json:"monthly_deduction"`
}

// RunAll executes cleanup, daily check and monthly deduction in sequence,
// best-effort: one failing job does not stop the others. The cascaded jobs
// do not write their own audit rows; a single audit entry records the
// composite run.
func (e *Engine) RunAll(ctx context.Context, performedBy string) (*RunAllResult, error) {
	result := &RunAllResult{}

	if cleanup, err := e.cleanup(ctx); err != nil {
		result.Cleanup = JobResult{Error: err.Error()}
	} else {
		result.Cleanup = JobResult{
			Success: true,
			Message: fmt.Sprintf("Cleanup completed (%d records older than %d days deleted)", cleanup.Deleted, CleanupRetentionDays),
		}
	}

	if daily, err := e.dailyCheck(ctx); err != nil {
		result.DailyCheck = JobResult{Error: err.Error()}
	} else {
		result.DailyCheck = JobResult{
			Success: true,
			Message: fmt.Sprintf("Daily check completed (%d users day_count decreased by 1)", daily.Updated),
		}
	}

	if monthly, err := e.monthlyDeduction(ctx); err != nil {
		result.MonthlyDeduction = JobResult{Error: err.Error()}
	} else {
		result.MonthlyDeduction = JobResult{
			Success: true,
			Message: fmt.Sprintf("Monthly deduction completed (Notifications: %d, Deductions: %d, Downgrades: %d)",
				len(monthly.Notifications), len(monthly.Deductions)+len(monthly.Downgrades), len(monthly.Downgrades)),
		}
	}

	if err := e.store.RecordAction(ctx, domain.ActionRunAll, performedBy, "All 3 cron jobs executed"); err != nil {
		return result, fmt.Errorf("record audit entry: %w", err)
	}

	return result, nil
}
