package billing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"knowo_wallet/internal/domain"

	"github.com/shopspring/decimal"
)

type fakeStore struct {
	users []domain.User

	warnings   map[int64][]string
	renewals   map[int64]decimal.Decimal
	downgrades map[int64]decimal.Decimal
	actions    []domain.AdminAction

	failUserID int64 // persistence for this user fails
	listErr    error
	recordErr  error

	quizDeleted  int64
	dayUpdated   int64
	dayRemaining int64
}

func newFakeStore(users ...domain.User) *fakeStore {
	return &fakeStore{
		users:      users,
		warnings:   make(map[int64][]string),
		renewals:   make(map[int64]decimal.Decimal),
		downgrades: make(map[int64]decimal.Decimal),
	}
}

func (f *fakeStore) ListBillable(ctx context.Context) ([]domain.User, error) {
	return f.users, f.listErr
}

func (f *fakeStore) SendWarning(ctx context.Context, userID int64, message string) error {
	if userID == f.failUserID {
		return errors.New("insert failed")
	}
	f.warnings[userID] = append(f.warnings[userID], message)
	return nil
}

func (f *fakeStore) ApplyRenewal(ctx context.Context, userID int64, fee decimal.Decimal, renewedAt time.Time, message string) error {
	if userID == f.failUserID {
		return errors.New("update failed")
	}
	f.renewals[userID] = fee
	return nil
}

func (f *fakeStore) ApplyDowngrade(ctx context.Context, userID int64, fee decimal.Decimal, message string) error {
	if userID == f.failUserID {
		return errors.New("update failed")
	}
	f.downgrades[userID] = fee
	return nil
}

func (f *fakeStore) DeleteQuizHistory(ctx context.Context, days int) (int64, string, error) {
	return f.quizDeleted, "01-Jan-2025", nil
}

func (f *fakeStore) DecrementDayCounts(ctx context.Context) (int64, int64, error) {
	return f.dayUpdated, f.dayRemaining, nil
}

func (f *fakeStore) RecordAction(ctx context.Context, action, performedBy, details string) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.actions = append(f.actions, domain.AdminAction{Action: action, PerformedBy: performedBy, Details: details})
	return nil
}

func billableUser(id int64, plan string, daysAgo int, balance string, now time.Time) domain.User {
	start := now.AddDate(0, 0, -daysAgo)
	return domain.User{
		ID:            id,
		FullName:      "user",
		BusinessPlan:  plan,
		Coin:          dec(balance),
		FirstPlanDate: &start,
	}
}

func TestRunMonthlyDeductionBuckets(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(
		billableUser(1, "Gold 1", 10, "100", now),   // no action
		billableUser(2, "Gold 1", 27, "50", now),    // warning
		billableUser(3, "Gold 1", 32, "100", now),   // renewal
		billableUser(4, "Gold 1", 32, "5", now),     // downgrade
		billableUser(5, "Platinum", 32, "100", now), // unknown plan
	)
	e := NewEngineWithStore(store, func() time.Time { return now })

	run, err := e.RunMonthlyDeduction(context.Background(), "admin")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(run.NoAction) != 1 || run.NoAction[0].UserID != 1 {
		t.Fatalf("no_action bucket = %+v", run.NoAction)
	}
	if len(run.Notifications) != 1 || run.Notifications[0].UserID != 2 {
		t.Fatalf("notifications bucket = %+v", run.Notifications)
	}
	if len(run.Deductions) != 1 || run.Deductions[0].UserID != 3 {
		t.Fatalf("deductions bucket = %+v", run.Deductions)
	}
	if len(run.Downgrades) != 1 || run.Downgrades[0].UserID != 4 {
		t.Fatalf("downgrades bucket = %+v", run.Downgrades)
	}
	if len(run.Skipped) != 1 || run.Skipped[0].UserID != 5 {
		t.Fatalf("skipped bucket = %+v", run.Skipped)
	}

	total := len(run.NoAction) + len(run.Notifications) + len(run.Deductions) +
		len(run.Downgrades) + len(run.Skipped) + len(run.Failures)
	if total != len(store.users) {
		t.Fatalf("buckets cover %d users; want %d", total, len(store.users))
	}

	// one audit entry for the batch
	if len(store.actions) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(store.actions))
	}
	a := store.actions[0]
	if a.Action != domain.ActionMonthlyDeduction || a.PerformedBy != "admin" {
		t.Fatalf("audit entry = %+v", a)
	}
	if a.Details != "Notifications: 1, Deductions: 2, Downgrades: 1" {
		t.Fatalf("audit details = %q", a.Details)
	}
}

func TestRunMonthlyDeductionWarningMessage(t *testing.T) {
	// scenario: Gold 1, cycle start 27 days ago, balance 50
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(billableUser(2, "Gold 1", 27, "50", now))
	e := NewEngineWithStore(store, func() time.Time { return now })

	run, err := e.RunMonthlyDeduction(context.Background(), "admin")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if run.Notifications[0].DaysLeft != 4 {
		t.Fatalf("days remaining = %d; want 4", run.Notifications[0].DaysLeft)
	}

	msgs := store.warnings[2]
	if len(msgs) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "$10.00") || !strings.Contains(msgs[0], "in 4 days") {
		t.Fatalf("warning message = %q", msgs[0])
	}

	// balance and plan untouched in the warning window
	if len(store.renewals) != 0 || len(store.downgrades) != 0 {
		t.Fatalf("warning must not mutate balances")
	}
}

func TestRunMonthlyDeductionDowngradeScenario(t *testing.T) {
	// Gold 1 (price 100, fee 10), cycle start 32 days ago, balance 5
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(billableUser(4, "Gold 1", 32, "5", now))
	e := NewEngineWithStore(store, func() time.Time { return now })

	run, err := e.RunMonthlyDeduction(context.Background(), "admin")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(run.Downgrades) != 1 {
		t.Fatalf("expected 1 downgrade, got %+v", run)
	}
	r := run.Downgrades[0]
	if r.NewBalance != "-5.00" {
		t.Fatalf("new balance = %s; want -5.00", r.NewBalance)
	}
	if fee, ok := store.downgrades[4]; !ok || !fee.Equal(dec("10")) {
		t.Fatalf("downgrade fee = %v", fee)
	}
}

func TestRunMonthlyDeductionIsolatesFailures(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(
		billableUser(3, "Gold 1", 32, "100", now),
		billableUser(4, "Gold 1", 32, "200", now),
	)
	store.failUserID = 3
	e := NewEngineWithStore(store, func() time.Time { return now })

	run, err := e.RunMonthlyDeduction(context.Background(), "admin")
	if err != nil {
		t.Fatalf("one bad row must not fail the batch: %v", err)
	}

	if len(run.Failures) != 1 || run.Failures[0].UserID != 3 {
		t.Fatalf("failures = %+v", run.Failures)
	}
	if len(run.Deductions) != 1 || run.Deductions[0].UserID != 4 {
		t.Fatalf("remaining users must still be processed: %+v", run.Deductions)
	}
}

func TestRunMonthlyDeductionDuplicateWarnings(t *testing.T) {
	// re-running inside the warning window duplicates the notification;
	// this is known behavior, not a bug to fix silently
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(billableUser(2, "Gold 1", 26, "50", now))
	e := NewEngineWithStore(store, func() time.Time { return now })

	for i := 0; i < 2; i++ {
		if _, err := e.RunMonthlyDeduction(context.Background(), "admin"); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if got := len(store.warnings[2]); got != 2 {
		t.Fatalf("expected 2 duplicate warnings, got %d", got)
	}
}

func TestRunMonthlyDeductionReadFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("db down")
	e := NewEngineWithStore(store, time.Now)

	if _, err := e.RunMonthlyDeduction(context.Background(), "admin"); err == nil {
		t.Fatal("expected error when user set cannot be read")
	}
}

func TestRunMonthlyDeductionAuditFailure(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(billableUser(3, "Gold 1", 32, "100", now))
	store.recordErr = errors.New("audit table gone")
	e := NewEngineWithStore(store, func() time.Time { return now })

	run, err := e.RunMonthlyDeduction(context.Background(), "admin")
	if err == nil {
		t.Fatal("expected error when audit write fails")
	}
	// mutations already applied are still reported
	if run == nil || len(run.Deductions) != 1 {
		t.Fatalf("run summary should survive the audit failure: %+v", run)
	}
}

func TestRunAllBestEffort(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(billableUser(3, "Gold 1", 32, "100", now))
	store.quizDeleted = 7
	store.dayUpdated = 12
	store.dayRemaining = 9
	e := NewEngineWithStore(store, func() time.Time { return now })

	result, err := e.RunAll(context.Background(), domain.PerformedByScheduler)
	if err != nil {
		t.Fatalf("run all failed: %v", err)
	}
	if !result.Cleanup.Success || !result.DailyCheck.Success || !result.MonthlyDeduction.Success {
		t.Fatalf("all jobs should succeed: %+v", result)
	}

	// the cascaded jobs must not write their own audit rows; the composite
	// run is recorded exactly once
	if len(store.actions) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(store.actions))
	}
	entry := store.actions[0]
	if entry.Action != domain.ActionRunAll || entry.PerformedBy != domain.PerformedByScheduler {
		t.Fatalf("audit entry = %+v", entry)
	}
}
