package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDecideBuckets(t *testing.T) {
	cases := []struct {
		name    string
		plan    string
		days    int
		balance string
		want    Kind
	}{
		{"young cycle", "Gold 1", 10, "100", KindNoAction},
		{"day before warning window", "Gold 1", 24, "100", KindNoAction},
		{"warning window start", "Gold 1", 25, "100", KindWarning},
		{"warning window end", "Gold 1", 30, "100", KindWarning},
		{"due day sufficient balance", "Gold 1", 31, "100", KindRenewal},
		{"due day exact fee", "Gold 1", 31, "10", KindRenewal},
		{"due day insufficient balance", "Gold 1", 31, "9.99", KindDowngrade},
		{"long overdue broke user", "Premium 5", 90, "0", KindDowngrade},
		{"negative days guarded", "Gold 1", -3, "100", KindNoAction},
		{"unknown plan", "Platinum", 40, "100", KindSkipped},
	}

	for _, tc := range cases {
		oc := Decide(tc.plan, tc.days, dec(tc.balance))
		if oc.Kind != tc.want {
			t.Fatalf("%s: Decide(%s, %d, %s) = %s; want %s", tc.name, tc.plan, tc.days, tc.balance, oc.Kind, tc.want)
		}
	}
}

func TestDecideFeeIsTenPercent(t *testing.T) {
	oc := Decide("Gold 1", 31, dec("100"))
	if !oc.Fee.Equal(dec("10")) {
		t.Fatalf("Gold 1 fee = %s; want 10", oc.Fee)
	}

	oc = Decide("Silver", 31, dec("100"))
	if !oc.Fee.Equal(dec("6")) {
		t.Fatalf("Silver fee = %s; want 6", oc.Fee)
	}
}

func TestDecideWarningDaysRemaining(t *testing.T) {
	// cycle start 27 days ago: fee lands on day 31, so 4 days remain
	oc := Decide("Gold 1", 27, dec("50"))
	if oc.Kind != KindWarning {
		t.Fatalf("expected warning, got %s", oc.Kind)
	}
	if oc.DaysRemaining != 4 {
		t.Fatalf("days remaining = %d; want 4", oc.DaysRemaining)
	}
}

func TestDecideDowngradeBalanceGoesNegative(t *testing.T) {
	// plan Gold 1 (fee 10), balance 5: fee is still charged in full
	oc := Decide("Gold 1", 32, dec("5"))
	if oc.Kind != KindDowngrade {
		t.Fatalf("expected downgrade, got %s", oc.Kind)
	}
	if !oc.NewBalance.Equal(dec("-5")) {
		t.Fatalf("new balance = %s; want -5", oc.NewBalance)
	}
}

func TestDecidePartition(t *testing.T) {
	// every (plan, days, balance) combination lands in exactly one bucket
	plans := []string{"Silver", "Gold 1", "Premium 3", "NoSuchPlan"}
	balances := []string{"0", "5", "10", "100", "-3"}

	for _, plan := range plans {
		for days := -2; days <= 40; days++ {
			for _, bal := range balances {
				oc := Decide(plan, days, dec(bal))
				switch oc.Kind {
				case KindNoAction, KindWarning, KindRenewal, KindDowngrade, KindSkipped:
				default:
					t.Fatalf("Decide(%s, %d, %s) produced unknown kind %q", plan, days, bal, oc.Kind)
				}
			}
		}
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		start time.Time
		want  int
	}{
		{now.AddDate(0, 0, -32), 32},
		{now.Add(-25*24*time.Hour - time.Hour), 25},
		{now.Add(-23 * time.Hour), 0},
		{now.Add(26 * time.Hour), -2}, // future start floors downward
	}

	for _, tc := range cases {
		if got := DaysSince(now, tc.start); got != tc.want {
			t.Fatalf("DaysSince(now, %v) = %d; want %d", tc.start, got, tc.want)
		}
	}
}
