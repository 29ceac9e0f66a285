package billing

import (
	"math"
	"time"

	"knowo_wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// Billing cycle day boundaries. Users are warned from day 25 through day
// 30 and charged from day 31 on.
const (
	WarningStartDay = 25
	WarningEndDay   = 30
	FeeDueDay       = 31
)

// Kind tags the single outcome assigned to a user in one evaluation. The
// five kinds partition the evaluated set: no user falls into two buckets or
// none.
type Kind string

const (
	KindNoAction  Kind = "no_action"
	KindWarning   Kind = "notification_sent"
	KindRenewal   Kind = "fee_deducted"
	KindDowngrade Kind = "fee_deducted_and_downgraded"
	KindSkipped   Kind = "skipped"
)

// Outcome is the decided action for one user. Fee and NewBalance are only
// meaningful for the kinds that charge; DaysRemaining only for warnings.
type Outcome struct {
	Kind          Kind
	Fee           decimal.Decimal
	Days          int
	DaysRemaining int
	NewBalance    decimal.Decimal
}

// Decide computes the billing outcome for a user given the plan tier, the
// number of whole days since the cycle start and the current balance. It is
// pure: all state changes are applied by the engine afterwards.
func Decide(plan string, daysSincePlanStart int, balance decimal.Decimal) Outcome {
	fee, known := domain.MaintenanceFee(plan)
	if !known {
		return Outcome{Kind: KindSkipped, Days: daysSincePlanStart}
	}

	switch {
	case daysSincePlanStart >= WarningStartDay && daysSincePlanStart <= WarningEndDay:
		return Outcome{
			Kind:          KindWarning,
			Fee:           fee,
			Days:          daysSincePlanStart,
			DaysRemaining: FeeDueDay - daysSincePlanStart,
		}
	case daysSincePlanStart >= FeeDueDay:
		newBalance := balance.Sub(fee)
		kind := KindRenewal
		if balance.LessThan(fee) {
			kind = KindDowngrade
		}
		return Outcome{
			Kind:       kind,
			Fee:        fee,
			Days:       daysSincePlanStart,
			NewBalance: newBalance,
		}
	default:
		// Covers daysSincePlanStart < WarningStartDay, including negative
		// values from a future-dated cycle start.
		return Outcome{Kind: KindNoAction, Fee: fee, Days: daysSincePlanStart}
	}
}

// DaysSince returns whole days elapsed from start to now, rounded down.
func DaysSince(now, start time.Time) int {
	return int(math.Floor(now.Sub(start).Hours() / 24))
}
