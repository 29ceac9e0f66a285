package domain

import "github.com/shopspring/decimal"

// PlanBronze is the no-fee default tier. Bronze users are never billed and
// cannot be downgraded further.
const PlanBronze = "Bronze"

// PlanPrices maps every paid plan tier to its fixed price. The maintenance
// fee charged per billing cycle is 10% of the price. A plan name missing
// from this table is a data-integrity signal, not a billing outcome.
var PlanPrices = map[string]int64{
	"Silver":    60,
	"Gold 1":    100,
	"Gold 2":    200,
	"Premium 1": 500,
	"Premium 2": 1000,
	"Premium 3": 2000,
	"Premium 4": 5000,
	"Premium 5": 10000,
}

// MaintenanceFee returns the per-cycle fee for a plan and whether the plan
// is known at all.
func MaintenanceFee(plan string) (decimal.Decimal, bool) {
	price, ok := PlanPrices[plan]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(price).Div(decimal.NewFromInt(10)), true
}
