package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func warningMessage(plan string, fee decimal.Decimal, daysRemaining int) string {
	return fmt.Sprintf(
		"Maintenance fee of $%s for your %s plan will be deducted in %d days. Please maintain sufficient balance.",
		fee.StringFixed(2), plan, daysRemaining,
	)
}

func deductionMessage(plan string, fee, newBalance decimal.Decimal) string {
	return fmt.Sprintf(
		"Maintenance fee of $%s deducted for %s plan. New balance: $%s",
		fee.StringFixed(2), plan, newBalance.StringFixed(2),
	)
}

func downgradeMessage(fee, oldBalance, newBalance decimal.Decimal) string {
	return fmt.Sprintf(
		"Auto-downgraded to Bronze plan. Maintenance fee of $%s deducted. Balance: $%s - $%s = $%s",
		fee.StringFixed(2), oldBalance.StringFixed(2), fee.StringFixed(2), newBalance.StringFixed(2),
	)
}
