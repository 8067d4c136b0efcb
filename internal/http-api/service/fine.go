package service

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// FineFor is the fine owed for a loan due at due, measured at ref.
// Every started day past due counts as a whole day; nothing is owed up to
// and including the due instant.
func FineFor(due, ref time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	overdue := ref.Sub(due)
	if overdue <= 0 {
		return decimal.Zero
	}
	days := int64(overdue / day)
	if overdue%day != 0 {
		days++
	}
	return dailyRate.Mul(decimal.NewFromInt(days)).Round(2)
}
