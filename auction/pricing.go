// Package auction computes the instantaneous execution price of
// time-decaying orders. The price law is pure; state transitions
// belong to the order manager.
package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceAt returns the linearly decayed price at now for an order priced
// from start down to end over [createdAt, expiresAt]. now is clamped to
// the interval, so callers before creation see start and callers at or
// past expiry see end. For fixed-price orders pass end == start.
func PriceAt(start, end decimal.Decimal, createdAt, expiresAt time.Time, now time.Time) decimal.Decimal {
	total := expiresAt.Sub(createdAt)
	if total <= 0 {
		return end
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return start
	}
	if elapsed >= total {
		return end
	}
	progress := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(total)))
	return start.Sub(start.Sub(end).Mul(progress))
}

// Progress returns the decay progress in [0,1] at now.
func Progress(createdAt, expiresAt time.Time, now time.Time) decimal.Decimal {
	total := expiresAt.Sub(createdAt)
	if total <= 0 {
		return decimal.NewFromInt(1)
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return decimal.Zero
	}
	if elapsed >= total {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(total)))
}

// TerminalAt reports whether the order has reached its terminal price.
// It does not mutate anything; expiry is the sweep's responsibility.
func TerminalAt(expiresAt time.Time, now time.Time) bool {
	return !now.Before(expiresAt)
}
