package pricing

import "github.com/shopspring/decimal"

// ImpactLevel classifies the deviation of an execution rate from the
// reference rate.
type ImpactLevel int

const (
	ImpactMinimal ImpactLevel = iota
	ImpactLow
	ImpactModerate
	ImpactHigh
	ImpactVeryHigh
)

// String returns the level name.
func (l ImpactLevel) String() string {
	switch l {
	case ImpactMinimal:
		return "MINIMAL"
	case ImpactLow:
		return "LOW"
	case ImpactModerate:
		return "MODERATE"
	case ImpactHigh:
		return "HIGH"
	case ImpactVeryHigh:
		return "VERY_HIGH"
	default:
		return "UNKNOWN"
	}
}

// ImpactTiers holds the classification boundaries in percent. The values
// are configuration policy, never baked into the engine.
type ImpactTiers struct {
	MinimalPct  decimal.Decimal
	LowPct      decimal.Decimal
	ModeratePct decimal.Decimal
	HighPct     decimal.Decimal
}

// DefaultImpactTiers returns the conventional 0.1/0.5/1/2 percent tiers.
func DefaultImpactTiers() ImpactTiers {
	return ImpactTiers{
		MinimalPct:  decimal.RequireFromString("0.1"),
		LowPct:      decimal.RequireFromString("0.5"),
		ModeratePct: decimal.RequireFromString("1"),
		HighPct:     decimal.RequireFromString("2"),
	}
}

// Classify maps an impact percentage onto a level.
func (t ImpactTiers) Classify(pct decimal.Decimal) ImpactLevel {
	switch {
	case pct.LessThan(t.MinimalPct):
		return ImpactMinimal
	case pct.LessThan(t.LowPct):
		return ImpactLow
	case pct.LessThan(t.ModeratePct):
		return ImpactModerate
	case pct.LessThan(t.HighPct):
		return ImpactHigh
	default:
		return ImpactVeryHigh
	}
}

// EstimateImpact returns |execution - reference| / reference * 100.
// A zero reference yields zero impact (nothing to compare against).
func EstimateImpact(reference, execution decimal.Decimal) decimal.Decimal {
	if reference.IsZero() {
		return decimal.Zero
	}
	return execution.Sub(reference).Abs().Div(reference).Mul(decimal.NewFromInt(100))
}
