package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyImpact(t *testing.T) {
	tiers := DefaultImpactTiers()

	cases := []struct {
		pct  string
		want ImpactLevel
	}{
		{"0.05", ImpactMinimal},
		{"0.1", ImpactLow},
		{"0.49", ImpactLow},
		{"0.5", ImpactModerate},
		{"0.99", ImpactModerate},
		{"1", ImpactHigh},
		{"1.99", ImpactHigh},
		{"2", ImpactVeryHigh},
		{"10", ImpactVeryHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tiers.Classify(dec(c.pct)), "pct=%s", c.pct)
	}
}

func TestEstimateImpact(t *testing.T) {
	got := EstimateImpact(dec("100"), dec("99"))
	assert.True(t, got.Equal(dec("1")), "got %s", got)

	got = EstimateImpact(dec("100"), dec("102"))
	assert.True(t, got.Equal(dec("2")), "got %s", got)

	assert.True(t, EstimateImpact(dec("0"), dec("5")).IsZero())
}
