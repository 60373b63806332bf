package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOrderMetrics(t *testing.T) {
	OrdersActive.Set(0)

	OrdersActive.Inc()
	OrdersActive.Inc()
	OrdersActive.Dec()

	if got := testutil.ToFloat64(OrdersActive); got != 1 {
		t.Errorf("expected OrdersActive 1, got %f", got)
	}

	before := testutil.ToFloat64(OrderTransitions.WithLabelValues("FILLED"))
	RecordTransition("FILLED")
	if got := testutil.ToFloat64(OrderTransitions.WithLabelValues("FILLED")); got != before+1 {
		t.Errorf("expected FILLED transitions %f, got %f", before+1, got)
	}
}

func TestPriceSourceMetrics(t *testing.T) {
	before := testutil.ToFloat64(PriceSourceErrors.WithLabelValues("oracle"))
	PriceSourceErrors.WithLabelValues("oracle").Inc()
	if got := testutil.ToFloat64(PriceSourceErrors.WithLabelValues("oracle")); got != before+1 {
		t.Errorf("expected oracle errors %f, got %f", before+1, got)
	}

	AuctionQuote.WithLabelValues("WETH/USDC").Set(1.1)
	if got := testutil.ToFloat64(AuctionQuote.WithLabelValues("WETH/USDC")); got != 1.1 {
		t.Errorf("expected auction quote 1.1, got %f", got)
	}
}
