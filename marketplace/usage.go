package marketplace

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// UsageMarketStrategy is the cpu-time market: offers are ranked by asking
// price scaled with the provider's usage factor, so a provider that burns
// more cpu than its benchmark promised competes as if it were more
// expensive. Billing runs on cpu time.
type UsageMarketStrategy struct {
	pool  *offerPool
	usage UsageSource
	opts  strategyOptions
}

func NewUsageMarketStrategy(usage UsageSource, opts ...StrategyOption) *UsageMarketStrategy {
	s := &UsageMarketStrategy{
		pool:  newOfferPool(),
		usage: usage,
	}
	for _, o := range opts {
		o(&s.opts)
	}
	return s
}

func (s *UsageMarketStrategy) Add(taskID string, offer Offer) error {
	return s.pool.add(taskID, offer)
}

func (s *UsageMarketStrategy) GetTaskOfferCount(taskID string) int {
	return s.pool.count(taskID)
}

func (s *UsageMarketStrategy) ResolveTaskOffers(ctx context.Context, taskID string) []Offer {
	offers := s.pool.snapshot(taskID)

	effective := make([]decimal.Decimal, len(offers))
	for i, o := range offers {
		factor := s.usage.UsageFactor(ctx, o.ProviderID)
		// non-finite and non-positive factors count as neutral
		if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
			factor = 1.0
		}
		effective[i] = o.Price.Mul(decimal.NewFromFloat(factor))
	}

	idx := make([]int, len(offers))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lessOffer(offers[idx[a]], offers[idx[b]], effective[idx[a]], effective[idx[b]])
	})

	out := make([]Offer, len(offers))
	for i, j := range idx {
		out[i] = offers[j]
	}

	return demoteUntrusted(ctx, s.opts.trust, out)
}

func (s *UsageMarketStrategy) CalculatePayment(rct ReportComputedTask) decimal.Decimal {
	return PaymentForDuration(rct.Price, rct.CpuTime)
}

func (s *UsageMarketStrategy) CalculatePrice(pricing ProviderPricing, maxPrice decimal.Decimal, requestorID string) decimal.Decimal {
	return decimal.Min(pricing.PricePerCpuH, maxPrice)
}
