package marketplace

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// BrassMarketStrategy is the wallclock market: offers compete on asking
// price alone and work is billed by elapsed time. One value serves both
// market sides.
type BrassMarketStrategy struct {
	pool *offerPool
	opts strategyOptions
}

func NewBrassMarketStrategy(opts ...StrategyOption) *BrassMarketStrategy {
	s := &BrassMarketStrategy{pool: newOfferPool()}
	for _, o := range opts {
		o(&s.opts)
	}
	return s
}

func (s *BrassMarketStrategy) Add(taskID string, offer Offer) error {
	return s.pool.add(taskID, offer)
}

func (s *BrassMarketStrategy) GetTaskOfferCount(taskID string) int {
	return s.pool.count(taskID)
}

func (s *BrassMarketStrategy) ResolveTaskOffers(ctx context.Context, taskID string) []Offer {
	offers := s.pool.snapshot(taskID)

	sort.SliceStable(offers, func(i, j int) bool {
		return lessOffer(offers[i], offers[j], offers[i].Price, offers[j].Price)
	})

	return demoteUntrusted(ctx, s.opts.trust, offers)
}

func (s *BrassMarketStrategy) CalculatePayment(rct ReportComputedTask) decimal.Decimal {
	return PaymentForDuration(rct.Price, rct.WallClockTime)
}

// CalculatePrice quotes the wallclock rate, capped by what the requestor is
// willing to pay.
func (s *BrassMarketStrategy) CalculatePrice(pricing ProviderPricing, maxPrice decimal.Decimal, requestorID string) decimal.Decimal {
	return decimal.Min(pricing.PricePerWallclockH, maxPrice)
}
