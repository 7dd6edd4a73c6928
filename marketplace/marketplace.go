package marketplace

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("marketplace")

var (
	// ErrEmptyProvider rejects offers carrying no provider identity.
	ErrEmptyProvider = xerrors.New("offer has no provider id")
	// ErrPriceExceedsMax rejects offers asking more than their own cap.
	ErrPriceExceedsMax = xerrors.New("offer price exceeds max price")
)

// ProviderPerformance is the provider's result on the usage benchmark, in
// seconds. Lower means faster.
type ProviderPerformance struct {
	UsageBenchmark float64
}

// Offer is one provider's bid to compute a task. Prices are hourly rates in
// the smallest currency unit.
type Offer struct {
	ProviderID          string
	ProviderPerformance ProviderPerformance
	MaxPrice            decimal.Decimal
	Price               decimal.Decimal
}

// ProviderPricing is the provider's configured hourly rates.
type ProviderPricing struct {
	PricePerWallclockH decimal.Decimal
	PricePerCpuH       decimal.Decimal
}

// ReportComputedTask carries what payment is computed from once a subtask
// finishes.
type ReportComputedTask struct {
	TaskID      string
	SubtaskID   string
	ProviderID  string
	RequestorID string

	// Price is the agreed hourly rate in the smallest currency unit.
	Price decimal.Decimal

	// Durations in seconds.
	WallClockTime float64
	CpuTime       float64
}

// RequestorMarketStrategy is the requestor side of a market: it collects
// offers per task, resolves them into a ranking and prices finished work.
type RequestorMarketStrategy interface {
	// Add records an incoming offer. Rejections are typed errors.
	Add(taskID string, offer Offer) error

	// GetTaskOfferCount reports how many offers are known for the task.
	GetTaskOfferCount(taskID string) int

	// ResolveTaskOffers returns the known offers ranked best first. Offers
	// stay in the pool, so resolving again later returns everything seen so
	// far, earlier entries keeping their relative order.
	ResolveTaskOffers(ctx context.Context, taskID string) []Offer

	CalculatePayment(rct ReportComputedTask) decimal.Decimal
}

// ProviderMarketStrategy is the provider side: quoting a price for a request
// and verifying what a computation should earn.
type ProviderMarketStrategy interface {
	CalculatePrice(pricing ProviderPricing, maxPrice decimal.Decimal, requestorID string) decimal.Decimal
	CalculatePayment(rct ReportComputedTask) decimal.Decimal
}

// UsageSource yields the usage multiplier applied to a provider's price in
// the cpu-time market.
type UsageSource interface {
	UsageFactor(ctx context.Context, providerID string) float64
}

// TrustSource yields the computing trust consulted by the optional trust
// criterion.
type TrustSource interface {
	ComputingTrust(ctx context.Context, nodeID string) float64
}

type strategyOptions struct {
	trust *trustCriterion
}

// StrategyOption tunes a market strategy at construction.
type StrategyOption func(*strategyOptions)

// WithTrustCriterion sorts offers from providers whose computing trust is
// below minTrust after the trusted ones. Order within each band is unchanged.
func WithTrustCriterion(src TrustSource, minTrust float64) StrategyOption {
	return func(o *strategyOptions) {
		o.trust = &trustCriterion{src: src, minTrust: minTrust}
	}
}

type trustCriterion struct {
	src      TrustSource
	minTrust float64
}

func (c *trustCriterion) trusted(ctx context.Context, providerID string) bool {
	return c.src.ComputingTrust(ctx, providerID) >= c.minTrust
}

func demoteUntrusted(ctx context.Context, c *trustCriterion, offers []Offer) []Offer {
	if c == nil || len(offers) == 0 {
		return offers
	}

	trusted := make([]Offer, 0, len(offers))
	demoted := make([]Offer, 0)
	for _, o := range offers {
		if c.trusted(ctx, o.ProviderID) {
			trusted = append(trusted, o)
		} else {
			demoted = append(demoted, o)
		}
	}
	return append(trusted, demoted...)
}

// lessOffer is the shared ranking order: effective price, then benchmark,
// then provider id so equal bids resolve the same way on every node.
func lessOffer(a Offer, b Offer, priceA decimal.Decimal, priceB decimal.Decimal) bool {
	if cmp := priceA.Cmp(priceB); cmp != 0 {
		return cmp < 0
	}
	if a.ProviderPerformance.UsageBenchmark != b.ProviderPerformance.UsageBenchmark {
		return a.ProviderPerformance.UsageBenchmark < b.ProviderPerformance.UsageBenchmark
	}
	return a.ProviderID < b.ProviderID
}
