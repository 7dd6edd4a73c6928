package marketplace

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUsage map[string]float64

func (f fixedUsage) UsageFactor(ctx context.Context, providerID string) float64 {
	if v, exist := f[providerID]; exist {
		return v
	}
	return 1.0
}

type fixedTrust map[string]float64

func (f fixedTrust) ComputingTrust(ctx context.Context, nodeID string) float64 {
	if v, exist := f[nodeID]; exist {
		return v
	}
	return 0
}

func newOffer(provider string, price int64) Offer {
	return Offer{
		ProviderID:          provider,
		ProviderPerformance: ProviderPerformance{UsageBenchmark: 100},
		MaxPrice:            decimal.NewFromInt(1000000),
		Price:               decimal.NewFromInt(price),
	}
}

func providerIDs(offers []Offer) []string {
	out := make([]string, len(offers))
	for i, o := range offers {
		out[i] = o.ProviderID
	}
	return out
}

func TestAddRejectsEmptyProvider(t *testing.T) {
	s := NewBrassMarketStrategy()

	err := s.Add("task-1", newOffer("", 10))
	assert.ErrorIs(t, err, ErrEmptyProvider)
	assert.Equal(t, 0, s.GetTaskOfferCount("task-1"))
}

func TestAddRejectsPriceOverMax(t *testing.T) {
	s := NewBrassMarketStrategy()

	offer := newOffer("prov-1", 10)
	offer.MaxPrice = decimal.NewFromInt(9)
	err := s.Add("task-1", offer)
	assert.ErrorIs(t, err, ErrPriceExceedsMax)

	// asking exactly the cap is fine
	offer.MaxPrice = decimal.NewFromInt(10)
	assert.NoError(t, s.Add("task-1", offer))
}

func TestGetTaskOfferCountPerTask(t *testing.T) {
	s := NewBrassMarketStrategy()

	require.NoError(t, s.Add("task-1", newOffer("prov-1", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-2", 20)))
	require.NoError(t, s.Add("task-2", newOffer("prov-1", 10)))

	assert.Equal(t, 2, s.GetTaskOfferCount("task-1"))
	assert.Equal(t, 1, s.GetTaskOfferCount("task-2"))
	assert.Equal(t, 0, s.GetTaskOfferCount("task-3"))
}

func TestConcurrentAdds(t *testing.T) {
	s := NewBrassMarketStrategy()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.Add("task-1", newOffer(fmt.Sprintf("prov-%03d", n), int64(n+1))))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, s.GetTaskOfferCount("task-1"))
	assert.Len(t, s.ResolveTaskOffers(context.Background(), "task-1"), 25)
}

func TestBrassResolveOrdersByPrice(t *testing.T) {
	s := NewBrassMarketStrategy()

	require.NoError(t, s.Add("task-1", newOffer("prov-c", 50)))
	require.NoError(t, s.Add("task-1", newOffer("prov-a", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-b", 30)))

	got := s.ResolveTaskOffers(context.Background(), "task-1")
	assert.Equal(t, []string{"prov-a", "prov-b", "prov-c"}, providerIDs(got))
}

func TestBrassResolveTieBreaks(t *testing.T) {
	s := NewBrassMarketStrategy()

	fast := newOffer("prov-b", 10)
	fast.ProviderPerformance.UsageBenchmark = 50
	slow := newOffer("prov-a", 10)
	slow.ProviderPerformance.UsageBenchmark = 200

	require.NoError(t, s.Add("task-1", slow))
	require.NoError(t, s.Add("task-1", fast))
	require.NoError(t, s.Add("task-1", newOffer("prov-d", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-c", 10)))

	got := s.ResolveTaskOffers(context.Background(), "task-1")
	// same price: lower benchmark wins, then provider id
	assert.Equal(t, []string{"prov-b", "prov-c", "prov-d", "prov-a"}, providerIDs(got))
}

func TestResolveKeepsOffers(t *testing.T) {
	s := NewBrassMarketStrategy()
	ctx := context.Background()

	require.NoError(t, s.Add("task-1", newOffer("prov-b", 20)))
	require.NoError(t, s.Add("task-1", newOffer("prov-c", 30)))

	first := s.ResolveTaskOffers(ctx, "task-1")
	assert.Equal(t, []string{"prov-b", "prov-c"}, providerIDs(first))

	// resolution does not consume, later offers join the next resolution
	require.NoError(t, s.Add("task-1", newOffer("prov-a", 10)))

	second := s.ResolveTaskOffers(ctx, "task-1")
	assert.Equal(t, []string{"prov-a", "prov-b", "prov-c"}, providerIDs(second))
	assert.Equal(t, 3, s.GetTaskOfferCount("task-1"))
}

func TestResolveUnknownTaskEmpty(t *testing.T) {
	s := NewBrassMarketStrategy()

	assert.Len(t, s.ResolveTaskOffers(context.Background(), "nope"), 0)
}

func TestUsageResolveScalesPrice(t *testing.T) {
	usage := fixedUsage{"prov-slow": 4.0, "prov-fast": 1.0}
	s := NewUsageMarketStrategy(usage)

	// nominal 10 but effectively 40 after the usage factor
	require.NoError(t, s.Add("task-1", newOffer("prov-slow", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-fast", 20)))

	got := s.ResolveTaskOffers(context.Background(), "task-1")
	require.Len(t, got, 2)
	assert.Equal(t, []string{"prov-fast", "prov-slow"}, providerIDs(got))
	// offers keep their nominal price, the factor only affects ranking
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(20)))
	assert.True(t, got[1].Price.Equal(decimal.NewFromInt(10)))
}

func TestUsageResolveSurvivesBrokenFactor(t *testing.T) {
	usage := fixedUsage{"prov-inf": math.Inf(1), "prov-nan": math.NaN(), "prov-slow": 2.0}
	s := NewUsageMarketStrategy(usage)

	require.NoError(t, s.Add("task-1", newOffer("prov-inf", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-nan", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-slow", 10)))

	got := s.ResolveTaskOffers(context.Background(), "task-1")
	require.Len(t, got, 3)
	// the broken factors rank at the neutral 1.0, not at zero and not as a crash
	assert.Equal(t, []string{"prov-inf", "prov-nan", "prov-slow"}, providerIDs(got))
}

func TestTrustCriterionDemotesUntrusted(t *testing.T) {
	trust := fixedTrust{"prov-bad": -1.0, "prov-good": 0.5}
	s := NewBrassMarketStrategy(WithTrustCriterion(trust, -0.8))
	ctx := context.Background()

	require.NoError(t, s.Add("task-1", newOffer("prov-bad", 5)))
	require.NoError(t, s.Add("task-1", newOffer("prov-good", 10)))
	require.NoError(t, s.Add("task-1", newOffer("prov-neutral", 20)))

	got := s.ResolveTaskOffers(ctx, "task-1")
	// the cheapest offer sinks below every trusted one
	assert.Equal(t, []string{"prov-good", "prov-neutral", "prov-bad"}, providerIDs(got))
}

func TestTrustCriterionBoundary(t *testing.T) {
	trust := fixedTrust{"prov-edge": -0.8}
	s := NewBrassMarketStrategy(WithTrustCriterion(trust, -0.8))

	require.NoError(t, s.Add("task-1", newOffer("prov-edge", 5)))
	require.NoError(t, s.Add("task-1", newOffer("prov-other", 10)))

	got := s.ResolveTaskOffers(context.Background(), "task-1")
	// trust exactly at the threshold still counts as trusted
	assert.Equal(t, []string{"prov-edge", "prov-other"}, providerIDs(got))
}

func TestBrassCalculatePrice(t *testing.T) {
	s := NewBrassMarketStrategy()

	pricing := ProviderPricing{
		PricePerWallclockH: decimal.NewFromInt(100),
		PricePerCpuH:       decimal.NewFromInt(70),
	}

	got := s.CalculatePrice(pricing, decimal.NewFromInt(250), "req-1")
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "quotes the wallclock rate")

	got = s.CalculatePrice(pricing, decimal.NewFromInt(80), "req-1")
	assert.True(t, got.Equal(decimal.NewFromInt(80)), "capped by the requestor max")
}

func TestUsageCalculatePrice(t *testing.T) {
	s := NewUsageMarketStrategy(fixedUsage{})

	pricing := ProviderPricing{
		PricePerWallclockH: decimal.NewFromInt(100),
		PricePerCpuH:       decimal.NewFromInt(70),
	}

	got := s.CalculatePrice(pricing, decimal.NewFromInt(250), "req-1")
	assert.True(t, got.Equal(decimal.NewFromInt(70)), "quotes the cpu rate")
}

func TestCalculatePaymentPicksDuration(t *testing.T) {
	rct := ReportComputedTask{
		TaskID:        "task-1",
		SubtaskID:     "sub-1",
		ProviderID:    "prov-1",
		RequestorID:   "req-1",
		Price:         decimal.NewFromInt(3600),
		WallClockTime: 7200,
		CpuTime:       1800,
	}

	brass := NewBrassMarketStrategy()
	assert.True(t, brass.CalculatePayment(rct).Equal(decimal.NewFromInt(7200)), "brass bills wallclock")

	usage := NewUsageMarketStrategy(fixedUsage{})
	assert.True(t, usage.CalculatePayment(rct).Equal(decimal.NewFromInt(1800)), "usage bills cpu time")

	// a report with a garbage duration is worth zero, not a panic
	rct.WallClockTime = math.NaN()
	assert.True(t, brass.CalculatePayment(rct).Equal(decimal.Zero))
}
