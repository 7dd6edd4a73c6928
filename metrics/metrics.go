package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var defaultMillisecondsDistribution = view.Distribution(
	0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16,
	20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400,
	500, 650, 800, 1000, 2000, 5000, 10000)

// Tags
var (
	Endpoint, _ = tag.NewKey("endpoint")
)

// Measures
var (
	OffersAdded        = stats.Int64("market/offers_added", "Offers accepted into task pools", stats.UnitDimensionless)
	OutcomesRecorded   = stats.Int64("ranking/outcomes_recorded", "Reputation outcomes recorded", stats.UnitDimensionless)
	GossipReceived     = stats.Int64("ranking/gossip_received", "Neighbour trust claims received", stats.UnitDimensionless)
	TrustAggregations  = stats.Int64("ranking/trust_aggregations", "Trust aggregation runs", stats.UnitDimensionless)
	APIRequestDuration = stats.Float64("catalog/request_ms", "Duration of catalog API requests", stats.UnitMilliseconds)
)

// Views
var (
	OffersAddedView = &view.View{
		Measure:     OffersAdded,
		Aggregation: view.Count(),
	}
	OutcomesRecordedView = &view.View{
		Measure:     OutcomesRecorded,
		Aggregation: view.Count(),
	}
	GossipReceivedView = &view.View{
		Measure:     GossipReceived,
		Aggregation: view.Count(),
	}
	TrustAggregationsView = &view.View{
		Measure:     TrustAggregations,
		Aggregation: view.Count(),
	}
	APIRequestDurationView = &view.View{
		Measure:     APIRequestDuration,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Endpoint},
	}
)

var DefaultViews = []*view.View{
	OffersAddedView,
	OutcomesRecordedView,
	GossipReceivedView,
	TrustAggregationsView,
	APIRequestDurationView,
}

// Timer starts timing an operation, the returned stop func records it.
func Timer(ctx context.Context, m *stats.Float64Measure) func() {
	start := time.Now()
	return func() {
		stats.Record(ctx, m.M(float64(time.Since(start).Nanoseconds())/1e6))
	}
}

func RecordOne(ctx context.Context, m *stats.Int64Measure) {
	stats.Record(ctx, m.M(1))
}
