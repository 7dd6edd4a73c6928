package ranking

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rqzrqh/compute_market/dao"
)

func TestReceiveGossipValidations(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.ReceiveGossip(ctx, "", "x", TrustEstimate{}), ErrBadNodeID)
	assert.ErrorIs(t, r.ReceiveGossip(ctx, "n1", "", TrustEstimate{}), ErrBadNodeID)
}

func TestReceiveGossipRejectsNonFinite(t *testing.T) {
	r, d := newTestRanker(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: math.NaN()}), ErrBadEstimate)
	assert.ErrorIs(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Requesting: math.NaN()}), ErrBadEstimate)
	assert.ErrorIs(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: math.Inf(1)}), ErrBadEstimate)
	assert.ErrorIs(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Requesting: math.Inf(-1)}), ErrBadEstimate)

	// rejected claims never reach the ledger
	_, err := d.GetNeighbourRank("n1", "x")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestReceiveGossipClampsClaims(t *testing.T) {
	r, d := newTestRanker(t)
	ctx := context.Background()

	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: 5, Requesting: -3}))

	row, err := d.GetNeighbourRank("n1", "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, row.ComputingTrustValue)
	assert.Equal(t, -1.0, row.RequestingTrustValue)
}

func TestReceiveGossipOverwrites(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: 0.5}))
	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: -0.5}))

	rank, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)
	// only the latest claim enters the blend: (2*0 + -0.5) / 3
	assert.InDelta(t, -1.0/6.0, rank.ComputingTrustValue, 1e-9)
}

func TestAggregateTrustBlendsClaims(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: 1.0}))
	require.NoError(t, r.ReceiveGossip(ctx, "n2", "x", TrustEstimate{Computing: 0.5}))

	rank, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)

	// (2*0 + 1.0 + 0.5) / (2 + 2)
	assert.InDelta(t, 0.375, rank.ComputingTrustValue, 1e-9)
	// agreement: (1 - 0.625/2) + (1 - 0.125/2)
	assert.InDelta(t, 1.625, rank.GossipWeightComputing, 1e-9)

	// both claims were silent on requesting, so it stays neutral with full
	// agreement
	assert.InDelta(t, 0.0, rank.RequestingTrustValue, 1e-9)
	assert.InDelta(t, 2.0, rank.GossipWeightRequesting, 1e-9)
}

func TestAggregateTrustDeterministic(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, r.RecordOutcome(ctx, "x", SubtaskComputed))
	}
	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: 0.8, Requesting: 0.1}))
	require.NoError(t, r.ReceiveGossip(ctx, "n2", "x", TrustEstimate{Computing: -0.2}))

	first, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)

	second, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)

	assert.Equal(t, first.ComputingTrustValue, second.ComputingTrustValue)
	assert.Equal(t, first.RequestingTrustValue, second.RequestingTrustValue)
	assert.Equal(t, first.GossipWeightComputing, second.GossipWeightComputing)
	assert.Equal(t, first.GossipWeightRequesting, second.GossipWeightRequesting)
}

func TestAggregateTrustReturnMatchesStored(t *testing.T) {
	r, d := newTestRanker(t)
	ctx := context.Background()

	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: 0.6}))

	rank, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)

	stored, err := d.GetGlobalRank("x")
	require.NoError(t, err)
	assert.Equal(t, rank.ComputingTrustValue, stored.ComputingTrustValue)
	assert.Equal(t, rank.GossipWeightComputing, stored.GossipWeightComputing)
}

func TestAggregateTrustBoundsNeighbourInfluence(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	// strong first-hand evidence against the node
	for i := 0; i < 50; i++ {
		require.NoError(t, r.RecordOutcome(ctx, "x", SubtaskComputeFailed))
	}

	// one glowing claim cannot flip the opinion
	require.NoError(t, r.ReceiveGossip(ctx, "n1", "x", TrustEstimate{Computing: 1.0}))

	rank, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)
	// (2*(-1) + 1) / 3
	assert.InDelta(t, -1.0/3.0, rank.ComputingTrustValue, 1e-9)
	assert.Less(t, rank.ComputingTrustValue, 0.0)
}

func TestAggregateTrustCorroborationNeverLowers(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, r.RecordOutcome(ctx, "x", SubtaskComputed))
	}

	rank, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, rank.ComputingTrustValue, 1e-9)

	value := rank.ComputingTrustValue
	weight := rank.GossipWeightComputing

	// every extra neighbour agreeing trust is high pulls the blend up, never down
	for _, neighbour := range []string{"n1", "n2", "n3"} {
		require.NoError(t, r.ReceiveGossip(ctx, neighbour, "x", TrustEstimate{Computing: 1.0}))

		rank, err = r.AggregateTrust(ctx, "x")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rank.ComputingTrustValue, value, "claim from %v lowered the blend", neighbour)
		assert.GreaterOrEqual(t, rank.GossipWeightComputing, weight)

		value = rank.ComputingTrustValue
		weight = rank.GossipWeightComputing
	}

	assert.InDelta(t, 0.68, value, 1e-9)
	assert.InDelta(t, 2.52, weight, 1e-9)
}

func TestAggregateTrustStaysInRange(t *testing.T) {
	r, _ := newTestRanker(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, r.ReceiveGossip(ctx, string(rune('a'+i)), "x", TrustEstimate{Computing: 1.0, Requesting: -1.0}))
	}

	rank, err := r.AggregateTrust(ctx, "x")
	require.NoError(t, err)
	assert.LessOrEqual(t, rank.ComputingTrustValue, 1.0)
	assert.GreaterOrEqual(t, rank.RequestingTrustValue, -1.0)
}

func TestAggregateTrustUnknownNodeNeutral(t *testing.T) {
	r, d := newTestRanker(t)

	rank, err := r.AggregateTrust(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0.0, rank.ComputingTrustValue)
	assert.Equal(t, 0.0, rank.RequestingTrustValue)
	assert.Equal(t, 0.0, rank.GossipWeightComputing)

	_, err = d.GetGlobalRank("ghost")
	assert.NoError(t, err, "aggregation stores the neutral opinion")
}
