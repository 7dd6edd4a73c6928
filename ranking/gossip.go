package ranking

import (
	"context"
	"math"
	"sort"

	"github.com/rqzrqh/compute_market/dao"
	"github.com/rqzrqh/compute_market/metrics"
	"github.com/rqzrqh/compute_market/model"
	"golang.org/x/xerrors"
)

// localWeight is how much first-hand evidence counts against one
// neighbour's claim in the blend.
const localWeight = 2.0

// TrustEstimate is a neighbour's claim about a third node.
type TrustEstimate struct {
	Requesting float64
	Computing  float64
}

// ReceiveGossip stores a neighbour's claim, replacing any earlier claim by
// the same neighbour about the same node. Claims never touch the first-hand
// ledger. Out-of-range estimates are clamped, non-finite ones rejected.
func (r *Ranker) ReceiveGossip(ctx context.Context, fromNeighbour string, aboutNode string, estimate TrustEstimate) error {
	if fromNeighbour == "" || aboutNode == "" {
		return ErrBadNodeID
	}
	if !finite(estimate.Requesting) || !finite(estimate.Computing) {
		return ErrBadEstimate
	}

	row := &model.NeighbourLocRank{
		NodeID:               fromNeighbour,
		AboutNodeID:          aboutNode,
		RequestingTrustValue: clampTrust(estimate.Requesting),
		ComputingTrustValue:  clampTrust(estimate.Computing),
	}
	if err := r.dao.SetNeighbourRank(row); err != nil {
		return err
	}

	metrics.RecordOne(ctx, metrics.GossipReceived)
	log.Debugw("gossip received", "from", fromNeighbour, "about", aboutNode)
	return nil
}

// AggregateTrust blends first-hand evidence with the current neighbour
// claims into the stored global opinion and returns it. The blend is a pure
// function of ledger state: re-aggregating without new evidence returns the
// same opinion. Every neighbour enters with weight 1 however extreme its
// claim, and the fold order is fixed by neighbour id.
func (r *Ranker) AggregateTrust(ctx context.Context, nodeID string) (*model.GlobalRank, error) {
	if nodeID == "" {
		return nil, ErrBadNodeID
	}

	localComputing := model.NeutralTrust
	localRequesting := model.NeutralTrust

	rank, err := r.dao.GetLocalRank(nodeID)
	if err == nil {
		localComputing = localComputingTrust(rank)
		localRequesting = localRequestingTrust(rank)
	} else if !xerrors.Is(err, dao.ErrNotFound) {
		return nil, err
	}

	neighbours, err := r.dao.ListNeighbourRanksAbout(nodeID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(neighbours, func(i, j int) bool {
		return neighbours[i].NodeID < neighbours[j].NodeID
	})

	computing, weightComputing := blend(localComputing, neighbours, func(n model.NeighbourLocRank) float64 {
		return n.ComputingTrustValue
	})
	requesting, weightRequesting := blend(localRequesting, neighbours, func(n model.NeighbourLocRank) float64 {
		return n.RequestingTrustValue
	})

	out := &model.GlobalRank{
		NodeID:                 nodeID,
		ComputingTrustValue:    computing,
		RequestingTrustValue:   requesting,
		GossipWeightComputing:  weightComputing,
		GossipWeightRequesting: weightRequesting,
	}

	if err := r.dao.SetGlobalRank(out); err != nil {
		return nil, err
	}

	metrics.RecordOne(ctx, metrics.TrustAggregations)
	log.Debugw("trust aggregated", "node", nodeID,
		"computing", computing, "requesting", requesting,
		"neighbours", len(neighbours))
	return out, nil
}

// blend folds neighbour claims into the local estimate as a weighted mean
// and derives the gossip weight: each neighbour contributes its agreement
// with the blended result, 1 for a perfect match down to 0 for the opposite
// end of the scale.
func blend(local float64, neighbours []model.NeighbourLocRank, claim func(model.NeighbourLocRank) float64) (float64, float64) {
	num := localWeight * local
	den := localWeight

	for _, n := range neighbours {
		v := clampTrust(claim(n))
		num += v
		den += 1
	}

	value := clampTrust(num / den)

	weight := 0.0
	for _, n := range neighbours {
		v := clampTrust(claim(n))
		weight += 1 - math.Abs(v-value)/2
	}

	return value, weight
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
