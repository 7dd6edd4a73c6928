package ranking

import (
	"context"
	"math"

	"github.com/rqzrqh/compute_market/dao"
	"github.com/rqzrqh/compute_market/metrics"
	"github.com/rqzrqh/compute_market/model"
	"golang.org/x/xerrors"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("ranking")

// minOpCount dampens trust while a node has little history: the divisor
// never drops below it, so early observations move trust gently away from
// neutral.
const minOpCount = 50.0

// Ranker is the reputation ledger. It turns observed outcomes into counters,
// counters into trust, and folds neighbour gossip into a global opinion.
type Ranker struct {
	dao *dao.Dao
}

func NewRanker(d *dao.Dao) *Ranker {
	return &Ranker{dao: d}
}

// RecordOutcome increments the counter behind one observation. The
// underlying write is a single UPDATE, so concurrent recorders all land.
func (r *Ranker) RecordOutcome(ctx context.Context, nodeID string, outcome Outcome) error {
	if nodeID == "" {
		return ErrBadNodeID
	}

	delta, err := outcome.delta()
	if err != nil {
		return err
	}

	if err := r.dao.IncreaseLocalRank(nodeID, delta); err != nil {
		return err
	}

	metrics.RecordOne(ctx, metrics.OutcomesRecorded)
	log.Debugw("outcome recorded", "node", nodeID, "outcome", outcome.String())
	return nil
}

// Vector is the derived efficacy 4-vector: net computed, requested, payment
// and resource scores. It is recomputed from counters on every read.
type Vector struct {
	Computed  float64
	Requested float64
	Payment   float64
	Resource  float64
}

func (r *Ranker) Efficacy(ctx context.Context, nodeID string) (Vector, error) {
	if nodeID == "" {
		return Vector{}, ErrBadNodeID
	}

	rank, err := r.dao.GetLocalRank(nodeID)
	if err != nil {
		if xerrors.Is(err, dao.ErrNotFound) {
			return Vector{}, nil
		}
		return Vector{}, err
	}

	return Vector{
		Computed:  float64(rank.PositiveComputed - rank.NegativeComputed - rank.WrongComputed),
		Requested: float64(rank.PositiveRequested - rank.NegativeRequested),
		Payment:   float64(rank.PositivePayment - rank.NegativePayment),
		Resource:  float64(rank.PositiveResource - rank.NegativeResource),
	}, nil
}

// Trust returns the stored global opinion, neutral for unknown nodes.
func (r *Ranker) Trust(ctx context.Context, nodeID string) (requesting float64, computing float64, err error) {
	if nodeID == "" {
		return 0, 0, ErrBadNodeID
	}

	rank, err := r.dao.GetGlobalRank(nodeID)
	if err != nil {
		if xerrors.Is(err, dao.ErrNotFound) {
			return model.NeutralTrust, model.NeutralTrust, nil
		}
		return 0, 0, err
	}

	return rank.RequestingTrustValue, rank.ComputingTrustValue, nil
}

// ComputingTrust satisfies the marketplace trust source.
func (r *Ranker) ComputingTrust(ctx context.Context, nodeID string) float64 {
	_, computing, err := r.Trust(ctx, nodeID)
	if err != nil {
		return model.NeutralTrust
	}
	return computing
}

func localComputingTrust(rank *model.LocalRank) float64 {
	pos := float64(rank.PositiveComputed)
	neg := float64(rank.NegativeComputed)
	wrong := float64(rank.WrongComputed)
	total := pos + neg + wrong

	return clampTrust((pos - neg - 2*wrong) / math.Max(total, minOpCount))
}

func localRequestingTrust(rank *model.LocalRank) float64 {
	pos := float64(rank.PositiveRequested + rank.PositivePayment)
	neg := float64(rank.NegativeRequested + rank.NegativePayment)
	total := pos + neg

	return clampTrust((pos - neg) / math.Max(total, minOpCount))
}

func clampTrust(v float64) float64 {
	if v > model.MaxTrust {
		return model.MaxTrust
	}
	if v < model.MinTrust {
		return model.MinTrust
	}
	return v
}
