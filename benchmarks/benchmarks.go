package benchmarks

import (
	"context"
	"math"

	"github.com/rqzrqh/compute_market/dao"
	"github.com/rqzrqh/compute_market/model"
	"golang.org/x/xerrors"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("benchmarks")

// Registry fronts the performance and usage tables for the marketplace.
type Registry struct {
	dao *dao.Dao
}

func NewRegistry(d *dao.Dao) *Registry {
	return &Registry{dao: d}
}

// UpdateOrCreate stores the latest benchmark run for an environment. The
// first write creates the row, later writes replace value and cpu usage.
func (r *Registry) UpdateOrCreate(ctx context.Context, envID string, value float64, cpuUsage int64) error {
	return r.dao.UpdateOrCreatePerformance(envID, value, cpuUsage)
}

func (r *Registry) Performance(ctx context.Context, envID string) (*model.Performance, error) {
	return r.dao.GetPerformance(envID)
}

// PerformanceValue returns the benchmark score, 0 for environments never
// measured.
func (r *Registry) PerformanceValue(ctx context.Context, envID string) (float64, error) {
	perf, err := r.dao.GetPerformance(envID)
	if err != nil {
		if xerrors.Is(err, dao.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return perf.Value, nil
}

// AcceptsStep reports whether a new benchmark result moved far enough from
// the stored value to be worth saving. Unknown environments always accept.
func (r *Registry) AcceptsStep(ctx context.Context, envID string, value float64) (bool, error) {
	perf, err := r.dao.GetPerformance(envID)
	if err != nil {
		if xerrors.Is(err, dao.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return math.Abs(value-perf.Value) >= perf.MinAcceptedStep, nil
}

// UsageFactor returns the provider's stored multiplier, creating the row
// with the default on first sight. Lookup trouble falls back to the default
// so offer resolution never stalls on storage.
func (r *Registry) UsageFactor(ctx context.Context, providerID string) float64 {
	factor, err := r.dao.EnsureUsageFactor(providerID)
	if err != nil {
		log.Warnf("usage factor lookup failed, using default: %v", err)
		return model.DefaultUsageFactor
	}
	return factor
}

// SetUsageFactor stores a provider's multiplier. The factor scales prices,
// so it must stay positive and finite.
func (r *Registry) SetUsageFactor(ctx context.Context, providerID string, factor float64) error {
	if providerID == "" {
		return xerrors.New("empty provider id")
	}
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return xerrors.New("usage factor must be a positive finite number")
	}

	if err := r.dao.EnsureComputingNode(providerID); err != nil {
		return err
	}
	return r.dao.SetUsageFactor(providerID, factor)
}
