package node

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
	"gorm.io/gorm"

	"github.com/rqzrqh/compute_market/config"
	"github.com/rqzrqh/compute_market/dao"
	"github.com/rqzrqh/compute_market/model"
	"github.com/rqzrqh/compute_market/ranking"
)

// trustDigester keeps the redis read side current: it watches the ledger
// for rank rows, neighbour claims and payments written since its
// watermarks, re-aggregates the touched opinions and writes the digests in
// one pipeline. Watermarks only advance after the pipeline lands, so a
// failed pass is retried whole. Rewriting a digest is idempotent.
type trustDigester struct {
	ctx    context.Context
	db     *gorm.DB
	rds    *redis.Client
	dao    *dao.Dao
	ranker *ranking.Ranker

	interval time.Duration

	stopping chan struct{}
	stopped  chan struct{}

	rankWatermark    int64
	paymentWatermark uint64
}

func newTrustDigester(ctx context.Context, db *gorm.DB, rds *redis.Client, d *dao.Dao, ranker *ranking.Ranker, cfg *config.Config) *trustDigester {
	return &trustDigester{
		ctx:      ctx,
		db:       db,
		rds:      rds,
		dao:      d,
		ranker:   ranker,
		interval: time.Duration(cfg.Trust.DigestIntervalSec) * time.Second,
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (t *trustDigester) start() {

	go func() {
		defer close(t.stopped)

		inProcess := atomic.NewBool(false)

		timer := time.NewTicker(t.interval)
		defer timer.Stop()

		for {
			select {
			case <-timer.C:

				if inProcess.Load() {
					continue
				}

				inProcess.Store(true)

				go func() {
					defer func() {
						inProcess.Store(false)
					}()

					t.digest()
				}()

			case <-t.stopping:
				return
			}
		}
	}()
}

// stop ends the ticker loop. A digest pass already in flight finishes on
// its own.
func (t *trustDigester) stop() {
	close(t.stopping)
}

func (t *trustDigester) digest() {

	now := time.Now().Unix()

	ranks, err := t.dao.ListLocalRanksModifiedSince(t.rankWatermark)
	if err != nil {
		return
	}

	neighbours, err := t.dao.ListNeighbourRanksModifiedSince(t.rankWatermark)
	if err != nil {
		return
	}

	payments, err := t.dao.ListTaskPaymentsSince(t.paymentWatermark)
	if err != nil {
		return
	}

	if len(ranks) == 0 && len(neighbours) == 0 && len(payments) == 0 {
		t.rankWatermark = now
		return
	}

	digestRanks, err := t.collectTouchedRanks(ranks, neighbours)
	if err != nil {
		return
	}

	// refresh the stored opinions before building digests from them
	grp, _ := errgroup.WithContext(t.ctx)
	for _, r := range digestRanks {
		nodeID := r.NodeID
		grp.Go(func() error {
			_, err := t.ranker.AggregateTrust(t.ctx, nodeID)
			return err
		})
	}
	if err := grp.Wait(); err != nil {
		log.Errorf("aggregate trust failed:%v", err)
		return
	}

	set, err := dao.GetTrustChangedData(t.ctx, t.db, digestRanks)
	if err != nil {
		return
	}

	paySet, addTo, err := dao.GetPaymentChangedData(t.ctx, t.db, payments)
	if err != nil {
		return
	}

	pipe := t.rds.TxPipeline()
	defer pipe.Close()

	affectKeyCount := 0

	for k, v := range set {
		pipe.Set(t.ctx, k, v, dao.CacheTimeout)
		affectKeyCount++
	}
	for k, v := range paySet {
		pipe.Set(t.ctx, k, v, dao.CacheTimeout)
		affectKeyCount++
	}
	for _, info := range addTo {
		pipe.RPush(t.ctx, info.Key, info.Value)
		affectKeyCount++
	}

	for _, r := range digestRanks {
		pipe.Publish(t.ctx, dao.BuildRankNotifyKey(), set[dao.BuildTrustDigestKey(r.NodeID)])
	}
	for _, p := range payments {
		pipe.Publish(t.ctx, dao.BuildPaymentNotifyKey(), paySet[dao.BuildPaymentDigestKey(p.SubtaskID)])
	}

	if _, err := pipe.Exec(t.ctx); err != nil {
		pipe.Discard()
		log.Warnf("write cache failed:%v", err)
		return
	}

	log.Infof("digest summarize(rank_count=%v payment_count=%v affect=%v)", len(digestRanks), len(payments), affectKeyCount)

	t.rankWatermark = now
	if len(payments) > 0 {
		t.paymentWatermark = payments[len(payments)-1].ID + 1
	}
}

// collectTouchedRanks unions the modified rank rows with the first-hand
// rows behind modified neighbour claims. Nodes known only through gossip
// get a zero counter row so their digest still carries the trust values.
func (t *trustDigester) collectTouchedRanks(ranks []model.LocalRank, neighbours []model.NeighbourLocRank) ([]model.LocalRank, error) {

	out := make([]model.LocalRank, 0, len(ranks))
	seen := make(map[string]bool)

	for _, r := range ranks {
		out = append(out, r)
		seen[r.NodeID] = true
	}

	for _, nb := range neighbours {
		if seen[nb.AboutNodeID] {
			continue
		}
		seen[nb.AboutNodeID] = true

		row, err := t.dao.GetLocalRank(nb.AboutNodeID)
		if err != nil {
			if !xerrors.Is(err, dao.ErrNotFound) {
				log.Errorf("load local rank of %v failed:%v", nb.AboutNodeID, err)
				return nil, err
			}
			row = &model.LocalRank{NodeID: nb.AboutNodeID}
		}
		out = append(out, *row)
	}

	return out, nil
}
