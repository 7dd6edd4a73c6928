package node

import (
	"context"

	"github.com/go-redis/redis/v8"
	"golang.org/x/xerrors"
	"gorm.io/gorm"

	"github.com/rqzrqh/compute_market/apps"
	"github.com/rqzrqh/compute_market/benchmarks"
	"github.com/rqzrqh/compute_market/config"
	"github.com/rqzrqh/compute_market/dao"
	"github.com/rqzrqh/compute_market/marketplace"
	"github.com/rqzrqh/compute_market/notify"
	"github.com/rqzrqh/compute_market/ranking"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("node")

// Node owns every subsystem of one market participant: the reputation
// ledger, the benchmark registry, the app manager and the two market
// strategy sides, plus the background loops keeping the app registry and
// the trust digest cache current.
type Node struct {
	ctx context.Context
	cfg *config.Config
	db  *gorm.DB
	rds *redis.Client

	dao      *dao.Dao
	ranker   *ranking.Ranker
	registry *benchmarks.Registry
	manager  *apps.Manager

	requestor marketplace.RequestorMarketStrategy
	provider  marketplace.ProviderMarketStrategy

	refresher *appRefresher
	digester  *trustDigester
}

func NewNode(ctx context.Context, cfg *config.Config, db *gorm.DB, rds *redis.Client) (*Node, error) {

	if err := dao.GetDatabaseLock(db); err != nil {
		panic("GetDatabaseLock failed")
	}

	d := dao.NewDao(ctx, db)
	ranker := ranking.NewRanker(d)
	registry := benchmarks.NewRegistry(d)

	var pub notify.Publisher = notify.NopPublisher{}
	if rds != nil {
		pub = notify.NewRedisPublisher(rds)
	}

	manager, err := apps.NewManager(d, pub, cfg.Apps.Dir)
	if err != nil {
		dao.ReleaseDatabaseLock(db)
		return nil, err
	}

	requestor, provider, err := buildStrategies(cfg, ranker, registry)
	if err != nil {
		dao.ReleaseDatabaseLock(db)
		return nil, err
	}

	n := &Node{
		ctx:       ctx,
		cfg:       cfg,
		db:        db,
		rds:       rds,
		dao:       d,
		ranker:    ranker,
		registry:  registry,
		manager:   manager,
		requestor: requestor,
		provider:  provider,
	}

	n.refresher = newAppRefresher(ctx, cfg, manager)
	n.digester = newTrustDigester(ctx, db, rds, d, ranker, cfg)

	return n, nil
}

func (n *Node) Start() {
	if n.cfg.Catalog.Addr != "" {
		n.refresher.start()
	} else {
		log.Info("no catalog configured, app refresh disabled")
	}

	if n.rds != nil {
		n.digester.start()
	} else {
		log.Info("no redis configured, trust digest disabled")
	}
}

func (n *Node) Stop() {
	n.refresher.stop()
	n.digester.stop()

	dao.ReleaseDatabaseLock(n.db)
}

func (n *Node) Dao() *dao.Dao {
	return n.dao
}

func (n *Node) Ranker() *ranking.Ranker {
	return n.ranker
}

func (n *Node) Benchmarks() *benchmarks.Registry {
	return n.registry
}

func (n *Node) Apps() *apps.Manager {
	return n.manager
}

func (n *Node) RequestorStrategy() marketplace.RequestorMarketStrategy {
	return n.requestor
}

func (n *Node) ProviderStrategy() marketplace.ProviderMarketStrategy {
	return n.provider
}

func buildStrategies(cfg *config.Config, ranker *ranking.Ranker, registry *benchmarks.Registry) (marketplace.RequestorMarketStrategy, marketplace.ProviderMarketStrategy, error) {

	var opts []marketplace.StrategyOption
	if cfg.Market.TrustCriterion {
		opts = append(opts, marketplace.WithTrustCriterion(ranker, cfg.Market.MinTrust))
	}

	requestor, err := newRequestorStrategy(cfg.Market.RequestorStrategy, registry, opts)
	if err != nil {
		return nil, nil, err
	}

	provider, err := newProviderStrategy(cfg.Market.ProviderStrategy, registry, opts)
	if err != nil {
		return nil, nil, err
	}

	return requestor, provider, nil
}

func newRequestorStrategy(name string, registry *benchmarks.Registry, opts []marketplace.StrategyOption) (marketplace.RequestorMarketStrategy, error) {
	switch name {
	case "brass":
		return marketplace.NewBrassMarketStrategy(opts...), nil
	case "usage":
		return marketplace.NewUsageMarketStrategy(registry, opts...), nil
	}
	return nil, xerrors.Errorf("unknown requestor market strategy %v", name)
}

func newProviderStrategy(name string, registry *benchmarks.Registry, opts []marketplace.StrategyOption) (marketplace.ProviderMarketStrategy, error) {
	switch name {
	case "brass":
		return marketplace.NewBrassMarketStrategy(opts...), nil
	case "usage":
		return marketplace.NewUsageMarketStrategy(registry, opts...), nil
	}
	return nil, xerrors.Errorf("unknown provider market strategy %v", name)
}
