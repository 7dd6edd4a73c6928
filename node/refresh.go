package node

import (
	"context"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"go.uber.org/atomic"

	"github.com/rqzrqh/compute_market/apps"
	"github.com/rqzrqh/compute_market/config"
	"github.com/rqzrqh/compute_market/metrics"
	"github.com/rqzrqh/compute_market/util"
)

// appRefresher periodically pulls new app definitions from the catalog.
// The rpc client is dialed lazily and redialed after the websocket drops.
type appRefresher struct {
	ctx     context.Context
	cfg     *config.Config
	manager *apps.Manager

	catalog apps.CatalogAPI
	closer  jsonrpc.ClientCloser

	stopping chan struct{}
	stopped  chan struct{}
}

func newAppRefresher(ctx context.Context, cfg *config.Config, manager *apps.Manager) *appRefresher {
	return &appRefresher{
		ctx:      ctx,
		cfg:      cfg,
		manager:  manager,
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (r *appRefresher) start() {

	go func() {
		defer close(r.stopped)

		inProcess := atomic.NewBool(false)

		timer := time.NewTicker(time.Duration(r.cfg.Apps.RefreshIntervalSec) * time.Second)
		defer timer.Stop()

		// first refresh without waiting a full interval
		r.refresh()

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

					r.refresh()
				}()

			case <-r.stopping:
				return
			}
		}
	}()
}

func (r *appRefresher) stop() {
	close(r.stopping)

	if r.closer != nil {
		r.closer()
		r.closer = nil
		r.catalog = nil
	}
}

func (r *appRefresher) refresh() {

	if r.catalog == nil {
		if err := r.dial(); err != nil {
			log.Warnf("dial catalog %v failed:%v", r.cfg.Catalog.Addr, err)
			return
		}
	}

	if err := r.manager.UpdateApps(r.ctx, r.catalog); err != nil {
		if util.IsWebsocketClosed(err) {
			log.Warnf("catalog connection closed, redial on next refresh:%v", err)
			r.closer()
			r.closer = nil
			r.catalog = nil
		}
	}
}

func (r *appRefresher) dial() error {

	var raw *apps.CatalogStruct
	var closer jsonrpc.ClientCloser
	var err error

	if r.cfg.Catalog.Token != "" {
		raw, closer, err = apps.GetCatalogAPIUsingCredentials(r.ctx, r.cfg.Catalog.Addr, r.cfg.Catalog.Token)
	} else {
		raw, closer, err = apps.GetCatalogAPIWithoutCredentials(r.ctx, r.cfg.Catalog.Addr)
	}
	if err != nil {
		return err
	}

	// wrap the client so every catalog call is timed under its endpoint tag
	var proxied apps.CatalogStruct
	metrics.Proxy(raw, &proxied)

	r.catalog = &proxied
	r.closer = closer

	log.Infow("catalog connected", "addr", r.cfg.Catalog.Addr)
	return nil
}
