package marketplace

import (
	"context"
	"sync"

	"github.com/rqzrqh/compute_market/metrics"
)

// offerPool is the in-memory offer ledger shared by the requestor
// strategies. Adds for one task serialize on the mutex, so a count observed
// after an add includes it. Offers are never removed by resolution.
type offerPool struct {
	mu     sync.Mutex
	offers map[string][]Offer
}

func newOfferPool() *offerPool {
	return &offerPool{
		offers: make(map[string][]Offer),
	}
}

func (p *offerPool) add(taskID string, offer Offer) error {
	if offer.ProviderID == "" {
		return ErrEmptyProvider
	}
	if offer.Price.GreaterThan(offer.MaxPrice) {
		return ErrPriceExceedsMax
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.offers[taskID] = append(p.offers[taskID], offer)
	metrics.RecordOne(context.Background(), metrics.OffersAdded)
	log.Debugw("offer added", "task", taskID, "provider", offer.ProviderID, "price", offer.Price)
	return nil
}

func (p *offerPool) count(taskID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.offers[taskID])
}

// snapshot copies the offers in arrival order. Unknown tasks yield an empty
// slice.
func (p *offerPool) snapshot(taskID string) []Offer {
	p.mu.Lock()
	defer p.mu.Unlock()

	src := p.offers[taskID]
	out := make([]Offer, len(src))
	copy(out, src)
	return out
}
