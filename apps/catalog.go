package apps

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/rqzrqh/compute_market/util"
)

// CatalogEntry pairs a definition with the content id the catalog claims
// for it. The id is re-derived locally before the definition is trusted.
type CatalogEntry struct {
	ID         AppID         `json:"id"`
	Definition AppDefinition `json:"definition"`
}

type CatalogAPI interface {
	ListDefinitions(ctx context.Context) ([]CatalogEntry, error)
}

type CatalogStruct struct {
	Internal struct {
		ListDefinitions func(ctx context.Context) ([]CatalogEntry, error)
	}
}

func (c *CatalogStruct) ListDefinitions(ctx context.Context) ([]CatalogEntry, error) {
	return c.Internal.ListDefinitions(ctx)
}

func NewCatalogRPC(ctx context.Context, addr string, requestHeader http.Header) (*CatalogStruct, jsonrpc.ClientCloser, error) {
	var res CatalogStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Catalog",
		[]interface{}{&res.Internal}, requestHeader)

	return &res, closer, err
}

// GetCatalogAPIUsingCredentials dials the catalog endpoint given as a
// multiaddr.
func GetCatalogAPIUsingCredentials(ctx context.Context, listenAddr string, token string) (*CatalogStruct, jsonrpc.ClientCloser, error) {
	addr, err := util.DialAddr(listenAddr)
	if err != nil {
		return nil, nil, err
	}

	return NewCatalogRPC(ctx, util.APIURI(addr), util.TokenHeaders(token))
}

func GetCatalogAPIWithoutCredentials(ctx context.Context, listenAddr string) (*CatalogStruct, jsonrpc.ClientCloser, error) {
	addr, err := util.DialAddr(listenAddr)
	if err != nil {
		return nil, nil, err
	}

	return NewCatalogRPC(ctx, util.APIURI(addr), util.EmptyHeaders())
}
