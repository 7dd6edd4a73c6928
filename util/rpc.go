package util

import (
	"net/http"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// DialAddr resolves a multiaddr listen address into a host:port dial target.
func DialAddr(listenAddr string) (string, error) {
	parsedAddr, err := ma.NewMultiaddr(listenAddr)
	if err != nil {
		return "", err
	}

	_, addr, err := manet.DialArgs(parsedAddr)
	if err != nil {
		return "", err
	}

	return addr, nil
}

func APIURI(addr string) string {
	return "ws://" + addr + "/rpc/v1"
}

func TokenHeaders(token string) http.Header {
	headers := http.Header{}
	headers.Add("Authorization", "Bearer "+token)
	return headers
}

func EmptyHeaders() http.Header {
	headers := http.Header{}
	return headers
}
