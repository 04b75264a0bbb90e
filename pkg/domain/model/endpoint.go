package model

import (
	"net"
	"net/url"
	"strings"

	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Endpoint is the bind address and path prefix derived from a URL prefix such
// as "http://*:31574/hooks/". A wildcard host ("*" or "+") binds all interfaces.
type Endpoint struct {
	Raw  string
	Addr string
	Path string
}

// ParseEndpoint converts a URL prefix into a listen address and a route prefix.
// Only plain http is accepted; TLS termination is left to a fronting proxy.
func ParseEndpoint(raw string) (*Endpoint, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid endpoint", goerr.V("endpoint", raw), goerr.T(types.ErrTagInvalidConfig))
	}
	if !strings.EqualFold(u.Scheme, "http") {
		return nil, goerr.New("unsupported endpoint scheme",
			goerr.V("endpoint", raw),
			goerr.V("scheme", u.Scheme),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}

	host := u.Hostname()
	if host == "*" || host == "+" {
		host = ""
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return &Endpoint{
		Raw:  raw,
		Addr: net.JoinHostPort(host, port),
		Path: path,
	}, nil
}
