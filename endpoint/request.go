package endpoint

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang/gddo/httputil/header"
)

// errNotAuthority is wrapped in a *ParseError when a Host header contains
// anything other than a host and optional port.
var errNotAuthority = errors.New("host header must contain only a host and port")

// FromRequest returns the endpoint that an inbound HTTP request was addressed
// to.
//
// The scheme is taken from the first X-Forwarded-Proto value when a proxy has
// supplied one, otherwise it is "https" for TLS connections and "http" for
// everything else. The host and port come from the request's Host header,
// which must not contain user info, a path, a query or a fragment.
func FromRequest(request *http.Request) (Endpoint, error) {
	scheme := HTTP
	if request.TLS != nil {
		scheme = HTTPS
	}

	raw := scheme.String() + "://" + request.Host
	if values := header.ParseList(request.Header, "X-Forwarded-Proto"); len(values) > 0 {
		raw = values[0] + "://" + request.Host
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, &ParseError{URI: raw, Err: err}
	}

	if strings.ContainsAny(request.Host, "@/?#") || u.User != nil || u.Path != "" {
		return Endpoint{}, &ParseError{URI: raw, Err: errNotAuthority}
	}

	return fromURL(u, raw)
}
