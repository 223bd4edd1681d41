package endpoint

import (
	"fmt"
	"net/url"
)

// Scheme is the protocol used to reach an endpoint.
type Scheme int

const (
	// HTTP is the plain-text "http" scheme.
	HTTP Scheme = iota

	// HTTPS is the TLS-secured "https" scheme.
	HTTPS
)

// String returns the lowercase URI scheme, "http" or "https".
func (s Scheme) String() string {
	switch s {
	case HTTP:
		return "http"
	case HTTPS:
		return "https"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// DefaultPort returns the port implied when a URI of this scheme omits one.
func (s Scheme) DefaultPort() uint16 {
	switch s {
	case HTTP:
		return 80
	case HTTPS:
		return 443
	default:
		return 0
	}
}

// IsTLS returns true if the scheme requires a TLS connection.
func (s Scheme) IsTLS() bool {
	switch s {
	case HTTPS:
		return true
	default:
		return false
	}
}

// SchemeFromURL returns the Scheme of a parsed URL.
//
// url.Parse already lowercases the scheme, so the match is exact. Any scheme
// other than "http" or "https", including none at all, is a *SchemeError.
func SchemeFromURL(u *url.URL) (Scheme, error) {
	return schemeFromURL(u, u.String())
}

func schemeFromURL(u *url.URL, raw string) (Scheme, error) {
	switch u.Scheme {
	case "http":
		return HTTP, nil
	case "https":
		return HTTPS, nil
	default:
		return HTTP, &SchemeError{URI: raw}
	}
}
