package endpoint

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/icecave/dispatch/name"
)

// Endpoint is a validated network destination, extracted from an HTTP or HTTPS
// URL.
//
// Endpoint values are immutable and comparable. Copies share the underlying
// host string, so they are cheap to pass around and safe to read from multiple
// goroutines. The zero value is not a valid endpoint; use New, Parse or
// FromURL.
type Endpoint struct {
	scheme Scheme
	host   string
	port   uint16
}

// New returns an endpoint built from already-validated components.
func New(scheme Scheme, host string, port uint16) Endpoint {
	return Endpoint{
		scheme: scheme,
		host:   host,
		port:   port,
	}
}

// Parse parses s as a URL and returns the endpoint it refers to.
func Parse(s string) (Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, &ParseError{URI: s, Err: err}
	}

	return fromURL(u, s)
}

// FromURL returns the endpoint that u refers to.
//
// The scheme must be "http" or "https" and a host must be present. If u does
// not specify a port, the scheme's default port is used. Only the scheme and
// authority of u are consulted.
func FromURL(u *url.URL) (Endpoint, error) {
	return fromURL(u, u.String())
}

// fromURL builds an endpoint from u, using raw as the URI text in errors.
func fromURL(u *url.URL, raw string) (Endpoint, error) {
	scheme, err := schemeFromURL(u, raw)
	if err != nil {
		return Endpoint{}, err
	}

	host := u.Hostname()
	if host == "" {
		return Endpoint{}, &HostMissingError{URI: raw}
	}

	port := scheme.DefaultPort()
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Endpoint{}, &ParseError{
				URI: raw,
				Err: fmt.Errorf("invalid port '%s'", p),
			}
		}
		port = uint16(n)
	}

	return New(scheme, host, port), nil
}

// Scheme returns the endpoint's scheme.
func (e Endpoint) Scheme() Scheme {
	return e.scheme
}

// Host returns the endpoint's host name or IP address. IPv6 addresses are
// returned without brackets.
func (e Endpoint) Host() string {
	return e.host
}

// Port returns the endpoint's port, which is the scheme's default port if the
// source URL did not specify one.
func (e Endpoint) Port() uint16 {
	return e.port
}

// HostHeader returns the value to use for the Host header of requests sent to
// the endpoint.
//
// If no port is included, the default port for the scheme is implied, so the
// port is omitted when it is the default. In that case the endpoint's own host
// string is returned and nothing is allocated.
func (e Endpoint) HostHeader() string {
	if e.port == e.scheme.DefaultPort() {
		if isIPv6(e.host) {
			return "[" + e.host + "]"
		}
		return e.host
	}

	return net.JoinHostPort(e.host, strconv.Itoa(int(e.port)))
}

// SocketAddr returns the host and port to use when dialing the endpoint.
func (e Endpoint) SocketAddr() (string, uint16) {
	return e.host, e.port
}

// Address returns the "host:port" address of the endpoint, in the form
// expected by net.Dial.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.host, strconv.Itoa(int(e.port)))
}

// ServerName returns the TLS server name used to verify the certificate
// presented by the endpoint.
func (e Endpoint) ServerName() (name.ServerName, error) {
	n, err := name.TryParse(e.host)
	if err != nil {
		return name.ServerName{}, &NameError{Host: e.host, Err: err}
	}

	return n, nil
}

// URL returns the endpoint as a URL with no path. The port is omitted if it is
// the scheme's default.
func (e Endpoint) URL() *url.URL {
	return &url.URL{
		Scheme: e.scheme.String(),
		Host:   e.HostHeader(),
	}
}

// String returns the endpoint's URL.
func (e Endpoint) String() string {
	return e.scheme.String() + "://" + e.HostHeader()
}

// MarshalText returns the endpoint's URL.
func (e Endpoint) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses a URL into the endpoint.
func (e *Endpoint) UnmarshalText(text []byte) error {
	ep, err := Parse(string(text))
	if err != nil {
		return err
	}

	*e = ep
	return nil
}

func isIPv6(host string) bool {
	return strings.IndexByte(host, ':') != -1
}
