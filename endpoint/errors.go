package endpoint

import "fmt"

// SchemeError indicates that a URI has no scheme, or one other than "http"
// or "https".
type SchemeError struct {
	URI string
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf(
		"'%s' has an invalid scheme, only 'http' and 'https' are supported",
		e.URI,
	)
}

// HostMissingError indicates that a URI has no host component.
type HostMissingError struct {
	URI string
}

func (e *HostMissingError) Error() string {
	return fmt.Sprintf("could not determine host from url '%s'", e.URI)
}

// ParseError indicates that a string could not be parsed as a URI, or that
// its port is not a valid 16-bit port number.
type ParseError struct {
	URI string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse url '%s': %s", e.URI, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NameError indicates that an endpoint's host can not be used as a TLS server
// name.
type NameError struct {
	Host string
	Err  error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("'%s' is not a valid TLS server name: %s", e.Host, e.Err)
}

func (e *NameError) Unwrap() error {
	return e.Err
}
