// Package waiter defines the records exchanged when a waiter asks a router to
// open channels to it.
//
// The JSON field names are fixed by the router and do not follow the Go field
// names.
package waiter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/icecave/dispatch/endpoint"
)

// Request is sent by a waiter to announce itself to a router.
type Request struct {
	// ID is an opaque identifier for the waiter.
	ID string `json:"Id"`

	// RouterURL is the URL of the router that the waiter connects back to.
	RouterURL string `json:"DispatcherUrl"`

	// NumberOfChannels is the number of channels the waiter should open.
	NumberOfChannels uint8 `json:"NumberOfChannels"`

	// SentTime is the time at which the request was sent, passed through
	// without interpretation.
	SentTime string `json:"SentTime"`

	// InitOnly is passed through without interpretation. It is false when
	// absent.
	InitOnly bool `json:"InitOnly"`
}

// Endpoint returns the router endpoint described by RouterURL.
func (r Request) Endpoint() (endpoint.Endpoint, error) {
	return endpoint.Parse(r.RouterURL)
}

// Encode writes the request as JSON.
func (r Request) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// DecodeRequest reads a JSON-encoded request from r.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, fmt.Errorf("could not decode waiter request: %w", err)
	}

	return req, nil
}

// Response acknowledges a Request.
type Response struct {
	ID string `json:"Id"`
}

// Encode writes the response as JSON.
func (r Response) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// DecodeResponse reads a JSON-encoded response from r.
func DecodeResponse(r io.Reader) (Response, error) {
	var res Response
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Response{}, fmt.Errorf("could not decode waiter response: %w", err)
	}

	return res, nil
}
