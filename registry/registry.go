// Package registry records the waiters that have announced themselves to a
// router.
package registry

import (
	"context"

	"github.com/icecave/dispatch/waiter"
)

// Registry records waiter requests by waiter ID.
type Registry interface {
	// Register validates req and records it, returning the response to send
	// back to the waiter.
	Register(ctx context.Context, req waiter.Request) (waiter.Response, error)

	// Lookup returns the entry registered under id. A non-nil error indicates
	// an error with the registry itself; otherwise, a nil entry indicates that
	// no waiter is registered under id.
	Lookup(ctx context.Context, id string) (*Entry, error)

	// Validate returns true if a waiter is registered under id.
	Validate(ctx context.Context, id string) (bool, error)

	// Remove forgets the waiter registered under id, if any.
	Remove(ctx context.Context, id string) error
}
