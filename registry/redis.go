package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/icecave/dispatch/endpoint"
	"github.com/icecave/dispatch/name"
	"github.com/icecave/dispatch/waiter"
)

var (
	// ErrMissingID is returned when registering a request without an ID.
	ErrMissingID = errors.New("waiter request has no id")

	// ErrRouterNotAllowed is returned when registering a request for a router
	// that does not match any of the registry's router patterns.
	ErrRouterNotAllowed = errors.New("router is not allowed")
)

// Entry is a registered waiter request and the router endpoint it refers to.
type Entry struct {
	Request  waiter.Request
	Endpoint endpoint.Endpoint
}

// Redis is a registry that stores waiter requests in Redis, keyed by waiter
// ID, and keeps a local copy of each entry it has seen.
type Redis struct {
	Client *redis.Client

	// Routers restricts the routers that waiters may register for. If it is
	// empty, any router is allowed.
	Routers []*name.Matcher

	// CacheAge is how long a locally cached entry is used before Redis is
	// consulted again. A zero value means cached entries never expire.
	CacheAge time.Duration

	Logger *log.Logger

	mutex sync.RWMutex
	cache map[string]*cacheItem
}

type cacheItem struct {
	Entry    *Entry
	LastSeen time.Time
}

// Register validates req and records it, returning the response to send back
// to the waiter.
func (r *Redis) Register(ctx context.Context, req waiter.Request) (waiter.Response, error) {
	entry, err := r.accept(req)
	if err != nil {
		return waiter.Response{}, err
	}

	if err := r.Client.HSet(ctx, redisKey(req.ID), encodeRequest(req)).Err(); err != nil {
		return waiter.Response{}, err
	}

	r.writeToCache(entry)
	r.logf(
		"Registered waiter '%s' for router '%s' (%d channel(s))",
		req.ID,
		entry.Endpoint,
		req.NumberOfChannels,
	)

	return waiter.Response{ID: req.ID}, nil
}

// Lookup returns the entry registered under id.
//
// A non-nil error indicates a problem with the registry itself; otherwise, a
// nil entry indicates that no waiter is registered under id. If Redis can not
// be reached, a previously cached entry is returned even if it has expired.
func (r *Redis) Lookup(ctx context.Context, id string) (*Entry, error) {
	if !r.expiredInCache(id) {
		if entry, ok := r.findInCache(id); ok {
			return entry, nil
		}
	}

	entry, err := r.getRedisEntry(ctx, id)
	if err == nil {
		if entry == nil {
			r.deleteFromCache(id)
		} else {
			r.writeToCache(entry)
		}
		return entry, nil
	}

	if entry, ok := r.findInCache(id); ok {
		r.logf("expired but falling through to cache for waiter '%s': %s", id, err)
		return entry, nil
	}

	return nil, err
}

// Validate returns true if a waiter is registered under id.
func (r *Redis) Validate(ctx context.Context, id string) (bool, error) {
	entry, err := r.Lookup(ctx, id)
	return entry != nil, err
}

// Remove forgets the waiter registered under id, if any.
func (r *Redis) Remove(ctx context.Context, id string) error {
	r.deleteFromCache(id)

	n, err := r.Client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return err
	}

	if n > 0 {
		r.logf("Removed waiter '%s'", id)
	}

	return nil
}

// accept validates req and returns the entry to store for it.
func (r *Redis) accept(req waiter.Request) (*Entry, error) {
	if req.ID == "" {
		return nil, ErrMissingID
	}

	ep, err := req.Endpoint()
	if err != nil {
		return nil, err
	}

	if len(r.Routers) > 0 {
		n, err := ep.ServerName()
		if err != nil {
			return nil, err
		}

		if !name.MatchAny(r.Routers, n) {
			return nil, fmt.Errorf("%w: '%s'", ErrRouterNotAllowed, ep.Host())
		}
	}

	return &Entry{Request: req, Endpoint: ep}, nil
}

func (r *Redis) getRedisEntry(ctx context.Context, id string) (*Entry, error) {
	m, err := r.Client.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(m) == 0 {
		return nil, nil
	}

	req, err := decodeRequest(id, m)
	if err != nil {
		return nil, err
	}

	ep, err := req.Endpoint()
	if err != nil {
		return nil, fmt.Errorf("waiter '%s' has an invalid router url: %w", id, err)
	}

	return &Entry{Request: req, Endpoint: ep}, nil
}

func (r *Redis) expiredInCache(id string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if item, ok := r.cache[id]; ok {
		if r.CacheAge > 0 && item.LastSeen.Before(time.Now().Add(-1*r.CacheAge)) {
			return true
		}
	}

	return false
}

func (r *Redis) findInCache(id string) (*Entry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if item, ok := r.cache[id]; ok {
		return item.Entry, true
	}

	return nil, false
}

func (r *Redis) writeToCache(entry *Entry) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.cache == nil {
		r.cache = map[string]*cacheItem{}
	}

	r.cache[entry.Request.ID] = &cacheItem{
		Entry:    entry,
		LastSeen: time.Now(),
	}
}

func (r *Redis) deleteFromCache(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.cache, id)
}

func (r *Redis) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

func redisKey(id string) string {
	return fmt.Sprintf("waiter:%s", id)
}

const (
	routerURLField        = "router_url"
	numberOfChannelsField = "number_of_channels"
	sentTimeField         = "sent_time"
	initOnlyField         = "init_only"
)

func encodeRequest(req waiter.Request) map[string]interface{} {
	return map[string]interface{}{
		routerURLField:        req.RouterURL,
		numberOfChannelsField: strconv.Itoa(int(req.NumberOfChannels)),
		sentTimeField:         req.SentTime,
		initOnlyField:         strconv.FormatBool(req.InitOnly),
	}
}

func decodeRequest(id string, m map[string]string) (waiter.Request, error) {
	req := waiter.Request{
		ID:        id,
		RouterURL: m[routerURLField],
		SentTime:  m[sentTimeField],
	}

	channels, err := strconv.ParseUint(m[numberOfChannelsField], 10, 8)
	if err != nil {
		return waiter.Request{}, fmt.Errorf(
			"waiter '%s' has an invalid channel count (%s)",
			id,
			m[numberOfChannelsField],
		)
	}
	req.NumberOfChannels = uint8(channels)

	if v, ok := m[initOnlyField]; ok {
		req.InitOnly, err = strconv.ParseBool(v)
		if err != nil {
			return waiter.Request{}, fmt.Errorf(
				"waiter '%s' has an invalid init-only flag (%s)",
				id,
				v,
			)
		}
	}

	return req, nil
}
