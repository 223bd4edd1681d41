package registry_test

import (
	"context"
	"errors"
	"io/ioutil"
	"log"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/icecave/dispatch/endpoint"
	"github.com/icecave/dispatch/name"
	"github.com/icecave/dispatch/registry"
	"github.com/icecave/dispatch/waiter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Redis", func() {
	var (
		ctx       context.Context
		mockRedis *miniredis.Miniredis
		rdb       *redis.Client
		subject   *registry.Redis
		request   waiter.Request
	)

	BeforeEach(func() {
		var err error
		mockRedis, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		rdb = redis.NewClient(&redis.Options{
			Addr: mockRedis.Addr(),
		})

		subject = &registry.Redis{
			Client: rdb,
			Logger: log.New(ioutil.Discard, "", 0),
		}

		request = waiter.Request{
			ID:               "waiter-1",
			RouterURL:        "http://router.internal:5001/api/chunked",
			NumberOfChannels: 10,
			SentTime:         "2023-11-26T18:35:42.123Z",
			InitOnly:         true,
		}
	})

	AfterEach(func() {
		rdb.Close()
		mockRedis.Close()
	})

	Describe("Register", func() {
		It("returns a response with the waiter's ID", func() {
			res, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(waiter.Response{ID: "waiter-1"}))
		})

		It("stores the request in redis", func() {
			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			Expect(mockRedis.Exists("waiter:waiter-1")).To(BeTrue())
			Expect(mockRedis.HGet("waiter:waiter-1", "router_url")).To(Equal(request.RouterURL))
			Expect(mockRedis.HGet("waiter:waiter-1", "number_of_channels")).To(Equal("10"))
			Expect(mockRedis.HGet("waiter:waiter-1", "init_only")).To(Equal("true"))
		})

		It("works without a logger", func() {
			subject.Logger = nil

			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects requests without an ID", func() {
			request.ID = ""

			_, err := subject.Register(ctx, request)
			Expect(err).To(Equal(registry.ErrMissingID))
		})

		It("rejects requests with an invalid router URL", func() {
			request.RouterURL = "ftp://router.internal"

			_, err := subject.Register(ctx, request)

			var target *endpoint.SchemeError
			Expect(errors.As(err, &target)).To(BeTrue())
			Expect(mockRedis.Exists("waiter:waiter-1")).To(BeFalse())
		})

		DescribeTable(
			"applies the router patterns",
			func(pattern string, allowed bool) {
				matcher, err := name.NewMatcher(pattern)
				Expect(err).NotTo(HaveOccurred())
				subject.Routers = []*name.Matcher{matcher}

				_, err = subject.Register(ctx, request)
				if allowed {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(errors.Is(err, registry.ErrRouterNotAllowed)).To(BeTrue())
					Expect(err).To(MatchError("router is not allowed: 'router.internal'"))
				}
			},
			Entry("exact match", "router.internal", true),
			Entry("wildcard match", "*.internal", true),
			Entry("no match", "*.example.com", false),
		)
	})

	Describe("Lookup", func() {
		It("returns registered entries", func() {
			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			entry, err := subject.Lookup(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry).To(Equal(&registry.Entry{
				Request:  request,
				Endpoint: endpoint.New(endpoint.HTTP, "router.internal", 5001),
			}))
		})

		It("reads entries registered by another process", func() {
			other := &registry.Redis{Client: rdb}
			_, err := other.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			entry, err := subject.Lookup(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry).NotTo(BeNil())
			Expect(entry.Request).To(Equal(request))
		})

		It("defaults the init-only flag when it was not stored", func() {
			mockRedis.HSet("waiter:waiter-2", "router_url", "https://router.internal")
			mockRedis.HSet("waiter:waiter-2", "number_of_channels", "1")

			entry, err := subject.Lookup(ctx, "waiter-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Request.InitOnly).To(BeFalse())
			Expect(entry.Endpoint.Port()).To(BeEquivalentTo(443))
		})

		It("returns nil if the waiter is unknown", func() {
			entry, err := subject.Lookup(ctx, "unknown")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry).To(BeNil())
		})

		It("returns an error if the stored entry is invalid", func() {
			mockRedis.HSet("waiter:waiter-2", "router_url", "https://router.internal")
			mockRedis.HSet("waiter:waiter-2", "number_of_channels", "many")

			_, err := subject.Lookup(ctx, "waiter-2")
			Expect(err).To(MatchError("waiter 'waiter-2' has an invalid channel count (many)"))
		})

		It("refreshes expired entries from redis", func() {
			subject.CacheAge = time.Nanosecond

			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			mockRedis.Del("waiter:waiter-1")
			time.Sleep(time.Millisecond)

			entry, err := subject.Lookup(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry).To(BeNil())
		})

		It("falls through to the cache if redis is unavailable", func() {
			subject.CacheAge = time.Nanosecond

			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			mockRedis.Close()
			time.Sleep(time.Millisecond)

			entry, err := subject.Lookup(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry).NotTo(BeNil())
			Expect(entry.Request.ID).To(Equal("waiter-1"))
		})

		It("returns an error if redis is unavailable and nothing is cached", func() {
			mockRedis.Close()

			entry, err := subject.Lookup(ctx, "waiter-1")
			Expect(err).To(HaveOccurred())
			Expect(entry).To(BeNil())
		})
	})

	Describe("Validate", func() {
		It("returns true for registered waiters", func() {
			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			ok, err := subject.Validate(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("returns false for unknown waiters", func() {
			ok, err := subject.Validate(ctx, "unknown")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Remove", func() {
		It("forgets the waiter", func() {
			_, err := subject.Register(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			err = subject.Remove(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(mockRedis.Exists("waiter:waiter-1")).To(BeFalse())

			ok, err := subject.Validate(ctx, "waiter-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("does nothing if the waiter is unknown", func() {
			err := subject.Remove(ctx, "unknown")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
