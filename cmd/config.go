package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/icecave/dispatch/endpoint"
	"github.com/icecave/dispatch/name"
	"go.uber.org/multierr"
)

// Config holds configuration values for commands.
type Config struct {
	RouterURL      string
	RouterPatterns []string
	Redis          redisConfig
}

type redisConfig struct {
	Address     string
	Password    string
	CacheExpire time.Duration
}

// GetConfigFromEnvironment creates Config object based on the shell environment.
func GetConfigFromEnvironment() *Config {
	return &Config{
		RouterURL:      env("ROUTER_URL", ""),
		RouterPatterns: envList("ROUTER_PATTERNS"),
		Redis: redisConfig{
			Address:     env("REDIS_ADDR", "localhost:6379"),
			Password:    env("REDIS_PASSWORD", ""),
			CacheExpire: envDuration("REDIS_CACHE_EXPIRY", time.Minute),
		},
	}
}

// Router returns the endpoint of the default router. ok is false if no
// router URL is configured.
func (c *Config) Router() (ep endpoint.Endpoint, ok bool, err error) {
	if c.RouterURL == "" {
		return endpoint.Endpoint{}, false, nil
	}

	ep, err = endpoint.Parse(c.RouterURL)
	return ep, err == nil, err
}

// Matchers returns a matcher for each of the router patterns. All invalid
// patterns are reported together.
func (c *Config) Matchers() ([]*name.Matcher, error) {
	var (
		matchers []*name.Matcher
		err      error
	)

	for _, pattern := range c.RouterPatterns {
		m, e := name.NewMatcher(pattern)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}

		matchers = append(matchers, m)
	}

	if err != nil {
		return nil, err
	}

	return matchers, nil
}

// Validate checks all of the configuration values, returning every problem
// found.
func (c *Config) Validate() error {
	_, _, err := c.Router()
	_, e := c.Matchers()

	return multierr.Append(err, e)
}

func env(key string, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return def
}

func envList(key string) []string {
	var result []string

	for _, value := range strings.Split(env(key, ""), ",") {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}

	return result
}

func envDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			return def
		}
		return d
	}

	return def
}
