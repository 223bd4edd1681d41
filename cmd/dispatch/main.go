package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/icecave/dispatch/cmd"
	"github.com/icecave/dispatch/registry"
	"github.com/spf13/cobra"
)

var version = "notset"

func main() {
	config := cmd.GetConfigFromEnvironment()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	if err := rootCmd(config, logger).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// rootCmd returns the top-level command. The configuration is only validated
// by the commands that use it, so inspect works without any environment.
func rootCmd(config *cmd.Config, logger *log.Logger) *cobra.Command {
	c := &cobra.Command{
		Use:           "dispatch",
		Short:         "Inspect router endpoints and manage registered waiters",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.AddCommand(
		inspectCmd(),
		registerCmd(config, logger),
		lookupCmd(config, logger),
		removeCmd(config, logger),
	)

	return c
}

// newRegistry returns a registry backed by the configured Redis server.
func newRegistry(config *cmd.Config, logger *log.Logger) (*registry.Redis, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	matchers, err := config.Matchers()
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Address,
		Password: config.Redis.Password,
	})

	return &registry.Redis{
		Client:   rdb,
		Routers:  matchers,
		CacheAge: config.Redis.CacheExpire,
		Logger:   logger,
	}, nil
}
