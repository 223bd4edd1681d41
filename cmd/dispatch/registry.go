package main

import (
	"fmt"
	"log"

	"github.com/icecave/dispatch/cmd"
	"github.com/icecave/dispatch/waiter"
	"github.com/spf13/cobra"
)

func registerCmd(config *cmd.Config, logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a waiter request read from stdin as JSON",
		Long: `Register a waiter request read from stdin as JSON, and write the
response to stdout. If the request has no DispatcherUrl, the router given
by ROUTER_URL is used.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			req, err := waiter.DecodeRequest(c.InOrStdin())
			if err != nil {
				return err
			}

			if req.RouterURL == "" {
				ep, ok, err := config.Router()
				if err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("waiter '%s' has no router url and ROUTER_URL is not set", req.ID)
				}
				req.RouterURL = ep.String()
			}

			reg, err := newRegistry(config, logger)
			if err != nil {
				return err
			}
			defer reg.Client.Close()

			res, err := reg.Register(c.Context(), req)
			if err != nil {
				return err
			}

			return res.Encode(c.OutOrStdout())
		},
	}
}

func lookupCmd(config *cmd.Config, logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup ID",
		Short: "Print the router endpoint of a registered waiter",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			reg, err := newRegistry(config, logger)
			if err != nil {
				return err
			}
			defer reg.Client.Close()

			entry, err := reg.Lookup(c.Context(), args[0])
			if err != nil {
				return err
			} else if entry == nil {
				return fmt.Errorf("waiter '%s' is not registered", args[0])
			}

			if err := entry.Request.Encode(c.OutOrStdout()); err != nil {
				return err
			}

			printEndpoint(c.OutOrStdout(), entry.Endpoint)
			return nil
		},
	}
}

func removeCmd(config *cmd.Config, logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Forget a registered waiter",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			reg, err := newRegistry(config, logger)
			if err != nil {
				return err
			}
			defer reg.Client.Close()

			return reg.Remove(c.Context(), args[0])
		},
	}
}
