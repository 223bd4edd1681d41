package main

import (
	"fmt"
	"io"

	"github.com/icecave/dispatch/endpoint"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect URL...",
		Short: "Print the components of one or more router endpoints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var err error

			for _, arg := range args {
				ep, e := endpoint.Parse(arg)
				if e != nil {
					err = multierr.Append(err, e)
					continue
				}

				printEndpoint(c.OutOrStdout(), ep)
			}

			return err
		},
	}
}

func printEndpoint(w io.Writer, ep endpoint.Endpoint) {
	fmt.Fprintf(w, "%s\n", ep)
	fmt.Fprintf(w, "  Scheme:      %s\n", ep.Scheme())
	fmt.Fprintf(w, "  Host:        %s\n", ep.Host())
	fmt.Fprintf(w, "  Port:        %d\n", ep.Port())
	fmt.Fprintf(w, "  TLS:         %t\n", ep.Scheme().IsTLS())
	fmt.Fprintf(w, "  Host header: %s\n", ep.HostHeader())
	fmt.Fprintf(w, "  Address:     %s\n", ep.Address())

	if n, err := ep.ServerName(); err != nil {
		fmt.Fprintf(w, "  Server name: (invalid) %s\n", err)
	} else {
		fmt.Fprintf(w, "  Server name: %s\n", n)
	}
}
