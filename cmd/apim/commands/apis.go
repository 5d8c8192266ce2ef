package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/apim-client/internal/constants"
)

// NewAPIsCommand creates the apis command group.
func NewAPIsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apis",
		Short: "Inspect published APIs",
		Long:  "List the APIs published by the service and discover the OpenAI-compatible endpoint",
	}

	cmd.AddCommand(newAPIsListCommand())
	cmd.AddCommand(newAPIsDiscoverCommand())

	return cmd
}

func newAPIsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			apis, err := client.APIs().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list APIs: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), apis, func(w io.Writer) error {
				rows := make([][]string, 0, len(apis))
				for _, api := range apis {
					rows = append(rows, []string{
						api.Name,
						valueOrNA(api.Properties.DisplayName),
						api.Properties.Path,
						valueOrNA(strings.Join(api.Properties.Protocols, ",")),
						formatBool(api.Properties.SubscriptionRequired),
					})
				}

				return renderTable(w, []string{"Name", "Display Name", "Path", "Protocols", "Subscription"}, rows)
			})
		},
	}
}

func newAPIsDiscoverCommand() *cobra.Command {
	var pathFilter string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find the API whose path matches a filter",
		Long:  "Find the first API whose path contains the filter and print its gateway endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			api, err := client.APIs().Discover(cmd.Context(), pathFilter)
			if err != nil {
				return fmt.Errorf("failed to discover API: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), api, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Name", api.Name},
					{"ID", api.ID},
					{"Path", api.Path},
					{"Endpoint", api.Endpoint},
				})
			})
		},
	}

	cmd.Flags().StringVar(&pathFilter, "filter", constants.DefaultAPIPathFilter, "substring the API path must contain")

	return cmd
}
