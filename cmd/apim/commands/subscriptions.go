package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// NewSubscriptionsCommand creates the subscriptions command group.
func NewSubscriptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Inspect APIM subscriptions",
		Long:    "List the subscriptions of the API Management service and their keys",
	}

	cmd.AddCommand(newSubscriptionsListCommand())
	cmd.AddCommand(newSubscriptionsKeysCommand())

	return cmd
}

func newSubscriptionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			subscriptions, err := client.Subscriptions().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list subscriptions: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), subscriptions, func(w io.Writer) error {
				rows := make([][]string, 0, len(subscriptions))
				for _, subscription := range subscriptions {
					rows = append(rows, []string{
						subscription.Name,
						valueOrNA(subscription.Properties.DisplayName),
						valueOrNA(subscription.Properties.State),
						valueOrNA(apim.NameFromID(subscription.Properties.Scope)),
					})
				}

				return renderTable(w, []string{"Name", "Display Name", "State", "Scope"}, rows)
			})
		},
	}
}

func newSubscriptionsKeysCommand() *cobra.Command {
	var showKeys bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List subscription keys",
		Long:  "List the primary and secondary key of every subscription. Keys are masked unless --show-keys is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			keys, err := client.Subscriptions().ListKeys(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list subscription keys: %w", err)
			}

			if !showKeys {
				for i := range keys {
					keys[i].PrimaryKey = maskKey(keys[i].PrimaryKey)
					keys[i].SecondaryKey = maskKey(keys[i].SecondaryKey)
				}
			}

			return renderOutput(cmd.OutOrStdout(), keys, func(w io.Writer) error {
				rows := make([][]string, 0, len(keys))
				for _, key := range keys {
					rows = append(rows, []string{key.Name, valueOrNA(key.DisplayName), key.PrimaryKey, key.SecondaryKey})
				}

				return renderTable(w, []string{"Name", "Display Name", "Primary Key", "Secondary Key"}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&showKeys, "show-keys", false, "print keys in full")

	return cmd
}
