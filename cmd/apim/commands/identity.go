package commands

import (
	"io"

	"github.com/spf13/cobra"
)

// NewIdentityCommand creates the identity command group.
func NewIdentityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect the gateway managed identity",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the managed identity used by the service",
		Long: `Show the client ID, name and resource group of the managed identity. The
uami-client-id named value takes precedence over the first user-assigned
identity of the service. Lookup problems are logged as warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			info := client.Identity().ManagedIdentityInfo(cmd.Context())

			return renderOutput(cmd.OutOrStdout(), info, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Client ID", valueOrNA(info.ClientID)},
					{"Name", valueOrNA(info.Name)},
					{"Resource Group", info.ResourceGroup},
				})
			})
		},
	})

	return cmd
}
