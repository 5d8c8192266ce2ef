package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewAccountCommand creates the account command.
func NewAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the signed-in Azure CLI account",
		Long:  "Show the subscription, tenant and user of the current Azure CLI login (az account show)",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := newAccountResolver().ShowAccount(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading Azure CLI account: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), account, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Subscription", account.ID},
					{"Name", valueOrNA(account.Name)},
					{"Tenant", account.TenantID},
					{"User", valueOrNA(account.User.Name)},
					{"User Type", valueOrNA(account.User.Type)},
				})
			})
		},
	}
}
