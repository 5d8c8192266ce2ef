package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// NewServiceCommand creates the service command group.
func NewServiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"services"},
		Short:   "Inspect API Management services",
		Long:    "Show the selected API Management service or list the services in the resource group",
	}

	cmd.AddCommand(newServiceShowCommand())
	cmd.AddCommand(newServiceListCommand())

	return cmd
}

func newServiceShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the selected service",
		Long:  "Show the configured service, or the first service in the resource group when none is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			service, err := client.Services().Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get service: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), service, func(w io.Writer) error {
				return displayService(w, service)
			})
		},
	}
}

func newServiceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services in the resource group",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			services, err := client.Services().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list services: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), services, func(w io.Writer) error {
				rows := make([][]string, 0, len(services))
				for _, service := range services {
					rows = append(rows, []string{
						service.Name,
						valueOrNA(service.Location),
						skuName(service.SKU),
						valueOrNA(service.Properties.GatewayURL),
						valueOrNA(service.Properties.ProvisioningState),
					})
				}

				return renderTable(w, []string{"Name", "Location", "SKU", "Gateway URL", "State"}, rows)
			})
		},
	}
}

func displayService(w io.Writer, service *apim.Service) error {
	rows := [][]string{
		{"Name", service.Name},
		{"ID", service.ID},
		{"Location", valueOrNA(service.Location)},
		{"SKU", skuName(service.SKU)},
		{"Gateway URL", valueOrNA(service.Properties.GatewayURL)},
		{"Management URL", valueOrNA(service.Properties.ManagementAPIURL)},
		{"Publisher", valueOrNA(service.Properties.PublisherName)},
		{"State", valueOrNA(service.Properties.ProvisioningState)},
	}

	if service.Identity != nil {
		rows = append(rows, []string{"Identity Type", service.Identity.Type})
	}

	return renderProperties(w, rows)
}

func skuName(sku *apim.ServiceSKU) string {
	if sku == nil {
		return NotAvailable
	}

	return sku.Name + " (" + strconv.Itoa(sku.Capacity) + ")"
}
