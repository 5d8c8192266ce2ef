package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NamedValueResult is the output of named-values get.
type NamedValueResult struct {
	Name        string   `json:"name"           yaml:"name"`
	DisplayName string   `json:"displayName"    yaml:"displayName"`
	Secret      bool     `json:"secret"         yaml:"secret"`
	Value       string   `json:"value"          yaml:"value"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NewNamedValuesCommand creates the named-values command group.
func NewNamedValuesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "named-values",
		Aliases: []string{"nv"},
		Short:   "Inspect named values",
	}

	cmd.AddCommand(newNamedValuesGetCommand())

	return cmd
}

func newNamedValuesGetCommand() *cobra.Command {
	var showValue bool

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show a named value",
		Long:  "Show a named value. Secret values are fetched with listValue and masked unless --show-value is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			namedValue, err := client.NamedValues().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get named value: %w", err)
			}

			result := NamedValueResult{
				Name:        namedValue.Name,
				DisplayName: namedValue.Properties.DisplayName,
				Secret:      namedValue.Properties.Secret,
				Value:       namedValue.Properties.Value,
				Tags:        namedValue.Properties.Tags,
			}

			if result.Secret {
				result.Value = Masked

				if showValue {
					result.Value, err = client.NamedValues().GetValue(cmd.Context(), args[0])
					if err != nil {
						return fmt.Errorf("failed to get named value secret: %w", err)
					}
				}
			}

			return renderOutput(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Name", result.Name},
					{"Display Name", valueOrNA(result.DisplayName)},
					{"Secret", formatBool(result.Secret)},
					{"Value", result.Value},
					{"Tags", valueOrNA(strings.Join(result.Tags, ", "))},
				})
			})
		},
	}

	cmd.Flags().BoolVar(&showValue, "show-value", false, "reveal secret values")

	return cmd
}
