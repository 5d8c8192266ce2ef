package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

const rawPolicyRule = 80

// SupportedModelsResult is the output of policy models.
type SupportedModelsResult struct {
	Fragment        string   `json:"fragment"        yaml:"fragment"`
	SupportedModels []string `json:"supportedModels" yaml:"supportedModels"`
}

// NewPolicyCommand creates the policy command group.
func NewPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect policy fragments",
		Long:  "Read policy fragments and the model names they declare",
	}

	cmd.AddCommand(newPolicyModelsCommand())

	return cmd
}

func newPolicyModelsCommand() *cobra.Command {
	var (
		fragmentID    string
		key           string
		raw           bool
		declaration   bool
		caseSensitive bool
		noDecode      bool
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models a policy fragment supports",
		Long: `Extract the model names declared in a policy fragment as
  "supportedModels", new JArray("gpt-4o", "gpt-4o-mini")
Names are de-duplicated and sorted. --raw also prints the fragment to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			opts := []apim.ExtractOption{
				apim.WithKey(key),
				apim.WithCaseSensitiveKey(caseSensitive),
				apim.WithEntityDecoding(!noDecode),
			}

			var models []string

			if raw {
				fragment, err := client.PolicyFragments().Get(cmd.Context(), fragmentID)
				if err != nil {
					return &apim.ExtractionError{FragmentID: fragmentID, Err: err}
				}

				printRawPolicy(cmd.ErrOrStderr(), fragment.Properties.Value)

				models = apim.ExtractSupportedModels(fragment.Properties.Value, opts...)
			} else {
				models, err = client.PolicyFragments().SupportedModels(cmd.Context(), fragmentID, opts...)
				if err != nil {
					return err
				}
			}

			if declaration {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), apim.FormatSupportedModels(models))

				return err
			}

			result := SupportedModelsResult{Fragment: fragmentID, SupportedModels: models}

			return renderOutput(cmd.OutOrStdout(), result, func(w io.Writer) error {
				if len(models) == 0 {
					printWarning(w, "no supported models found in fragment %s", fragmentID)

					return nil
				}

				rows := make([][]string, 0, len(models))
				for _, model := range models {
					rows = append(rows, []string{model})
				}

				err := renderTable(w, []string{"Model"}, rows)
				if err != nil {
					return err
				}

				printInfo(w, "Found %d unique supported models in %s", len(models), fragmentID)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fragmentID, "fragment", constants.DefaultPolicyFragmentID, "policy fragment ID")
	cmd.Flags().StringVar(&key, "key", apim.DefaultModelsKey, "variable name that introduces the model array")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw policy document to stderr")
	cmd.Flags().BoolVar(&declaration, "declaration", false, "print the models as a policy declaration")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "match the key case-sensitively")
	cmd.Flags().BoolVar(&noDecode, "no-decode", false, "skip HTML entity decoding before scanning")

	return cmd
}

func printRawPolicy(w io.Writer, policy string) {
	rule := strings.Repeat("=", rawPolicyRule)

	printInfo(w, "%s", rule)
	printInfo(w, "RAW POLICY:")
	printInfo(w, "%s", rule)
	_, _ = fmt.Fprintln(w, policy)
	printInfo(w, "%s", rule)
}
