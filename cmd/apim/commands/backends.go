package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// Static errors for err113 compliance.
var (
	ErrInvalidBackendKind = errors.New("invalid backend kind, use all, standalone or pool")
)

// BackendsResult is the output of backends list.
type BackendsResult struct {
	Backends []apim.Backend     `json:"backends" yaml:"backends"`
	Pools    []apim.BackendPool `json:"pools"    yaml:"pools"`
}

// NewBackendsCommand creates the backends command group.
func NewBackendsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "Inspect backends and backend pools",
	}

	cmd.AddCommand(newBackendsListCommand())

	return cmd
}

func newBackendsListCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backends classified as standalone or pool",
		Long: `List backends. Standalone backends show the models parsed from the
"Supports models:" part of their description; pools show their members.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind = strings.ToLower(kind)
			if kind != "all" && kind != apim.BackendKindStandalone.String() && kind != apim.BackendKindPool.String() {
				return fmt.Errorf("%w: %s", ErrInvalidBackendKind, kind)
			}

			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			backends, pools, err := client.Backends().Classified(cmd.Context())
			if err != nil {
				return err
			}

			result := BackendsResult{Backends: backends, Pools: pools}

			switch kind {
			case apim.BackendKindStandalone.String():
				result.Pools = []apim.BackendPool{}
			case apim.BackendKindPool.String():
				result.Backends = []apim.Backend{}
			}

			return renderOutput(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return displayBackends(w, result)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "all", "filter by kind: all, standalone or pool")

	return cmd
}

func displayBackends(w io.Writer, result BackendsResult) error {
	if len(result.Backends) > 0 {
		rows := make([][]string, 0, len(result.Backends))
		for _, backend := range result.Backends {
			rows = append(rows, []string{
				backend.Name,
				valueOrNA(backend.URL),
				valueOrNA(strings.Join(backend.SupportedModels, ", ")),
				truncate(backend.Description, constants.DescriptionDisplayLength),
			})
		}

		_, _ = fmt.Fprintln(w, "Backends:")

		err := renderTable(w, []string{"Name", "URL", "Models", "Description"}, rows)
		if err != nil {
			return err
		}
	}

	if len(result.Pools) > 0 {
		var rows [][]string

		for _, pool := range result.Pools {
			if len(pool.Services) == 0 {
				rows = append(rows, []string{pool.Name, NotAvailable, NotAvailable, NotAvailable})
			}

			for _, member := range pool.Services {
				rows = append(rows, []string{
					pool.Name,
					apim.NameFromID(member.ID),
					formatOptionalInt(member.Priority),
					formatOptionalInt(member.Weight),
				})
			}
		}

		_, _ = fmt.Fprintln(w, "Backend Pools:")

		err := renderTable(w, []string{"Pool", "Member", "Priority", "Weight"}, rows)
		if err != nil {
			return err
		}
	}

	printInfo(w, "Found %d individual backends and %d backend pools", len(result.Backends), len(result.Pools))

	return nil
}
