package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/apim-client/internal/constants"
)

// NewDebugCommand creates the debug command group.
func NewDebugCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Trace requests through the managed gateway",
		Long:  "Issue gateway debug credentials and fetch the trace of a debugged request",
	}

	cmd.AddCommand(newDebugCredentialsCommand())
	cmd.AddCommand(newDebugTraceCommand())

	return cmd
}

func newDebugCredentialsCommand() *cobra.Command {
	var (
		apiName     string
		pathFilter  string
		expireAfter string
	)

	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Issue debug credentials for an API",
		Long: `Issue a short-lived token that enables tracing for one API. Send it in the
Apim-Debug-Authorization header; the response carries Apim-Trace-Id for 'apim debug trace'.
Without --api the API is discovered with --filter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if apiName == "" {
				api, err := client.APIs().Discover(cmd.Context(), pathFilter)
				if err != nil {
					return fmt.Errorf("failed to discover API: %w", err)
				}

				apiName = api.Name
			}

			token, err := client.Gateway().ListDebugCredentials(cmd.Context(), apiName, expireAfter)
			if err != nil {
				return fmt.Errorf("failed to get debug credentials: %w", err)
			}

			result := map[string]string{"api": apiName, "token": token}

			return renderOutput(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return renderProperties(w, [][]string{{"API", apiName}, {"Token", token}})
			})
		},
	}

	cmd.Flags().StringVar(&apiName, "api", "", "API name")
	cmd.Flags().StringVar(&pathFilter, "filter", constants.DefaultAPIPathFilter, "path filter used to discover the API")
	cmd.Flags().StringVar(&expireAfter, "expire", constants.DefaultCredentialsExpireAfter, "credential lifetime as an ISO 8601 duration")

	return cmd
}

func newDebugTraceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace TRACE_ID",
		Short: "Fetch the trace of a debugged request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			trace, err := client.Gateway().ListTrace(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get trace: %w", err)
			}

			// Traces are deeply nested, so the table format prints JSON too.
			return renderOutput(cmd.OutOrStdout(), trace, func(w io.Writer) error {
				encoder := json.NewEncoder(w)
				encoder.SetIndent("", "  ")

				return encoder.Encode(trace)
			})
		},
	}
}
