package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
	"github.com/fivetwenty-io/apim-client/pkg/apimclient"
)

const (
	testToken       = "test-token"
	testServicePath = "/subscriptions/sub-1/resourceGroups/lab-rg/providers/Microsoft.ApiManagement/service/apim-lab"
	serviceBody     = `{
		"id": "/subscriptions/sub-1/resourceGroups/lab-rg/providers/Microsoft.ApiManagement/service/apim-lab",
		"name": "apim-lab",
		"type": "Microsoft.ApiManagement/service",
		"location": "eastus",
		"sku": {"name": "Developer", "capacity": 1},
		"properties": {"gatewayUrl": "https://apim-lab.azure-api.net", "provisioningState": "Succeeded"}
	}`
)

// armRoute is a canned management API response.
type armRoute struct {
	status int
	body   string
}

// newARMServer serves routes keyed by "METHOD path" and fails the test on
// anything else. Requests must carry token as bearer.
func newARMServer(t *testing.T, token string, routes map[string]armRoute) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer "+token, request.Header.Get("Authorization"))

		route, ok := routes[request.Method+" "+request.URL.Path]
		if !ok {
			t.Errorf("unexpected request %s %s", request.Method, request.URL.String())
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		status := route.status
		if status == 0 {
			status = http.StatusOK
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(route.body))
	}))
	t.Cleanup(server.Close)

	return server
}

// setupConfig points viper at a temporary config file and applies values.
// Tests using it must not run in parallel because viper is global.
func setupConfig(t *testing.T, values map[string]interface{}) string {
	t.Helper()

	viper.Reset()
	color.NoColor = true

	configFile := filepath.Join(t.TempDir(), ConfigDirName, "config.yml")
	viper.SetConfigFile(configFile)

	for key, value := range values {
		viper.Set(key, value)
	}

	t.Cleanup(viper.Reset)

	return configFile
}

// setupARM configures a static-token client for the apim-lab service behind server.
func setupARM(t *testing.T, server *httptest.Server, output string) string {
	t.Helper()

	return setupConfig(t, map[string]interface{}{
		"subscription_id": "sub-1",
		"resource_group":  "lab-rg",
		"service_name":    "apim-lab",
		"endpoint":        server.URL,
		"access_token":    testToken,
		"output":          output,
	})
}

// executeCommand runs cmd with args and returns stdout and stderr.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

// readConfigFile decodes the persisted config.
func readConfigFile(t *testing.T, path string) *Config {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	config := &Config{}
	require.NoError(t, yaml.Unmarshal(data, config))

	return config
}

// writeConfigFile persists config at path.
func writeConfigFile(t *testing.T, path string, config *Config) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))

	data, err := yaml.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// fakeAccountResolver returns a fixed account.
type fakeAccountResolver struct {
	account *apim.Account
	err     error
}

func (f *fakeAccountResolver) ShowAccount(ctx context.Context) (*apim.Account, error) {
	return f.account, f.err
}

// useAccountResolver swaps the Azure CLI lookup for the duration of a test.
func useAccountResolver(t *testing.T, resolver apimclient.AccountResolver) {
	t.Helper()

	previous := newAccountResolver
	newAccountResolver = func() apimclient.AccountResolver { return resolver }

	t.Cleanup(func() { newAccountResolver = previous })
}
