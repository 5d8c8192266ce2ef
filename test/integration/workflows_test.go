//go:build integration

package integration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apim-client/cmd/apim/commands"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

func newRunner(t *testing.T) *CommandRunner {
	t.Helper()

	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Setup())

	return runner
}

func TestServiceWorkflow(t *testing.T) {
	runner := newRunner(t)

	var service apim.Service
	runner.RunJSON(&service, "service", "show")

	assert.NotEmpty(t, service.Name)
	assert.True(t, strings.HasPrefix(service.Properties.GatewayURL, "https://"))

	var identity apim.ManagedIdentityInfo
	runner.RunJSON(&identity, "identity", "show")
	assert.NotEmpty(t, identity.ResourceGroup)
}

func TestBackendsWorkflow(t *testing.T) {
	runner := newRunner(t)

	var result commands.BackendsResult
	runner.RunJSON(&result, "backends", "list")

	for _, backend := range result.Backends {
		assert.NotEmpty(t, backend.Name)
		assert.NotNil(t, backend.SupportedModels)
	}

	for _, pool := range result.Pools {
		for _, member := range pool.Services {
			assert.NotEmpty(t, member.ID)
		}
	}
}

func TestSupportedModelsWorkflow(t *testing.T) {
	runner := newRunner(t)

	var result commands.SupportedModelsResult
	runner.RunJSON(&result, "policy", "models", "--fragment", runner.config.Fragment)

	assert.Equal(t, runner.config.Fragment, result.Fragment)

	seen := map[string]bool{}
	for _, model := range result.SupportedModels {
		assert.False(t, seen[model], "duplicate model %s", model)
		seen[model] = true
	}
}

func TestMissingFragment(t *testing.T) {
	runner := newRunner(t)

	_, stderr, err := runner.Run("policy", "models", "--fragment", "does-not-exist-"+strings.Repeat("x", 8))
	require.Error(t, err)
	assert.Contains(t, stderr, "does-not-exist")
}
