//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	SubscriptionID string
	ResourceGroup  string
	ServiceName    string
	Fragment       string
	APIMPath       string
	Verbose        bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		SubscriptionID: os.Getenv("APIM_IT_SUBSCRIPTION_ID"),
		ResourceGroup:  os.Getenv("APIM_IT_RESOURCE_GROUP"),
		ServiceName:    os.Getenv("APIM_IT_SERVICE_NAME"),
		Fragment:       envOr("APIM_IT_FRAGMENT", "set-backend-pools"),
		APIMPath:       getAPIMPath(),
		Verbose:        os.Getenv("APIM_IT_VERBOSE") == "true",
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// getAPIMPath determines the path to the apim binary.
func getAPIMPath() string {
	if path := os.Getenv("APIM_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../apim", "./apim", "../apim"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "apim"
}

// SkipIfMissingConfig skips the test unless a live service and the binary are available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.ResourceGroup == "" {
		t.Skip("APIM_IT_RESOURCE_GROUP not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.APIMPath); err != nil {
		t.Skipf("apim binary not found at %s, skipping integration test", config.APIMPath)
	}

	if _, err := exec.LookPath("az"); err != nil {
		t.Skip("Azure CLI not found, skipping integration test")
	}
}

// CommandRunner runs apim against an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a runner whose config file lives in a temporary directory.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes an apim command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	args = append([]string{"--config", runner.configFile, "--no-color"}, args...)

	cmd := exec.Command(runner.config.APIMPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.APIMPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Setup logs in with the Azure CLI and records the target service.
func (runner *CommandRunner) Setup() error {
	_, stderr, err := runner.Run("login", "--azure-cli")
	if err != nil {
		return fmt.Errorf("failed to log in with the Azure CLI: %s", stderr)
	}

	settings := [][2]string{
		{"resource_group", runner.config.ResourceGroup},
		{"subscription_id", runner.config.SubscriptionID},
		{"service_name", runner.config.ServiceName},
	}

	for _, setting := range settings {
		if setting[1] == "" {
			continue
		}

		_, stderr, err = runner.Run("config", "set", setting[0], setting[1])
		if err != nil {
			return fmt.Errorf("failed to set %s: %s", setting[0], stderr)
		}
	}

	return nil
}

// RunJSON executes a command with JSON output and decodes it into out.
func (runner *CommandRunner) RunJSON(out interface{}, args ...string) {
	runner.t.Helper()

	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	require.NoError(runner.t, err, stderr)
	require.NoError(runner.t, json.Unmarshal([]byte(stdout), out), stdout)
}
