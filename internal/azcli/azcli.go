// Package azcli shells out to the Azure CLI for account and token lookups.
package azcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// expiresOnLayout is the local-time format of the legacy expiresOn field.
const expiresOnLayout = "2006-01-02 15:04:05.999999"

// Runner executes az with the given arguments and returns stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the az binary found in PATH.
type ExecRunner struct {
	Binary  string
	Timeout time.Duration
}

// NewExecRunner creates a runner for the az binary.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Binary: "az", Timeout: constants.AzureCLITimeout}
}

// Run executes az and maps well-known failures to sentinel errors.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, constants.ErrAzureCLINotFound
		}

		message := strings.TrimSpace(stderr.String())
		if strings.Contains(message, "az login") {
			return nil, fmt.Errorf("%w: %s", constants.ErrNotLoggedIn, message)
		}

		return nil, fmt.Errorf("%w: az %s: %s", constants.ErrAzureCLIFailed, strings.Join(args, " "), message)
	}

	return stdout.Bytes(), nil
}

// AccessToken is the output of `az account get-access-token`.
type AccessToken struct {
	AccessToken  string `json:"accessToken"`
	ExpiresOn    string `json:"expiresOn"`
	ExpiresOnRaw int64  `json:"expires_on"`
	Subscription string `json:"subscription"`
	Tenant       string `json:"tenant"`
	TokenType    string `json:"tokenType"`
}

// ExpiresAt returns the token expiry. The POSIX expires_on field is used
// when present; older CLIs only emit expiresOn in local time.
func (t *AccessToken) ExpiresAt() time.Time {
	if t.ExpiresOnRaw > 0 {
		return time.Unix(t.ExpiresOnRaw, 0)
	}

	if t.ExpiresOn == "" {
		return time.Time{}
	}

	expires, err := time.ParseInLocation(expiresOnLayout, t.ExpiresOn, time.Local)
	if err != nil {
		seconds, convErr := strconv.ParseInt(t.ExpiresOn, 10, 64)
		if convErr != nil {
			return time.Time{}
		}

		return time.Unix(seconds, 0)
	}

	return expires
}

// CLI wraps the az commands the client needs.
type CLI struct {
	runner Runner
}

// New creates a CLI. A nil runner uses the az binary.
func New(runner Runner) *CLI {
	if runner == nil {
		runner = NewExecRunner()
	}

	return &CLI{runner: runner}
}

// ShowAccount returns the active subscription and signed-in user.
func (c *CLI) ShowAccount(ctx context.Context) (*apim.Account, error) {
	output, err := c.runner.Run(ctx, "account", "show", "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("showing Azure CLI account: %w", err)
	}

	var account apim.Account

	err = json.Unmarshal(output, &account)
	if err != nil {
		return nil, fmt.Errorf("parsing Azure CLI account: %w", err)
	}

	return &account, nil
}

// GetAccessToken returns a token for the given resource audience.
func (c *CLI) GetAccessToken(ctx context.Context, resource string) (*AccessToken, error) {
	if resource == "" {
		resource = constants.ManagementResource
	}

	output, err := c.runner.Run(ctx, "account", "get-access-token", "--resource", resource, "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("getting Azure CLI access token: %w", err)
	}

	var token AccessToken

	err = json.Unmarshal(output, &token)
	if err != nil {
		return nil, fmt.Errorf("parsing Azure CLI access token: %w", err)
	}

	if token.AccessToken == "" {
		return nil, constants.ErrEmptyAccessToken
	}

	return &token, nil
}
