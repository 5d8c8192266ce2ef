package commands

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

func TestVersionCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		setupConfig(t, map[string]interface{}{"output": "json"})

		stdout, _, err := executeCommand(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
		require.NoError(t, err)

		var info VersionInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &info))
		assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc123", Built: "2026-01-01"}, info)
	})

	t.Run("yaml", func(t *testing.T) {
		setupConfig(t, map[string]interface{}{"output": "yaml"})

		stdout, _, err := executeCommand(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
		require.NoError(t, err)

		var info VersionInfo
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &info))
		assert.Equal(t, "1.2.3", info.Version)
	})

	t.Run("table", func(t *testing.T) {
		setupConfig(t, map[string]interface{}{"output": "table"})

		stdout, _, err := executeCommand(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
		require.NoError(t, err)
		assert.Contains(t, stdout, "Version")
		assert.Contains(t, stdout, "abc123")
	})

	t.Run("unknown format", func(t *testing.T) {
		setupConfig(t, map[string]interface{}{"output": "xml"})

		_, _, err := executeCommand(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
		require.ErrorIs(t, err, constants.ErrInvalidOutputFormat)
	})
}

func TestAccountCommand(t *testing.T) {
	t.Run("shows the account", func(t *testing.T) {
		setupConfig(t, map[string]interface{}{"output": "json"})
		useAccountResolver(t, &fakeAccountResolver{account: &apim.Account{
			ID:       "sub-1",
			Name:     "Lab",
			TenantID: "tenant-1",
			User:     apim.AccountUser{Name: "dev@example.com", Type: "user"},
		}})

		stdout, _, err := executeCommand(t, NewAccountCommand())
		require.NoError(t, err)

		var account apim.Account
		require.NoError(t, json.Unmarshal([]byte(stdout), &account))
		assert.Equal(t, "sub-1", account.ID)
		assert.Equal(t, "dev@example.com", account.User.Name)
	})

	t.Run("wraps lookup errors", func(t *testing.T) {
		setupConfig(t, nil)

		errNoLogin := errors.New("no login")
		useAccountResolver(t, &fakeAccountResolver{err: errNoLogin})

		_, _, err := executeCommand(t, NewAccountCommand())
		require.ErrorIs(t, err, errNoLogin)
		assert.Contains(t, err.Error(), "reading Azure CLI account")
	})
}
