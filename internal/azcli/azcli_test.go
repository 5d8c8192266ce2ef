package azcli_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/apim-client/internal/azcli"
	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	output []byte
	err    error
	args   []string
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	f.args = args

	return f.output, f.err
}

func TestCLI_ShowAccount(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: []byte(`{
		"id": "00000000-1111-2222-3333-444444444444",
		"name": "Lab Subscription",
		"tenantId": "tenant-1",
		"user": {"name": "dev@example.com", "type": "user"}
	}`)}

	account, err := azcli.New(runner).ShowAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"account", "show", "--output", "json"}, runner.args)
	assert.Equal(t, "00000000-1111-2222-3333-444444444444", account.ID)
	assert.Equal(t, "tenant-1", account.TenantID)
	assert.Equal(t, "dev@example.com", account.User.Name)
}

func TestCLI_ShowAccount_Errors(t *testing.T) {
	t.Parallel()

	t.Run("runner failure", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{err: constants.ErrNotLoggedIn}

		_, err := azcli.New(runner).ShowAccount(context.Background())
		require.ErrorIs(t, err, constants.ErrNotLoggedIn)
	})

	t.Run("malformed output", func(t *testing.T) {
		t.Parallel()

		_, err := azcli.New(&fakeRunner{output: []byte("not json")}).ShowAccount(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing Azure CLI account")
	})
}

func TestCLI_GetAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("default resource", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{output: []byte(`{"accessToken":"cli-token","expires_on":1900000000,"tokenType":"Bearer"}`)}

		token, err := azcli.New(runner).GetAccessToken(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"account", "get-access-token", "--resource", constants.ManagementResource, "--output", "json"}, runner.args)
		assert.Equal(t, "cli-token", token.AccessToken)
		assert.Equal(t, time.Unix(1900000000, 0), token.ExpiresAt())
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		_, err := azcli.New(&fakeRunner{output: []byte(`{"accessToken":""}`)}).GetAccessToken(context.Background(), "")
		require.ErrorIs(t, err, constants.ErrEmptyAccessToken)
	})

	t.Run("runner failure", func(t *testing.T) {
		t.Parallel()

		runErr := errors.New("boom")

		_, err := azcli.New(&fakeRunner{err: runErr}).GetAccessToken(context.Background(), "")
		require.ErrorIs(t, err, runErr)
	})
}

func TestAccessToken_ExpiresAt(t *testing.T) {
	t.Parallel()

	legacy := &azcli.AccessToken{ExpiresOn: "2030-01-02 03:04:05.000000"}
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.Local), legacy.ExpiresAt())

	assert.True(t, (&azcli.AccessToken{}).ExpiresAt().IsZero())
	assert.True(t, (&azcli.AccessToken{ExpiresOn: "garbage"}).ExpiresAt().IsZero())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	runner := &azcli.ExecRunner{Binary: "definitely-not-an-az-binary"}

	_, err := runner.Run(context.Background(), "version")
	require.ErrorIs(t, err, constants.ErrAzureCLINotFound)
}
