package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apim-client/internal/auth"
	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil)
	require.ErrorIs(t, err, apim.ErrConfigRequired)

	_, err = NewWithTokenManager(nil, &staticTokenManager{token: "t"})
	require.ErrorIs(t, err, apim.ErrConfigRequired)

	_, err = New(context.Background(), &apim.Config{ResourceGroup: "rg", AccessToken: "t"})
	require.ErrorIs(t, err, apim.ErrSubscriptionIDRequired)

	_, err = New(context.Background(), &apim.Config{SubscriptionID: "sub", AccessToken: "t"})
	require.ErrorIs(t, err, apim.ErrResourceGroupRequired)
}

func TestNew_Scope(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &apim.Config{
		SubscriptionID: "sub-1",
		ResourceGroup:  "lab-rg",
		AccessToken:    "t",
	})
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultManagementEndpoint, client.httpClient.BaseURL())
	assert.Empty(t, client.Scope().ServiceName)
	assert.Nil(t, client.Account())

	client.SetServiceName("apim-lab")
	assert.Equal(t, testServicePath, client.Scope().ServiceID())
	assert.Equal(t, "apim-lab", client.services.scope.ServiceName)
	assert.Equal(t, "apim-lab", client.backends.scope.ServiceName)

	account := &apim.Account{ID: "sub-1", TenantID: "tenant-1"}
	client.SetAccount(account)
	assert.Same(t, account, client.Account())
}

func TestCreateTokenManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *apim.Config
		expected interface{}
		err      error
	}{
		{
			name:     "access token wins",
			config:   &apim.Config{AccessToken: "token", ClientID: "id", ClientSecret: "secret", TenantID: "tenant"},
			expected: &staticTokenManager{},
		},
		{
			name:     "service principal",
			config:   &apim.Config{ClientID: "id", ClientSecret: "secret", TenantID: "tenant"},
			expected: &auth.ClientCredentialsTokenManager{},
		},
		{
			name:     "forced Azure CLI",
			config:   &apim.Config{ClientID: "id", ClientSecret: "secret", TenantID: "tenant", UseAzureCLI: true},
			expected: &auth.AzureCLITokenManager{},
		},
		{
			name:     "nothing configured",
			config:   &apim.Config{},
			expected: &auth.AzureCLITokenManager{},
		},
		{
			name:   "service principal without tenant",
			config: &apim.Config{ClientID: "id", ClientSecret: "secret"},
			err:    constants.ErrTenantRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			manager, err := createTokenManager(tt.config)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.expected, manager)
		})
	}
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := &staticTokenManager{token: "static"}

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", token)
	require.ErrorIs(t, manager.RefreshToken(context.Background()), apim.ErrStaticTokenCannotRefresh)
}

func TestListAll_Paging(t *testing.T) {
	t.Parallel()

	server := newARMServer(t, map[string]armRoute{
		"GET " + testServicePath + "/apis":    {body: `{"value":[{"name":"a"}],"nextLink":"{{server}}` + testServicePath + `/apis?api-version=2022-08-01&$skiptoken=p2"}`},
		"GET " + testServicePath + "/apis#p2": {body: `{"value":[{"name":"b"},{"name":"c"}]}`},
	})
	defer server.Close()

	client := newTestClient(t, server, nil)

	apis, err := client.APIs().List(context.Background())
	require.NoError(t, err)
	require.Len(t, apis, 3)
	assert.Equal(t, "c", apis[2].Name)
}

func TestListAll_TooManyPages(t *testing.T) {
	t.Parallel()

	server := newARMServer(t, map[string]armRoute{
		"GET " + testServicePath + "/apis": {body: `{"value":[],"nextLink":"{{server}}` + testServicePath + `/apis?api-version=2022-08-01"}`},
	})
	defer server.Close()

	client := newTestClient(t, server, nil)

	_, err := client.APIs().List(context.Background())
	require.ErrorIs(t, err, constants.ErrTooManyPages)
}
