package apimclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
	"github.com/fivetwenty-io/apim-client/pkg/apimclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const servicesPath = "/subscriptions/sub-1/resourceGroups/lab-rg/providers/Microsoft.ApiManagement/service"

type fakeResolver struct {
	account *apim.Account
	err     error
	calls   int
}

func (f *fakeResolver) ShowAccount(ctx context.Context) (*apim.Account, error) {
	f.calls++

	return f.account, f.err
}

type countingTokenManager struct {
	calls int
}

func (m *countingTokenManager) GetToken(ctx context.Context) (string, error) {
	m.calls++

	return "custom-token", nil
}

func (m *countingTokenManager) RefreshToken(ctx context.Context) error { return nil }

func (m *countingTokenManager) SetToken(token string, expiresAt time.Time) {}

func newServicesServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, servicesPath, request.URL.Path)
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(body))
	}))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := apimclient.New(context.Background(), nil)
	require.ErrorIs(t, err, apim.ErrConfigRequired)

	_, err = apimclient.New(context.Background(), &apim.Config{SubscriptionID: "sub-1"})
	require.ErrorIs(t, err, apim.ErrResourceGroupRequired)
}

func TestNew_ResolvesAccountAndService(t *testing.T) {
	t.Parallel()

	server := newServicesServer(t, `{"value":[{"name":"apim-first"},{"name":"apim-second"}]}`)
	defer server.Close()

	resolver := &fakeResolver{account: &apim.Account{ID: "sub-1", TenantID: "tenant-1", User: apim.AccountUser{Name: "dev@example.com"}}}
	config := &apim.Config{ResourceGroup: "lab-rg", Endpoint: server.URL + "/", AccessToken: "t"}

	client, err := apimclient.New(context.Background(), config, apimclient.WithAccountResolver(resolver))
	require.NoError(t, err)

	assert.Equal(t, apim.Scope{SubscriptionID: "sub-1", ResourceGroup: "lab-rg", ServiceName: "apim-first"}, client.Scope())
	require.NotNil(t, client.Account())
	assert.Equal(t, "dev@example.com", client.Account().User.Name)
	assert.Equal(t, 1, resolver.calls)
	assert.Empty(t, config.SubscriptionID, "caller config is left untouched")
	assert.Empty(t, config.ServiceName)
}

func TestNew_ConfiguredScopeSkipsDiscovery(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{err: errors.New("must not be called")}

	client, err := apimclient.New(context.Background(), &apim.Config{
		SubscriptionID: "sub-1",
		ResourceGroup:  "lab-rg",
		ServiceName:    "apim-lab",
		AccessToken:    "t",
	}, apimclient.WithAccountResolver(resolver))
	require.NoError(t, err)

	assert.Equal(t, "apim-lab", client.Scope().ServiceName)
	assert.Nil(t, client.Account())
	assert.Equal(t, 0, resolver.calls)
}

func TestNew_NoServiceInResourceGroup(t *testing.T) {
	t.Parallel()

	server := newServicesServer(t, `{"value":[]}`)
	defer server.Close()

	_, err := apimclient.New(context.Background(), &apim.Config{
		SubscriptionID: "sub-1",
		ResourceGroup:  "lab-rg",
		Endpoint:       server.URL,
		AccessToken:    "t",
	})
	require.ErrorIs(t, err, apim.ErrServiceNotFound)
	assert.Contains(t, err.Error(), "lab-rg")
}

func TestNew_AccountLookupFailure(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New("az not installed")

	_, err := apimclient.New(context.Background(), &apim.Config{ResourceGroup: "lab-rg", AccessToken: "t"},
		apimclient.WithAccountResolver(&fakeResolver{err: lookupErr}))
	require.ErrorIs(t, err, lookupErr)
	assert.Contains(t, err.Error(), "resolving subscription")
}

func TestNew_WithTokenManager(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer custom-token", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte(`{"value":[{"name":"apim-lab"}]}`))
	}))
	defer server.Close()

	tokenManager := &countingTokenManager{}

	client, err := apimclient.New(context.Background(), &apim.Config{
		SubscriptionID: "sub-1",
		ResourceGroup:  "lab-rg",
		Endpoint:       server.URL,
	}, apimclient.WithTokenManager(tokenManager))
	require.NoError(t, err)
	assert.Equal(t, "apim-lab", client.Scope().ServiceName)
	assert.Equal(t, 1, tokenManager.calls)
}

func TestNew_ResourceClients(t *testing.T) {
	t.Parallel()

	server := newServicesServer(t, `{"value":[{"name":"apim-lab"}]}`)
	defer server.Close()

	client, err := apimclient.New(context.Background(), &apim.Config{
		SubscriptionID: "sub-1",
		ResourceGroup:  "lab-rg",
		Endpoint:       server.URL,
		AccessToken:    "t",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.Backends())
	assert.NotNil(t, client.PolicyFragments())
}
