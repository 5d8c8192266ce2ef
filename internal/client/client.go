package client

import (
	"context"
	"time"

	"github.com/fivetwenty-io/apim-client/internal/auth"
	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// Client implements the apim.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	scope        apim.Scope
	account      *apim.Account
	logger       apim.Logger

	// Resource clients
	services        *ServicesClient
	subscriptions   *SubscriptionsClient
	apis            *APIsClient
	gateway         *GatewayClient
	policyFragments *PolicyFragmentsClient
	backends        *BackendsClient
	namedValues     *NamedValuesClient
	identity        *IdentityClient
}

// createTokenManager picks a token manager: a static token first, then a
// service principal, then the Azure CLI.
func createTokenManager(config *apim.Config) (auth.TokenManager, error) {
	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}, nil
	}

	if config.ClientID != "" && config.ClientSecret != "" && !config.UseAzureCLI {
		return auth.NewClientCredentialsTokenManager(&auth.ClientCredentialsConfig{
			TenantID:     config.TenantID,
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
		})
	}

	return auth.NewAzureCLITokenManager(nil), nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *apim.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.APIVersion != "" {
		httpOpts = append(httpOpts, http.WithAPIVersion(config.APIVersion))
	}

	if config.Cache != nil {
		ttl := config.CacheTTL
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		httpOpts = append(httpOpts, http.WithCache(config.Cache, ttl))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new APIM client. SubscriptionID and ResourceGroup must be
// resolved by the caller; ServiceName may be set later with SetServiceName.
func New(ctx context.Context, config *apim.Config) (*Client, error) {
	if config == nil {
		return nil, apim.ErrConfigRequired
	}

	tokenManager, err := createTokenManager(config)
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(config, tokenManager)
}

// NewWithTokenManager creates a new APIM client with a custom token manager.
func NewWithTokenManager(config *apim.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, apim.ErrConfigRequired
	}

	if config.SubscriptionID == "" {
		return nil, apim.ErrSubscriptionIDRequired
	}

	if config.ResourceGroup == "" {
		return nil, apim.ErrResourceGroupRequired
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = constants.DefaultManagementEndpoint
	}

	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	client := &Client{
		httpClient:   http.NewClient(endpoint, tokenManager, createHTTPClientOptions(config)...),
		tokenManager: tokenManager,
		scope: apim.Scope{
			SubscriptionID: config.SubscriptionID,
			ResourceGroup:  config.ResourceGroup,
			ServiceName:    config.ServiceName,
		},
		logger: logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.services = NewServicesClient(c.httpClient, c.scope)
	c.subscriptions = NewSubscriptionsClient(c.httpClient, c.scope)
	c.apis = NewAPIsClient(c.httpClient, c.scope, c.services)
	c.gateway = NewGatewayClient(c.httpClient, c.scope)
	c.policyFragments = NewPolicyFragmentsClient(c.httpClient, c.scope, c.logger)
	c.backends = NewBackendsClient(c.httpClient, c.scope, c.logger)
	c.namedValues = NewNamedValuesClient(c.httpClient, c.scope)
	c.identity = NewIdentityClient(c.scope, c.services, c.namedValues, c.logger)
}

// SetServiceName points every resource client at the named service.
func (c *Client) SetServiceName(name string) {
	c.scope.ServiceName = name
	c.initializeResourceClients()
}

// SetAccount records the Azure CLI account used for discovery.
func (c *Client) SetAccount(account *apim.Account) {
	c.account = account
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Scope implements apim.Client.Scope.
func (c *Client) Scope() apim.Scope {
	return c.scope
}

// Account implements apim.Client.Account.
func (c *Client) Account() *apim.Account {
	return c.account
}

// Services implements apim.Client.Services.
func (c *Client) Services() apim.ServicesClient {
	return c.services
}

// Subscriptions implements apim.Client.Subscriptions.
func (c *Client) Subscriptions() apim.SubscriptionsClient {
	return c.subscriptions
}

// APIs implements apim.Client.APIs.
func (c *Client) APIs() apim.APIsClient {
	return c.apis
}

// Gateway implements apim.Client.Gateway.
func (c *Client) Gateway() apim.GatewayClient {
	return c.gateway
}

// PolicyFragments implements apim.Client.PolicyFragments.
func (c *Client) PolicyFragments() apim.PolicyFragmentsClient {
	return c.policyFragments
}

// Backends implements apim.Client.Backends.
func (c *Client) Backends() apim.BackendsClient {
	return c.backends
}

// NamedValues implements apim.Client.NamedValues.
func (c *Client) NamedValues() apim.NamedValuesClient {
	return c.namedValues
}

// Identity implements apim.Client.Identity.
func (c *Client) Identity() apim.IdentityClient {
	return c.identity
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return apim.ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
