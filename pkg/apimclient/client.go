package apimclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/apim-client/internal/auth"
	"github.com/fivetwenty-io/apim-client/internal/azcli"
	"github.com/fivetwenty-io/apim-client/internal/client"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// AccountResolver looks up the signed-in Azure account.
type AccountResolver interface {
	ShowAccount(ctx context.Context) (*apim.Account, error)
}

type options struct {
	accounts     AccountResolver
	tokenManager auth.TokenManager
}

// Option customizes New.
type Option func(*options)

// WithAccountResolver replaces the Azure CLI account lookup.
func WithAccountResolver(resolver AccountResolver) Option {
	return func(o *options) {
		o.accounts = resolver
	}
}

// WithTokenManager bypasses the token manager chosen from the config.
func WithTokenManager(tokenManager auth.TokenManager) Option {
	return func(o *options) {
		o.tokenManager = tokenManager
	}
}

// New creates a new API Management client, discovering the subscription and
// service name when they are not configured. The caller's config is not modified.
func New(ctx context.Context, config *apim.Config, opts ...Option) (apim.Client, error) {
	if config == nil {
		return nil, apim.ErrConfigRequired
	}

	if config.ResourceGroup == "" {
		return nil, apim.ErrResourceGroupRequired
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.accounts == nil {
		o.accounts = azcli.New(nil)
	}

	resolved := *config
	resolved.Endpoint = normalizeEndpoint(resolved.Endpoint)

	var account *apim.Account

	if resolved.SubscriptionID == "" {
		var err error

		account, err = o.accounts.ShowAccount(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving subscription: %w", err)
		}

		resolved.SubscriptionID = account.ID
		if resolved.TenantID == "" {
			resolved.TenantID = account.TenantID
		}
	}

	apimClient, err := newInternalClient(ctx, &resolved, o.tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	apimClient.SetAccount(account)

	if resolved.ServiceName == "" {
		name, err := discoverServiceName(ctx, apimClient, resolved.ResourceGroup)
		if err != nil {
			return nil, err
		}

		apimClient.SetServiceName(name)
	}

	return apimClient, nil
}

func newInternalClient(ctx context.Context, config *apim.Config, tokenManager auth.TokenManager) (*client.Client, error) {
	if tokenManager != nil {
		return client.NewWithTokenManager(config, tokenManager)
	}

	return client.New(ctx, config)
}

// discoverServiceName returns the first APIM service in the resource group.
func discoverServiceName(ctx context.Context, apimClient apim.Client, resourceGroup string) (string, error) {
	services, err := apimClient.Services().List(ctx)
	if err != nil {
		return "", fmt.Errorf("discovering service: %w", err)
	}

	if len(services) == 0 {
		return "", fmt.Errorf("%w in resource group %s", apim.ErrServiceNotFound, resourceGroup)
	}

	return services[0].Name, nil
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithToken creates a client with a pre-acquired bearer token.
func NewWithToken(ctx context.Context, subscriptionID, resourceGroup, token string) (apim.Client, error) {
	return New(ctx, &apim.Config{
		SubscriptionID: subscriptionID,
		ResourceGroup:  resourceGroup,
		AccessToken:    token,
	})
}

// NewWithClientCredentials creates a client authenticated as a service principal.
func NewWithClientCredentials(ctx context.Context, subscriptionID, resourceGroup, tenantID, clientID, clientSecret string) (apim.Client, error) {
	return New(ctx, &apim.Config{
		SubscriptionID: subscriptionID,
		ResourceGroup:  resourceGroup,
		TenantID:       tenantID,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
	})
}

// NewWithAzureCLI creates a client from the Azure CLI login.
func NewWithAzureCLI(ctx context.Context, resourceGroup string) (apim.Client, error) {
	return New(ctx, &apim.Config{
		ResourceGroup: resourceGroup,
		UseAzureCLI:   true,
	})
}
