package apim

import (
	"context"
	"time"
)

// ServicesClient reads API Management service instances.
type ServicesClient interface {
	Get(ctx context.Context) (*Service, error)
	List(ctx context.Context) ([]Service, error)
}

// SubscriptionsClient reads APIM subscriptions and their keys.
type SubscriptionsClient interface {
	List(ctx context.Context) ([]Subscription, error)
	ListSecrets(ctx context.Context, subscriptionID string) (*SubscriptionSecrets, error)
	ListKeys(ctx context.Context) ([]SubscriptionKey, error)
}

// APIsClient reads the APIs published by the service.
type APIsClient interface {
	List(ctx context.Context) ([]API, error)
	Discover(ctx context.Context, pathFilter string) (*DiscoveredAPI, error)
}

// GatewayClient exposes the managed gateway debugging actions.
type GatewayClient interface {
	ListDebugCredentials(ctx context.Context, apiName, expireAfter string) (string, error)
	ListTrace(ctx context.Context, traceID string) (map[string]interface{}, error)
}

// PolicyFragmentsClient reads policy fragments.
type PolicyFragmentsClient interface {
	Get(ctx context.Context, fragmentID string) (*PolicyFragment, error)
	SupportedModels(ctx context.Context, fragmentID string, opts ...ExtractOption) ([]string, error)
}

// BackendsClient reads backends and pools.
type BackendsClient interface {
	List(ctx context.Context) ([]BackendContract, error)
	Classified(ctx context.Context) ([]Backend, []BackendPool, error)
}

// NamedValuesClient reads named values.
type NamedValuesClient interface {
	Get(ctx context.Context, namedValueID string) (*NamedValue, error)
	GetValue(ctx context.Context, namedValueID string) (string, error)
}

// IdentityClient resolves the managed identity used by the service.
type IdentityClient interface {
	// ManagedIdentityInfo never fails; lookup problems are logged and the
	// result falls back to the configured resource group.
	ManagedIdentityInfo(ctx context.Context) *ManagedIdentityInfo
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Services() ServicesClient
	Subscriptions() SubscriptionsClient
	APIs() APIsClient
	Gateway() GatewayClient
	PolicyFragments() PolicyFragmentsClient
	Backends() BackendsClient
	NamedValues() NamedValuesClient
	Identity() IdentityClient
}

type Client interface {
	ResourceClients

	// Scope returns the resolved subscription, resource group and service name.
	Scope() Scope
	// Account returns the Azure CLI account used for discovery, or nil.
	Account() *Account
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an apim.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/apimclient and internal/client):
//  1. AccessToken: used directly as a static Bearer token.
//  2. ClientID/ClientSecret (+TenantID): Azure AD client_credentials grant
//     against TokenURL, or the tenant's v2.0 token endpoint when empty.
//  3. Otherwise: tokens are obtained from the Azure CLI
//     (`az account get-access-token`).
//
// # Discovery
//
// When SubscriptionID is empty, apimclient.New reads it (and the tenant)
// from `az account show`. When ServiceName is empty, the first
// Microsoft.ApiManagement/service in ResourceGroup is used.
type Config struct {
	// SubscriptionID: Azure subscription that holds the resource group.
	SubscriptionID string
	// ResourceGroup: resource group of the APIM service. Required.
	ResourceGroup string
	// ServiceName: APIM service name. Discovered when empty.
	ServiceName string
	// Endpoint: ARM base URL. Defaults to https://management.azure.com.
	Endpoint string
	// APIVersion: ARM api-version for APIM calls. Defaults to 2022-08-01.
	APIVersion string

	// TenantID: Azure AD tenant for the client_credentials grant.
	TenantID string
	// ClientID: service principal application ID.
	ClientID string
	// ClientSecret: service principal secret.
	ClientSecret string
	// AccessToken: pre-acquired Bearer token.
	AccessToken string
	// TokenURL: overrides the Azure AD token endpoint.
	TokenURL string
	// UseAzureCLI: force Azure CLI tokens even when client credentials are set.
	UseAzureCLI bool

	// RetryMax: maximum number of retries for transient failures (>=500, 429,
	// and connection errors). If 0, a sensible default is used by the client.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string

	// Cache: optional cache for GET responses.
	Cache Cache
	// CacheTTL: lifetime of cached responses. Defaults to 5 minutes.
	CacheTTL time.Duration
}
