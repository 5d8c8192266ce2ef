package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// AzureCLITimeout bounds a single az invocation.
	AzureCLITimeout = 60 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 4

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Azure Resource Manager.
const (
	// DefaultManagementEndpoint is the public cloud ARM endpoint.
	DefaultManagementEndpoint = "https://management.azure.com"

	// ManagementResource is the token audience for ARM.
	ManagementResource = "https://management.azure.com/"

	// ManagementScope is the client credentials scope for ARM.
	ManagementScope = "https://management.azure.com/.default"

	// DefaultAuthorityHost is the Azure AD authority.
	DefaultAuthorityHost = "https://login.microsoftonline.com"

	// DefaultAPIVersion is the api-version used for APIM resource calls.
	DefaultAPIVersion = "2022-08-01"

	// GatewayDebugAPIVersion is required by the managed gateway debug actions.
	GatewayDebugAPIVersion = "2023-05-01-preview"

	// BackendPoolAPIVersion is the first api-version that returns the pool
	// and type fields of a backend.
	BackendPoolAPIVersion = "2023-05-01-preview"

	// ServiceResourceType is the ARM type of an APIM service.
	ServiceResourceType = "Microsoft.ApiManagement/service"

	// MaxListPages bounds nextLink traversal.
	MaxListPages = 100
)

// APIM defaults.
const (
	// DefaultAPIPathFilter selects the OpenAI-compatible API.
	DefaultAPIPathFilter = "/openai"

	// DefaultPolicyFragmentID is the fragment that declares the backend pools.
	DefaultPolicyFragmentID = "set-backend-pools"

	// DefaultCredentialsExpireAfter is the ISO 8601 lifetime of debug credentials.
	DefaultCredentialsExpireAfter = "PT1H"

	// DebugCredentialsPurpose is the purpose requested for debug credentials.
	DebugCredentialsPurpose = "tracing"

	// ManagedIdentityNamedValue holds the client ID of the gateway identity.
	ManagedIdentityNamedValue = "uami-client-id"

	// UserAgent is sent when no override is configured.
	UserAgent = "apim-client/1.0"
)

// Cache defaults.
const (
	// DefaultCacheSize is the default number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default lifetime of cached responses.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultNATSBucket is the default KV bucket for the NATS cache.
	DefaultNATSBucket = "apim-client-cache"
)

// Output formats.
const (
	// FormatJSON renders JSON.
	FormatJSON = "json"

	// FormatYAML renders YAML.
	FormatYAML = "yaml"

	// FormatTable renders tables.
	FormatTable = "table"
)

// Display limits.
const (
	// MaskedKeyVisibleChars is how many leading characters of a key are shown.
	MaskedKeyVisibleChars = 4

	// ClientIDPreviewLength is how much of a client ID status lines show.
	ClientIDPreviewLength = 8

	// DescriptionDisplayLength truncates descriptions in tables.
	DescriptionDisplayLength = 60

	// MinimumArgumentCount is used by KEY VALUE commands.
	MinimumArgumentCount = 2

	// TokenExpiryBuffer is subtracted from token expiry to refresh early.
	TokenExpiryBuffer = 30 * time.Second
)

// Boolean strings accepted by config commands.
const (
	// BooleanTrue is the canonical true value.
	BooleanTrue = "true"
)
