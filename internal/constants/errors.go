package constants

import "errors"

// Authentication errors.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
	ErrTokenRequestFailed       = errors.New("token request failed")
	ErrEmptyAccessToken         = errors.New("empty access token in response")
	ErrTenantRequired           = errors.New("tenant ID or token URL is required for client credentials")
)

// Azure CLI errors.
var (
	ErrAzureCLINotFound = errors.New("azure CLI (az) not found in PATH")
	ErrAzureCLIFailed   = errors.New("azure CLI command failed")
	ErrNotLoggedIn      = errors.New("not logged in to Azure CLI, run 'az login'")
)

// Transport errors.
var (
	ErrTooManyPages    = errors.New("too many pages in list response")
	ErrForeignNextLink = errors.New("nextLink points outside the management endpoint")
)

// Configuration errors.
var (
	ErrResourceGroupNotConfigured = errors.New("no resource group configured, use --resource-group or 'apim config set resource_group <name>'")
	ErrInvalidOutputFormat        = errors.New("invalid output format")
	ErrInvalidCacheType           = errors.New("invalid cache type")
	ErrSecretRequired             = errors.New("client secret is required")
)
