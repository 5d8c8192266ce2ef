package apim

import (
	"fmt"
	"strings"
)

// Resource is the envelope shared by all ARM resources.
type Resource struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// ListResponse is a page of ARM resources.
type ListResponse[T any] struct {
	Value    []T    `json:"value"              yaml:"value"`
	NextLink string `json:"nextLink,omitempty" yaml:"nextLink,omitempty"`
}

// Scope identifies an APIM service within a subscription and resource group.
type Scope struct {
	SubscriptionID string `json:"subscriptionId" yaml:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup"  yaml:"resourceGroup"`
	ServiceName    string `json:"serviceName"    yaml:"serviceName"`
}

// ResourceGroupPath returns the ARM path of the resource group.
func (s Scope) ResourceGroupPath() string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", s.SubscriptionID, s.ResourceGroup)
}

// ServiceID returns the ARM resource ID of the APIM service.
func (s Scope) ServiceID() string {
	return s.ResourceGroupPath() + "/providers/Microsoft.ApiManagement/service/" + s.ServiceName
}

// Account is the signed-in Azure CLI account.
type Account struct {
	ID       string      `json:"id"       yaml:"id"`
	Name     string      `json:"name"     yaml:"name"`
	TenantID string      `json:"tenantId" yaml:"tenantId"`
	User     AccountUser `json:"user"     yaml:"user"`
}

// AccountUser is the principal behind an Account.
type AccountUser struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Service represents an API Management service instance.
type Service struct {
	Resource

	Location   string            `json:"location,omitempty" yaml:"location,omitempty"`
	SKU        *ServiceSKU       `json:"sku,omitempty"      yaml:"sku,omitempty"`
	Identity   *ServiceIdentity  `json:"identity,omitempty" yaml:"identity,omitempty"`
	Properties ServiceProperties `json:"properties"         yaml:"properties"`
}

// ServiceSKU is the pricing tier of a service.
type ServiceSKU struct {
	Name     string `json:"name"     yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// ServiceProperties holds the service attributes used by the client.
type ServiceProperties struct {
	GatewayURL        string `json:"gatewayUrl"                  yaml:"gatewayUrl"`
	ManagementAPIURL  string `json:"managementApiUrl,omitempty"  yaml:"managementApiUrl,omitempty"`
	PublisherEmail    string `json:"publisherEmail,omitempty"    yaml:"publisherEmail,omitempty"`
	PublisherName     string `json:"publisherName,omitempty"     yaml:"publisherName,omitempty"`
	ProvisioningState string `json:"provisioningState,omitempty" yaml:"provisioningState,omitempty"`
}

// ServiceIdentity describes the managed identities attached to a service.
type ServiceIdentity struct {
	Type                   string                          `json:"type"                             yaml:"type"`
	PrincipalID            string                          `json:"principalId,omitempty"            yaml:"principalId,omitempty"`
	TenantID               string                          `json:"tenantId,omitempty"               yaml:"tenantId,omitempty"`
	UserAssignedIdentities map[string]UserAssignedIdentity `json:"userAssignedIdentities,omitempty" yaml:"userAssignedIdentities,omitempty"`
}

// UserAssignedIdentity is one user-assigned managed identity.
type UserAssignedIdentity struct {
	PrincipalID string `json:"principalId" yaml:"principalId"`
	ClientID    string `json:"clientId"    yaml:"clientId"`
}

// Subscription represents an APIM subscription (not an Azure subscription).
type Subscription struct {
	Resource

	Properties SubscriptionProperties `json:"properties" yaml:"properties"`
}

// SubscriptionProperties holds subscription attributes.
type SubscriptionProperties struct {
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Scope       string `json:"scope"                 yaml:"scope"`
	State       string `json:"state"                 yaml:"state"`
}

// SubscriptionSecrets is the listSecrets response of a subscription.
type SubscriptionSecrets struct {
	PrimaryKey   string `json:"primaryKey"   yaml:"primaryKey"`
	SecondaryKey string `json:"secondaryKey" yaml:"secondaryKey"`
}

// SubscriptionKey pairs a subscription with its keys.
type SubscriptionKey struct {
	Name         string `json:"name"         yaml:"name"`
	DisplayName  string `json:"displayName"  yaml:"displayName"`
	PrimaryKey   string `json:"primaryKey"   yaml:"primaryKey"`
	SecondaryKey string `json:"secondaryKey" yaml:"secondaryKey"`
}

// API represents an API published through the gateway.
type API struct {
	Resource

	Properties APIProperties `json:"properties" yaml:"properties"`
}

// APIProperties holds API attributes.
type APIProperties struct {
	DisplayName          string   `json:"displayName"                    yaml:"displayName"`
	Path                 string   `json:"path"                           yaml:"path"`
	ServiceURL           string   `json:"serviceUrl,omitempty"           yaml:"serviceUrl,omitempty"`
	Protocols            []string `json:"protocols,omitempty"            yaml:"protocols,omitempty"`
	SubscriptionRequired bool     `json:"subscriptionRequired,omitempty" yaml:"subscriptionRequired,omitempty"`
}

// DiscoveredAPI is the API matched by a path filter and its public endpoint.
type DiscoveredAPI struct {
	ID       string `json:"id"       yaml:"id"`
	Name     string `json:"name"     yaml:"name"`
	Path     string `json:"path"     yaml:"path"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DebugCredentialsRequest is the body of the gateway listDebugCredentials action.
type DebugCredentialsRequest struct {
	CredentialsExpireAfter string   `json:"credentialsExpireAfter"`
	APIID                  string   `json:"apiId"`
	Purposes               []string `json:"purposes"`
}

// DebugCredentials is the response of the gateway listDebugCredentials action.
type DebugCredentials struct {
	Token string `json:"token" yaml:"token"`
}

// TraceRequest is the body of the gateway listTrace action.
type TraceRequest struct {
	TraceID string `json:"traceId"`
}

// PolicyFragment is a reusable policy snippet.
type PolicyFragment struct {
	Resource

	Properties PolicyFragmentProperties `json:"properties" yaml:"properties"`
}

// PolicyFragmentProperties holds the fragment content.
type PolicyFragmentProperties struct {
	Value       string `json:"value"                 yaml:"value"`
	Format      string `json:"format,omitempty"      yaml:"format,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// BackendContract is a backend record as returned by the management API.
type BackendContract struct {
	Resource

	Properties BackendProperties `json:"properties" yaml:"properties"`
}

// BackendProperties holds backend attributes. Pool is set for load-balanced pools.
type BackendProperties struct {
	URL         string                 `json:"url,omitempty"         yaml:"url,omitempty"`
	Protocol    string                 `json:"protocol,omitempty"    yaml:"protocol,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string                 `json:"type,omitempty"        yaml:"type,omitempty"`
	Pool        *BackendPoolProperties `json:"pool,omitempty"        yaml:"pool,omitempty"`
}

// BackendPoolProperties lists the members of a pool.
type BackendPoolProperties struct {
	Services []BackendPoolService `json:"services,omitempty" yaml:"services,omitempty"`
}

// BackendPoolService references a member backend.
type BackendPoolService struct {
	ID       string `json:"id"                 yaml:"id"`
	Priority *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Weight   *int   `json:"weight,omitempty"   yaml:"weight,omitempty"`
}

// NamedValue is a key/value pair stored in the service.
type NamedValue struct {
	Resource

	Properties NamedValueProperties `json:"properties" yaml:"properties"`
}

// NamedValueProperties holds the named value. Value is empty for secrets.
type NamedValueProperties struct {
	DisplayName string   `json:"displayName"      yaml:"displayName"`
	Value       string   `json:"value,omitempty"  yaml:"value,omitempty"`
	Secret      bool     `json:"secret"           yaml:"secret"`
	Tags        []string `json:"tags,omitempty"   yaml:"tags,omitempty"`
}

// NamedValueSecret is the listValue response of a named value.
type NamedValueSecret struct {
	Value string `json:"value"`
}

// ManagedIdentityInfo summarizes the identity the gateway uses to reach backends.
type ManagedIdentityInfo struct {
	ClientID      string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	Name          string `json:"name,omitempty"     yaml:"name,omitempty"`
	ResourceGroup string `json:"resourceGroup"      yaml:"resourceGroup"`
}

// ResourceGroupFromID returns the resource group segment of an ARM resource ID.
func ResourceGroupFromID(resourceID string) string {
	const marker = "/resourceGroups/"

	idx := strings.LastIndex(resourceID, marker)
	if idx < 0 {
		return ""
	}

	rest := resourceID[idx+len(marker):]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return rest[:slash]
	}

	return rest
}

// NameFromID returns the last path segment of an ARM resource ID.
func NameFromID(resourceID string) string {
	trimmed := strings.TrimSuffix(resourceID, "/")

	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}
