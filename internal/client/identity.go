package client

import (
	"context"
	"sort"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// IdentityClient implements apim.IdentityClient.
type IdentityClient struct {
	scope       apim.Scope
	services    apim.ServicesClient
	namedValues apim.NamedValuesClient
	logger      apim.Logger
}

// NewIdentityClient creates a new identity client.
func NewIdentityClient(scope apim.Scope, services apim.ServicesClient, namedValues apim.NamedValuesClient, logger apim.Logger) *IdentityClient {
	return &IdentityClient{
		scope:       scope,
		services:    services,
		namedValues: namedValues,
		logger:      logger,
	}
}

// ManagedIdentityInfo implements apim.IdentityClient.ManagedIdentityInfo.
// The uami-client-id named value wins over the identity attached to the
// service; name and resource group come from the first user-assigned
// identity in key order.
func (c *IdentityClient) ManagedIdentityInfo(ctx context.Context) *apim.ManagedIdentityInfo {
	info := &apim.ManagedIdentityInfo{ResourceGroup: c.scope.ResourceGroup}

	service, err := c.services.Get(ctx)
	if err != nil {
		c.logger.Warn("Could not retrieve managed identity info", map[string]interface{}{"error": err.Error()})

		return info
	}

	clientID, err := c.namedValues.GetValue(ctx, constants.ManagedIdentityNamedValue)
	if err != nil {
		c.logger.Warn("Named value not found", map[string]interface{}{
			"namedValue": constants.ManagedIdentityNamedValue,
			"error":      err.Error(),
		})
	} else if clientID != "" {
		info.ClientID = clientID
		c.logger.Info("Found managed identity client ID in named values", map[string]interface{}{"clientId": preview(clientID)})
	}

	if service.Identity == nil || len(service.Identity.UserAssignedIdentities) == 0 {
		return info
	}

	ids := make([]string, 0, len(service.Identity.UserAssignedIdentities))
	for id := range service.Identity.UserAssignedIdentities {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	first := ids[0]

	if info.ClientID == "" {
		info.ClientID = service.Identity.UserAssignedIdentities[first].ClientID
	}

	info.Name = apim.NameFromID(first)

	if rg := apim.ResourceGroupFromID(first); rg != "" {
		info.ResourceGroup = rg
	}

	c.logger.Info("Found user-assigned managed identity", map[string]interface{}{"name": info.Name})

	return info
}

func preview(value string) string {
	if len(value) <= constants.ClientIDPreviewLength {
		return value
	}

	return value[:constants.ClientIDPreviewLength] + "..."
}
