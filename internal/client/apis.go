package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// APIsClient implements apim.APIsClient.
type APIsClient struct {
	httpClient *http.Client
	scope      apim.Scope
	services   apim.ServicesClient
}

// NewAPIsClient creates a new APIs client. services supplies the gateway URL.
func NewAPIsClient(httpClient *http.Client, scope apim.Scope, services apim.ServicesClient) *APIsClient {
	return &APIsClient{
		httpClient: httpClient,
		scope:      scope,
		services:   services,
	}
}

// List implements apim.APIsClient.List.
func (c *APIsClient) List(ctx context.Context) ([]apim.API, error) {
	apis, err := listAll[apim.API](ctx, c.httpClient, c.scope.ServiceID()+"/apis", nil)
	if err != nil {
		return nil, fmt.Errorf("listing APIs: %w", err)
	}

	return apis, nil
}

// Discover implements apim.APIsClient.Discover. The first API whose path
// contains pathFilter wins; the endpoint is the gateway URL joined with the
// remainder of the path.
func (c *APIsClient) Discover(ctx context.Context, pathFilter string) (*apim.DiscoveredAPI, error) {
	apis, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, api := range apis {
		if !strings.Contains(api.Properties.Path, pathFilter) {
			continue
		}

		service, err := c.services.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving gateway URL: %w", err)
		}

		return &apim.DiscoveredAPI{
			ID:       api.ID,
			Name:     api.Name,
			Path:     api.Properties.Path,
			Endpoint: service.Properties.GatewayURL + "/" + strings.ReplaceAll(api.Properties.Path, pathFilter, ""),
		}, nil
	}

	return nil, fmt.Errorf("%w: no API path contains %q", apim.ErrAPINotFound, pathFilter)
}
