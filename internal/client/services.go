package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// ServicesClient implements apim.ServicesClient.
type ServicesClient struct {
	httpClient *http.Client
	scope      apim.Scope
}

// NewServicesClient creates a new services client.
func NewServicesClient(httpClient *http.Client, scope apim.Scope) *ServicesClient {
	return &ServicesClient{
		httpClient: httpClient,
		scope:      scope,
	}
}

// Get implements apim.ServicesClient.Get.
func (c *ServicesClient) Get(ctx context.Context) (*apim.Service, error) {
	if c.scope.ServiceName == "" {
		return nil, apim.ErrServiceNotFound
	}

	resp, err := c.httpClient.Get(ctx, c.scope.ServiceID(), nil)
	if err != nil {
		if apim.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", apim.ErrServiceNotFound, c.scope.ServiceName, err)
		}

		return nil, fmt.Errorf("getting service: %w", err)
	}

	var service apim.Service

	err = json.Unmarshal(resp.Body, &service)
	if err != nil {
		return nil, fmt.Errorf("parsing service: %w", err)
	}

	return &service, nil
}

// List implements apim.ServicesClient.List.
func (c *ServicesClient) List(ctx context.Context) ([]apim.Service, error) {
	path := c.scope.ResourceGroupPath() + "/providers/" + constants.ServiceResourceType

	services, err := listAll[apim.Service](ctx, c.httpClient, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}

	return services, nil
}
