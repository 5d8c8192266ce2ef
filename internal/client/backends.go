package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// BackendsClient implements apim.BackendsClient.
type BackendsClient struct {
	httpClient *http.Client
	scope      apim.Scope
	logger     apim.Logger
}

// NewBackendsClient creates a new backends client.
func NewBackendsClient(httpClient *http.Client, scope apim.Scope, logger apim.Logger) *BackendsClient {
	return &BackendsClient{
		httpClient: httpClient,
		scope:      scope,
		logger:     logger,
	}
}

// List implements apim.BackendsClient.List. Older api-versions omit pool
// members, so the listing always uses BackendPoolAPIVersion.
func (c *BackendsClient) List(ctx context.Context) ([]apim.BackendContract, error) {
	query := url.Values{"api-version": []string{constants.BackendPoolAPIVersion}}

	backends, err := listAll[apim.BackendContract](ctx, c.httpClient, c.scope.ServiceID()+"/backends", query)
	if err != nil {
		return nil, fmt.Errorf("listing backends: %w", err)
	}

	return backends, nil
}

// Classified implements apim.BackendsClient.Classified. Nothing is returned
// unless every page was read.
func (c *BackendsClient) Classified(ctx context.Context) ([]apim.Backend, []apim.BackendPool, error) {
	c.logger.Info("Retrieving backends", map[string]interface{}{"service": c.scope.ServiceName})

	records, err := c.List(ctx)
	if err != nil {
		return nil, nil, &apim.ClassificationError{Op: "list backends", Err: err}
	}

	backends, pools := apim.ClassifyBackends(records)

	for _, pool := range pools {
		c.logger.Info("Backend pool", map[string]interface{}{"name": pool.Name, "members": len(pool.Services)})
	}

	for _, backend := range backends {
		c.logger.Info("Backend", map[string]interface{}{"name": backend.Name, "url": backend.URL})
	}

	c.logger.Info(fmt.Sprintf("Found %d individual backends and %d backend pools", len(backends), len(pools)), nil)

	return backends, pools, nil
}
