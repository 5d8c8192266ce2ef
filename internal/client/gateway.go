package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// GatewayClient implements apim.GatewayClient against the managed gateway.
type GatewayClient struct {
	httpClient *http.Client
	scope      apim.Scope
}

// NewGatewayClient creates a new gateway client.
func NewGatewayClient(httpClient *http.Client, scope apim.Scope) *GatewayClient {
	return &GatewayClient{
		httpClient: httpClient,
		scope:      scope,
	}
}

func debugQuery() url.Values {
	return url.Values{"api-version": []string{constants.GatewayDebugAPIVersion}}
}

// ListDebugCredentials implements apim.GatewayClient.ListDebugCredentials.
func (c *GatewayClient) ListDebugCredentials(ctx context.Context, apiName, expireAfter string) (string, error) {
	if expireAfter == "" {
		expireAfter = constants.DefaultCredentialsExpireAfter
	}

	serviceID := c.scope.ServiceID()
	request := &apim.DebugCredentialsRequest{
		CredentialsExpireAfter: expireAfter,
		APIID:                  serviceID + "/apis/" + apiName,
		Purposes:               []string{constants.DebugCredentialsPurpose},
	}

	resp, err := c.httpClient.Post(ctx, serviceID+"/gateways/managed/listDebugCredentials", debugQuery(), request)
	if err != nil {
		return "", fmt.Errorf("listing debug credentials: %w", err)
	}

	var credentials apim.DebugCredentials

	err = json.Unmarshal(resp.Body, &credentials)
	if err != nil {
		return "", fmt.Errorf("parsing debug credentials: %w", err)
	}

	if credentials.Token == "" {
		return "", apim.ErrNoDebugToken
	}

	return credentials.Token, nil
}

// ListTrace implements apim.GatewayClient.ListTrace.
func (c *GatewayClient) ListTrace(ctx context.Context, traceID string) (map[string]interface{}, error) {
	resp, err := c.httpClient.Post(ctx, c.scope.ServiceID()+"/gateways/managed/listTrace", debugQuery(), &apim.TraceRequest{TraceID: traceID})
	if err != nil {
		return nil, fmt.Errorf("listing trace %s: %w", traceID, err)
	}

	trace := map[string]interface{}{}

	err = json.Unmarshal(resp.Body, &trace)
	if err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}

	return trace, nil
}
