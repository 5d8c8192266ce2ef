package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// NamedValuesClient implements apim.NamedValuesClient.
type NamedValuesClient struct {
	httpClient *http.Client
	scope      apim.Scope
}

// NewNamedValuesClient creates a new named values client.
func NewNamedValuesClient(httpClient *http.Client, scope apim.Scope) *NamedValuesClient {
	return &NamedValuesClient{
		httpClient: httpClient,
		scope:      scope,
	}
}

func (c *NamedValuesClient) path(namedValueID string) string {
	return c.scope.ServiceID() + "/namedValues/" + namedValueID
}

// Get implements apim.NamedValuesClient.Get.
func (c *NamedValuesClient) Get(ctx context.Context, namedValueID string) (*apim.NamedValue, error) {
	resp, err := c.httpClient.Get(ctx, c.path(namedValueID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting named value %s: %w", namedValueID, err)
	}

	var namedValue apim.NamedValue

	err = json.Unmarshal(resp.Body, &namedValue)
	if err != nil {
		return nil, fmt.Errorf("parsing named value: %w", err)
	}

	return &namedValue, nil
}

// GetValue implements apim.NamedValuesClient.GetValue. Secret values are
// not returned by Get and are read through listValue.
func (c *NamedValuesClient) GetValue(ctx context.Context, namedValueID string) (string, error) {
	namedValue, err := c.Get(ctx, namedValueID)
	if err != nil {
		return "", err
	}

	if !namedValue.Properties.Secret {
		return namedValue.Properties.Value, nil
	}

	resp, err := c.httpClient.Post(ctx, c.path(namedValueID)+"/listValue", nil, nil)
	if err != nil {
		return "", fmt.Errorf("listing secret value of %s: %w", namedValueID, err)
	}

	var secret apim.NamedValueSecret

	err = json.Unmarshal(resp.Body, &secret)
	if err != nil {
		return "", fmt.Errorf("parsing named value secret: %w", err)
	}

	return secret.Value, nil
}
