package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// PolicyFragmentsClient implements apim.PolicyFragmentsClient.
type PolicyFragmentsClient struct {
	httpClient *http.Client
	scope      apim.Scope
	logger     apim.Logger
}

// NewPolicyFragmentsClient creates a new policy fragments client.
func NewPolicyFragmentsClient(httpClient *http.Client, scope apim.Scope, logger apim.Logger) *PolicyFragmentsClient {
	return &PolicyFragmentsClient{
		httpClient: httpClient,
		scope:      scope,
		logger:     logger,
	}
}

// Get implements apim.PolicyFragmentsClient.Get.
func (c *PolicyFragmentsClient) Get(ctx context.Context, fragmentID string) (*apim.PolicyFragment, error) {
	resp, err := c.httpClient.Get(ctx, c.scope.ServiceID()+"/policyFragments/"+fragmentID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting policy fragment %s: %w", fragmentID, err)
	}

	var fragment apim.PolicyFragment

	err = json.Unmarshal(resp.Body, &fragment)
	if err != nil {
		return nil, fmt.Errorf("parsing policy fragment: %w", err)
	}

	return &fragment, nil
}

// SupportedModels implements apim.PolicyFragmentsClient.SupportedModels.
func (c *PolicyFragmentsClient) SupportedModels(ctx context.Context, fragmentID string, opts ...apim.ExtractOption) ([]string, error) {
	fragment, err := c.Get(ctx, fragmentID)
	if err != nil {
		return nil, &apim.ExtractionError{FragmentID: fragmentID, Err: err}
	}

	c.logger.Info("Retrieved policy fragment", map[string]interface{}{"fragment": fragmentID})

	opts = append([]apim.ExtractOption{apim.WithExtractLogger(c.logger)}, opts...)
	models := apim.ExtractSupportedModels(fragment.Properties.Value, opts...)

	c.logger.Info(fmt.Sprintf("Found %d unique supported models", len(models)), map[string]interface{}{"fragment": fragmentID})

	return models, nil
}
