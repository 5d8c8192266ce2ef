package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/apim-client/internal/http"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

// SubscriptionsClient implements apim.SubscriptionsClient.
type SubscriptionsClient struct {
	httpClient *http.Client
	scope      apim.Scope
}

// NewSubscriptionsClient creates a new subscriptions client.
func NewSubscriptionsClient(httpClient *http.Client, scope apim.Scope) *SubscriptionsClient {
	return &SubscriptionsClient{
		httpClient: httpClient,
		scope:      scope,
	}
}

// List implements apim.SubscriptionsClient.List.
func (c *SubscriptionsClient) List(ctx context.Context) ([]apim.Subscription, error) {
	subscriptions, err := listAll[apim.Subscription](ctx, c.httpClient, c.scope.ServiceID()+"/subscriptions", nil)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	return subscriptions, nil
}

// ListSecrets implements apim.SubscriptionsClient.ListSecrets.
func (c *SubscriptionsClient) ListSecrets(ctx context.Context, subscriptionID string) (*apim.SubscriptionSecrets, error) {
	path := c.scope.ServiceID() + "/subscriptions/" + subscriptionID + "/listSecrets"

	resp, err := c.httpClient.Post(ctx, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing secrets of subscription %s: %w", subscriptionID, err)
	}

	var secrets apim.SubscriptionSecrets

	err = json.Unmarshal(resp.Body, &secrets)
	if err != nil {
		return nil, fmt.Errorf("parsing subscription secrets: %w", err)
	}

	return &secrets, nil
}

// ListKeys implements apim.SubscriptionsClient.ListKeys.
func (c *SubscriptionsClient) ListKeys(ctx context.Context) ([]apim.SubscriptionKey, error) {
	subscriptions, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]apim.SubscriptionKey, 0, len(subscriptions))

	for _, subscription := range subscriptions {
		secrets, err := c.ListSecrets(ctx, subscription.Name)
		if err != nil {
			return nil, err
		}

		keys = append(keys, apim.SubscriptionKey{
			Name:         subscription.Name,
			DisplayName:  subscription.Properties.DisplayName,
			PrimaryKey:   secrets.PrimaryKey,
			SecondaryKey: secrets.SecondaryKey,
		})
	}

	return keys, nil
}
