package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

const (
	secretNamedValueBody = `{"name":"uami-client-id","properties":{"displayName":"uami-client-id","secret":true,"tags":["identity"]}}`
	plainNamedValueBody  = `{"name":"region","properties":{"displayName":"region","value":"eastus","secret":false}}`
)

func TestNamedValuesCommand(t *testing.T) {
	cmd := NewNamedValuesCommand()
	assert.Equal(t, "named-values", cmd.Use)

	get := findSubcommand(cmd, "get")
	require.NotNil(t, get)
	assert.NotNil(t, get.Flags().Lookup("show-value"))
}

func TestNamedValuesGet(t *testing.T) {
	server := newARMServer(t, testToken, map[string]armRoute{
		"GET " + testServicePath + "/namedValues/uami-client-id":            {body: secretNamedValueBody},
		"POST " + testServicePath + "/namedValues/uami-client-id/listValue": {body: `{"value":"11111111-2222-3333-4444-555555555555"}`},
		"GET " + testServicePath + "/namedValues/region":                    {body: plainNamedValueBody},
	})

	t.Run("masks secrets", func(t *testing.T) {
		setupARM(t, server, "json")

		stdout, _, err := executeCommand(t, NewNamedValuesCommand(), "get", "uami-client-id")
		require.NoError(t, err)

		var result NamedValueResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		assert.True(t, result.Secret)
		assert.Equal(t, Masked, result.Value)
		assert.Equal(t, []string{"identity"}, result.Tags)
	})

	t.Run("reveals secrets on request", func(t *testing.T) {
		setupARM(t, server, "json")

		stdout, _, err := executeCommand(t, NewNamedValuesCommand(), "get", "uami-client-id", "--show-value")
		require.NoError(t, err)
		assert.Contains(t, stdout, "11111111-2222-3333-4444-555555555555")
	})

	t.Run("plain values", func(t *testing.T) {
		setupARM(t, server, "table")

		stdout, _, err := executeCommand(t, NewNamedValuesCommand(), "get", "region")
		require.NoError(t, err)
		assert.Contains(t, stdout, "eastus")
		assert.Contains(t, stdout, No)
	})
}

func TestIdentityShow(t *testing.T) {
	const identityServiceBody = `{
		"name": "apim-lab",
		"identity": {
			"type": "UserAssigned",
			"userAssignedIdentities": {
				"/subscriptions/sub-1/resourceGroups/identity-rg/providers/Microsoft.ManagedIdentity/userAssignedIdentities/zeta": {"principalId": "p2", "clientId": "client-zeta"},
				"/subscriptions/sub-1/resourceGroups/identity-rg/providers/Microsoft.ManagedIdentity/userAssignedIdentities/alpha": {"principalId": "p1", "clientId": "client-alpha"}
			}
		},
		"properties": {"gatewayUrl": "https://apim-lab.azure-api.net"}
	}`

	t.Run("user-assigned identity", func(t *testing.T) {
		server := newARMServer(t, testToken, map[string]armRoute{
			"GET " + testServicePath: {body: identityServiceBody},
			"GET " + testServicePath + "/namedValues/uami-client-id": {
				status: 404,
				body:   `{"error":{"code":"ResourceNotFound","message":"missing"}}`,
			},
		})
		setupARM(t, server, "json")

		stdout, _, err := executeCommand(t, NewIdentityCommand(), "show")
		require.NoError(t, err)

		var info apim.ManagedIdentityInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &info))
		assert.Equal(t, apim.ManagedIdentityInfo{ClientID: "client-alpha", Name: "alpha", ResourceGroup: "identity-rg"}, info)
	})

	t.Run("falls back to the resource group", func(t *testing.T) {
		server := newARMServer(t, testToken, map[string]armRoute{
			"GET " + testServicePath: {status: 403, body: `{"error":{"code":"AuthorizationFailed","message":"denied"}}`},
		})
		setupARM(t, server, "table")

		stdout, _, err := executeCommand(t, NewIdentityCommand(), "show")
		require.NoError(t, err)
		assert.Contains(t, stdout, "lab-rg")
		assert.Contains(t, stdout, NotAvailable)
	})
}
