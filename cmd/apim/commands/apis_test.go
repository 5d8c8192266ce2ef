package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

const apisBody = `{"value":[
	{"id":"` + testServicePath + `/apis/echo","name":"echo","properties":{"displayName":"Echo","path":"echo","protocols":["https"]}},
	{"id":"` + testServicePath + `/apis/openai","name":"openai","properties":{"displayName":"OpenAI","path":"openai","protocols":["https"],"subscriptionRequired":true}}
]}`

func TestAPIsCommand(t *testing.T) {
	cmd := NewAPIsCommand()
	assert.Equal(t, "apis", cmd.Use)
	assert.NotNil(t, findSubcommand(cmd, "list"))

	discover := findSubcommand(cmd, "discover")
	require.NotNil(t, discover)
	assert.Equal(t, constants.DefaultAPIPathFilter, discover.Flags().Lookup("filter").DefValue)
}

func TestAPIsDiscover(t *testing.T) {
	server := newARMServer(t, testToken, map[string]armRoute{
		"GET " + testServicePath:           {body: serviceBody},
		"GET " + testServicePath + "/apis": {body: apisBody},
	})

	t.Run("finds the API", func(t *testing.T) {
		setupARM(t, server, "json")

		stdout, _, err := executeCommand(t, NewAPIsCommand(), "discover", "--filter", "openai")
		require.NoError(t, err)

		var api apim.DiscoveredAPI
		require.NoError(t, json.Unmarshal([]byte(stdout), &api))
		assert.Equal(t, "openai", api.Name)
		assert.Equal(t, "https://apim-lab.azure-api.net/", api.Endpoint)
	})

	t.Run("reports a miss", func(t *testing.T) {
		setupARM(t, server, "json")

		_, _, err := executeCommand(t, NewAPIsCommand(), "discover", "--filter", "/missing")
		require.ErrorIs(t, err, apim.ErrAPINotFound)
	})
}

func TestAPIsList(t *testing.T) {
	server := newARMServer(t, testToken, map[string]armRoute{
		"GET " + testServicePath + "/apis": {body: apisBody},
	})
	setupARM(t, server, "table")

	stdout, _, err := executeCommand(t, NewAPIsCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Echo")
	assert.Contains(t, stdout, "OpenAI")
}

func TestDebugCommand(t *testing.T) {
	cmd := NewDebugCommand()
	assert.Equal(t, "debug", cmd.Use)

	credentials := findSubcommand(cmd, "credentials")
	require.NotNil(t, credentials)
	assert.Equal(t, constants.DefaultCredentialsExpireAfter, credentials.Flags().Lookup("expire").DefValue)
	assert.NotNil(t, findSubcommand(cmd, "trace"))
}

// bodyRecorder keeps request bodies by call name.
type bodyRecorder struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (r *bodyRecorder) record(name string, request *http.Request) {
	body, _ := io.ReadAll(request.Body)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bodies == nil {
		r.bodies = map[string]string{}
	}

	r.bodies[name] = string(body)
}

func (r *bodyRecorder) get(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bodies[name]
}

// newGatewayServer records the body of the gateway debug calls.
func newGatewayServer(t *testing.T, bodies *bodyRecorder) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer "+testToken, request.Header.Get("Authorization"))

		writer.Header().Set("Content-Type", "application/json")

		switch request.Method + " " + request.URL.Path {
		case "GET " + testServicePath:
			_, _ = writer.Write([]byte(serviceBody))
		case "GET " + testServicePath + "/apis":
			_, _ = writer.Write([]byte(apisBody))
		case "POST " + testServicePath + "/gateways/managed/listDebugCredentials":
			assert.Equal(t, constants.GatewayDebugAPIVersion, request.URL.Query().Get("api-version"))

			bodies.record("credentials", request)
			_, _ = writer.Write([]byte(`{"token":"debug-token"}`))
		case "POST " + testServicePath + "/gateways/managed/listTrace":
			bodies.record("trace", request)
			_, _ = writer.Write([]byte(`{"traceEntries":{"inbound":[{"source":"set-backend-service"}]}}`))
		default:
			t.Errorf("unexpected request %s %s", request.Method, request.URL.String())
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestDebugCredentials(t *testing.T) {
	t.Run("named API", func(t *testing.T) {
		bodies := &bodyRecorder{}
		server := newGatewayServer(t, bodies)
		setupARM(t, server, "json")

		stdout, _, err := executeCommand(t, NewDebugCommand(), "credentials", "--api", "echo", "--expire", "PT10M")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		assert.Equal(t, map[string]string{"api": "echo", "token": "debug-token"}, result)

		var request apim.DebugCredentialsRequest
		require.NoError(t, json.Unmarshal([]byte(bodies.get("credentials")), &request))
		assert.Equal(t, "PT10M", request.CredentialsExpireAfter)
		assert.Equal(t, testServicePath+"/apis/echo", request.APIID)
		assert.Equal(t, []string{"tracing"}, request.Purposes)
	})

	t.Run("discovered API", func(t *testing.T) {
		bodies := &bodyRecorder{}
		server := newGatewayServer(t, bodies)
		setupARM(t, server, "json")

		stdout, _, err := executeCommand(t, NewDebugCommand(), "credentials", "--filter", "openai")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"api": "openai"`)
		assert.Contains(t, bodies.get("credentials"), testServicePath+"/apis/openai")
		assert.Contains(t, bodies.get("credentials"), constants.DefaultCredentialsExpireAfter)
	})
}

func TestDebugTrace(t *testing.T) {
	bodies := &bodyRecorder{}
	server := newGatewayServer(t, bodies)
	setupARM(t, server, "table")

	stdout, _, err := executeCommand(t, NewDebugCommand(), "trace", "trace-123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"traceId":"trace-123"}`, bodies.get("trace"))

	var trace map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &trace))
	assert.Contains(t, trace, "traceEntries")

	_, _, err = executeCommand(t, NewDebugCommand(), "trace")
	require.Error(t, err)
}
