package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apim-client/pkg/apim"
)

const (
	testToken       = "test-token"
	testServicePath = "/subscriptions/sub-1/resourceGroups/lab-rg/providers/Microsoft.ApiManagement/service/apim-lab"
	// serverPlaceholder is replaced with the test server URL in response bodies.
	serverPlaceholder = "{{server}}"
)

// armRoute is a canned management API response.
type armRoute struct {
	status int
	body   string
}

// newARMServer serves routes keyed by "METHOD path", or "METHOD path#token"
// for requests carrying a $skiptoken, and fails the test on anything else.
func newARMServer(t *testing.T, routes map[string]armRoute) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer "+testToken, request.Header.Get("Authorization"))
		assert.NotEmpty(t, request.URL.Query().Get("api-version"))

		key := request.Method + " " + request.URL.Path
		if token := request.URL.Query().Get("$skiptoken"); token != "" {
			key += "#" + token
		}

		route, ok := routes[key]
		if !ok {
			t.Errorf("unexpected request %s %s", request.Method, request.URL.String())
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		status := route.status
		if status == 0 {
			status = http.StatusOK
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(strings.ReplaceAll(route.body, serverPlaceholder, "http://"+request.Host)))
	}))
}

// newTestClient creates a client for the apim-lab service behind server.
func newTestClient(t *testing.T, server *httptest.Server, logger apim.Logger) *Client {
	t.Helper()

	client, err := New(context.Background(), &apim.Config{
		SubscriptionID: "sub-1",
		ResourceGroup:  "lab-rg",
		ServiceName:    "apim-lab",
		Endpoint:       server.URL,
		AccessToken:    testToken,
		Logger:         logger,
	})
	require.NoError(t, err)

	return client
}

// recordingLogger captures log lines.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, fmt.Sprintf("%s: %s", level, msg))
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg) }

func (l *recordingLogger) contains(line string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, recorded := range l.lines {
		if recorded == line {
			return true
		}
	}

	return false
}

const notFoundBody = `{"error":{"code":"ResourceNotFound","message":"The requested resource was not found."}}`
