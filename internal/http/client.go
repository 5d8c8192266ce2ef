package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/apim-client/internal/auth"
	"github.com/fivetwenty-io/apim-client/internal/constants"
	"github.com/fivetwenty-io/apim-client/pkg/apim"
	"github.com/hashicorp/go-retryablehttp"
)

const apiVersionParam = "api-version"

// Logger is the logging surface used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client is an ARM HTTP client with bearer auth, retries and an optional
// response cache for GET requests.
type Client struct {
	baseURL      *url.URL
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       Logger
	debug        bool
	userAgent    string
	apiVersion   string
	cache        apim.Cache
	cacheTTL     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithAPIVersion sets the api-version added to requests that do not carry one.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithRetryConfig sets the retry budget and backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithCache caches successful GET responses for ttl.
func WithCache(cache apim.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// Request describes a single ARM call. Path is either relative to the
// base URL or an absolute nextLink on the same host.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Cached     bool
}

// NewClient creates a new ARM HTTP client.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || parsed.Host == "" {
		parsed, _ = url.Parse(constants.DefaultManagementEndpoint)
	}

	client := &Client{
		baseURL:      parsed,
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    constants.UserAgent,
		apiVersion:   constants.DefaultAPIVersion,
		cacheTTL:     constants.DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = &retryLogger{logger: client.logger}
	}

	return client
}

// BaseURL returns the management endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes a request. For status codes >= 400 both the response and a
// *apim.ResponseError are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if c.cache != nil && req.Method == http.MethodGet {
		cacheKey, err = c.cacheKey(ctx, fullURL)
		if err != nil {
			return nil, err
		}

		entry, cacheErr := c.cache.Get(ctx, cacheKey)
		if cacheErr == nil {
			c.logDebug("Cache hit", map[string]interface{}{"url": fullURL})

			return &Response{StatusCode: http.StatusOK, Headers: http.Header{}, Body: entry.Data, Cached: true}, nil
		}
	}

	resp, err := c.execute(ctx, req, fullURL)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokenManager != nil {
		refreshErr := c.tokenManager.RefreshToken(ctx)
		if refreshErr == nil {
			resp, err = c.execute(ctx, req, fullURL)
			if err != nil {
				return nil, err
			}
		} else {
			c.logDebug("Token refresh after 401 failed", map[string]interface{}{"error": refreshErr.Error()})
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, apim.ParseResponseError(resp.StatusCode, resp.Body)
	}

	if cacheKey != "" && resp.StatusCode == http.StatusOK {
		// A refresh above may have changed the caller's token.
		cacheKey, err = c.cacheKey(ctx, fullURL)
		if err != nil {
			return resp, nil
		}

		entry := &apim.CacheEntry{
			Data:      resp.Body,
			ExpiresAt: time.Now().Add(c.cacheTTL),
			ETag:      resp.Headers.Get("ETag"),
		}

		setErr := c.cache.Set(ctx, cacheKey, entry)
		if setErr != nil && c.logger != nil {
			c.logger.Warn("Failed to cache response", map[string]interface{}{"url": fullURL, "error": setErr.Error()})
		}
	}

	return resp, nil
}

// cacheKey scopes a cached GET to the bearer token that fetched it, so a
// shared cache never serves one identity's responses to another.
func (c *Client) cacheKey(ctx context.Context, fullURL string) (string, error) {
	key := http.MethodGet + " " + fullURL
	if c.tokenManager == nil {
		return key, nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting access token: %w", err)
	}

	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:8]) + " " + key, nil
}

func (c *Client) execute(ctx context.Context, req *Request, fullURL string) (*Response, error) {
	var body interface{}

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting access token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	c.logDebug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    fullURL,
	})

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"status":   httpResp.StatusCode,
		"duration": time.Since(start).String(),
		"bytes":    len(respBody),
	})

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// buildURL resolves the request path against the base URL and adds the
// api-version when the caller did not. Absolute URLs must stay on the
// management host so the bearer token is never sent elsewhere.
func (c *Client) buildURL(req *Request) (string, error) {
	var target *url.URL

	if strings.HasPrefix(req.Path, "https://") || strings.HasPrefix(req.Path, "http://") {
		parsed, err := url.Parse(req.Path)
		if err != nil {
			return "", fmt.Errorf("parsing URL %q: %w", req.Path, err)
		}

		if !strings.EqualFold(parsed.Host, c.baseURL.Host) {
			return "", fmt.Errorf("%w: %s", constants.ErrForeignNextLink, parsed.Host)
		}

		target = parsed
	} else {
		path := req.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		target = &url.URL{
			Scheme: c.baseURL.Scheme,
			Host:   c.baseURL.Host,
			Path:   strings.TrimSuffix(c.baseURL.Path, "/") + path,
		}
	}

	query := target.Query()

	for key, values := range req.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	if query.Get(apiVersionParam) == "" && c.apiVersion != "" {
		query.Set(apiVersionParam, c.apiVersion)
	}

	target.RawQuery = query.Encode()

	return target.String(), nil
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request. POST responses are never cached.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  query,
		Body:   body,
	})
}

// retryLogger forwards retryablehttp warnings and errors. Per-attempt debug
// chatter is dropped.
type retryLogger struct {
	logger Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keyValueFields(keysAndValues))
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
