package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/apim-client/internal/constants"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsConfig describes an Azure AD service principal.
type ClientCredentialsConfig struct {
	TenantID      string
	ClientID      string
	ClientSecret  string
	TokenURL      string
	AuthorityHost string
	Scopes        []string
	HTTPClient    *http.Client
}

// TokenEndpoint returns the v2.0 token endpoint, preferring an explicit TokenURL.
func (c *ClientCredentialsConfig) TokenEndpoint() (string, error) {
	if c.TokenURL != "" {
		return c.TokenURL, nil
	}

	if c.TenantID == "" {
		return "", constants.ErrTenantRequired
	}

	authority := c.AuthorityHost
	if authority == "" {
		authority = constants.DefaultAuthorityHost
	}

	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(authority, "/"), c.TenantID), nil
}

// ClientCredentialsTokenManager obtains tokens with the client_credentials grant.
type ClientCredentialsTokenManager struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	store      *TokenStore
	mu         sync.Mutex
}

// NewClientCredentialsTokenManager validates the configuration and creates a manager.
// No token is requested until the first GetToken call.
func NewClientCredentialsTokenManager(config *ClientCredentialsConfig) (*ClientCredentialsTokenManager, error) {
	if config.ClientSecret == "" {
		return nil, constants.ErrSecretRequired
	}

	tokenURL, err := config.TokenEndpoint()
	if err != nil {
		return nil, err
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{constants.ManagementScope}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	return &ClientCredentialsTokenManager{
		config: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		store:      NewTokenStore(),
	}, nil
}

// GetToken returns the cached token or requests a new one.
func (m *ClientCredentialsTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken requests a new token from the token endpoint.
func (m *ClientCredentialsTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	token, err := m.config.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrTokenRequestFailed, err)
	}

	if token.AccessToken == "" {
		return constants.ErrEmptyAccessToken
	}

	m.store.Set(&Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.Expiry,
	})

	return nil
}

// SetToken stores a token obtained elsewhere.
func (m *ClientCredentialsTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// CurrentToken returns the stored token.
func (m *ClientCredentialsTokenManager) CurrentToken() *Token {
	return m.store.Get()
}
