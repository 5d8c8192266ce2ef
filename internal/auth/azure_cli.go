package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/apim-client/internal/azcli"
	"github.com/fivetwenty-io/apim-client/internal/constants"
)

// AccessTokenSource is satisfied by *azcli.CLI.
type AccessTokenSource interface {
	GetAccessToken(ctx context.Context, resource string) (*azcli.AccessToken, error)
}

// AzureCLITokenManager borrows the Azure CLI's signed-in identity.
type AzureCLITokenManager struct {
	source   AccessTokenSource
	resource string
	store    *TokenStore
	mu       sync.Mutex
}

// NewAzureCLITokenManager creates a manager for ARM tokens from the Azure CLI.
func NewAzureCLITokenManager(source AccessTokenSource) *AzureCLITokenManager {
	if source == nil {
		source = azcli.New(nil)
	}

	return &AzureCLITokenManager{
		source:   source,
		resource: constants.ManagementResource,
		store:    NewTokenStore(),
	}
}

// GetToken returns the cached token or asks the CLI for a new one.
func (m *AzureCLITokenManager) GetToken(ctx context.Context) (string, error) {
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

// RefreshToken runs `az account get-access-token`.
func (m *AzureCLITokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.source.GetAccessToken(ctx, m.resource)
	if err != nil {
		return err
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	m.store.Set(&Token{AccessToken: token.AccessToken, TokenType: tokenType, ExpiresAt: token.ExpiresAt()})

	return nil
}

// SetToken stores a token obtained elsewhere.
func (m *AzureCLITokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// CurrentToken returns the stored token.
func (m *AzureCLITokenManager) CurrentToken() *Token {
	return m.store.Get()
}
