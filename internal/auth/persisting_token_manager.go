package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenPersister = errors.New("no token persister configured")
)

// TokenPersister saves tokens between CLI invocations.
type TokenPersister interface {
	SaveToken(token string, expiresAt time.Time) error
}

// PersistingTokenManager wraps another manager and saves every new token it
// obtains, so later processes can reuse it until it expires.
type PersistingTokenManager struct {
	inner     TokenManager
	persister TokenPersister
	warnings  io.Writer
	mutex     sync.Mutex
	lastToken string
}

// NewPersistingTokenManager seeds inner with a previously saved token when it
// is still valid.
func NewPersistingTokenManager(inner TokenManager, persister TokenPersister, savedToken string, savedExpiry time.Time) *PersistingTokenManager {
	saved := &Token{AccessToken: savedToken, ExpiresAt: savedExpiry}
	if saved.Valid() {
		inner.SetToken(savedToken, savedExpiry)
	}

	return &PersistingTokenManager{
		inner:     inner,
		persister: persister,
		warnings:  os.Stderr,
		lastToken: savedToken,
	}
}

// GetToken returns a valid token and persists it if it changed.
func (m *PersistingTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.inner.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a refresh and persists the result.
func (m *PersistingTokenManager) RefreshToken(ctx context.Context) error {
	err := m.inner.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken sets the token without persisting it.
func (m *PersistingTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.inner.SetToken(token, expiresAt)
	m.lastToken = token
}

// CurrentToken returns the wrapped manager's token, if it reports one.
func (m *PersistingTokenManager) CurrentToken() *Token {
	reporter, ok := m.inner.(TokenReporter)
	if !ok {
		return nil
	}

	return reporter.CurrentToken()
}

func (m *PersistingTokenManager) persistIfChanged() {
	current := m.CurrentToken()
	if current == nil {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current.AccessToken == m.lastToken {
		return
	}

	err := m.persist(current)
	if err != nil {
		_, _ = fmt.Fprintf(m.warnings, "Warning: failed to persist access token: %v\n", err)

		return
	}

	m.lastToken = current.AccessToken
}

func (m *PersistingTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return ErrNoTokenPersister
	}

	err := m.persister.SaveToken(token.AccessToken, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}

	return nil
}
