package auth

import (
	"context"
	"fmt"
	"time"
)

// ConfigPersister defines the interface for persisting config changes.
type ConfigPersister interface {
	UpdateAPIToken(apiEndpoint, token string, expiresAt time.Time) error
}

// ConfigTokenManager wraps StaticTokenManager and writes every new token back
// to the configuration file.
type ConfigTokenManager struct {
	static          *StaticTokenManager
	configPersister ConfigPersister
	apiEndpoint     string
	lastErr         error
}

// NewConfigTokenManager creates a new config-persisting token manager.
func NewConfigTokenManager(configPersister ConfigPersister, apiEndpoint, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	return &ConfigTokenManager{
		static:          NewStaticTokenManager(initialToken, initialExpiry),
		configPersister: configPersister,
		apiEndpoint:     apiEndpoint,
	}
}

// GetToken returns the current token.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.static.GetToken(ctx)
}

// RefreshToken is delegated to the static manager.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	return m.static.RefreshToken(ctx)
}

// SetToken stores the token and persists it. Persistence failures are kept
// for PersistError since SetToken has no error return.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.static.SetToken(token, expiresAt)
	m.lastErr = m.persistToken(token, expiresAt)
}

// PersistError returns the error of the last SetToken persistence, if any.
func (m *ConfigTokenManager) PersistError() error {
	return m.lastErr
}

// IsTokenExpiringSoon returns true if the token expires within the given duration.
func (m *ConfigTokenManager) IsTokenExpiringSoon(within time.Duration) bool {
	expiry := m.static.Expiry()
	if expiry.IsZero() {
		return false
	}

	return time.Now().Add(within).After(expiry)
}

// persistToken saves the token to config.
func (m *ConfigTokenManager) persistToken(token string, expiresAt time.Time) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateAPIToken(m.apiEndpoint, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update API token: %w", err)
	}

	return nil
}
