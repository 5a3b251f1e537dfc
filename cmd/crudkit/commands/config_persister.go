package commands

import (
	"sync"
	"time"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateAPIToken stores token for apiEndpoint in the config file.
func (p *ConfigPersister) UpdateAPIToken(apiEndpoint, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfigFile()
	if err != nil {
		return err
	}

	if apiEndpoint != "" {
		config.API = apiEndpoint
	}

	config.Token = token
	config.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		expiry := expiresAt.UTC()
		config.TokenExpiresAt = &expiry
	}

	return saveConfigFile(config)
}
