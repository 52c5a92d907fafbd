package services

import (
	"encoding/json"
	"fmt"
	"os"

	"vippyadmin/pkg/b2"
)

/*
SettingsServicer persists storage credentials and applies them to the
running gateway. Saving new credentials drops the gateway session, so
the next storage call re-authorizes with the new key pair.
*/
type SettingsServicer interface {
	GetStorageConfig() (b2.Credentials, error)
	SaveStorageConfig(creds b2.Credentials) error
}

type SettingsServiceConfig struct {
	CredentialsPath string
	Storage         b2.Storage
}

type SettingsService struct {
	credentialsPath string
	storage         b2.Storage
}

func NewSettingsService(config SettingsServiceConfig) SettingsService {
	return SettingsService{
		credentialsPath: config.CredentialsPath,
		storage:         config.Storage,
	}
}

func LoadCredentials(path string) b2.Credentials {
	var creds b2.Credentials

	raw, err := os.ReadFile(path)

	if err != nil {
		return creds
	}

	if err = json.Unmarshal(raw, &creds); err != nil {
		return b2.Credentials{}
	}

	return creds
}

func (s SettingsService) GetStorageConfig() (b2.Credentials, error) {
	return LoadCredentials(s.credentialsPath), nil
}

func (s SettingsService) SaveStorageConfig(creds b2.Credentials) error {
	encoded, err := json.MarshalIndent(creds, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding storage credentials: %w", err)
	}

	if err = os.WriteFile(s.credentialsPath, encoded, 0600); err != nil {
		return fmt.Errorf("error writing storage credentials: %w", err)
	}

	s.storage.SetCredentials(creds)
	return nil
}
