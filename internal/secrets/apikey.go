package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	KeyringService = "gigfinder"
	KeyringAccount = "gemini-api-key"
	APIKeyEnv      = "GEMINI_API_KEY"
)

var ErrNoAPIKey = errors.New("gemini api key not found (set GEMINI_API_KEY or run `gigfinder secrets set-key`)")

// Store is the keychain surface used here; keyring.Set/Get/Delete satisfy it.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, pw string) error       { return keyring.Set(service, user, pw) }
func (osKeyring) Delete(service, user string) error        { return keyring.Delete(service, user) }

// Keyring is the OS keychain.
var Keyring Store = osKeyring{}

// APIKey resolves the key from the environment first, then the keychain.
func APIKey(store Store) (string, error) {
	if v := strings.TrimSpace(os.Getenv(APIKeyEnv)); v != "" {
		return v, nil
	}
	if store == nil {
		return "", ErrNoAPIKey
	}
	v, err := store.Get(KeyringService, KeyringAccount)
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", ErrNoAPIKey
}

func SetAPIKey(store Store, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return store.Set(KeyringService, KeyringAccount, strings.TrimSpace(key))
}

func DeleteAPIKey(store Store) error {
	err := store.Delete(KeyringService, KeyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
