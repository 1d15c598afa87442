package userdata

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/decyphertek-ai/adminotaur/internal/branding"
)

// SecretSource identifies where a secret was found.
type SecretSource string

const (
	SourceNone    SecretSource = "none"
	SourceEnv     SecretSource = "environment"
	SourceEnvFile SecretSource = "env-file"
	SourceKeyring SecretSource = "keyring"
)

// ErrSecretNotFound is returned when no source holds the requested secret.
var ErrSecretNotFound = errors.New("secret not found")

// LookupSecret resolves a credential by name. Resolution order: process
// environment, then env/*.env files (alphabetical, first match wins), then
// the OS keyring under the CLI's service name. Empty values are treated as
// unset. Every miss, including an unreachable keyring, wraps ErrSecretNotFound.
func LookupSecret(name string) (string, SecretSource, error) {
	if v := os.Getenv(name); v != "" {
		return v, SourceEnv, nil
	}

	if v, _, ok := FindInEnvFiles(name); ok {
		return v, SourceEnvFile, nil
	}

	v, err := keyring.Get(branding.CLIName(), name)
	if err == nil && v != "" {
		return v, SourceKeyring, nil
	}
	// A host without a keyring service is treated as holding no secrets.
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", SourceNone, fmt.Errorf("%w (keyring unavailable: %v)", ErrSecretNotFound, err)
	}
	return "", SourceNone, ErrSecretNotFound
}

// StoreSecret saves a credential in the OS keyring.
func StoreSecret(name, value string) error {
	if err := keyring.Set(branding.CLIName(), name, value); err != nil {
		return fmt.Errorf("writing %s to keyring: %w", name, err)
	}
	return nil
}
