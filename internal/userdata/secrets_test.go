package userdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLookupSecret_Order(t *testing.T) {
	keyring.MockInit()
	tmp := t.TempDir()
	t.Setenv("ADMINOTAUR_HOME", tmp)
	t.Setenv("TEST_API_KEY", "")

	// Keyring only.
	if err := StoreSecret("TEST_API_KEY", "from-keyring"); err != nil {
		t.Fatalf("StoreSecret: %v", err)
	}
	v, src, err := LookupSecret("TEST_API_KEY")
	if err != nil || v != "from-keyring" || src != SourceKeyring {
		t.Fatalf("keyring lookup = %q, %s, %v", v, src, err)
	}

	// Env file shadows the keyring.
	envDir := filepath.Join(tmp, "env")
	os.MkdirAll(envDir, 0700)
	os.WriteFile(filepath.Join(envDir, "default.env"), []byte("TEST_API_KEY=from-file\n"), 0600)
	v, src, err = LookupSecret("TEST_API_KEY")
	if err != nil || v != "from-file" || src != SourceEnvFile {
		t.Fatalf("env-file lookup = %q, %s, %v", v, src, err)
	}

	// Process environment wins over everything.
	t.Setenv("TEST_API_KEY", "from-env")
	v, src, err = LookupSecret("TEST_API_KEY")
	if err != nil || v != "from-env" || src != SourceEnv {
		t.Fatalf("env lookup = %q, %s, %v", v, src, err)
	}
}

func TestLookupSecret_NotFound(t *testing.T) {
	keyring.MockInit()
	t.Setenv("ADMINOTAUR_HOME", t.TempDir())
	t.Setenv("MISSING_TOKEN", "")

	_, src, err := LookupSecret("MISSING_TOKEN")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
	if src != SourceNone {
		t.Errorf("source = %s, want %s", src, SourceNone)
	}
}
