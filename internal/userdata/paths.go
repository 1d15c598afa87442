package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decyphertek-ai/adminotaur/internal/branding"
)

// Directory and file name constants for the store convention.
const (
	StoreDir   = "store"
	AppsDir    = "app"
	SkillsDir  = "mcp"
	AgentDir   = "agent"
	EnvDir     = "env"
	JournalDB  = "journal.db"
	DefaultEnv = "default.env"
)

// Permission constants.
const (
	DirPermSecure  os.FileMode = 0700
	FilePermSecure os.FileMode = 0600
	DirPermNormal  os.FileMode = 0755
)

// GetHomeRoot returns the host's home directory.
// It checks the ADMINOTAUR_HOME environment variable first,
// then falls back to ~/.decyphertek-ai.
func GetHomeRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetStoreRoot returns the path to the installed-components store.
// It checks the ADMINOTAUR_STORE environment variable first,
// then falls back to <home>/store.
func GetStoreRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("STORE")); v != "" {
		return v, nil
	}
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, StoreDir), nil
}

// GetAppsRoot returns the launchable applications directory inside store.
func GetAppsRoot(store string) string {
	return filepath.Join(store, AppsDir)
}

// GetSkillsRoot returns the skill servers directory inside store.
func GetSkillsRoot(store string) string {
	return filepath.Join(store, SkillsDir)
}

// GetAgentRoot returns the agent assets directory inside store.
func GetAgentRoot(store string) string {
	return filepath.Join(store, AgentDir)
}

// GetEnvDir returns the path to the env/ directory within the home root.
func GetEnvDir() (string, error) {
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, EnvDir), nil
}

// GetJournalPath returns the default invocation journal database path.
func GetJournalPath() (string, error) {
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, JournalDB), nil
}
