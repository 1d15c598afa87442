package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/decyphertek-ai/adminotaur/internal/platform"
)

// Default content for env/default.env.
const defaultEnvContent = `# Credentials read by the host (for example OPENROUTER_API_KEY=...).
# Lines starting with # are comments.
`

// InitHome creates the home directory layout: the store with its app/, mcp/
// and agent/ directories, and a secure env/ directory with an empty
// default.env. Existing items are skipped with a message.
func InitHome(w io.Writer, store string) error {
	root, err := GetHomeRoot()
	if err != nil {
		return err
	}

	if err := ensureDir(w, root, DirPermNormal); err != nil {
		return err
	}

	for _, dir := range []string{store, GetAppsRoot(store), GetSkillsRoot(store), GetAgentRoot(store)} {
		if err := ensureDir(w, dir, DirPermNormal); err != nil {
			return err
		}
	}

	envDir := filepath.Join(root, EnvDir)
	if err := ensureDir(w, envDir, DirPermSecure); err != nil {
		return err
	}
	return ensureFile(w, filepath.Join(envDir, DefaultEnv), defaultEnvContent, FilePermSecure)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}

// ensureFile creates a file with content if it doesn't exist.
func ensureFile(w io.Writer, path, content string, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
		return nil
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
