package userdata

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnvEntry is one KEY=VALUE line from an env file.
type EnvEntry struct {
	Key   string
	Value string
}

// ListEnvFiles returns the .env files in the env/ directory, sorted by name.
// A missing directory yields an empty list.
func ListEnvFiles() ([]string, error) {
	envDir, err := GetEnvDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(envDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env directory %s: %w", envDir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".env") {
			files = append(files, filepath.Join(envDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ParseEnvFile reads KEY=VALUE lines from path. Blank lines and # comments
// are skipped, an "export " prefix is accepted and matching surrounding quotes
// are stripped from the value.
func ParseEnvFile(path string) ([]EnvEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	var entries []EnvEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if e, ok := parseEnvLine(sc.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return entries, nil
}

func parseEnvLine(line string) (EnvEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return EnvEntry{}, false
	}
	line = strings.TrimPrefix(line, "export ")
	key, value, found := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return EnvEntry{}, false
	}
	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value = value[1 : n-1]
	}
	return EnvEntry{Key: key, Value: value}, true
}

// FindInEnvFiles returns the first non-empty value for name across the env
// files in name order, and the file it came from. Unreadable files are skipped.
func FindInEnvFiles(name string) (value, file string, ok bool) {
	files, err := ListEnvFiles()
	if err != nil {
		return "", "", false
	}
	for _, path := range files {
		entries, err := ParseEnvFile(path)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.Key == name && e.Value != "" {
				return e.Value, path, true
			}
		}
	}
	return "", "", false
}

// sensitivePatterns are substrings that indicate a value should be redacted.
var sensitivePatterns = []string{"TOKEN", "SECRET", "PASSWORD", "KEY", "CREDENTIAL"}

// RedactValue masks value when key looks like a credential. Long values keep
// a four-character prefix so different keys stay distinguishable.
func RedactValue(key, value string) string {
	if !isSensitive(key) {
		return value
	}
	if r := []rune(value); len(r) >= 8 {
		return string(r[:4]) + "***"
	}
	return "***"
}

func isSensitive(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
