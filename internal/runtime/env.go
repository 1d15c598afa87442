package runtime

import (
	"strings"
)

// Environment variables understood by skills.
const (
	EnvDebug       = "MCP_DEBUG"
	EnvStandalone  = "MCP_STANDALONE"
	EnvHealthcheck = "HEALTHCHECK_MODE"
	EnvPythonPath  = "PYTHONPATH"
	EnvPath        = "PATH"
)

// verboseTriggers mark messages that look like web lookups.
var verboseTriggers = []string{"weather", "web ", "search ", "look up", "find "}

// WantsVerbose reports whether the child should run with the debug flag on.
// The flag is on for diagnostic calls, system-status commands, when the
// parent environment is in health-check mode, and for web-style lookups.
func WantsVerbose(req Request, diagnostics bool, parentEnv []string) bool {
	if diagnostics {
		return true
	}
	if strings.HasPrefix(req.Message, "sudo systemctl") {
		return true
	}
	if isTruthy(lookupEnv(parentEnv, EnvHealthcheck)) {
		return true
	}
	lower := strings.ToLower(req.Message)
	for _, t := range verboseTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func flag(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

// lookupEnv returns the value of key in env, or "".
func lookupEnv(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return e[len(prefix):]
		}
	}
	return ""
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
